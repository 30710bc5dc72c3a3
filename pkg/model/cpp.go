package model

import "time"

// Resolution is the granularity a chunk was extracted at.
type Resolution string

const (
	ResolutionMacro Resolution = "MACRO"
	ResolutionMeso  Resolution = "MESO"
	ResolutionMicro Resolution = "MICRO"
)

// EdgeType classifies an edge in the chunk graph.
type EdgeType string

const (
	EdgeSequential  EdgeType = "sequential"
	EdgeHierarchical EdgeType = "hierarchical"
	EdgeReference   EdgeType = "reference"
	EdgeDependency  EdgeType = "dependency"
)

// TextSpan is a half-open [Start, End) byte range into the source document.
type TextSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Provenance records where a chunk's text came from in the source PDF.
type Provenance struct {
	SourcePage int    `json:"source_page"`
	Section    string `json:"section,omitempty"`
	ParserID   string `json:"parser_id"`
	ByteStart  int    `json:"byte_start"`
	ByteEnd    int    `json:"byte_end"`
}

// FacetMap carries a chunk's policy/time/geo classification facets.
type FacetMap map[string]string

// Chunk is one cell of the 60-entry policy-area x dimension matrix (§3.3).
type Chunk struct {
	ID           string     `json:"id"`
	PolicyAreaID string     `json:"policy_area_id"`
	DimensionID  string     `json:"dimension_id"`
	BytesHash    string     `json:"bytes_hash"` // BLAKE2b-256 hex of Text
	TextSpan     TextSpan   `json:"text_span"`
	Resolution   Resolution `json:"resolution"`
	Text         string     `json:"text"`
	PolicyFacets FacetMap   `json:"policy_facets,omitempty"`
	TimeFacets   FacetMap   `json:"time_facets,omitempty"`
	GeoFacets    FacetMap   `json:"geo_facets,omitempty"`
	Confidence   float64    `json:"confidence"`
	Budget       *float64   `json:"budget,omitempty"`
	Provenance   *Provenance `json:"provenance,omitempty"`
	ExpectedElements []ExpectedElement `json:"expected_elements,omitempty"`
}

// Key returns the chunk's (PA,DIM) routing key.
func (c Chunk) Key() ChunkKey {
	return ChunkKey{PolicyAreaID: c.PolicyAreaID, DimensionID: c.DimensionID}
}

// ChunkEdge is a directed edge in the chunk graph.
type ChunkEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// PolicyManifest summarizes the document's policy content at the CPP level.
type PolicyManifest struct {
	AxesCount     int      `json:"axes_count"`
	ProgramsCount int      `json:"programs_count"`
	ProjectsCount int      `json:"projects_count"`
	Years         []int    `json:"years"`
	Territories   []string `json:"territories"`
}

// QualityMetrics are the CPP-level quality gates (§3.3).
type QualityMetrics struct {
	ProvenanceCompleteness float64 `json:"provenance_completeness"`
	StructuralConsistency  float64 `json:"structural_consistency"`
	BoundaryF1             float64 `json:"boundary_f1"`
	KPILinkageRate         float64 `json:"kpi_linkage_rate"`
	BudgetConsistency      float64 `json:"budget_consistency"`
	TemporalRobustness     float64 `json:"temporal_robustness"`
	ChunkContextCoverage   float64 `json:"chunk_context_coverage"`
}

// IntegrityIndex carries the CPP's content-addressing root and per-chunk hashes.
type IntegrityIndex struct {
	RootHash   string            `json:"root_hash"`
	ChunkHashes map[string]string `json:"chunk_hashes"` // chunk id -> bytes_hash
}

// CanonPolicyPackage is the immutable output of Phase 1 (§3.3).
type CanonPolicyPackage struct {
	SchemaVersion  string         `json:"schema_version"`
	Chunks         []Chunk        `json:"chunks"`
	Edges          []ChunkEdge    `json:"edges"`
	PolicyManifest PolicyManifest `json:"policy_manifest"`
	Quality        QualityMetrics `json:"quality_metrics"`
	Integrity      IntegrityIndex `json:"integrity_index"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ChunkMatrix indexes chunks by (PA,DIM) for routing.
type ChunkMatrix map[ChunkKey]Chunk

// BuildChunkMatrix indexes the CPP's chunks by (PA,DIM).
func BuildChunkMatrix(cpp *CanonPolicyPackage) ChunkMatrix {
	m := make(ChunkMatrix, len(cpp.Chunks))
	for _, c := range cpp.Chunks {
		m[c.Key()] = c
	}
	return m
}

// PreprocessedChunkInfo is the lightweight per-chunk summary carried in PreprocessedDocument.Metadata.
type PreprocessedChunkInfo struct {
	ID             string     `json:"id"`
	PolicyAreaID   string     `json:"policy_area_id"`
	DimensionID    string     `json:"dimension_id"`
	Resolution     Resolution `json:"resolution"`
	HasProvenance  bool       `json:"has_provenance"`
}

// PreprocessedMetadata carries the CPP-derived context the adapter preserves verbatim.
type PreprocessedMetadata struct {
	PolicyManifest PolicyManifest          `json:"policy_manifest"`
	Quality        QualityMetrics          `json:"quality_metrics"`
	Chunks         []PreprocessedChunkInfo `json:"chunks"`
}

// TableRow is the one-row-per-chunk budget table entry (§3.4).
type TableRow struct {
	ChunkID string   `json:"chunk_id"`
	Budget  *float64 `json:"budget,omitempty"`
}

// Sentence is one sentence-per-chunk entry carrying its source chunk id (§3.4).
type Sentence struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
}

// PreprocessedDocument is the adapter's normalized view of a CPP (§3.4).
type PreprocessedDocument struct {
	DocumentID string                `json:"document_id"`
	RawText    string                `json:"raw_text"`
	Sentences  []Sentence            `json:"sentences"`
	Tables     []TableRow            `json:"tables"`
	Metadata   PreprocessedMetadata  `json:"metadata"`
	Matrix     ChunkMatrix           `json:"-"`
}
