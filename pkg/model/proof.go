package model

import "time"

// PhaseMetadata is the per-phase execution record (§4.1).
type PhaseMetadata struct {
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// ArtifactsManifest lists the content hash of every artifact file written for a run.
type ArtifactsManifest map[string]string // relative path -> BLAKE2b-256 hex

// ExecutionProof is the run-level sealed document (§3.8).
type ExecutionProof struct {
	RunID             string            `json:"run_id"`
	TimestampUTC      time.Time         `json:"timestamp_utc"`
	PhasesTotal       int               `json:"phases_total"`
	PhasesSuccess     int               `json:"phases_success"`
	QuestionsTotal    int               `json:"questions_total"`
	QuestionsAnswered int               `json:"questions_answered"`
	EvidenceRecords   int               `json:"evidence_records"`
	MonolithHash      string            `json:"monolith_hash"`      // hash of frozen pipeline configuration
	CatalogHash       string            `json:"catalog_hash"`
	QuestionnaireHash string            `json:"questionnaire_hash"`
	InputPDFHash      string            `json:"input_pdf_hash"`
	ArtifactsManifest ArtifactsManifest `json:"artifacts_manifest"`
	CodeSignature     string            `json:"code_signature"`
	PhaseFingerprints []PhaseMetadata   `json:"phase_fingerprints"`
	ProofHash         string            `json:"proof_hash,omitempty"` // filled after sealing, excluded from the hash itself
}

// hashableProof excludes ProofHash, the one field that cannot be part of its own hash.
type hashableProof struct {
	RunID             string            `json:"run_id"`
	TimestampUTC      time.Time         `json:"timestamp_utc"`
	PhasesTotal       int               `json:"phases_total"`
	PhasesSuccess     int               `json:"phases_success"`
	QuestionsTotal    int               `json:"questions_total"`
	QuestionsAnswered int               `json:"questions_answered"`
	EvidenceRecords   int               `json:"evidence_records"`
	MonolithHash      string            `json:"monolith_hash"`
	CatalogHash       string            `json:"catalog_hash"`
	QuestionnaireHash string            `json:"questionnaire_hash"`
	InputPDFHash      string            `json:"input_pdf_hash"`
	ArtifactsManifest ArtifactsManifest `json:"artifacts_manifest"`
	CodeSignature     string            `json:"code_signature"`
	PhaseFingerprints []PhaseMetadata   `json:"phase_fingerprints"`
}

// HashableView returns the projection of the proof that proof.hash is computed over.
func (p ExecutionProof) HashableView() any {
	return hashableProof{
		RunID:             p.RunID,
		TimestampUTC:      p.TimestampUTC,
		PhasesTotal:       p.PhasesTotal,
		PhasesSuccess:     p.PhasesSuccess,
		QuestionsTotal:    p.QuestionsTotal,
		QuestionsAnswered: p.QuestionsAnswered,
		EvidenceRecords:   p.EvidenceRecords,
		MonolithHash:      p.MonolithHash,
		CatalogHash:       p.CatalogHash,
		QuestionnaireHash: p.QuestionnaireHash,
		InputPDFHash:      p.InputPDFHash,
		ArtifactsManifest: p.ArtifactsManifest,
		CodeSignature:     p.CodeSignature,
		PhaseFingerprints: p.PhaseFingerprints,
	}
}

// CanonicalInput is Phase 0's output (§4.2).
type CanonicalInput struct {
	DocumentID         string    `json:"document_id"`
	RunID              string    `json:"run_id"`
	PDFPath            string    `json:"pdf_path"`
	PDFSHA256          string    `json:"pdf_sha256"`
	PDFSizeBytes       int64     `json:"pdf_size_bytes"`
	PDFPageCount       int       `json:"pdf_page_count"`
	QuestionnairePath  string    `json:"questionnaire_path"`
	QuestionnaireSHA256 string   `json:"questionnaire_sha256"`
	CreatedAt          time.Time `json:"created_at"`
	Phase0Version      string    `json:"phase0_version"`
	ValidationPassed   bool      `json:"validation_passed"`
	ValidationErrors   []string  `json:"validation_errors"`
}
