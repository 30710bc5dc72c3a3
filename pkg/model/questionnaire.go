package model

import "time"

// MicroQuestion is one of the 300 leaf questions in the canonical questionnaire (§3.1).
type MicroQuestion struct {
	QuestionID       string           `json:"question_id"`
	QuestionGlobal   int              `json:"question_global"` // 1..300
	PolicyAreaID     string           `json:"policy_area_id"`
	DimensionID      string           `json:"dimension_id"`
	QuestionInDim    int              `json:"question_in_dim"` // 1..5
	BaseSlot         string           `json:"base_slot"`       // "D{d}-Q{q}"
	Prompt           string           `json:"prompt"`
	ExpectedElements []ExpectedElement `json:"expected_elements"`
	SignalRequirements []string       `json:"signal_requirements"`
	MethodSequence   []MethodRef      `json:"method_sequence"`
}

// MethodRef names a method in the canonical catalog a question must route through.
type MethodRef struct {
	ClassName  string `json:"class_name"`
	MethodName string `json:"method_name"`
}

// Key returns the (class_name, method_name) lookup key.
func (m MethodRef) Key() string { return m.ClassName + "." + m.MethodName }

// ExpectedElement is one structural element a scored answer is expected to carry.
type ExpectedElement struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// NicheAbstraccion groups the ontology blocks carried by the questionnaire.
type NicheAbstraccion struct {
	PolicyAreas []PolicyArea `json:"policy_areas"`
	Dimensions  []Dimension  `json:"dimensions"`
	Clusters    []Cluster    `json:"clusters"`
}

// PolicyArea is one of the ten top-level policy categories.
type PolicyArea struct {
	PolicyAreaID string `json:"policy_area_id"`
	Label        string `json:"label"`
}

// Dimension is one of the six cross-cutting analytic dimensions.
type Dimension struct {
	DimensionID string `json:"dimension_id"`
	Ordinal     int    `json:"ordinal"` // 1..6, matches D{ordinal} alias
	Label       string `json:"label"`
}

// Questionnaire is the immutable, content-hashed canonical questionnaire (§3.2).
type Questionnaire struct {
	Version        string           `json:"version"`
	SchemaVersion  string           `json:"schema_version"`
	Integrity      string           `json:"integrity"` // content hash over canonical JSON of Blocks
	MacroQuestion  string           `json:"macro_question"`
	MesoQuestions  []string         `json:"meso_questions"`
	MicroQuestions []MicroQuestion  `json:"micro_questions"`
	Niveles        NicheAbstraccion `json:"niveles_abstraccion"`
	Scoring        ScoringConfig    `json:"scoring"`
	SemanticLayers []string         `json:"semantic_layers"`
	LoadedAt       time.Time        `json:"-"`
}

// ScoringConfig carries the scoring band thresholds (§4.11).
type ScoringConfig struct {
	Satisfactorio float64 `json:"satisfactorio_min"` // 0.75
	Aceptable     float64 `json:"aceptable_min"`     // 0.55
	Deficiente    float64 `json:"deficiente_min"`    // 0.35
}

// DefaultScoringConfig returns the scoring bands declared in §4.11.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{Satisfactorio: 0.75, Aceptable: 0.55, Deficiente: 0.35}
}

// Band classifies a [0,1] score into one of the four bands.
func (s ScoringConfig) Band(score float64) string {
	pct := score * 100
	switch {
	case pct >= s.Satisfactorio*100:
		return "SATISFACTORIO"
	case pct >= s.Aceptable*100:
		return "ACEPTABLE"
	case pct >= s.Deficiente*100:
		return "DEFICIENTE"
	default:
		return "INSUFICIENTE"
	}
}
