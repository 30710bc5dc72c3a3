// Package questionnaire loads and validates the canonical, content-hashed
// questionnaire (§3.2, C1). It is loaded exactly once per process and is
// immutable after load, mirroring tarsy's pkg/config registries.
package questionnaire

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// fileFormat mirrors the on-disk JSON shape: {version, schema_version, integrity, blocks}.
type fileFormat struct {
	Version       string `json:"version"`
	SchemaVersion string `json:"schema_version"`
	Integrity     string `json:"integrity"`
	Blocks        blocks `json:"blocks"`
}

type blocks struct {
	MacroQuestion  string                   `json:"macro_question"`
	MesoQuestions  []string                 `json:"meso_questions"`
	MicroQuestions []model.MicroQuestion    `json:"micro_questions"`
	Niveles        model.NicheAbstraccion   `json:"niveles_abstraccion"`
	Scoring        model.ScoringConfig      `json:"scoring"`
	SemanticLayers []string                 `json:"semantic_layers"`
}

// Load reads, parses, and validates the questionnaire at path.
// It recomputes the integrity hash over Blocks and, when the file declares an
// "integrity" field, requires the two to match (an empty field is accepted);
// then it runs the invariants of §3.2.
func Load(path string) (*model.Questionnaire, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questionnaire: read %s: %w", path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("questionnaire: parse %s: %w", path, err)
	}

	computed, err := hashing.H(ff.Blocks)
	if err != nil {
		return nil, fmt.Errorf("questionnaire: hash blocks: %w", err)
	}
	if ff.Integrity != "" && computed != ff.Integrity {
		return nil, fmt.Errorf("questionnaire: integrity mismatch: file declares %s, recomputed %s", ff.Integrity, computed)
	}

	q := &model.Questionnaire{
		Version:        ff.Version,
		SchemaVersion:  ff.SchemaVersion,
		Integrity:      computed,
		MacroQuestion:  ff.Blocks.MacroQuestion,
		MesoQuestions:  ff.Blocks.MesoQuestions,
		MicroQuestions: ff.Blocks.MicroQuestions,
		Niveles:        ff.Blocks.Niveles,
		Scoring:        ff.Blocks.Scoring,
		SemanticLayers: ff.Blocks.SemanticLayers,
		LoadedAt:       time.Now().UTC(),
	}
	if q.Scoring == (model.ScoringConfig{}) {
		q.Scoring = model.DefaultScoringConfig()
	}

	if err := Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the invariants of §3.2: exactly 300 unique question ids,
// each cluster's policy area ids equal the expected partition, and every
// micro-question's PA/DIM references resolve.
func Validate(q *model.Questionnaire) error {
	if len(q.MicroQuestions) != model.TotalQuestions {
		return fmt.Errorf("questionnaire: expected %d micro questions, got %d", model.TotalQuestions, len(q.MicroQuestions))
	}

	seen := make(map[string]bool, model.TotalQuestions)
	paIDs := make(map[string]bool)
	for _, pa := range q.Niveles.PolicyAreas {
		paIDs[pa.PolicyAreaID] = true
	}
	dimIDs := make(map[string]bool)
	for _, d := range q.Niveles.Dimensions {
		dimIDs[d.DimensionID] = true
	}

	for _, mq := range q.MicroQuestions {
		if seen[mq.QuestionID] {
			return fmt.Errorf("questionnaire: duplicate question_id %q", mq.QuestionID)
		}
		seen[mq.QuestionID] = true

		if len(paIDs) > 0 && !paIDs[mq.PolicyAreaID] {
			return fmt.Errorf("questionnaire: question %q references unknown policy_area_id %q", mq.QuestionID, mq.PolicyAreaID)
		}
		if len(dimIDs) > 0 && !dimIDs[mq.DimensionID] {
			return fmt.Errorf("questionnaire: question %q references unknown dimension_id %q", mq.QuestionID, mq.DimensionID)
		}
	}

	if err := validateClusterPartition(q.Niveles); err != nil {
		return err
	}
	return nil
}

// validateClusterPartition checks that the clusters hermetically partition the policy areas:
// every PA belongs to exactly one cluster, and the union equals the full PA set.
func validateClusterPartition(n model.NicheAbstraccion) error {
	if len(n.Clusters) == 0 {
		return nil // cluster ontology not supplied; nothing to check
	}
	assigned := make(map[string]string)
	for _, cl := range n.Clusters {
		for _, pa := range cl.PolicyAreaIDs {
			if prior, ok := assigned[pa]; ok {
				return fmt.Errorf("questionnaire: policy area %q assigned to both cluster %q and %q", pa, prior, cl.ClusterID)
			}
			assigned[pa] = cl.ClusterID
		}
	}
	for _, pa := range n.PolicyAreas {
		if _, ok := assigned[pa.PolicyAreaID]; !ok {
			return fmt.Errorf("questionnaire: policy area %q is not a member of any cluster", pa.PolicyAreaID)
		}
	}
	return nil
}
