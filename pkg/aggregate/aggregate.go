// Package aggregate implements the three-level score rollup (C10, §4.11):
// micro answers roll up to (policy area, dimension) cells, cells roll up to
// clusters, and clusters roll up to one macro score — arithmetic means at
// every level, with percentages computed only at the point of emission.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// MicroAnswer is one task's settled score, the aggregator's only input.
type MicroAnswer struct {
	TaskID       string
	QuestionID   string
	PolicyAreaID string
	DimensionID  string
	Score        float64 // [0,1]
}

// CellResult is the arithmetic mean over one (policy area, dimension) cell.
type CellResult struct {
	PolicyAreaID string  `json:"policy_area_id"`
	DimensionID  string  `json:"dimension_id"`
	Mean         float64 `json:"mean"`
	Variance     float64 `json:"variance"`
	Count        int     `json:"count"`
}

// ClusterResult is the arithmetic mean over every cell in one cluster.
type ClusterResult struct {
	ClusterID string  `json:"cluster_id"`
	Mean      float64 `json:"mean"`
	Variance  float64 `json:"variance"`
	CellCount int     `json:"cell_count"`
}

// Report is the full three-level rollup plus the classified macro result
// (§4.11, "percentage-at-emission-only").
type Report struct {
	Cells           []CellResult    `json:"cells"`
	Clusters        []ClusterResult `json:"clusters"`
	MacroScore      float64         `json:"macro_score"`      // [0,1]
	MacroPercentage float64         `json:"macro_percentage"` // macro_score * 100, computed once here
	Band            string          `json:"band"`
}

// Build rolls micro answers up through cells and clusters to one macro
// score, classified with scoring. clusterOf maps policy_area_id to
// cluster_id (from the questionnaire's niveles_abstraccion.clusters).
func Build(answers []MicroAnswer, clusterOf map[string]string, scoring model.ScoringConfig) (Report, error) {
	cellAnswers := make(map[model.ChunkKey][]float64)
	for _, a := range answers {
		key := model.ChunkKey{PolicyAreaID: a.PolicyAreaID, DimensionID: a.DimensionID}
		cellAnswers[key] = append(cellAnswers[key], a.Score)
	}

	cells := make([]CellResult, 0, len(cellAnswers))
	cellsByCluster := make(map[string][]CellResult)
	for key, scores := range cellAnswers {
		mean, variance := meanAndVariance(scores)
		cell := CellResult{PolicyAreaID: key.PolicyAreaID, DimensionID: key.DimensionID, Mean: mean, Variance: variance, Count: len(scores)}
		cells = append(cells, cell)
		clusterID := clusterOf[key.PolicyAreaID]
		cellsByCluster[clusterID] = append(cellsByCluster[clusterID], cell)
	}

	seenCluster := make(map[string]bool)
	clusterIDs := make([]string, 0)
	for _, cluster := range clusterOf {
		if !seenCluster[cluster] {
			seenCluster[cluster] = true
			clusterIDs = append(clusterIDs, cluster)
		}
	}
	sort.Strings(clusterIDs)

	// Cluster score is the mean over every populated (PA,DIM) cell in the
	// cluster directly (§4.11: "cluster score = mean over its cells"), not a
	// nested mean-of-PA-means — the two coincide only when every PA in the
	// cluster has an equal count of populated cells, which partial task
	// failures (an explicitly in-scope scenario, §8) can break.
	clusters := make([]ClusterResult, 0, len(clusterIDs))
	for _, clusterID := range clusterIDs {
		cellsForCluster := cellsByCluster[clusterID]
		scores := make([]float64, 0, len(cellsForCluster))
		for _, c := range cellsForCluster {
			scores = append(scores, c.Mean)
		}
		if len(scores) == 0 {
			return Report{}, fmt.Errorf("aggregate: cluster %s has no scored cells", clusterID)
		}
		mean, variance := meanAndVariance(scores)
		clusters = append(clusters, ClusterResult{ClusterID: clusterID, Mean: mean, Variance: variance, CellCount: len(scores)})
	}

	if len(clusters) == 0 {
		return Report{}, fmt.Errorf("aggregate: no clusters to roll up")
	}
	macroScores := make([]float64, 0, len(clusters))
	for _, c := range clusters {
		macroScores = append(macroScores, c.Mean)
	}
	macro, _ := meanAndVariance(macroScores)

	return Report{
		Cells:           cells,
		Clusters:        clusters,
		MacroScore:      macro,
		MacroPercentage: macro * 100,
		Band:            scoring.Band(macro),
	}, nil
}

func meanAndVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sqDiff := 0.0
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	variance = sqDiff / float64(len(values))
	return mean, variance
}
