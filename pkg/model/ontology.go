// Package model contains the immutable data types of the execution kernel:
// the canonical questionnaire, the canon policy package, executable tasks,
// calibration artifacts, evidence records, and the execution proof (§3).
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// NumPolicyAreas is the number of policy areas (PA01..PA10).
	NumPolicyAreas = 10
	// NumDimensions is the number of dimensions (DIM01..DIM06).
	NumDimensions = 6
	// NumClusters is the number of clusters partitioning the policy areas.
	NumClusters = 4
	// QuestionsPerDimension is the number of micro-questions per (PA,DIM) cell.
	QuestionsPerDimension = 5
	// TotalChunks is the number of cells in the policy-area x dimension matrix.
	TotalChunks = NumPolicyAreas * NumDimensions
	// TotalQuestions is the total number of micro-questions in the questionnaire.
	TotalQuestions = TotalChunks * QuestionsPerDimension
)

var (
	dimAliasPattern = regexp.MustCompile(`^D(\d+)$`)
	dimCanonPattern = regexp.MustCompile(`^DIM(\d{2})$`)
	paCanonPattern  = regexp.MustCompile(`^PA(\d{2})$`)
)

// NormalizeDimensionID converts "D1".."D6" aliases to canonical "DIM01".."DIM06".
// Already-canonical ids pass through unchanged. Anything else is returned
// unchanged so the caller can produce a descriptive routing error.
func NormalizeDimensionID(raw string) string {
	raw = strings.TrimSpace(raw)
	if dimCanonPattern.MatchString(raw) {
		return raw
	}
	if m := dimAliasPattern.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return fmt.Sprintf("DIM%02d", n)
		}
	}
	return raw
}

// IsValidPolicyAreaID reports whether id matches PA01..PA10.
func IsValidPolicyAreaID(id string) bool {
	m := paCanonPattern.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n >= 1 && n <= NumPolicyAreas
}

// IsValidDimensionID reports whether id (already normalized) matches DIM01..DIM06.
func IsValidDimensionID(id string) bool {
	m := dimCanonPattern.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n >= 1 && n <= NumDimensions
}

// ChunkKey identifies a cell in the 60-entry policy-area x dimension matrix.
type ChunkKey struct {
	PolicyAreaID string
	DimensionID  string
}

// String renders the key as "PA01/DIM02" for error messages and map keys.
func (k ChunkKey) String() string {
	return k.PolicyAreaID + "/" + k.DimensionID
}

// BaseSlot returns the "D{d}-Q{q}" label for a (dimension, question_in_dim) pair.
func BaseSlot(dimensionOrdinal, questionInDim int) string {
	return fmt.Sprintf("D%d-Q%d", dimensionOrdinal, questionInDim)
}

// Cluster partitions the ten policy areas into four hermetic groups.
type Cluster struct {
	ClusterID     string   `json:"cluster_id"`
	PolicyAreaIDs []string `json:"policy_area_ids"`
}
