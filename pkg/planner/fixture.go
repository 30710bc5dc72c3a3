package planner

import (
	"fmt"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// NewFixtureMatrix builds a 60-cell chunk matrix whose (policy_area_id,
// dimension_id) keys match questionnaire.NewFixture, each chunk carrying a
// non-nil budget so the fixture questionnaire's budget_entity signal
// requirement resolves.
func NewFixtureMatrix() model.ChunkMatrix {
	matrix := make(model.ChunkMatrix, model.TotalChunks)
	for paN := 1; paN <= model.NumPolicyAreas; paN++ {
		pa := fmt.Sprintf("PA%02d", paN)
		for d := 1; d <= model.NumDimensions; d++ {
			dim := fmt.Sprintf("DIM%02d", d)
			budget := float64(paN * d * 1000)
			text := fmt.Sprintf("chunk text for %s/%s", pa, dim)
			hash, _ := hashing.H(text)
			chunk := model.Chunk{
				ID:           fmt.Sprintf("CHK-%s-%s", pa, dim),
				PolicyAreaID: pa,
				DimensionID:  dim,
				BytesHash:    hash,
				Text:         text,
				Resolution:   model.ResolutionMeso,
				Budget:       &budget,
				Confidence:   0.9,
			}
			matrix[chunk.Key()] = chunk
		}
	}
	return matrix
}
