package phases

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoutingReportFlagsUnmatchedCells(t *testing.T) {
	q := questionnaire.NewFixture()
	empty := make(model.ChunkMatrix)
	report := BuildRoutingReport(q, empty)
	assert.Len(t, report, len(q.MicroQuestions))
	for _, r := range report {
		assert.False(t, r.Matched)
		assert.Equal(t, "no chunk bound to this cell", r.Reason)
		assert.Nil(t, r.TargetChunk)
		assert.Nil(t, r.DocumentPosition)
		// expected_elements is never null, even on an unmatched row.
		assert.NotNil(t, r.ExpectedElements)
	}
}

func TestBuildRoutingReportMatchesWhenChunkPresent(t *testing.T) {
	q := questionnaire.NewFixture()
	matrix := make(model.ChunkMatrix)
	matrix[model.ChunkKey{PolicyAreaID: "PA01", DimensionID: "DIM01"}] = model.Chunk{
		ID: "CHK-1", PolicyAreaID: "PA01", DimensionID: "DIM01",
		Text:     "chunk body text",
		TextSpan: model.TextSpan{Start: 10, End: 35},
	}
	report := BuildRoutingReport(q, matrix)
	for _, r := range report {
		if r.PolicyAreaID == "PA01" && r.DimensionID == "DIM01" {
			assert.True(t, r.Matched)
			assert.Equal(t, "CHK-1", r.ChunkID)
			require.NotNil(t, r.TargetChunk)
			assert.Equal(t, "CHK-1", r.TargetChunk.ID)
			assert.Equal(t, "chunk body text", r.TextContent)
			require.NotNil(t, r.DocumentPosition)
			assert.Equal(t, model.TextSpan{Start: 10, End: 35}, *r.DocumentPosition)
			assert.NotNil(t, r.ExpectedElements)
		}
	}
}
