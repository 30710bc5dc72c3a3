package evidence

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChainsHeadHash(t *testing.T) {
	reg := NewRegistry()
	rec1, err := reg.Append("task-1", model.EvidenceRecord{ClassName: "D1Q1", MethodName: "extract", Success: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", rec1.PrevHeadHash)
	assert.Len(t, rec1.HeadHash, 64)

	rec2, err := reg.Append("task-1", model.EvidenceRecord{ClassName: "D1Q1", MethodName: "score", Success: true}, []string{rec1.RecordID})
	require.NoError(t, err)
	assert.Equal(t, rec1.HeadHash, rec2.PrevHeadHash)
	assert.NotEqual(t, rec1.HeadHash, rec2.HeadHash)

	assert.Equal(t, rec2.HeadHash, reg.Head("task-1"))
	assert.Len(t, reg.Records(), 2)
}

func TestAppendDifferentTasksIndependentChains(t *testing.T) {
	reg := NewRegistry()
	recA, err := reg.Append("task-A", model.EvidenceRecord{Success: true}, nil)
	require.NoError(t, err)
	recB, err := reg.Append("task-B", model.EvidenceRecord{Success: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", recA.PrevHeadHash)
	assert.Equal(t, "", recB.PrevHeadHash)
	assert.NotEqual(t, recA.RecordID, recB.RecordID)
}

func TestWouldCycleDetectsIndirectCycle(t *testing.T) {
	reg := NewRegistry()
	reg.consumes["A"] = []string{"B"}
	reg.consumes["B"] = []string{"C"}
	err := reg.wouldCycle("A", "C")
	require.Error(t, err)
}
