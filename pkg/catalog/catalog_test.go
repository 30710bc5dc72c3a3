package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureCatalogHasThirtyClasses(t *testing.T) {
	cat := NewFixture()
	classes := map[string]bool{}
	for key := range cat.entries {
		cat.byClass[cat.entries[key].ClassName] = cat.byClass[cat.entries[key].ClassName]
		classes[cat.entries[key].ClassName] = true
	}
	assert.Len(t, classes, 30)
	assert.Len(t, cat.Hash, 64)
}

func TestMethodSequenceIsExtractThenScore(t *testing.T) {
	cat := NewFixture()
	seq := cat.MethodSequence("D1Q1")
	require.Len(t, seq, 2)
	assert.Equal(t, "D1Q1.extract", seq[0])
	assert.Equal(t, "D1Q1.score", seq[1])
}

func TestDuplicateMethodKeyRejected(t *testing.T) {
	_, err := NewFromEntries([]MethodEntry{
		{ClassName: "D1Q1", MethodName: "extract"},
		{ClassName: "D1Q1", MethodName: "extract"},
	})
	require.Error(t, err)
}

func TestSignalRegistryAllOrNothing(t *testing.T) {
	reg := NewSignalRegistry()
	reg.Register("chunk-1", map[string]any{"budget_entity": 42})

	vals, err := reg.Resolve("chunk-1", "MQ-001", []string{"budget_entity"})
	require.NoError(t, err)
	assert.Equal(t, []any{42}, vals)

	_, err = reg.Resolve("chunk-1", "MQ-001", []string{"budget_entity", "missing_signal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_signal")
	assert.Contains(t, err.Error(), "MQ-001")
}

func TestSignalRegistryEmptyRequirements(t *testing.T) {
	reg := NewSignalRegistry()
	vals, err := reg.Resolve("chunk-1", "MQ-001", nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestSignalRegistryStructAttributeAccess(t *testing.T) {
	type signals struct {
		BudgetEntity int
	}
	reg := NewSignalRegistry()
	reg.Register("chunk-2", signals{BudgetEntity: 7})

	vals, err := reg.Resolve("chunk-2", "MQ-002", []string{"BudgetEntity"})
	require.NoError(t, err)
	assert.Equal(t, []any{7}, vals)
}
