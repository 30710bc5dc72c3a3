package calibration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadIntrinsicIndexesByMethodID(t *testing.T) {
	path := writeTemp(t, "intrinsic.json", `[
		{"method_id": "D1Q1.score", "status": "calibrated", "b_theory": 0.9, "b_impl": 0.8, "b_deploy": 0.7, "role": "executor"}
	]`)
	table, err := LoadIntrinsic(path)
	require.NoError(t, err)
	rec, err := table.Get("D1Q1.score")
	require.NoError(t, err)
	assert.Equal(t, "calibrated", string(rec.Status))
}

func TestLoadIntrinsicRejectsUnknownMethod(t *testing.T) {
	path := writeTemp(t, "intrinsic.json", `[]`)
	table, err := LoadIntrinsic(path)
	require.NoError(t, err)
	_, err = table.Get("nope")
	require.Error(t, err)
}

func TestLoadCompatibilityLookup(t *testing.T) {
	path := writeTemp(t, "compat.json", `{
		"D1Q1.score": {"Q": {"fiscal": 0.9}}
	}`)
	table, err := LoadCompatibility(path)
	require.NoError(t, err)
	v, ok := table.Lookup("D1Q1.score", "Q", "fiscal")
	require.True(t, ok)
	assert.Equal(t, 0.9, v)

	_, ok = table.Lookup("D1Q1.score", "Q", "unknown")
	assert.False(t, ok)
}

func TestLoadSignatures(t *testing.T) {
	path := writeTemp(t, "sigs.json", `[
		{"method_id": "D1Q1.extract", "inputs": ["chunk_text"], "outputs": ["matches"]}
	]`)
	table, err := LoadSignatures(path)
	require.NoError(t, err)
	assert.Contains(t, table, "D1Q1.extract")
}

func TestLoadCapacityHashesDeterministically(t *testing.T) {
	path := writeTemp(t, "capacity.json", `{
		"singleton": {"B": 0.5, "Chain": 0.5},
		"pairwise": []
	}`)
	cap1, err := LoadCapacity(path)
	require.NoError(t, err)
	cap2, err := LoadCapacity(path)
	require.NoError(t, err)
	assert.Equal(t, cap1.Hash, cap2.Hash)
	assert.Len(t, cap1.Hash, 64)
}
