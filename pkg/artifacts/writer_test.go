package artifacts

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONRoundTrips(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	hash, err := w.WriteJSON("phase_manifest.json", map[string]string{"hello": "world"})
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}

func TestWriteAndReadProof(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	p := model.ExecutionProof{RunID: "run-1", ProofHash: "deadbeef"}
	require.NoError(t, w.WriteProof(p))

	got, err := ReadProof(w.Dir)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "deadbeef", got.ProofHash)
}

func TestWriteEvidenceBuildsManifest(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	manifest, err := w.WriteEvidence([]model.EvidenceRecord{
		{RecordID: "rec-1", TaskID: "task-1", Success: true},
		{RecordID: "rec-2", TaskID: "task-1", Success: true},
	})
	require.NoError(t, err)
	assert.Len(t, manifest, 2)
}
