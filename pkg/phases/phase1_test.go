package phases

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/docparser"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCanonPolicyPackageProducesAllChunks(t *testing.T) {
	parser := docparser.NewFixtureParser()
	doc, err := parser.Parse(context.Background(), "fixture.pdf")
	require.NoError(t, err)

	cpp, err := BuildCanonPolicyPackage(doc, nil)
	require.NoError(t, err)
	assert.Len(t, cpp.Chunks, model.TotalChunks)
	assert.Len(t, cpp.Integrity.ChunkHashes, model.TotalChunks)
	assert.NotEmpty(t, cpp.Integrity.RootHash)
}

func TestBuildCanonPolicyPackageChunkKeysAreUnique(t *testing.T) {
	parser := docparser.NewFixtureParser()
	doc, err := parser.Parse(context.Background(), "fixture.pdf")
	require.NoError(t, err)

	cpp, err := BuildCanonPolicyPackage(doc, nil)
	require.NoError(t, err)
	seen := map[model.ChunkKey]bool{}
	for _, c := range cpp.Chunks {
		key := c.Key()
		assert.False(t, seen[key], "duplicate chunk key %v", key)
		seen[key] = true
	}
}

func TestAdaptPreservesChunkCount(t *testing.T) {
	parser := docparser.NewFixtureParser()
	doc, err := parser.Parse(context.Background(), "fixture.pdf")
	require.NoError(t, err)
	cpp, err := BuildCanonPolicyPackage(doc, nil)
	require.NoError(t, err)

	pre := Adapt("doc-1", cpp)
	assert.Len(t, pre.Sentences, model.TotalChunks)
	assert.Len(t, pre.Tables, model.TotalChunks)
	assert.Len(t, pre.Matrix, model.TotalChunks)
}
