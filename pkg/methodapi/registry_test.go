package methodapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoundTrip(t *testing.T) {
	reg, err := NewFixtureRegistry([]string{"D1Q1"})
	require.NoError(t, err)

	extract, ok := reg.Lookup("D1Q1", "extract")
	require.True(t, ok)

	in, err := ToEnvelope(map[string]any{"chunk_text": "hello"})
	require.NoError(t, err)
	out, err := extract.Invoke(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, true, FromEnvelope(out)["matches"])
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("D1Q1", "extract", MethodFunc(extractFixture)))
	err := reg.Register("D1Q1", "extract", MethodFunc(extractFixture))
	require.Error(t, err)
}

func TestRegistryLookupMiss(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("nope", "nope")
	assert.False(t, ok)
}
