package methodapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInvocationServerDispatchesByClassAndMethod(t *testing.T) {
	reg, err := NewFixtureRegistry([]string{"D1Q1"})
	require.NoError(t, err)
	srv := &InvocationServer{Registry: reg}

	req, err := ToEnvelope(map[string]any{"class_name": "D1Q1", "method_name": "extract", "chunk_text": "abc"})
	require.NoError(t, err)

	resp, err := srv.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, true, FromEnvelope(resp)["matches"])
}

func TestInvocationServerUnknownMethodReturnsNotFound(t *testing.T) {
	srv := &InvocationServer{Registry: NewRegistry()}
	req, err := ToEnvelope(map[string]any{"class_name": "Nope", "method_name": "extract"})
	require.NoError(t, err)

	_, err = srv.Invoke(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
