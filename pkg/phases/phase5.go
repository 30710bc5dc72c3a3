package phases

import (
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// RegisterSignalSources runs Phase 5's registration step (§4.7): every
// routed chunk's raw facets/budget/text become that chunk's signal source
// before any task asks the registry to resolve a requirement.
func RegisterSignalSources(matrix model.ChunkMatrix, registry *catalog.SignalRegistry) {
	for _, chunk := range matrix {
		registry.Register(chunk.ID, chunkSignalSource(chunk))
	}
}

func chunkSignalSource(chunk model.Chunk) map[string]any {
	src := map[string]any{
		"chunk_text":    chunk.Text,
		"policy_facets": chunk.PolicyFacets,
		"time_facets":   chunk.TimeFacets,
		"geo_facets":    chunk.GeoFacets,
	}
	if chunk.Budget != nil {
		src["budget_entity"] = *chunk.Budget
	}
	return src
}
