package aggregate

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRollsUpToMacro(t *testing.T) {
	answers := []MicroAnswer{
		{TaskID: "t1", PolicyAreaID: "PA01", DimensionID: "DIM01", Score: 0.8},
		{TaskID: "t2", PolicyAreaID: "PA01", DimensionID: "DIM01", Score: 0.6},
		{TaskID: "t3", PolicyAreaID: "PA02", DimensionID: "DIM01", Score: 1.0},
	}
	clusterOf := map[string]string{"PA01": "CL01", "PA02": "CL01"}

	report, err := Build(answers, clusterOf, model.DefaultScoringConfig())
	require.NoError(t, err)
	assert.Len(t, report.Cells, 2)
	assert.Len(t, report.Clusters, 1)
	assert.InDelta(t, 0.85, report.MacroScore, 1e-9) // mean(0.7, 1.0)
	assert.InDelta(t, 85.0, report.MacroPercentage, 1e-9)
	assert.Equal(t, "SATISFACTORIO", report.Band)
}

func TestBuildClassifiesDeficiente(t *testing.T) {
	answers := []MicroAnswer{{TaskID: "t1", PolicyAreaID: "PA01", DimensionID: "DIM01", Score: 0.4}}
	clusterOf := map[string]string{"PA01": "CL01"}

	report, err := Build(answers, clusterOf, model.DefaultScoringConfig())
	require.NoError(t, err)
	assert.Equal(t, "DEFICIENTE", report.Band)
}

// TestBuildClusterScoreIsMeanOverCellsNotOverPolicyAreaMeans covers §4.11's
// literal "cluster score = mean over its cells": when PAs within a cluster
// have unequal populated-cell counts (e.g. a partial task failure left one
// PA with only one scored dimension instead of several), the cluster score
// must be the direct mean over all populated cells, not a mean of per-PA
// means — the two diverge exactly in this case.
func TestBuildClusterScoreIsMeanOverCellsNotOverPolicyAreaMeans(t *testing.T) {
	answers := []MicroAnswer{
		// PA01 has two populated cells, both low.
		{TaskID: "t1", PolicyAreaID: "PA01", DimensionID: "DIM01", Score: 0.2},
		{TaskID: "t2", PolicyAreaID: "PA01", DimensionID: "DIM02", Score: 0.2},
		// PA02 has one populated cell, high (e.g. its other dimension's task failed).
		{TaskID: "t3", PolicyAreaID: "PA02", DimensionID: "DIM01", Score: 1.0},
	}
	clusterOf := map[string]string{"PA01": "CL01", "PA02": "CL01"}

	report, err := Build(answers, clusterOf, model.DefaultScoringConfig())
	require.NoError(t, err)
	require.Len(t, report.Clusters, 1)

	// Mean over cells directly: (0.2 + 0.2 + 1.0) / 3 = 0.4666...
	// A PA-mean-of-means would instead give mean(0.2, 1.0) = 0.6 — the two
	// must diverge here, proving the rollup is not silently doing the
	// nested computation.
	assert.InDelta(t, 1.4/3.0, report.Clusters[0].Mean, 1e-9)
	assert.NotInDelta(t, 0.6, report.Clusters[0].Mean, 1e-9)
}

func TestBuildErrorsOnClusterWithNoScoredAreas(t *testing.T) {
	answers := []MicroAnswer{{TaskID: "t1", PolicyAreaID: "PA01", DimensionID: "DIM01", Score: 0.5}}
	clusterOf := map[string]string{"PA99": "CL99"}

	_, err := Build(answers, clusterOf, model.DefaultScoringConfig())
	require.Error(t, err)
}
