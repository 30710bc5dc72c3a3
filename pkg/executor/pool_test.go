package executor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/calibration"
	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/evidence"
	"github.com/codeready-toolchain/policyproof/pkg/methodapi"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/planner"
	"github.com/codeready-toolchain/policyproof/pkg/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixturePool(t *testing.T) (*Pool, []model.ExecutableTask) {
	t.Helper()
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	pl := planner.New(cat, signals, planner.NoopPatternFilter{}, q)
	plan, err := pl.Plan(q, planner.NewFixtureMatrix())
	require.NoError(t, err)

	classNames := make([]string, 0)
	seen := map[string]bool{}
	for d := 1; d <= model.NumDimensions; d++ {
		for qq := 1; qq <= model.QuestionsPerDimension; qq++ {
			name := fmt.Sprintf("D%dQ%d", d, qq)
			if !seen[name] {
				seen[name] = true
				classNames = append(classNames, name)
			}
		}
	}
	methods, err := methodapi.NewFixtureRegistry(classNames)
	require.NoError(t, err)

	orch := calibrationOrchestratorForAllClasses(classNames)
	ev := evidence.NewRegistry()
	pool := New(4, methods, cat, orch, ev)
	return pool, plan.Tasks
}

func calibrationOrchestratorForAllClasses(classNames []string) *calibration.Orchestrator {
	intrinsic := calibration.IntrinsicTable{}
	compat := calibration.CompatibilityTable{}
	for _, class := range classNames {
		for _, method := range []string{"extract", "score"} {
			key := class + "." + method
			intrinsic[key] = model.IntrinsicCalibration{
				MethodID:       key,
				Status:         model.StatusCalibrated,
				BTheory:        0.9,
				BImpl:          0.9,
				BDeploy:        0.9,
				RequiredLayers: []model.LayerID{model.LayerIntrinsic, model.LayerUnit, model.LayerChain},
				Role:           model.RoleExecutor,
			}
		}
	}
	return calibration.NewOrchestrator(intrinsic, compat, calibration.SignatureTable{}, calibration.DefaultCapacity(), model.DefaultThresholds())
}

func TestPoolRunAllTasksSucceed(t *testing.T) {
	pool, tasks := buildFixturePool(t)
	results, err := pool.Run(context.Background(), tasks[:10])
	require.NoError(t, err)
	assert.Len(t, results, 10)
	for _, r := range results {
		assert.True(t, r.Success, r.Error)
		assert.NotEmpty(t, r.Evidence)
	}
}

// TestPoolFiltersUnrecognizedKwargs covers §4.8's C7 responsibility: a task's
// signal env carries more keys (budget_entity, besides chunk_text) than the
// fixture "extract" method declares
// (InputSchema: []string{"chunk_text"}), so the pool must reject the extras
// loudly via SilentDropsPrevented rather than forwarding them unseen.
func TestPoolFiltersUnrecognizedKwargs(t *testing.T) {
	pool, tasks := buildFixturePool(t)
	_, err := pool.Run(context.Background(), tasks[:5])
	require.NoError(t, err)
	assert.Positive(t, pool.SilentDropsPrevented())
}

func TestFilterRecognizedKwargsDropsUnknownKeys(t *testing.T) {
	entry := catalog.MethodEntry{ClassName: "D1Q1", MethodName: "extract", InputSchema: []string{"chunk_text"}}
	env := map[string]any{"chunk_text": "x", "budget_entity": 1.0, "geo_facets": nil}

	filtered, dropped := filterRecognizedKwargs(entry, env)
	assert.Equal(t, map[string]any{"chunk_text": "x"}, filtered)
	assert.ElementsMatch(t, []string{"budget_entity", "geo_facets"}, dropped)
}

func TestFilterRecognizedKwargsPassesEverythingWhenSchemaUndeclared(t *testing.T) {
	entry := catalog.MethodEntry{ClassName: "D1Q1", MethodName: "extract"}
	env := map[string]any{"chunk_text": "x"}

	filtered, dropped := filterRecognizedKwargs(entry, env)
	assert.Equal(t, env, filtered)
	assert.Empty(t, dropped)
}

// TestPoolRunIsIdempotentAcrossReRuns covers spec.md §8's idempotence
// property: running the same tasks through a fresh pool/registry twice must
// produce identical per-record digests and head hashes, since record_id
// excludes the wall-clock started_at/duration_ms fields (model.EvidenceRecord
// HashableView).
func TestPoolRunIsIdempotentAcrossReRuns(t *testing.T) {
	pool1, tasks := buildFixturePool(t)
	results1, err := pool1.Run(context.Background(), tasks[:10])
	require.NoError(t, err)

	pool2, _ := buildFixturePool(t)
	results2, err := pool2.Run(context.Background(), tasks[:10])
	require.NoError(t, err)

	require.Equal(t, len(results1), len(results2))
	for i := range results1 {
		require.Equal(t, len(results1[i].Evidence), len(results2[i].Evidence), "task %s", results1[i].TaskID)
		for j := range results1[i].Evidence {
			a, b := results1[i].Evidence[j], results2[i].Evidence[j]
			assert.Equal(t, a.RecordID, b.RecordID, "record_id mismatch for task %s attempt %d", a.TaskID, a.Attempt)
			assert.Equal(t, a.HeadHash, b.HeadHash, "head_hash mismatch for task %s attempt %d", a.TaskID, a.Attempt)
			assert.NotEqual(t, a.StartedAt, time.Time{})
		}
	}
}

// TestRunTaskHonorsAbortBetweenMethods covers §5's cancellation requirement
// that the abort checkpoint is reachable between methods within a task's own
// sequence, not only between tasks: once the pool is aborted, a task's
// sequence must stop at the next method boundary instead of running to
// completion.
func TestRunTaskHonorsAbortBetweenMethods(t *testing.T) {
	pool, tasks := buildFixturePool(t)
	pool.abort(fmt.Errorf("externally triggered abort"))

	res := pool.runTask(context.Background(), tasks[0])
	assert.False(t, res.Success)
	assert.Equal(t, "aborted", res.Error)
	assert.Empty(t, res.Evidence)
}

func TestPoolRunAbortsOnUnknownMethod(t *testing.T) {
	pool, tasks := buildFixturePool(t)
	// Strip the registry down so every task fails to find an implementation.
	pool.Methods = methodapi.NewRegistry()
	results, err := pool.Run(context.Background(), tasks[:5])
	require.Error(t, err)
	for _, r := range results {
		assert.False(t, r.Success)
	}
}
