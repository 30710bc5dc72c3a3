package planner

import (
	"fmt"
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
	"github.com/codeready-toolchain/policyproof/pkg/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBuildsExactlyThreeHundredTasks(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	plan, err := p.Plan(q, NewFixtureMatrix())
	require.NoError(t, err)
	assert.Len(t, plan.Tasks, model.TotalQuestions)
	assert.Equal(t, SynchronizerVersion, plan.SynchronizerVersion)
}

func TestPlanEveryChunkReferencedFiveTimes(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	plan, err := p.Plan(q, NewFixtureMatrix())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, task := range plan.Tasks {
		counts[task.ChunkID]++
	}
	assert.Len(t, counts, model.TotalChunks)
	for _, n := range counts {
		assert.Equal(t, model.QuestionsPerDimension, n)
	}
}

func TestPlanTaskIDFormat(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	plan, err := p.Plan(q, NewFixtureMatrix())
	require.NoError(t, err)
	first := plan.Tasks[0]
	assert.Equal(t, "MQC-001_PA01", first.TaskID)
}

func TestPlanMissingChunkIsRoutingError(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	matrix := NewFixtureMatrix()
	delete(matrix, model.ChunkKey{PolicyAreaID: "PA01", DimensionID: "DIM01"})

	_, err := p.Plan(q, matrix)
	var routingErr *perrors.RoutingError
	require.ErrorAs(t, err, &routingErr)
}

func TestPlanMissingSignalFailsResolution(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	matrix := NewFixtureMatrix()
	noBudget := matrix[model.ChunkKey{PolicyAreaID: "PA01", DimensionID: "DIM01"}]
	noBudget.Budget = nil
	matrix[noBudget.Key()] = noBudget

	_, err := p.Plan(q, matrix)
	var missing *perrors.SignalMissingError
	require.ErrorAs(t, err, &missing)
}

// fixedPatternFilter returns the same candidate bag for every chunk,
// regardless of which policy area the chunk belongs to — simulating a
// pattern library match drawn from more than one policy area's patterns.
type fixedPatternFilter struct{ patterns []model.Pattern }

func (f fixedPatternFilter) Candidates(string) []model.Pattern { return f.patterns }

// TestPlanFiltersCrossContaminatedPatternsByPolicyArea exercises the
// cross-contamination guard directly (§4.5/§4.6 step 3, testable scenario 3):
// a chunk's candidate patterns carry {PA01x3, PA02x3, PA05x3}; after
// filtering by the question's own policy area, only the matching 3 remain
// and the rest are counted, not silently dropped.
func TestPlanFiltersCrossContaminatedPatternsByPolicyArea(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()

	var candidates []model.Pattern
	for _, pa := range []string{"PA01", "PA02", "PA05"} {
		for i := 0; i < 3; i++ {
			candidates = append(candidates, model.Pattern{
				ID:           fmt.Sprintf("%s-PAT-%d", pa, i),
				PolicyAreaID: pa,
			})
		}
	}
	p := New(cat, signals, fixedPatternFilter{patterns: candidates}, q)

	plan, err := p.Plan(q, NewFixtureMatrix())
	require.NoError(t, err)

	for _, task := range plan.Tasks {
		if task.PolicyAreaID != "PA05" {
			continue
		}
		assert.Len(t, task.Patterns, 3, "task %s should keep only its own policy area's patterns", task.TaskID)
		for _, pat := range task.Patterns {
			assert.Equal(t, "PA05", pat.PolicyAreaID)
		}
		assert.Equal(t, 6, task.Metadata.PatternsFiltered, "task %s should count the 6 cross-contaminated patterns dropped", task.TaskID)
	}
}

// TestPlanRejectsPatternMissingPolicyAreaID covers the data-error path: a
// candidate pattern with no policy_area_id is a pattern-library error named
// by question_id and index, not a silent drop.
func TestPlanRejectsPatternMissingPolicyAreaID(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, fixedPatternFilter{patterns: []model.Pattern{{ID: "bad-pattern"}}}, q)

	_, err := p.Plan(q, NewFixtureMatrix())
	require.Error(t, err)
	require.ErrorIs(t, err, perrors.ErrPlannerValidation)
	assert.Contains(t, err.Error(), "missing policy_area_id")
}

// TestPlanPopulatesMicroQuestionContext covers the supplemented
// MicroQuestionContext summary carried on every task's metadata.
func TestPlanPopulatesMicroQuestionContext(t *testing.T) {
	q := questionnaire.NewFixture()
	cat := catalog.NewFixture()
	signals := catalog.NewSignalRegistry()
	p := New(cat, signals, NoopPatternFilter{}, q)

	plan, err := p.Plan(q, NewFixtureMatrix())
	require.NoError(t, err)

	first := plan.Tasks[0]
	assert.NotEmpty(t, first.Metadata.Context.PolicyAreaLabel)
	assert.NotEmpty(t, first.Metadata.Context.DimensionLabel)
	assert.Equal(t, first.Metadata.ClusterID, first.Metadata.Context.ClusterID)
}

// TestValidatePlanCardinalityDeviationDefaultsToWarning covers §4.5's
// documented default: a chunk/policy-area reference-count deviation from
// the expected 5-per-chunk/30-per-PA does not fail the plan unless
// strictCardinality is set.
func TestValidatePlanCardinalityDeviationDefaultsToWarning(t *testing.T) {
	tasks := deviatedCardinalityTasks()

	err := validatePlan(tasks, false)
	assert.NoError(t, err)
}

// TestValidatePlanCardinalityDeviationEscalatesWhenStrict covers the
// configuration knob §4.5 says must exist to escalate those deviations to
// hard errors.
func TestValidatePlanCardinalityDeviationEscalatesWhenStrict(t *testing.T) {
	tasks := deviatedCardinalityTasks()

	err := validatePlan(tasks, true)
	require.Error(t, err)
	require.ErrorIs(t, err, perrors.ErrPlannerValidation)
}

// deviatedCardinalityTasks builds model.TotalQuestions tasks with unique
// task ids but chunk-001's references moved onto chunk-000 (ten references,
// chunk-001 none), so the chunk cardinality check sees a deviation while
// every policy area keeps its 30, without tripping the total-count or
// duplicate-id invariants.
func deviatedCardinalityTasks() []model.ExecutableTask {
	tasks := make([]model.ExecutableTask, 0, model.TotalQuestions)
	for i := 0; i < model.TotalQuestions; i++ {
		chunkID := fmt.Sprintf("chunk-%03d", i/model.QuestionsPerDimension)
		if i/model.QuestionsPerDimension == 1 {
			// Shift every task in the second chunk group onto the first
			// chunk's id, so chunk-000 ends up over-referenced and
			// chunk-001 ends up under-referenced.
			chunkID = "chunk-000"
		}
		paID := fmt.Sprintf("PA%02d", (i/model.QuestionsPerDimension)%model.NumPolicyAreas+1)
		tasks = append(tasks, model.ExecutableTask{
			TaskID:       fmt.Sprintf("MQC-%03d_%s", i+1, paID),
			QuestionID:   fmt.Sprintf("Q%03d", i+1),
			PolicyAreaID: paID,
			ChunkID:      chunkID,
		})
	}
	return tasks
}
