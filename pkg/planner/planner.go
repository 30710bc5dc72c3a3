// Package planner implements the task planner (C6, §3.5, §4.6): it binds
// every micro-question to its routed chunk, resolves signals eagerly, and
// materializes the immutable set of 300 executable tasks — the "irrigation
// synchronizer" that waters every (policy area, dimension) cell exactly once
// per question.
package planner

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/catalog"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// SynchronizerVersion is stamped onto every task and the plan itself, so a
// proof names exactly which planning logic produced its tasks.
const SynchronizerVersion = "irrigation-sync-1"

// PatternFilter sources the raw, unfiltered candidate patterns matched
// against a chunk's text — a shared regex term can draw matches tagged to
// more than one policy area, which is exactly the cross-contamination risk
// the planner itself (not this collaborator) must filter out in
// filterPatternsByPolicyArea. Pattern library contents are out of scope
// (§1); only this sourcing contract is modeled.
type PatternFilter interface {
	Candidates(chunkID string) []model.Pattern
}

// NoopPatternFilter is the production default when no pattern library is
// wired in: pattern library contents are out of scope (§1), so this source
// always returns none.
type NoopPatternFilter struct{}

// Candidates implements PatternFilter.
func (NoopPatternFilter) Candidates(string) []model.Pattern { return nil }

// filterPatternsByPolicyArea narrows an unfiltered candidate pattern bag
// down to the ones that actually belong to policyAreaID (§4.5/§4.6 step 3,
// testable scenario 3). Every candidate must carry a non-empty
// PolicyAreaID — one that doesn't is a pattern-library data error, named by
// question_id and index, not a silent drop. Cross-policy-area candidates
// are counted, not silently discarded; if every candidate is dropped this
// way the question still proceeds, with a logged warning.
func filterPatternsByPolicyArea(questionID, policyAreaID string, candidates []model.Pattern) ([]model.Pattern, int, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}
	filtered := make([]model.Pattern, 0, len(candidates))
	dropped := 0
	for i, pat := range candidates {
		if pat.PolicyAreaID == "" {
			return nil, 0, fmt.Errorf("planner: question %s pattern[%d] missing policy_area_id: %w", questionID, i, perrors.ErrPlannerValidation)
		}
		if pat.PolicyAreaID == policyAreaID {
			filtered = append(filtered, pat)
		} else {
			dropped++
		}
	}
	if len(filtered) == 0 {
		slog.Warn("zero patterns matched policy area after filtering",
			"question_id", questionID, "policy_area_id", policyAreaID, "candidates", len(candidates))
	}
	return filtered, dropped, nil
}

// Planner builds a TaskPlan from a canonical questionnaire and a routed
// chunk matrix.
type Planner struct {
	Catalog         *catalog.Catalog
	Signals         *catalog.SignalRegistry
	Patterns        PatternFilter
	ClusterOf       map[string]string // policy_area_id -> cluster_id
	PolicyAreaLabel map[string]string // policy_area_id -> label
	DimensionLabel  map[string]string // dimension_id -> label

	// StrictCardinality escalates §4.6 step 6's cardinality deviations
	// (a chunk not referenced exactly QuestionsPerDimension times, or a
	// policy area not referenced exactly NumDimensions*QuestionsPerDimension
	// times) from a logged warning to a hard planner error. Defaults false,
	// matching §4.5's documented default behavior; set true via
	// config.Config.StrictCardinality for deployments that want those
	// deviations to fail the run.
	StrictCardinality bool
}

// New builds a Planner with StrictCardinality defaulted to false. Use
// NewWithOptions to set it explicitly.
func New(cat *catalog.Catalog, signals *catalog.SignalRegistry, patterns PatternFilter, q *model.Questionnaire) *Planner {
	clusterOf := make(map[string]string)
	for _, cl := range q.Niveles.Clusters {
		for _, pa := range cl.PolicyAreaIDs {
			clusterOf[pa] = cl.ClusterID
		}
	}
	paLabel := make(map[string]string, len(q.Niveles.PolicyAreas))
	for _, pa := range q.Niveles.PolicyAreas {
		paLabel[pa.PolicyAreaID] = pa.Label
	}
	dimLabel := make(map[string]string, len(q.Niveles.Dimensions))
	for _, d := range q.Niveles.Dimensions {
		dimLabel[d.DimensionID] = d.Label
	}
	return &Planner{Catalog: cat, Signals: signals, Patterns: patterns, ClusterOf: clusterOf, PolicyAreaLabel: paLabel, DimensionLabel: dimLabel}
}

// NewWithOptions builds a Planner with an explicit StrictCardinality
// setting (config.Config.StrictCardinality).
func NewWithOptions(cat *catalog.Catalog, signals *catalog.SignalRegistry, patterns PatternFilter, q *model.Questionnaire, strictCardinality bool) *Planner {
	p := New(cat, signals, patterns, q)
	p.StrictCardinality = strictCardinality
	return p
}

// Plan materializes the full TaskPlan. It fails fast on the first routing,
// schema, or signal-resolution error, and performs cross-task validation
// only after every task has been built (§4.6 step 6).
func (p *Planner) Plan(q *model.Questionnaire, matrix model.ChunkMatrix) (*model.TaskPlan, error) {
	tasks := make([]model.ExecutableTask, 0, len(q.MicroQuestions))
	now := time.Now().UTC()

	for _, mq := range q.MicroQuestions {
		dimID := model.NormalizeDimensionID(mq.DimensionID)
		if !model.IsValidDimensionID(dimID) || !model.IsValidPolicyAreaID(mq.PolicyAreaID) {
			return nil, &perrors.RoutingError{QuestionID: mq.QuestionID, PolicyArea: mq.PolicyAreaID, Dimension: mq.DimensionID, Reason: "invalid policy area or dimension id"}
		}

		chunk, ok := matrix[model.ChunkKey{PolicyAreaID: mq.PolicyAreaID, DimensionID: dimID}]
		if !ok {
			return nil, &perrors.RoutingError{QuestionID: mq.QuestionID, PolicyArea: mq.PolicyAreaID, Dimension: dimID, Reason: "no chunk bound to this cell"}
		}
		if chunk.PolicyAreaID != mq.PolicyAreaID || chunk.DimensionID != dimID {
			return nil, &perrors.RoutingError{QuestionID: mq.QuestionID, PolicyArea: mq.PolicyAreaID, Dimension: dimID, Reason: "chunk routing key mismatch"}
		}

		for _, ref := range mq.MethodSequence {
			if _, ok := p.Catalog.Get(ref.ClassName, ref.MethodName); !ok {
				return nil, fmt.Errorf("planner: question %s references unknown method %s: %w", mq.QuestionID, ref.Key(), perrors.ErrPlannerValidation)
			}
		}

		p.Signals.Register(chunk.ID, signalSource(chunk))
		values, err := p.Signals.Resolve(chunk.ID, mq.QuestionID, mq.SignalRequirements)
		if err != nil {
			return nil, err
		}
		signals := make(map[string]any, len(mq.SignalRequirements))
		for i, req := range mq.SignalRequirements {
			signals[req] = values[i]
		}

		var candidates []model.Pattern
		if p.Patterns != nil {
			candidates = p.Patterns.Candidates(chunk.ID)
		}
		patterns, patternsFiltered, err := filterPatternsByPolicyArea(mq.QuestionID, mq.PolicyAreaID, candidates)
		if err != nil {
			return nil, err
		}

		taskID := fmt.Sprintf("MQC-%03d_%s", mq.QuestionGlobal, mq.PolicyAreaID)
		tasks = append(tasks, model.ExecutableTask{
			TaskID:              taskID,
			QuestionID:          mq.QuestionID,
			QuestionGlobal:      mq.QuestionGlobal,
			PolicyAreaID:        mq.PolicyAreaID,
			DimensionID:         dimID,
			ChunkID:             chunk.ID,
			Patterns:            patterns,
			Signals:             signals,
			ExpectedElements:    mq.ExpectedElements,
			CreationTimestamp:   now,
			SynchronizerVersion: SynchronizerVersion,
			Metadata: model.TaskMetadata{
				BaseSlot:         mq.BaseSlot,
				ClusterID:        p.ClusterOf[mq.PolicyAreaID],
				PatternsFiltered: patternsFiltered,
				Context: model.MicroQuestionContext{
					PolicyAreaLabel: p.PolicyAreaLabel[mq.PolicyAreaID],
					DimensionLabel:  p.DimensionLabel[dimID],
					ClusterID:       p.ClusterOf[mq.PolicyAreaID],
				},
			},
		})
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].QuestionGlobal < tasks[j].QuestionGlobal })

	if err := validatePlan(tasks, p.StrictCardinality); err != nil {
		return nil, err
	}

	return &model.TaskPlan{Tasks: tasks, SynchronizerVersion: SynchronizerVersion, CreatedAt: now}, nil
}

// validatePlan enforces the plan-wide invariants (§4.6 step 6): exactly
// TotalQuestions tasks and no duplicate task ids are always hard errors.
// Per-chunk/per-policy-area cardinality deviations (a chunk not referenced
// exactly QuestionsPerDimension times, a PA not referenced exactly
// NumDimensions*QuestionsPerDimension times) are logged as warnings by
// default per §4.5's documented default ("deviations are warnings...
// depending on configuration"); strictCardinality escalates them to hard
// errors instead.
func validatePlan(tasks []model.ExecutableTask, strictCardinality bool) error {
	if len(tasks) != model.TotalQuestions {
		return fmt.Errorf("planner: expected %d tasks, built %d: %w", model.TotalQuestions, len(tasks), perrors.ErrPlannerValidation)
	}

	seenIDs := make(map[string]bool, len(tasks))
	chunkCounts := make(map[string]int)
	paCounts := make(map[string]int)
	for _, t := range tasks {
		if seenIDs[t.TaskID] {
			return &perrors.RoutingError{QuestionID: t.QuestionID, Reason: fmt.Sprintf("duplicate task id %s", t.TaskID)}
		}
		seenIDs[t.TaskID] = true
		chunkCounts[t.ChunkID]++
		paCounts[t.PolicyAreaID]++
	}

	chunkIDs := make([]string, 0, len(chunkCounts))
	for chunkID := range chunkCounts {
		chunkIDs = append(chunkIDs, chunkID)
	}
	sort.Strings(chunkIDs)
	for _, chunkID := range chunkIDs {
		n := chunkCounts[chunkID]
		if n == model.QuestionsPerDimension {
			continue
		}
		msg := fmt.Sprintf("planner: chunk %s referenced %d times, expected %d", chunkID, n, model.QuestionsPerDimension)
		if strictCardinality {
			return fmt.Errorf("%s: %w", msg, perrors.ErrPlannerValidation)
		}
		slog.Warn("cardinality deviation: chunk reference count", "chunk_id", chunkID, "count", n, "expected", model.QuestionsPerDimension)
	}

	expectedPerPA := model.NumDimensions * model.QuestionsPerDimension
	pas := make([]string, 0, len(paCounts))
	for pa := range paCounts {
		pas = append(pas, pa)
	}
	sort.Strings(pas)
	for _, pa := range pas {
		n := paCounts[pa]
		if n == expectedPerPA {
			continue
		}
		msg := fmt.Sprintf("planner: policy area %s referenced %d times, expected %d", pa, n, expectedPerPA)
		if strictCardinality {
			return fmt.Errorf("%s: %w", msg, perrors.ErrPlannerValidation)
		}
		slog.Warn("cardinality deviation: policy area reference count", "policy_area_id", pa, "count", n, "expected", expectedPerPA)
	}
	return nil
}

// signalSource adapts a routed chunk into the flat signal map the catalog's
// SignalRegistry resolves requirements from.
func signalSource(chunk model.Chunk) map[string]any {
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
