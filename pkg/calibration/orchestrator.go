package calibration

import (
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// Orchestrator is the sole entry point for scoring a method invocation
// (§4.9, C8). It is built once by the kernel factory and is safe for
// concurrent use by the bounded worker pool — all of its fields are
// read-only after construction.
type Orchestrator struct {
	Intrinsic     IntrinsicTable
	Compatibility CompatibilityTable
	Signatures    SignatureTable
	Capacity      Capacity
	Thresholds    model.Thresholds
}

// NewOrchestrator assembles an Orchestrator from its loaded tables.
func NewOrchestrator(intrinsic IntrinsicTable, compat CompatibilityTable, sigs SignatureTable, cap Capacity, th model.Thresholds) *Orchestrator {
	return &Orchestrator{Intrinsic: intrinsic, Compatibility: compat, Signatures: sigs, Capacity: cap, Thresholds: th}
}

// ScoreInput bundles everything needed to evaluate a single method
// invocation across the eight calibration layers.
type ScoreInput struct {
	MethodID   string
	Context    model.ContextTuple
	Unit       UnitInputs
	Chain      ChainInputs
	Meta       MetaInputs
	PeerScores []float64 // congruence group: already-computed scores of sibling methods
}

// Result is the outcome of scoring one method invocation: the final
// aggregate score, the per-layer breakdown (returned to the caller only;
// evidence records do not carry it), and how many required layers were
// missing.
type Result struct {
	FinalScore   float64
	LayerScores  map[model.LayerID]float64
	LayersMissed int
}

// Score runs the full layer pipeline for methodID and enforces the minimum
// score threshold (§4.9 step 9). It returns *perrors.IntrinsicMissingError
// if the method has no calibrated intrinsic record, *perrors.InsufficientContextError
// if a required contextual axis (Q/D/P) was never supplied at all, and
// *perrors.BelowThresholdError if the aggregated score falls under the
// configured minimum.
func (o *Orchestrator) Score(in ScoreInput) (Result, error) {
	rec, err := o.Intrinsic.Get(in.MethodID)
	if err != nil {
		return Result{}, err
	}

	scores := map[model.LayerID]float64{model.LayerIntrinsic: baseScore(rec)}
	missed := 0

	if rec.RequiresLayer(model.LayerUnit) {
		scores[model.LayerUnit] = unitScore(in.Unit)
	}

	for layer, axisAndValue := range map[model.LayerID][2]string{
		model.LayerQ: {"Q", in.Context.Q},
		model.LayerD: {"D", in.Context.D},
		model.LayerP: {"P", in.Context.P},
	} {
		if !rec.RequiresLayer(layer) {
			continue
		}
		axis, value := axisAndValue[0], axisAndValue[1]
		if value == "" {
			return Result{}, &perrors.InsufficientContextError{MethodID: in.MethodID, Layer: string(layer)}
		}
		score, ok := contextualScore(o.Compatibility, in.MethodID, axis, value)
		if !ok {
			missed++
			continue
		}
		scores[layer] = score
	}

	if rec.RequiresLayer(model.LayerCongruence) {
		scores[model.LayerCongruence] = congruenceScore(in.PeerScores)
	}
	if rec.RequiresLayer(model.LayerChain) {
		scores[model.LayerChain] = chainScore(in.Chain)
	}
	if rec.RequiresLayer(model.LayerMeta) {
		scores[model.LayerMeta] = metaScore(in.Meta)
	}

	var final float64
	if rec.Role == model.RoleExecutor {
		final = o.Capacity.Integral(scores)
	} else {
		final = weightedAverage(o.Capacity, scores)
	}
	final -= float64(missed) * o.Thresholds.LayerMissingPenalty
	final = clamp01(final)

	if final < o.Thresholds.MinimumFinalScore {
		return Result{FinalScore: final, LayerScores: scores, LayersMissed: missed},
			&perrors.BelowThresholdError{MethodID: in.MethodID, Score: final, Threshold: o.Thresholds.MinimumFinalScore}
	}

	return Result{FinalScore: final, LayerScores: scores, LayersMissed: missed}, nil
}

// weightedAverage is the declared weighted-sum rule used by non-executor
// methods (§4.9): a normalized weighted mean over the layers present,
// using the capacity's singleton masses as weights but without Choquet
// interaction terms.
func weightedAverage(cap Capacity, scores map[model.LayerID]float64) float64 {
	var num, den float64
	for layer, score := range scores {
		w := cap.Singleton[layer]
		num += w * score
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}
