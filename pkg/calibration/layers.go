package calibration

import (
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// UnitInputs carries the structural signals the Unit layer (U) scores
// against the Preprocessed Document Tree (§4.9 layer 2).
type UnitInputs struct {
	IndicatorMatrixPresent bool
	BudgetTablePresent     bool
	Completeness           float64 // fraction of expected rows present, [0,1]
}

// ChainInputs declares what a method consumed versus what its signature
// promises it needs (§4.9 layer 7).
type ChainInputs struct {
	Declared []string
	Provided []string
}

// MetaInputs carries the governance checks of the Meta layer (§4.9 layer 8).
type MetaInputs struct {
	FormulaExported bool
	FullTrace       bool
	LogsConform     bool
	SignatureValid  bool
	WithinTimeBudget bool
}

// baseScore computes the B layer from the three intrinsic components,
// weighted by rec.Weights (defaulting to an even 1/3 split when unset).
func baseScore(rec model.IntrinsicCalibration) float64 {
	w := rec.Weights
	if w.Theory == 0 && w.Impl == 0 && w.Deploy == 0 {
		w = model.BaseWeights{Theory: 1.0 / 3, Impl: 1.0 / 3, Deploy: 1.0 / 3}
	}
	return w.Theory*rec.BTheory + w.Impl*rec.BImpl + w.Deploy*rec.BDeploy
}

// unitScore computes the U layer (§4.9 layer 2): the structural fraction
// (indicator matrix and budget table present, each counting one half)
// averaged with the clamped completeness.
func unitScore(in UnitInputs) float64 {
	total := 0.0
	count := 0
	if in.IndicatorMatrixPresent {
		total += 1.0
	}
	count++
	if in.BudgetTablePresent {
		total += 1.0
	}
	count++
	structural := total / float64(count)
	return (structural + clamp01(in.Completeness)) / 2
}

// contextualScore looks up a single (Q|D|P) axis value in the compatibility
// table; ok is false when the axis entry is absent, signalling the
// layer-missing penalty to the caller rather than a hard failure.
func contextualScore(table CompatibilityTable, methodID, axis, value string) (score float64, ok bool) {
	if value == "" {
		return 0, false
	}
	return table.Lookup(methodID, axis, value)
}

// congruenceScore averages peer scores for methods in the same chunk's
// evaluation subgraph (§4.9 layer 6). An empty set of peers yields a
// neutral 1.0 — there is nothing to be incongruent with.
func congruenceScore(peerScores []float64) float64 {
	if len(peerScores) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, s := range peerScores {
		sum += s
	}
	return sum / float64(len(peerScores))
}

// chainScore is the fraction of declared inputs actually provided (§4.9
// layer 7). A method declaring no inputs trivially scores 1.0.
func chainScore(in ChainInputs) float64 {
	if len(in.Declared) == 0 {
		return 1.0
	}
	provided := make(map[string]bool, len(in.Provided))
	for _, p := range in.Provided {
		provided[p] = true
	}
	hit := 0
	for _, d := range in.Declared {
		if provided[d] {
			hit++
		}
	}
	return float64(hit) / float64(len(in.Declared))
}

// metaScore is the fraction of governance checks satisfied (§4.9 layer 8).
func metaScore(in MetaInputs) float64 {
	checks := []bool{in.FormulaExported, in.FullTrace, in.LogsConform, in.SignatureValid, in.WithinTimeBudget}
	hit := 0
	for _, c := range checks {
		if c {
			hit++
		}
	}
	return float64(hit) / float64(len(checks))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
