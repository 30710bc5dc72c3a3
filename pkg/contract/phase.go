// Package contract implements the phase contract framework (C4, §4.1): every
// pipeline phase validates its input, executes, validates its output, checks
// its invariants, and is fingerprinted — in that order, with no phase
// starting before the previous one's gate has passed.
package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Phase describes one pipeline stage over typed input/output, generic over
// both so phase0..phaseN can share one runner instead of duplicating the
// gate sequence (§4.1).
type Phase[In any, Out any] struct {
	Name           string
	ValidateInput  func(In) error
	Execute        func(ctx context.Context, in In) (Out, error)
	ValidateOutput func(Out) error
	Invariants     func(In, Out) error
}

// Run executes the full contract: validate_input -> execute -> validate_output
// -> invariants -> fingerprint. It always returns PhaseMetadata, even on
// failure, so a failed phase still contributes a (Success: false) record to
// the proof's phase fingerprints (§4.1, "fail-fast propagation").
func (p Phase[In, Out]) Run(ctx context.Context, in In) (Out, model.PhaseMetadata, error) {
	var zero Out
	meta := model.PhaseMetadata{Name: p.Name, StartedAt: now()}

	fail := func(err error) (Out, model.PhaseMetadata, error) {
		meta.FinishedAt = now()
		meta.DurationMS = meta.FinishedAt.Sub(meta.StartedAt).Milliseconds()
		meta.Success = false
		meta.Error = err.Error()
		return zero, meta, fmt.Errorf("phase %s: %w", p.Name, err)
	}

	if p.ValidateInput != nil {
		if err := p.ValidateInput(in); err != nil {
			return fail(err)
		}
	}

	out, err := p.Execute(ctx, in)
	if err != nil {
		return fail(err)
	}

	if p.ValidateOutput != nil {
		if err := p.ValidateOutput(out); err != nil {
			return fail(err)
		}
	}

	if p.Invariants != nil {
		if err := p.Invariants(in, out); err != nil {
			return fail(err)
		}
	}

	fingerprint, err := hashing.H(out)
	if err != nil {
		return fail(fmt.Errorf("fingerprint: %w", err))
	}

	meta.FinishedAt = now()
	meta.DurationMS = meta.FinishedAt.Sub(meta.StartedAt).Milliseconds()
	meta.Success = true
	meta.Fingerprint = fingerprint
	return out, meta, nil
}

// now is a seam so tests can observe ordering without depending on wall-clock
// resolution guarantees across fast-running phases.
var now = func() time.Time { return time.Now().UTC() }
