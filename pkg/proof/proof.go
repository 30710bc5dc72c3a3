// Package proof implements the proof builder and verifier (C11, §3.8, §4.12):
// a run's execution proof is sealed by hashing its own canonical projection,
// and withheld entirely unless every phase succeeded, every question was
// answered, and every task succeeded (the last check is skipped when
// AllowPartialProof is set).
package proof

import (
	"fmt"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// BuildInput bundles everything the proof needs to summarize a run.
type BuildInput struct {
	RunID             string
	PhaseFingerprints []model.PhaseMetadata
	QuestionsTotal    int
	QuestionsAnswered int
	EvidenceRecords   int
	MonolithHash      string
	CatalogHash       string
	QuestionnaireHash string
	InputPDFHash      string
	ArtifactsManifest model.ArtifactsManifest
	CodeSignature     string
	AllTasksSucceeded bool
	AllowPartialProof bool
}

// Build assembles and seals an ExecutionProof. It returns
// *perrors.ValidationError if any phase failed, if not every question was
// answered, or if tasks failed and AllowPartialProof is false — the
// stricter of the two historical behaviors this pipeline could have
// inherited (§9 Open Question (a); see SPEC_FULL.md §7).
func Build(in BuildInput) (model.ExecutionProof, error) {
	phasesSuccess := 0
	for _, p := range in.PhaseFingerprints {
		if p.Success {
			phasesSuccess++
		}
	}
	if phasesSuccess != len(in.PhaseFingerprints) {
		return model.ExecutionProof{}, perrors.NewValidationError("proof", "phase_fingerprints",
			fmt.Errorf("%d/%d phases succeeded", phasesSuccess, len(in.PhaseFingerprints)))
	}
	if in.QuestionsAnswered != in.QuestionsTotal {
		return model.ExecutionProof{}, perrors.NewValidationError("proof", "questions_answered",
			fmt.Errorf("answered %d of %d questions", in.QuestionsAnswered, in.QuestionsTotal))
	}
	if !in.AllTasksSucceeded && !in.AllowPartialProof {
		return model.ExecutionProof{}, perrors.NewValidationError("proof", "tasks",
			fmt.Errorf("one or more tasks failed and partial proofs are not permitted"))
	}

	p := model.ExecutionProof{
		RunID:             in.RunID,
		TimestampUTC:      time.Now().UTC(),
		PhasesTotal:       len(in.PhaseFingerprints),
		PhasesSuccess:     phasesSuccess,
		QuestionsTotal:    in.QuestionsTotal,
		QuestionsAnswered: in.QuestionsAnswered,
		EvidenceRecords:   in.EvidenceRecords,
		MonolithHash:      in.MonolithHash,
		CatalogHash:       in.CatalogHash,
		QuestionnaireHash: in.QuestionnaireHash,
		InputPDFHash:      in.InputPDFHash,
		ArtifactsManifest: in.ArtifactsManifest,
		CodeSignature:     in.CodeSignature,
		PhaseFingerprints: in.PhaseFingerprints,
	}

	sealed, err := Seal(p)
	if err != nil {
		return model.ExecutionProof{}, err
	}
	return sealed, nil
}

// Seal computes proof_hash over the proof's hashable projection and returns
// a copy of p with ProofHash set.
func Seal(p model.ExecutionProof) (model.ExecutionProof, error) {
	h, err := hashing.H(p.HashableView())
	if err != nil {
		return model.ExecutionProof{}, fmt.Errorf("proof: seal: %w", err)
	}
	p.ProofHash = h
	return p, nil
}

// Verify recomputes a sealed proof's hash and compares it against
// ProofHash, returning a *perrors.IntegrityError on mismatch.
func Verify(p model.ExecutionProof) error {
	expected, err := hashing.H(p.HashableView())
	if err != nil {
		return fmt.Errorf("proof: verify: %w", err)
	}
	if expected != p.ProofHash {
		return &perrors.IntegrityError{Artifact: "proof.json", Expected: expected, Actual: p.ProofHash}
	}
	return nil
}
