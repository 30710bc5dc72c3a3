package proof

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBuildInput() BuildInput {
	return BuildInput{
		RunID: "run-1",
		PhaseFingerprints: []model.PhaseMetadata{
			{Name: "phase0", Success: true, Fingerprint: "aa"},
			{Name: "phase1", Success: true, Fingerprint: "bb"},
		},
		QuestionsTotal:    300,
		QuestionsAnswered: 300,
		EvidenceRecords:   600,
		AllTasksSucceeded: true,
	}
}

func TestBuildSealsAndVerifies(t *testing.T) {
	p, err := Build(validBuildInput())
	require.NoError(t, err)
	assert.Len(t, p.ProofHash, 64)
	require.NoError(t, Verify(p))
}

func TestBuildRejectsFailedPhase(t *testing.T) {
	in := validBuildInput()
	in.PhaseFingerprints[1].Success = false
	_, err := Build(in)
	var verr *perrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildRejectsIncompleteQuestions(t *testing.T) {
	in := validBuildInput()
	in.QuestionsAnswered = 299
	_, err := Build(in)
	require.Error(t, err)
}

func TestBuildWithholdsProofOnTaskFailureByDefault(t *testing.T) {
	in := validBuildInput()
	in.AllTasksSucceeded = false
	_, err := Build(in)
	require.Error(t, err)
}

func TestBuildAllowsPartialProofWhenExplicitlyEnabled(t *testing.T) {
	in := validBuildInput()
	in.AllTasksSucceeded = false
	in.AllowPartialProof = true
	p, err := Build(in)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ProofHash)
}

func TestVerifyDetectsTamperedProof(t *testing.T) {
	p, err := Build(validBuildInput())
	require.NoError(t, err)
	p.QuestionsAnswered = 1 // tamper after sealing
	err = Verify(p)
	var integrityErr *perrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Contains(t, err.Error(), "Hash mismatch")
}
