package questionnaire

import (
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureIsValid(t *testing.T) {
	q := NewFixture()
	require.NoError(t, Validate(q))
	assert.Len(t, q.MicroQuestions, model.TotalQuestions)
	assert.True(t, len(q.Integrity) == 64)
}

func TestValidateRejectsDuplicateQuestionID(t *testing.T) {
	q := NewFixture()
	q.MicroQuestions[1].QuestionID = q.MicroQuestions[0].QuestionID
	err := Validate(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question_id")
}

func TestValidateRejectsWrongCount(t *testing.T) {
	q := NewFixture()
	q.MicroQuestions = q.MicroQuestions[:len(q.MicroQuestions)-1]
	err := Validate(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 300")
}

func TestValidateRejectsNonHermeticCluster(t *testing.T) {
	q := NewFixture()
	// Remove PA10 from every cluster, breaking the partition.
	for i := range q.Niveles.Clusters {
		var kept []string
		for _, pa := range q.Niveles.Clusters[i].PolicyAreaIDs {
			if pa != "PA10" {
				kept = append(kept, pa)
			}
		}
		q.Niveles.Clusters[i].PolicyAreaIDs = kept
	}
	err := Validate(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a member of any cluster")
}
