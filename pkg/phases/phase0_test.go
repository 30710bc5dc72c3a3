package phases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPhase0Input(t *testing.T) Phase0Input {
	t.Helper()
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 fixture"), 0o600))
	qPath := filepath.Join(dir, "questionnaire.json")
	require.NoError(t, os.WriteFile(qPath, []byte("{}"), 0o600))
	return Phase0Input{RunID: "run-001", PDFPath: pdfPath, QuestionnairePath: qPath}
}

func TestValidatePhase0InputRejectsEmptyRunID(t *testing.T) {
	in := validPhase0Input(t)
	in.RunID = ""
	err := ValidatePhase0Input(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_id")
}

func TestValidatePhase0InputRejectsPathTraversalRunID(t *testing.T) {
	for _, bad := range []string{"..", ".", "../escape", "a/b", "a\\b", "../../etc/passwd"} {
		in := validPhase0Input(t)
		in.RunID = bad
		err := ValidatePhase0Input(in)
		require.Error(t, err, "run_id %q should be rejected", bad)
		assert.Contains(t, err.Error(), "filesystem-safe")
	}
}

func TestValidatePhase0InputAcceptsSafeRunID(t *testing.T) {
	in := validPhase0Input(t)
	in.RunID = "run-2026-08-01_001"
	assert.NoError(t, ValidatePhase0Input(in))
}

func TestCheckPhase0InvariantsRejectsZeroPageCount(t *testing.T) {
	out := model.CanonicalInput{PDFPageCount: 0, PDFSizeBytes: 100}
	err := CheckPhase0Invariants(Phase0Input{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf_page_count")
}

func TestCheckPhase0InvariantsRejectsZeroByteSize(t *testing.T) {
	out := model.CanonicalInput{PDFPageCount: 2, PDFSizeBytes: 0}
	err := CheckPhase0Invariants(Phase0Input{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf_size_bytes")
}

func TestCheckPhase0InvariantsAcceptsPositiveCounts(t *testing.T) {
	out := model.CanonicalInput{PDFPageCount: 2, PDFSizeBytes: 100}
	assert.NoError(t, CheckPhase0Invariants(Phase0Input{}, out))
}
