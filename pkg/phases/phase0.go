// Package phases implements the sequential pipeline phases (C5, §4.2-§4.7):
// input validation, ingestion to the canon policy package, adapter
// normalization, chunk routing, and signal resolution. Each function here is
// the Execute half of a contract.Phase; the kernel supplies validate_input,
// validate_output, and invariants around them.
package phases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/docparser"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Phase0Input names the two source files a run is launched with.
type Phase0Input struct {
	RunID             string
	PDFPath           string
	QuestionnairePath string
	QuestionnaireHash string // already computed by the questionnaire loader
}

// ValidateAndIngestInput runs Phase 0 (§4.2): hash the source PDF, record its
// size and page count, and stamp a CanonicalInput that every later phase
// treats as the run's immutable starting point.
func ValidateAndIngestInput(ctx context.Context, parser docparser.Parser, in Phase0Input) (model.CanonicalInput, error) {
	raw, err := os.ReadFile(in.PDFPath)
	if err != nil {
		return model.CanonicalInput{}, fmt.Errorf("phase0: read pdf: %w", err)
	}
	sum := sha256.Sum256(raw)

	doc, err := parser.Parse(ctx, in.PDFPath)
	if err != nil {
		return model.CanonicalInput{}, fmt.Errorf("phase0: parse pdf: %w", err)
	}

	return model.CanonicalInput{
		DocumentID:          in.RunID + "-doc",
		RunID:               in.RunID,
		PDFPath:             in.PDFPath,
		PDFSHA256:           hex.EncodeToString(sum[:]),
		PDFSizeBytes:        int64(len(raw)),
		PDFPageCount:        len(doc.Pages),
		QuestionnairePath:   in.QuestionnairePath,
		QuestionnaireSHA256: in.QuestionnaireHash,
		CreatedAt:           time.Now().UTC(),
		Phase0Version:       "phase0-1",
		ValidationPassed:    true,
	}, nil
}

// ValidatePhase0Input rejects a run whose source paths are empty, and whose
// run_id is empty or filesystem-unsafe, before any disk I/O happens (§4.2:
// "run_id non-empty and filesystem-safe"). run_id flows unmodified into
// artifacts.New(filepath.Join(artifacts_dir, run_id)), so it must not carry
// path separators or ".." traversal segments.
func ValidatePhase0Input(in Phase0Input) error {
	if in.RunID == "" {
		return fmt.Errorf("phase0: run_id is required")
	}
	if !isFilesystemSafeRunID(in.RunID) {
		return fmt.Errorf("phase0: run_id %q is not filesystem-safe", in.RunID)
	}
	if in.PDFPath == "" {
		return fmt.Errorf("phase0: pdf_path is required")
	}
	if in.QuestionnairePath == "" {
		return fmt.Errorf("phase0: questionnaire_path is required")
	}
	return nil
}

// isFilesystemSafeRunID rejects path separators, traversal segments, and
// null bytes — the characters that would let a run_id escape the artifacts
// directory it is joined into.
func isFilesystemSafeRunID(id string) bool {
	if id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, "/\\\x00") {
		return false
	}
	return true
}

// ValidatePhase0Output enforces that a validated input reports success and
// carries a hash.
func ValidatePhase0Output(out model.CanonicalInput) error {
	if !out.ValidationPassed {
		return fmt.Errorf("phase0: validation did not pass: %v", out.ValidationErrors)
	}
	if len(out.PDFSHA256) != 64 {
		return fmt.Errorf("phase0: malformed pdf hash")
	}
	return nil
}

// CheckPhase0Invariants enforces §4.2's declared invariants over the
// produced CanonicalInput: page_count > 0 and pdf_size_bytes > 0. A
// zero-page or zero-byte PDF parses without error but must not be allowed
// to seed a run.
func CheckPhase0Invariants(_ Phase0Input, out model.CanonicalInput) error {
	if out.PDFPageCount <= 0 {
		return fmt.Errorf("phase0: invariant violated: pdf_page_count must be > 0, got %d", out.PDFPageCount)
	}
	if out.PDFSizeBytes <= 0 {
		return fmt.Errorf("phase0: invariant violated: pdf_size_bytes must be > 0, got %d", out.PDFSizeBytes)
	}
	return nil
}
