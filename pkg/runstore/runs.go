package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RunRecord is a durable summary of one pipeline run, written once the
// proof is sealed (or withheld) and never mutated afterward.
type RunRecord struct {
	RunID             string
	InputPDFHash      string
	QuestionnaireHash string
	CatalogHash       string
	StartedAt         time.Time
	FinishedAt        time.Time
	ProofSealed       bool
	ProofHash         string
	MacroScore        float64
	Band              string
	FailureReason     string
}

// ErrRunNotFound is returned by Get when no run matches the given id.
var ErrRunNotFound = errors.New("runstore: run not found")

// Insert writes a new run record. RunID must be unique.
func (s *Store) Insert(ctx context.Context, r RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policyproof_runs (
			run_id, input_pdf_hash, questionnaire_hash, catalog_hash,
			started_at, finished_at, proof_sealed, proof_hash,
			macro_score, band, failure_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		r.RunID, r.InputPDFHash, r.QuestionnaireHash, r.CatalogHash,
		r.StartedAt, r.FinishedAt, r.ProofSealed, r.ProofHash,
		r.MacroScore, r.Band, r.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("runstore: insert %s: %w", r.RunID, err)
	}
	return nil
}

// Get fetches a run record by id.
func (s *Store) Get(ctx context.Context, runID string) (RunRecord, error) {
	var r RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, input_pdf_hash, questionnaire_hash, catalog_hash,
		       started_at, finished_at, proof_sealed, proof_hash,
		       macro_score, band, failure_reason
		FROM policyproof_runs WHERE run_id = $1`, runID,
	).Scan(
		&r.RunID, &r.InputPDFHash, &r.QuestionnaireHash, &r.CatalogHash,
		&r.StartedAt, &r.FinishedAt, &r.ProofSealed, &r.ProofHash,
		&r.MacroScore, &r.Band, &r.FailureReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrRunNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("runstore: get %s: %w", runID, err)
	}
	return r, nil
}

// ListByBand returns every run classified into the given band, most
// recent first — used by the CLI's summary views.
func (s *Store) ListByBand(ctx context.Context, band string) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, input_pdf_hash, questionnaire_hash, catalog_hash,
		       started_at, finished_at, proof_sealed, proof_hash,
		       macro_score, band, failure_reason
		FROM policyproof_runs WHERE band = $1 ORDER BY started_at DESC`, band)
	if err != nil {
		return nil, fmt.Errorf("runstore: list by band %s: %w", band, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.RunID, &r.InputPDFHash, &r.QuestionnaireHash, &r.CatalogHash,
			&r.StartedAt, &r.FinishedAt, &r.ProofSealed, &r.ProofHash,
			&r.MacroScore, &r.Band, &r.FailureReason,
		); err != nil {
			return nil, fmt.Errorf("runstore: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
