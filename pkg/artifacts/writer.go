// Package artifacts writes a run's content-addressed output directory:
// proof.json, proof.hash, phase_manifest.json, per-evidence-record files,
// and the routing/aggregate diagnostic reports (§6, §9.1).
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/policyproof/pkg/aggregate"
	"github.com/codeready-toolchain/policyproof/pkg/hashing"
	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Writer persists a run's artifacts under Dir.
type Writer struct {
	Dir string
}

// New builds a Writer rooted at dir, creating it if necessary.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Join(dir, "evidence"), 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: create %s: %w", dir, err)
	}
	return &Writer{Dir: dir}, nil
}

// WriteJSON writes v as indented JSON to relPath under the run directory and
// returns its BLAKE2b-256 content hash for the artifacts manifest.
func (w *Writer) WriteJSON(relPath string, v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("artifacts: marshal %s: %w", relPath, err)
	}
	full := filepath.Join(w.Dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("artifacts: mkdir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return "", fmt.Errorf("artifacts: write %s: %w", relPath, err)
	}
	return hashing.BLAKE2b256Hex(raw), nil
}

// WriteEvidence writes one evidence record per file under evidence/, keyed
// by record id, and returns the manifest of relative path -> content hash.
func (w *Writer) WriteEvidence(records []model.EvidenceRecord) (model.ArtifactsManifest, error) {
	manifest := make(model.ArtifactsManifest, len(records))
	for _, rec := range records {
		rel := filepath.Join("evidence", rec.RecordID+".json")
		hash, err := w.WriteJSON(rel, rec)
		if err != nil {
			return nil, err
		}
		manifest[rel] = hash
	}
	return manifest, nil
}

// WriteProof writes proof.json and a plaintext proof.hash file.
func (w *Writer) WriteProof(p model.ExecutionProof) error {
	if _, err := w.WriteJSON("proof.json", p); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.Dir, "proof.hash"), []byte(p.ProofHash+"\n"), 0o644)
}

// ReadAggregateReport reads an aggregate_report.json file back from path.
func ReadAggregateReport(path string) (aggregate.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return aggregate.Report{}, fmt.Errorf("artifacts: read %s: %w", path, err)
	}
	var report aggregate.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return aggregate.Report{}, fmt.Errorf("artifacts: parse %s: %w", path, err)
	}
	return report, nil
}

// ReadProof reads proof.json back from dir.
func ReadProof(dir string) (model.ExecutionProof, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "proof.json"))
	if err != nil {
		return model.ExecutionProof{}, fmt.Errorf("artifacts: read proof.json: %w", err)
	}
	var p model.ExecutionProof
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.ExecutionProof{}, fmt.Errorf("artifacts: parse proof.json: %w", err)
	}
	return p, nil
}
