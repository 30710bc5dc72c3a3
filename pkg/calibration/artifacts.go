// Package calibration implements the calibration data model (C3) and the
// calibration orchestrator (C8): eight layer evaluators aggregated via a
// Choquet 2-additive integral, enforcing the 0.7 minimum threshold (§4.9).
package calibration

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codeready-toolchain/policyproof/pkg/model"
	"github.com/codeready-toolchain/policyproof/pkg/perrors"
)

// IntrinsicTable is the loaded intrinsic_calibration.json, keyed by method_id.
type IntrinsicTable map[string]model.IntrinsicCalibration

// LoadIntrinsic loads and indexes intrinsic_calibration.json (§3.6, §6).
func LoadIntrinsic(path string) (IntrinsicTable, error) {
	var entries []model.IntrinsicCalibration
	if err := loadJSONList(path, &entries); err != nil {
		return nil, fmt.Errorf("calibration: load intrinsic: %w", err)
	}
	table := make(IntrinsicTable, len(entries))
	for _, e := range entries {
		table[e.MethodID] = e
	}
	return table, nil
}

// Get returns the intrinsic record for methodID, or a typed error if the
// method is excluded or absent entirely (§4.9 step 1).
func (t IntrinsicTable) Get(methodID string) (model.IntrinsicCalibration, error) {
	rec, ok := t[methodID]
	if !ok {
		return model.IntrinsicCalibration{}, &perrors.IntrinsicMissingError{MethodID: methodID}
	}
	if rec.Status == model.StatusExcluded {
		return model.IntrinsicCalibration{}, fmt.Errorf("calibration: method %q is excluded: %w", methodID, perrors.ErrIntrinsicMissing)
	}
	if rec.Status != model.StatusCalibrated {
		return model.IntrinsicCalibration{}, fmt.Errorf("calibration: method %q has unknown status %q: %w", methodID, rec.Status, perrors.ErrIntrinsicMissing)
	}
	return rec, nil
}

// CompatibilityTable is the loaded method_compatibility.json (§3.6).
type CompatibilityTable model.MethodCompatibility

// LoadCompatibility loads method_compatibility.json.
func LoadCompatibility(path string) (CompatibilityTable, error) {
	var table CompatibilityTable
	if err := loadJSON(path, &table); err != nil {
		return nil, fmt.Errorf("calibration: load compatibility: %w", err)
	}
	return table, nil
}

// Lookup returns the compatibility scalar for methodID/axis/value, and
// whether it was found at all.
func (t CompatibilityTable) Lookup(methodID, axis, value string) (float64, bool) {
	byAxis, ok := t[methodID]
	if !ok {
		return 0, false
	}
	byValue, ok := byAxis[axis]
	if !ok {
		return 0, false
	}
	v, ok := byValue[value]
	return v, ok
}

// SignatureTable is the loaded method_signatures.json (§3.6).
type SignatureTable map[string]model.MethodSignature

// LoadSignatures loads method_signatures.json.
func LoadSignatures(path string) (SignatureTable, error) {
	var entries []model.MethodSignature
	if err := loadJSONList(path, &entries); err != nil {
		return nil, fmt.Errorf("calibration: load signatures: %w", err)
	}
	table := make(SignatureTable, len(entries))
	for _, e := range entries {
		table[e.MethodID] = e
	}
	return table, nil
}

func loadJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func loadJSONList(path string, v interface{}) error {
	return loadJSON(path, v)
}
