package calibration

import "github.com/codeready-toolchain/policyproof/pkg/model"

// NewFixtureOrchestrator builds an Orchestrator with one calibrated
// executor-role method ("D1Q1.score") requiring every layer, and one
// excluded method ("D1Q1.broken"), for use in tests.
func NewFixtureOrchestrator() *Orchestrator {
	intrinsic := IntrinsicTable{
		"D1Q1.score": {
			MethodID:       "D1Q1.score",
			Status:         model.StatusCalibrated,
			BTheory:        0.9,
			BImpl:          0.85,
			BDeploy:        0.8,
			RequiredLayers: model.AllLayers,
			Role:           model.RoleExecutor,
		},
		"D1Q1.broken": {
			MethodID: "D1Q1.broken",
			Status:   model.StatusExcluded,
		},
	}
	compat := CompatibilityTable{
		"D1Q1.score": {
			"Q": {"fiscal": 0.9},
			"D": {"national": 0.85},
			"P": {"annual": 0.8},
		},
	}
	return NewOrchestrator(intrinsic, compat, SignatureTable{}, DefaultCapacity(), model.DefaultThresholds())
}
