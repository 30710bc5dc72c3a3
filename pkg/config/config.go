package config

import (
	"time"

	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Config is the umbrella, frozen configuration object threaded through the
// kernel factory (§4.13, §9 "Global mutable state"). It is built once by
// Load and never mutated afterward; Hash gives its canonical-JSON content
// hash. The proof's MonolithHash is not this hash: the kernel derives it
// from the catalog and capacity content hashes.
type Config struct {
	// ArtifactsDir is the root directory under which per-run artifact
	// directories are created (ARTIFACTS_DIR).
	ArtifactsDir string `yaml:"artifacts_dir"`

	// MonolithDir holds the content-hashed configuration artifacts loaded
	// once at startup: method_registry.json (the catalog), intrinsic_calibration.json,
	// method_compatibility.json, method_signatures.json, and capacity.json
	// (MONOLITH_DIR). The proof's MonolithHash combines the content hashes
	// of the catalog and capacity.json.
	MonolithDir string `yaml:"monolith_dir"`

	// WorkerPoolSize bounds the method executor's concurrent task workers
	// (WORKER_POOL_SIZE). Zero means "use runtime.NumCPU()".
	WorkerPoolSize int `yaml:"worker_pool_size"`

	// CalibrationThreshold is the minimum final calibration score (CALIBRATION_THRESHOLD).
	CalibrationThreshold float64 `yaml:"calibration_threshold"`

	// LayerMissingPenalty is subtracted from the aggregated final score once
	// per required contextual layer with no compatibility entry (§3.6).
	LayerMissingPenalty float64 `yaml:"layer_missing_penalty"`

	// Retry defaults applied when a method declares no override.
	DefaultRetryAttempts int           `yaml:"default_retry_attempts"`
	DefaultTimeout       time.Duration `yaml:"default_timeout"`

	// AllowPartialProof controls Open Question (a): whether the proof builder
	// may seal a run in which some tasks failed. Defaults to false and can be
	// set through the allow_partial_proof YAML key.
	AllowPartialProof bool `yaml:"allow_partial_proof"`

	// StrictCardinality controls §4.5's documented default: a plan whose
	// per-chunk/per-policy-area reference counts deviate from the expected
	// 5-per-chunk/30-per-PA is logged as a warning and the plan still
	// returns. Setting this true escalates those deviations to a hard
	// planner error instead, for deployments (e.g. structural test suites)
	// that want to fail fast on them.
	StrictCardinality bool `yaml:"strict_cardinality"`

	// Database, when set, enables the optional run ledger (pkg/runstore).
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig configures the optional Postgres-backed run ledger.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// Enabled reports whether a run ledger DSN was configured.
func (d DatabaseConfig) Enabled() bool { return d.DSN != "" }

// Thresholds projects the calibration-relevant fields into model.Thresholds.
func (c Config) Thresholds() model.Thresholds {
	return model.Thresholds{
		MinimumFinalScore:   c.CalibrationThreshold,
		LayerMissingPenalty: c.LayerMissingPenalty,
	}
}

// Defaults returns the built-in configuration applied before any YAML file
// or environment overrides, mirroring the teacher's Defaults type.
func Defaults() Config {
	return Config{
		ArtifactsDir:         "./artifacts",
		MonolithDir:          "./monolith",
		WorkerPoolSize:       0,
		CalibrationThreshold: 0.7,
		LayerMissingPenalty:  0.1,
		DefaultRetryAttempts: 2,
		DefaultTimeout:       30 * time.Second,
		AllowPartialProof:    false,
		StrictCardinality:    false,
	}
}
