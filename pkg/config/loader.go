package config

import (
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration at path (if it exists), merges it over
// Defaults(), loads a sibling .env file (if present, exactly like
// cmd/tarsy/main.go does for deploy/config/.env), and applies the
// documented environment-variable overrides (§6): RUN_ID is consumed by the
// caller directly (not stored here), ARTIFACTS_DIR, WORKER_POOL_SIZE, and
// CALIBRATION_THRESHOLD override the matching fields.
//
// An empty path loads only defaults + environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, &LoadError{File: path, Err: err}
			}
			expanded := ExpandEnv(raw)

			var fromFile Config
			if err := yaml.Unmarshal(expanded, &fromFile); err != nil {
				return nil, &LoadError{File: path, Err: fmt.Errorf("%w: %v", ErrInvalidYAML, err)}
			}
			if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
				return nil, &LoadError{File: path, Err: err}
			}
		} else if !os.IsNotExist(err) {
			return nil, &LoadError{File: path, Err: err}
		}
	}

	if err := godotenv.Load(envPathFor(path)); err != nil {
		// Absence of a .env file is not fatal — environment variables set
		// another way still apply, exactly as cmd/tarsy/main.go treats it.
		_ = err
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envPathFor(configPath string) string {
	if configPath == "" {
		return ".env"
	}
	return configPath + ".env"
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ARTIFACTS_DIR"); v != "" {
		cfg.ArtifactsDir = v
	}
	if v := os.Getenv("MONOLITH_DIR"); v != "" {
		cfg.MonolithDir = v
	}
	if v := os.Getenv("WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerPoolSize = n
		}
	}
	if v := os.Getenv("CALIBRATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CalibrationThreshold = f
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// Validate checks that the merged configuration has sane values.
func Validate(cfg *Config) error {
	if cfg.ArtifactsDir == "" {
		return &ValidationError{Field: "artifacts_dir", Err: fmt.Errorf("%w: must not be empty", ErrInvalidValue)}
	}
	if cfg.MonolithDir == "" {
		return &ValidationError{Field: "monolith_dir", Err: fmt.Errorf("%w: must not be empty", ErrInvalidValue)}
	}
	if cfg.CalibrationThreshold < 0 || cfg.CalibrationThreshold > 1 {
		return &ValidationError{Field: "calibration_threshold", Err: fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue)}
	}
	if cfg.LayerMissingPenalty < 0 || cfg.LayerMissingPenalty > 1 {
		return &ValidationError{Field: "layer_missing_penalty", Err: fmt.Errorf("%w: must be in [0,1]", ErrInvalidValue)}
	}
	if cfg.WorkerPoolSize < 0 {
		return &ValidationError{Field: "worker_pool_size", Err: fmt.Errorf("%w: must be >= 0", ErrInvalidValue)}
	}
	if cfg.DefaultTimeout <= 0 {
		return &ValidationError{Field: "default_timeout", Err: fmt.Errorf("%w: must be positive", ErrInvalidValue)}
	}
	return nil
}
