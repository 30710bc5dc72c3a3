package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./artifacts", cfg.ArtifactsDir)
	assert.Equal(t, 0.7, cfg.CalibrationThreshold)
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policyproof.yaml")
	require.NoError(t, os.WriteFile(path, []byte("artifacts_dir: /tmp/out\ncalibration_threshold: 0.8\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.ArtifactsDir)
	assert.Equal(t, 0.8, cfg.CalibrationThreshold)
	// Unset fields still come from Defaults().
	assert.Equal(t, 0.1, cfg.LayerMissingPenalty)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CALIBRATION_THRESHOLD", "0.55")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.55, cfg.CalibrationThreshold)
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policyproof.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calibration_threshold: 1.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestHashIsStableAcrossEqualConfigs(t *testing.T) {
	a := Defaults()
	b := Defaults()
	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestExpandEnvSupportsDefaultFallback(t *testing.T) {
	os.Unsetenv("POLICYPROOF_TEST_VAR")
	out := ExpandEnv([]byte("value: ${POLICYPROOF_TEST_VAR:-fallback}"))
	assert.Equal(t, "value: fallback", string(out))
}
