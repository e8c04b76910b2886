package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/system"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const naclCard = `formula: NaCl
reflections:
  - {hkl: [1, 1, 1], d: 3.2557, intensity: 8.5}
  - {hkl: [2, 0, 0], d: 2.8195, intensity: 100}
  - {hkl: [2, 2, 0], d: 1.9937, intensity: 55.2}
`

const kclCard = `formula: KCl
reflections:
  - {hkl: [2, 0, 0], d: 3.1464, intensity: 100}
  - {hkl: [2, 2, 0], d: 2.2249, intensity: 57.8}
`

// runCLI executes the root command in-process. Commands share global flag
// state, so these tests must not run in parallel.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeCards(t *testing.T) (dir, nacl, kcl string) {
	t.Helper()
	dir = t.TempDir()
	nacl = filepath.Join(dir, "nacl.yaml")
	kcl = filepath.Join(dir, "kcl.yaml")
	require.NoError(t, os.WriteFile(nacl, []byte(naclCard), 0o600))
	require.NoError(t, os.WriteFile(kcl, []byte(kclCard), 0o600))
	return dir, nacl, kcl
}

func TestCLI_Simulate(t *testing.T) {
	dir, nacl, kcl := writeCards(t)
	out := filepath.Join(dir, "profiles.csv")

	stdout, err := runCLI(t, "simulate", nacl, kcl,
		"-o", out,
		"--two-theta-min", "20", "--two-theta-max", "50", "--step", "0.05",
		"--no-color",
		"--system-config", filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Output: "+out)
	assert.Contains(t, stdout, "NaCl")
	assert.Contains(t, stdout, "KCl")
	assert.Contains(t, stdout, "Mixture (0.500, 0.500)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "2theta,NaCl,KCl,Mixture (0.500; 0.500)", header)
}

func TestCLI_MixSweepTagsOutputs(t *testing.T) {
	dir, nacl, kcl := writeCards(t)

	_, err := runCLI(t, "mix", nacl, kcl,
		"--fractions-auto", "--fractions-step", "0.5",
		"--mode", "mix",
		"-o", filepath.Join(dir, "sweep.json"),
		"--two-theta-min", "20", "--two-theta-max", "50", "--step", "0.1",
		"--summary", "none",
		"--system-config", filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "sweep_f1-*_f2-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestCLI_MixRejectsUnsupportedExtension(t *testing.T) {
	dir, nacl, kcl := writeCards(t)

	_, err := runCLI(t, "mix", nacl, kcl,
		"-o", filepath.Join(dir, "mix.png"),
		"--summary", "none",
		"--system-config", filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "png")

	_, statErr := os.Stat(filepath.Join(dir, "mix.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLI_InitNonInteractive(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "xrdsim", "config.yaml")

	stdout, err := runCLI(t, "init", "--no-interactive", "--enable-cache", "--system-config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	var cfg system.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "CuKa", cfg.Defaults.WavelengthPreset)

	// A second run refuses to overwrite
	_, err = runCLI(t, "init", "--no-interactive", "--system-config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCLI_Presets(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("wavelength_presets:\n  FeKa: 1.936\n"), 0o600))

	stdout, err := runCLI(t, "presets", "--system-config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FeKa")
	assert.Contains(t, stdout, "1.5406")
	assert.Contains(t, stdout, "(default)")
}
