// Package system provides infrastructure for system-level configuration.
// This covers the system config file (~/.xrdsim/config.yaml): simulation
// defaults, broadening overrides, the profile cache and worker limits.
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config represents the global configuration file (~/.xrdsim/config.yaml).
// Command-line flags and XRDSIM_* variables take precedence over it.
type Config struct {
	WavelengthPresets map[string]float64 `yaml:"wavelength_presets,omitempty"`
	Defaults          DefaultsConfig     `yaml:"defaults"`
	Cache             CacheConfig        `yaml:"cache"`
	Broadening        BroadeningConfig   `yaml:"broadening"`
	Execution         ExecutionConfig    `yaml:"execution"`
}

// DefaultsConfig holds simulation defaults used when a flag is not given.
type DefaultsConfig struct {
	WavelengthPreset string  `yaml:"wavelength_preset"`
	MixtureLabel     string  `yaml:"mixture_label"`
	OutputFormat     string  `yaml:"output_format"`
	TwoThetaMin      float64 `yaml:"two_theta_min"`
	TwoThetaMax      float64 `yaml:"two_theta_max"`
	Step             float64 `yaml:"step"`
}

// BroadeningConfig overrides the pseudo-Voigt kernel.
// A zero FWHM means the kernel is derived from the grid step.
type BroadeningConfig struct {
	FWHM float64 `yaml:"fwhm"`
	Eta  float64 `yaml:"eta"`
}

// CacheConfig configures the persistent single-phase profile cache.
type CacheConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// ExecutionConfig controls sweep concurrency.
type ExecutionConfig struct {
	// Workers bounds parallel composition processing (0 = number of CPUs)
	Workers int `yaml:"workers"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			WavelengthPreset: "CuKa",
			MixtureLabel:     "Mixture",
			OutputFormat:     "csv",
			TwoThetaMin:      10,
			TwoThetaMax:      80,
			Step:             0.02,
		},
		Broadening: BroadeningConfig{
			FWHM: 0, // 0 means derive from the grid step
			Eta:  0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "",
		},
		Execution: ExecutionConfig{
			Workers: 0, // 0 means runtime.NumCPU()
		},
		WavelengthPresets: map[string]float64{},
	}
}

// DefaultConfigPath returns ~/.xrdsim/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".xrdsim", "config.yaml"), nil
}

// DefaultCachePath returns ~/.xrdsim/cache.db.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".xrdsim", "cache.db"), nil
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// Fields missing from the file keep their defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}

	return config, nil
}

// LoadConfig implements ports.SystemConfigProvider.
func (l *ConfigLoader) LoadConfig(_ context.Context, path string) (*Config, error) {
	return l.Load(path)
}

// Save writes the configuration as YAML, creating the parent directory.
func (l *ConfigLoader) Save(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode system config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write system config: %w", err)
	}
	return nil
}

// Validate checks value ranges that the YAML decoder cannot.
func (c *Config) Validate() error {
	var errs []error
	d := c.Defaults
	if d.TwoThetaMin >= d.TwoThetaMax {
		errs = append(errs, fmt.Errorf("defaults.two_theta_min (%g) must be less than defaults.two_theta_max (%g)", d.TwoThetaMin, d.TwoThetaMax))
	}
	if d.Step <= 0 {
		errs = append(errs, fmt.Errorf("defaults.step must be positive, got %g", d.Step))
	}
	if c.Broadening.FWHM < 0 {
		errs = append(errs, fmt.Errorf("broadening.fwhm must not be negative, got %g", c.Broadening.FWHM))
	}
	if c.Broadening.Eta < 0 || c.Broadening.Eta > 1 {
		errs = append(errs, fmt.Errorf("broadening.eta must lie in [0, 1], got %g", c.Broadening.Eta))
	}
	if c.Execution.Workers < 0 {
		errs = append(errs, fmt.Errorf("execution.workers must not be negative, got %d", c.Execution.Workers))
	}
	for name, wl := range c.WavelengthPresets {
		if wl <= 0 {
			errs = append(errs, fmt.Errorf("wavelength_presets.%s must be positive, got %g", name, wl))
		}
	}
	return errors.Join(errs...)
}

// CachePath returns the configured cache database path or the default location.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	return DefaultCachePath()
}
