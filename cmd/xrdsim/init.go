package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/codec"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/system"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the system config file",
	Long: `Create ~/.xrdsim/config.yaml (or --system-config) with simulation
defaults, prompting for each value unless --no-interactive is given.`,
	Example: `  xrdsim init
  xrdsim init --no-interactive --enable-cache`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("no-interactive", false, "Disable interactive prompts")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("enable-cache", false, "Enable the persistent profile cache")

	rootCmd.AddCommand(initCmd)
}

// initAnswers holds prompt values as strings, the way huh inputs bind them.
type initAnswers struct {
	Preset      string
	Format      string
	Label       string
	Min         string
	Max         string
	Step        string
	EnableCache bool
}

func runInit(cmd *cobra.Command, _ []string) error {
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	force, _ := cmd.Flags().GetBool("force")
	enableCache, _ := cmd.Flags().GetBool("enable-cache")

	path := systemConfigPath
	if path == "" {
		p, err := system.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	cfg := system.DefaultConfig()
	cfg.Cache.Enabled = enableCache

	if !noInteractive {
		answers := initAnswers{
			Preset:      cfg.Defaults.WavelengthPreset,
			Format:      cfg.Defaults.OutputFormat,
			Label:       cfg.Defaults.MixtureLabel,
			Min:         formatNumber(cfg.Defaults.TwoThetaMin),
			Max:         formatNumber(cfg.Defaults.TwoThetaMax),
			Step:        formatNumber(cfg.Defaults.Step),
			EnableCache: cfg.Cache.Enabled,
		}
		if err := promptInit(&answers); err != nil {
			return err
		}
		if err := answers.apply(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := system.NewConfigLoader().Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func promptInit(a *initAnswers) error {
	presetOptions := make([]huh.Option[string], 0)
	for _, name := range values.DefaultWavelengthPresets().Names() {
		presetOptions = append(presetOptions, huh.NewOption(name, name))
	}
	formatOptions := make([]huh.Option[string], 0)
	for _, f := range codec.NewFactory().SupportedFormats() {
		formatOptions = append(formatOptions, huh.NewOption(f, f))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default wavelength preset").
				Options(presetOptions...).
				Value(&a.Preset),
			huh.NewInput().
				Title("2θ lower bound (deg)").
				Validate(validateNumber).
				Value(&a.Min),
			huh.NewInput().
				Title("2θ upper bound (deg)").
				Validate(validateNumber).
				Value(&a.Max),
			huh.NewInput().
				Title("2θ step (deg)").
				Validate(validateNumber).
				Value(&a.Step),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default output format").
				Options(formatOptions...).
				Value(&a.Format),
			huh.NewInput().
				Title("Mixture label").
				Value(&a.Label),
			huh.NewConfirm().
				Title("Cache single-phase profiles on disk?").
				Value(&a.EnableCache),
		),
	).Run()
}

func (a initAnswers) apply(cfg *system.Config) error {
	var err error
	if cfg.Defaults.TwoThetaMin, err = strconv.ParseFloat(a.Min, 64); err != nil {
		return fmt.Errorf("2θ lower bound: %w", err)
	}
	if cfg.Defaults.TwoThetaMax, err = strconv.ParseFloat(a.Max, 64); err != nil {
		return fmt.Errorf("2θ upper bound: %w", err)
	}
	if cfg.Defaults.Step, err = strconv.ParseFloat(a.Step, 64); err != nil {
		return fmt.Errorf("2θ step: %w", err)
	}
	cfg.Defaults.WavelengthPreset = a.Preset
	cfg.Defaults.OutputFormat = a.Format
	if a.Label != "" {
		cfg.Defaults.MixtureLabel = a.Label
	}
	cfg.Cache.Enabled = a.EnableCache
	return nil
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
