package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/output"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommonOptions contains flags shared by the profile-writing commands.
type CommonOptions struct {
	// Output
	Summary string

	// Execution
	Timeout time.Duration

	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Summary: "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for the entire run (0 to disable)")
	cmd.Flags().StringVar(&opts.Summary, "summary", opts.Summary,
		"Summary printed after writing: table, yaml, none")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", opts.NoColor,
		"Disable colored summary output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	// No timeout - return no-op cancel
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	switch opts.Summary {
	case "table", "yaml", "none":
		return nil
	default:
		return fmt.Errorf("invalid summary format: %s (valid: table, yaml, none)", opts.Summary)
	}
}

// printSummary renders the written files to the command's stdout.
func (opts *CommonOptions) printSummary(cmd *cobra.Command, resp *dto.RunResponse) error {
	if opts.Summary == "none" || resp == nil {
		return nil
	}
	formatter, err := output.NewFormatterFactory().Create(opts.Summary, cmd.OutOrStdout(), !opts.NoColor)
	if err != nil {
		return err
	}
	return formatter.Format(resp.Outputs)
}

// registerSimulationFlags adds the grid, wavelength and kernel flags.
// Defaults shown in help come from the built-in system config; unset flags
// fall back to XRDSIM_* variables, the CLI config file, then the system config.
func registerSimulationFlags(cmd *cobra.Command) {
	d := system.DefaultConfig().Defaults
	cmd.Flags().Float64("wavelength", 0, "X-ray wavelength in Å (overrides --wavelength-preset)")
	cmd.Flags().String("wavelength-preset", d.WavelengthPreset, "named X-ray source (see 'xrdsim presets')")
	cmd.Flags().Float64("two-theta-min", d.TwoThetaMin, "lower 2θ bound (deg)")
	cmd.Flags().Float64("two-theta-max", d.TwoThetaMax, "upper 2θ bound (deg)")
	cmd.Flags().Float64("step", d.Step, "2θ sampling step (deg)")
	cmd.Flags().Float64("fwhm", 0, "pseudo-Voigt FWHM in deg (0 derives it from --step)")
	cmd.Flags().Float64("eta", 0, "pseudo-Voigt Lorentzian fraction in [0, 1], used with --fwhm")
}

// registerOutputFlags adds -o/--output and --output-format.
func registerOutputFlags(cmd *cobra.Command, defaultStem string) {
	cmd.Flags().StringSliceP("output", "o", nil,
		"output file path(s), comma-separated (default "+defaultStem+".<defaults.output_format>)")
	cmd.Flags().String("output-format", "", "output format overriding the extension: csv, json, parquet")
}

// simulationOptions resolves the simulation settings for this run.
func simulationOptions(c *CommandContext) (dto.SimulationOptions, error) {
	cfg := c.Container.SystemConfig()
	preset := stringSetting("wavelength-preset", cfg.Defaults.WavelengthPreset)
	wavelength, err := c.Container.WavelengthPresets().Resolve(preset, floatSetting("wavelength", 0))
	if err != nil {
		return dto.SimulationOptions{}, apperrors.NewValidationError("wavelength", err.Error())
	}

	return dto.SimulationOptions{
		Wavelength:  wavelength,
		TwoThetaMin: floatSetting("two-theta-min", cfg.Defaults.TwoThetaMin),
		TwoThetaMax: floatSetting("two-theta-max", cfg.Defaults.TwoThetaMax),
		Step:        floatSetting("step", cfg.Defaults.Step),
		FWHM:        floatSetting("fwhm", cfg.Broadening.FWHM),
		Eta:         floatSetting("eta", cfg.Broadening.Eta),
	}, nil
}

// outputOptions resolves the output paths and format override. Without
// -o the file is named stem with the system default format's extension.
func outputOptions(c *CommandContext, stem string) dto.OutputOptions {
	paths := viper.GetStringSlice("output")
	if len(paths) == 0 {
		paths = []string{stem + "." + c.Container.SystemConfig().Defaults.OutputFormat}
	}
	return dto.OutputOptions{
		Paths:  paths,
		Format: stringSetting("output-format", ""),
	}
}

// mixtureLabel resolves --mixture-label against the system default.
func mixtureLabel(c *CommandContext) string {
	return stringSetting("mixture-label", c.Container.SystemConfig().Defaults.MixtureLabel)
}

func requestMetadata() dto.RequestMetadata {
	return dto.RequestMetadata{RequestID: uuid.NewString()}
}

// floatSetting returns the layered value of key, or fallback when nothing set it.
func floatSetting(key string, fallback float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return fallback
}

func stringSetting(key, fallback string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

func logRun(c *CommandContext, resp *dto.RunResponse) {
	c.Logger.Info("run complete",
		"run_id", resp.Metadata.RunID,
		"outputs", len(resp.Outputs),
		"cache_hits", resp.Diagnostics.CacheHits,
		"cache_misses", resp.Diagnostics.CacheMisses,
		"skipped", resp.Diagnostics.Skipped,
		"duration", resp.Metadata.Duration.Round(time.Millisecond))
	for _, w := range resp.Diagnostics.Warnings {
		c.Logger.Warn(w)
	}
}
