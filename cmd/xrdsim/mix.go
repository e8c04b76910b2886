package main

import (
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMixCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "mix [card...]",
		Short: "Compose phases into mixtures",
		Long: `Compose single-phase profiles into mixtures by weight fraction.

Phases come from structure cards or, with --input-profiles, from saved
profile files: standard-mode files contribute their individual profiles,
mix-mode files contribute their mixture as one phase.

Fractions:
  (none)                     even split between all phases
  --fractions 0.7,0.3        fractions that must sum to 1 (one value broadcasts)
  --ratios 2,1               arbitrary ratios, normalized by their total
  --fractions-auto           sweep every composition on a --fractions-step lattice

Sweep filters (with --fractions-auto):
  --exclude-degenerate                 skip compositions with a zero fraction
  --where "fractions[0] >= 0.5"        keep compositions matching an expression
                                       over index, phases, fractions and labels

With one output path and several compositions, each file is tagged with
its fractions, e.g. out_f1-0.3_f2-0.7.csv.`,
		Example: `  xrdsim mix nacl.yaml kcl.yaml --fractions 0.7,0.3 -o mix.csv
  xrdsim mix nacl.yaml kcl.yaml --fractions-auto --fractions-step 0.25 --mode mix -o sweep.parquet
  xrdsim mix --input-profiles a.json,b.csv --ratios 1,3 -o remix.json`,
		RunE: withContainer(func(c *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(c.Context)
			defer cancel()

			inputs := viper.GetStringSlice("input-profiles")
			var sim dto.SimulationOptions
			if len(inputs) == 0 {
				var err error
				if sim, err = simulationOptions(c); err != nil {
					return err
				}
			}

			workers := c.Container.SystemConfig().Execution.Workers
			if viper.IsSet("workers") {
				workers = viper.GetInt("workers")
			}

			resp, err := c.Container.MixUseCase().Execute(ctx, dto.MixRequest{
				Cards:         args,
				InputProfiles: inputs,
				Fractions:     float64SliceFlag(cmd, "fractions"),
				Ratios:        float64SliceFlag(cmd, "ratios"),
				Sweep: dto.SweepOptions{
					Enabled:           viper.GetBool("fractions-auto"),
					Step:              viper.GetFloat64("fractions-step"),
					Where:             viper.GetString("where"),
					ExcludeDegenerate: viper.GetBool("exclude-degenerate"),
				},
				Mode:         viper.GetString("mode"),
				MixtureLabel: mixtureLabel(c),
				Simulation:   sim,
				Output:       outputOptions(c, "xrd_mixture"),
				Execution: dto.ExecutionOptions{
					Parallel:   viper.GetBool("parallel"),
					MaxWorkers: workers,
				},
				Metadata: requestMetadata(),
			})
			if err != nil {
				return err
			}

			logRun(c, resp)
			return opts.printSummary(cmd, resp)
		}),
	}

	registerSimulationFlags(cmd)
	registerOutputFlags(cmd, "xrd_mixture")
	cmd.Flags().StringSlice("input-profiles", nil, "saved profile files (csv/json/parquet) to re-mix")
	cmd.Flags().Float64Slice("fractions", nil, "phase weight fractions summing to 1")
	cmd.Flags().Float64Slice("ratios", nil, "phase ratios, normalized by their total")
	cmd.Flags().Bool("fractions-auto", false, "sweep all compositions on the --fractions-step lattice")
	cmd.Flags().Float64("fractions-step", 0.1, "lattice step for --fractions-auto; must divide 1")
	cmd.Flags().String("where", "", "expr filter applied to swept compositions")
	cmd.Flags().Bool("exclude-degenerate", false, "skip swept compositions with a zero fraction")
	cmd.Flags().String("mode", "standard", "standard (individual profiles + mixture) or mix (mixture only)")
	cmd.Flags().String("mixture-label", "", "base mixture label (default from system config)")
	cmd.Flags().Bool("parallel", true, "process compositions in parallel")
	cmd.Flags().Int("workers", 0, "maximum parallel compositions (0 = system config or number of CPUs)")
	opts.RegisterFlags(cmd)
	return cmd
}

// float64SliceFlag reads a float slice flag, falling back to a layered setting.
func float64SliceFlag(cmd *cobra.Command, name string) []float64 {
	if cmd.Flags().Changed(name) {
		vals, _ := cmd.Flags().GetFloat64Slice(name)
		return vals
	}
	if !viper.IsSet(name) {
		return nil
	}
	var vals []float64
	if err := viper.UnmarshalKey(name, &vals); err != nil {
		return nil
	}
	return vals
}

func init() {
	rootCmd.AddCommand(newMixCmd())
}
