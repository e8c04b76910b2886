package main

import (
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConvertCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "convert [card...]",
		Short: "Re-export profiles to another format",
		Long: `Convert a saved profile file (--input-profiles) to other formats, or
compute structure cards with an even mixture and write them.

A collection holding a single profile is written in mix mode labeled with
that profile. --mode and --mixture-label override the loaded values.`,
		Example: `  xrdsim convert --input-profiles sweep_f1-0.5_f2-0.5.parquet -o sweep.csv
  xrdsim convert nacl.yaml kcl.yaml -o both.json,both.parquet`,
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

			resp, err := c.Container.ConvertUseCase().Execute(ctx, dto.ConvertRequest{
				Cards:         args,
				InputProfiles: inputs,
				Mode:          stringSetting("mode", ""),
				MixtureLabel:  stringSetting("mixture-label", ""),
				Simulation:    sim,
				Output:        outputOptions(c, "xrd_profiles"),
				Metadata:      requestMetadata(),
			})
			if err != nil {
				return err
			}

			logRun(c, resp)
			return opts.printSummary(cmd, resp)
		}),
	}

	registerSimulationFlags(cmd)
	registerOutputFlags(cmd, "xrd_profiles")
	cmd.Flags().StringSlice("input-profiles", nil, "saved profile file (csv/json/parquet) to convert")
	cmd.Flags().String("mode", "", "override the mode: standard or mix")
	cmd.Flags().String("mixture-label", "", "override the mixture label")
	opts.RegisterFlags(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(newConvertCmd())
}
