package main

import (
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "simulate <card>...",
		Short: "Compute individual profiles for structure cards",
		Long: `Compute the broadened, normalized profile of every structure card and
write them, together with an even-fraction mixture, as one standard-mode
collection.`,
		Example: `  xrdsim simulate nacl.yaml kcl.yaml -o profiles.csv
  xrdsim simulate nacl.yaml --wavelength-preset MoKa --two-theta-max 60 -o nacl.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(c *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(c.Context)
			defer cancel()

			sim, err := simulationOptions(c)
			if err != nil {
				return err
			}

			resp, err := c.Container.SimulateUseCase().Execute(ctx, dto.SimulateRequest{
				Cards:        args,
				MixtureLabel: mixtureLabel(c),
				Simulation:   sim,
				Output:       outputOptions(c, "xrd_profiles"),
				Metadata:     requestMetadata(),
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
	cmd.Flags().String("mixture-label", "", "base label of the even mixture (default from system config)")
	opts.RegisterFlags(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}
