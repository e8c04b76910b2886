package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List wavelength presets",
	Long: `List the named X-ray sources accepted by --wavelength-preset, including
presets added in the system config.`,
	Args: cobra.NoArgs,
	RunE: withContainer(func(c *CommandContext, cmd *cobra.Command, _ []string) error {
		presets := c.Container.WavelengthPresets()
		defaultPreset := c.Container.SystemConfig().Defaults.WavelengthPreset

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRESET\tWAVELENGTH (Å)\t")
		for _, name := range presets.Names() {
			marker := ""
			if name == defaultPreset {
				marker = "(default)"
			}
			fmt.Fprintf(tw, "%s\t%.4f\t%s\n", name, presets[name], marker)
		}
		return tw.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
