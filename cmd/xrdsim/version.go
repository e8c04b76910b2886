package main

import (
	"fmt"

	"github.com/reglet-dev/xrdsim/internal/domain/services"
	"github.com/reglet-dev/xrdsim/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of xrdsim",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "xrdsim version %s\n", info.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "broadening kernel %s\n", services.KernelVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
