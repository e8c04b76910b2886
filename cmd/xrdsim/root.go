package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile          string
	systemConfigPath string
	verbose          bool
	quiet            bool
	noCache          bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "xrdsim",
	Short: "Powder X-ray diffraction profile simulator",
	Long: `xrdsim computes powder X-ray diffraction profiles from reflection cards,
broadens them with a pseudo-Voigt kernel on a uniform 2θ grid, and mixes
phases by weight fraction. Profiles are written as CSV, JSON or Parquet and
can be re-mixed or converted later.

Settings are layered: command-line flags, then XRDSIM_* environment
variables, then $HOME/.xrdsim.yaml, then the system config
(~/.xrdsim/config.yaml).`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		setupLogging()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "CLI config file (default is $HOME/.xrdsim.yaml)")
	rootCmd.PersistentFlags().StringVar(&systemConfigPath, "system-config", "", "system config file (default is $HOME/.xrdsim/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "do not use the persistent profile cache")
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xrdsim")
	}

	viper.SetEnvPrefix("XRDSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
