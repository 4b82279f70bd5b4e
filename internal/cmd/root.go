package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/secureops-systems/secureops/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "secureops",
	Short: "SecureOps incident tracking API",
	Long: `secureops is the backend for the SecureOps incident tracker.

Analysts record security incidents, attach indicators of compromise,
build investigation timelines, run heuristic threat attribution, and
receive notifications as incidents move through their lifecycle.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults + SECUREOPS_ env)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		printError("Failed to load config: %v", err)
		os.Exit(1)
	}
}
