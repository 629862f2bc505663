package main

import (
	"fmt"
	"os"

	"github.com/juju/loggo/v2"
	"github.com/spf13/cobra"
)

var logger = loggo.GetLogger("psim.cmd")

var (
	dataDir string
	logSpec string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "psim",
		Short:         "composable flight software simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loggo.ConfigureLoggers(logSpec)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".psim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logSpec, "log", "<root>=WARNING", "logging levels, e.g. \"<root>=INFO;psim.sim=DEBUG\"")

	rootCmd.AddCommand(
		newRunCmd(),
		newBenchCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newSimulationsCmd(),
		newFieldsCmd(),
		newPresetsCmd(),
		newConfigCmd(),
		newAnalyzeCmd(),
		newTuneCmd(),
		newScenarioCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
