// Command dashctl summarizes a dashboard CSV export from the command line.
//
//	dashctl summarize --file platform_metrics.csv --dataset ads --preset all
//	dashctl summarize --file ga.csv --dataset analytics --filter country=USA,UK --metric Sessions
//	dashctl presets
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashctl",
		Short:        "Inspect marketing dashboard datasets",
		SilenceUsage: true,
	}
	root.AddCommand(buildSummarizeCmd(), buildPresetsCmd())
	return root
}
