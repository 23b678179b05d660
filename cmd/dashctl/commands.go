package main

import (
	"github.com/spf13/cobra"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
)

type summarizeOptions struct {
	file       string
	dataset    string
	metric     string
	from       string
	to         string
	preset     string
	filters    []string
	shiftDates bool
	days       int
}

func buildSummarizeCmd() *cobra.Command {
	var opts summarizeOptions
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print scorecards and the daily series of a CSV file",
		Long: `Parse a CSV export, apply the cascading filters and the date range,
then print the scorecards and the per-day series of one metric as JSON.

Filters take the query key of a dimension: --filter campaign_name="Spring Sale"
Pass --preset all to ignore dates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file to read")
	cmd.Flags().StringVarP(&opts.dataset, "dataset", "d", dataset.Summary, "Dataset schema (ads, analytics, summary)")
	cmd.Flags().StringVarP(&opts.metric, "metric", "m", "", "Metric of the series (default: first metric of the dataset)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Range start, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "Range end, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "Date preset key, or all")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Dimension filter dim=a,b (repeatable)")
	cmd.Flags().BoolVar(&opts.shiftDates, "shift-dates", false, "Move the data window to end yesterday")
	cmd.Flags().IntVar(&opts.days, "default-days", 30, "Window used when no range is given")
	cmd.MarkFlagRequired("file")
	return cmd
}

func buildPresetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the date range presets relative to today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPresets(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
