package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chart-metrics-lab/internal/pipeline"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List chart families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "series (render):")
			for _, name := range pipeline.SeriesFamilyNames() {
				f, _ := pipeline.LookupFamily(name)
				fmt.Fprintf(out, "  %-20s %s\n", name, describeFamily(f))
			}

			fmt.Fprintln(out, "ranking (rank):")
			for _, name := range pipeline.RankFamilyNames() {
				f, _ := pipeline.LookupRankFamily(name)
				fmt.Fprintf(out, "  %-20s metric=%s\n", name, f.Metric)
			}
			return nil
		},
	}
}

func describeFamily(f pipeline.Family) string {
	metrics := make([]string, len(f.Metrics))
	for i, m := range f.Metrics {
		metrics[i] = string(m)
	}

	parts := []string{"metrics=" + strings.Join(metrics, ",")}
	switch f.Cumulative {
	case pipeline.CumulativeOptional:
		parts = append(parts, "cumulative=optional")
	case pipeline.CumulativeAlways:
		parts = append(parts, "cumulative=always")
	}
	if f.Sparse {
		parts = append(parts, "sparse")
	}
	if f.RecencySlack > 0 {
		parts = append(parts, fmt.Sprintf("slack=%d", f.RecencySlack))
	}
	if f.TopN > 0 {
		parts = append(parts, fmt.Sprintf("top=%d", f.TopN))
	}
	if f.Bulk {
		parts = append(parts, "bulk")
	}
	return strings.Join(parts, " ")
}
