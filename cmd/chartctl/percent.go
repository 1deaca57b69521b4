package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chart-metrics-lab/internal/share"
)

func newPercentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "percent <value> <total>",
		Short: "Format value as a percentage of total",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			total, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("parse total: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), share.GetPercent(value, total))
			return err
		},
	}
}
