package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/pipeline"
)

type rankOutput struct {
	Family   string                `json:"family"`
	Entities []domain.RankedEntity `json:"entities"`
}

func newRankCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "rank <family>",
		Short: "Rank entities by their latest value (ps, pe, total-tvl)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := pipeline.LookupRankFamily(args[0])
			if err != nil {
				return err
			}
			req, err := flags.request(a, cmd)
			if err != nil {
				return err
			}

			store, err := a.loadStore(cmd, flags.input)
			if err != nil {
				return err
			}
			if req.Data, err = store.GetDataSet(cmd.Context(), nil); err != nil {
				return fmt.Errorf("read records: %w", err)
			}

			entities := a.engine().Rank(family, req)

			a.log.WithFields(logrus.Fields{
				"family":   family.Name,
				"entities": len(entities),
			}).Info("ranking rendered")

			return a.writeJSON(cmd.OutOrStdout(), rankOutput{Family: family.Name, Entities: entities})
		},
	}
	flags.register(cmd, false)
	return cmd
}
