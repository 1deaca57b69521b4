package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/pipeline"
	"chart-metrics-lab/internal/storage"
)

// requestFlags are the request parameters shared by render and rank.
type requestFlags struct {
	input      string
	length     int
	metrics    []string
	categories []string
	projects   []string
	cumulative bool
	exchange   bool
	amount     int
	reverse    bool
	share      bool
}

func (f *requestFlags) register(cmd *cobra.Command, series bool) {
	cmd.Flags().StringVar(&f.input, "input", "", "JSON fixture of fetched records (- for stdin)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "category filter (repeatable)")
	cmd.Flags().StringSliceVar(&f.projects, "project", nil, "project filter (repeatable)")
	cmd.Flags().IntVar(&f.amount, "amount", 0, "number of keys/entities to keep (0: family default)")
	if !series {
		return
	}
	cmd.Flags().IntVar(&f.length, "length", 0, "lookback in days; above 365 charts monthly (0: config default)")
	cmd.Flags().StringSliceVar(&f.metrics, "metric", nil, "metric key (repeatable; default: family metric)")
	cmd.Flags().BoolVar(&f.cumulative, "cumulative", false, "show running totals where the family allows it")
	cmd.Flags().BoolVar(&f.exchange, "exchange", false, "series is an exchange (enables cumulative gmv)")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "select the lowest-ranked keys (ratio metrics)")
	cmd.Flags().BoolVar(&f.share, "share", false, "convert values to percentage of the period total")
}

// request merges flags over the configured defaults.
func (f *requestFlags) request(a *app, cmd *cobra.Command) (pipeline.Request, error) {
	req := pipeline.Request{
		SelectedLength: a.cfg.Engine.SelectedLength,
		Projects:       f.projects,
		Cumulative:     f.cumulative,
		IsExchange:     a.cfg.Engine.Exchange,
		Amount:         a.cfg.Engine.TopN,
		ReverseRank:    f.reverse,
		Share:          f.share,
	}
	if f.length > 0 {
		req.SelectedLength = f.length
	}
	if cmd.Flags().Changed("exchange") {
		req.IsExchange = f.exchange
	}
	if f.amount > 0 {
		req.Amount = f.amount
	}

	metrics, err := domain.ParseMetricKeys(f.metrics)
	if err != nil {
		return req, err
	}
	req.Metrics = metrics

	if len(f.categories) > 0 {
		for _, c := range f.categories {
			cat, err := domain.ParseCategory(c)
			if err != nil {
				return req, err
			}
			req.Categories = append(req.Categories, cat)
		}
	} else {
		req.Categories, err = a.cfg.CategorySet()
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

type renderOutput struct {
	Family string               `json:"family"`
	Keys   []string             `json:"keys"`
	Rows   domain.Chronological `json:"rows"`
}

func newRenderCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "render <family> [family...]",
		Short: "Build the chart series of one or more families",
		Long: `Build the chart series of one or more families from the same input.
Several families are built concurrently and printed as a JSON array in
argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			families := make([]pipeline.Family, len(args))
			for i, name := range args {
				f, err := pipeline.LookupFamily(name)
				if err != nil {
					return err
				}
				families[i] = f
			}
			req, err := flags.request(a, cmd)
			if err != nil {
				return err
			}

			store, err := a.loadStore(cmd, flags.input)
			if err != nil {
				return err
			}

			engine := a.engine()
			outputs := make([]renderOutput, len(families))
			g, gctx := errgroup.WithContext(cmd.Context())
			for i, family := range families {
				g.Go(func() error {
					out, err := render(gctx, engine, store, family, req)
					if err != nil {
						return fmt.Errorf("%s: %w", family.Name, err)
					}
					outputs[i] = out

					a.log.WithFields(logrus.Fields{
						"family": family.Name,
						"rows":   len(out.Rows),
						"keys":   len(out.Keys),
					}).Info("series rendered")
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if len(outputs) == 1 {
				return a.writeJSON(cmd.OutOrStdout(), outputs[0])
			}
			return a.writeJSON(cmd.OutOrStdout(), outputs)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func render(ctx context.Context, engine *pipeline.Engine, store storage.RecordStore, family pipeline.Family, req pipeline.Request) (renderOutput, error) {
	if err := ctx.Err(); err != nil {
		return renderOutput{}, err
	}

	var err error
	if family.Bulk {
		req.Bulk, err = store.GetBulk(ctx, nil)
	} else {
		req.Data, err = store.GetDataSet(ctx, nil)
	}
	if err != nil {
		return renderOutput{}, fmt.Errorf("read records: %w", err)
	}

	result := engine.Run(family, req)
	keys := result.Keys
	if keys == nil {
		keys = []string{}
	}
	return renderOutput{Family: family.Name, Keys: keys, Rows: result.Rows}, nil
}
