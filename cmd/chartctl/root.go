package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chart-metrics-lab/internal/config"
	"chart-metrics-lab/internal/logger"
	"chart-metrics-lab/internal/observability"
	"chart-metrics-lab/internal/pipeline"
	"chart-metrics-lab/internal/storage"
	"chart-metrics-lab/internal/storage/memory"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	envFile  string
	logLevel string
	nowFlag     string
	metricsFile string

	cfg     *config.Config
	log     *logrus.Entry
	now     time.Time
	metrics *observability.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "chartctl",
		Short: "Shape fetched metric records into chart-ready series",
		Long: `chartctl runs the chart family pipelines over a JSON fixture of fetched
metric records and prints the resulting rows.

Example usage:
  chartctl families
  chartctl render revenue --input records.json --length 30
  chartctl render project-top10 --input records.json --length 90 --cumulative
  chartctl rank pe --input snapshot.json --category DeFi
  chartctl percent 25 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.flushMetrics()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file to load (default: .env when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override")
	root.PersistentFlags().StringVar(&a.nowFlag, "now", "", "evaluation time, RFC 3339 (default: current time)")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write engine metrics to this file (Prometheus text format)")

	root.AddCommand(
		newFamiliesCmd(),
		newRenderCmd(a),
		newRankCmd(a),
		newPercentCmd(),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.cfgFile, a.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	l, err := logger.New(logger.Options{
		Level:      level,
		Format:     cfg.Logging.Format,
		Output:     stderr,
		File:       cfg.Logging.File,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	a.log = l.WithField("run_id", uuid.NewString())

	a.metrics = observability.NewMetrics("", nil)

	a.now = time.Now().UTC()
	if a.nowFlag != "" {
		t, err := time.Parse(time.RFC3339, a.nowFlag)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		a.now = t.UTC()
	}

	a.log.WithFields(logrus.Fields{
		"config":          a.cfgFile,
		"selected_length": cfg.Engine.SelectedLength,
		"now":             a.now.Format(time.RFC3339),
	}).Debug("configuration loaded")
	return nil
}

func (a *app) engine() *pipeline.Engine {
	now := a.now
	return pipeline.NewEngine().
		WithClock(func() time.Time { return now }).
		WithLogger(a.log).
		WithMetrics(a.metrics)
}

func (a *app) flushMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.log.WithField("path", a.metricsFile).Debug("metrics written")
	return nil
}

// loadStore reads the fixture at path ("-" for stdin) into a fresh store.
func (a *app) loadStore(cmd *cobra.Command, path string) (*memory.RecordStore, error) {
	if path == "" {
		return nil, fmt.Errorf("--input is required")
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	fixture, err := storage.DecodeFixture(r)
	if err != nil {
		return nil, err
	}
	store := memory.NewRecordStore()
	if err := fixture.Load(cmd.Context(), store); err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	return store, nil
}

func (a *app) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if a.cfg.Output.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
