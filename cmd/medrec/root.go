package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/internal/llm"
	"github.com/cognicore/medrec/pkg/medrec"
	"github.com/cognicore/medrec/pkg/medrec/config"
	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/store"
	"github.com/cognicore/medrec/pkg/medrec/store/sqlite"
)

// app carries the resolved configuration through the command tree.
type app struct {
	configPath string
	datasetDir string
	dbPath     string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:               "medrec",
		Short:             "Symptom-based disease recommendations",
		Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&a.datasetDir, "dataset", "", "CSV dataset directory (overrides dataset.dir)")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database (overrides dataset.db)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	cmd.AddCommand(
		newImportCmd(a),
		newPredictCmd(a),
		newVocabCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.Dataset.Dir = a.datasetDir
	}
	if flags.Changed("db") {
		cfg.Dataset.DB = a.dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// openStore opens the configured database, or returns nil when none is set.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Dataset.DB == "" {
		return nil, nil
	}
	return sqlite.OpenSQLite(ctx, a.cfg.Dataset.DB)
}

// loadBundle prefers the database and falls back to the CSV directory when
// the database is missing or empty.
func (a *app) loadBundle(ctx context.Context, st store.Store) (*dataset.Bundle, error) {
	if st != nil {
		b, err := st.LoadDataset(ctx)
		if err == nil {
			a.logger.Debug("dataset loaded from database", zap.String("db", a.cfg.Dataset.DB))
			return b, nil
		}
		if !errors.Is(err, internalerr.ErrEmptyDataset) {
			return nil, fmt.Errorf("load dataset from %s: %w", a.cfg.Dataset.DB, err)
		}
	}
	if a.cfg.Dataset.Dir == "" {
		return nil, fmt.Errorf("no dataset: %w", internalerr.ErrEmptyDataset)
	}
	return dataset.LoadDir(a.cfg.Dataset.Dir)
}

// build assembles a Medrec from the configuration and loads its dataset.
func (a *app) build(ctx context.Context, st store.Store, mt *metrics.Metrics) (*medrec.Medrec, error) {
	comp, err := config.Build(a.cfg)
	if err != nil {
		return nil, err
	}

	legacy := comp.Legacy
	if a.cfg.Predictor.Legacy == config.LegacyLLM {
		client, err := llm.NewClient(llm.Config{
			BaseURL: a.cfg.LLM.BaseURL,
			APIKey:  a.cfg.LLM.APIKey(),
			Model:   a.cfg.LLM.Model,
			Timeout: a.cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, err
		}
		legacy = llm.NewStrategy(client, a.logger)
	}

	med := medrec.New(medrec.Options{
		Match:          comp.Match,
		RetryThreshold: comp.RetryThreshold,
		Corrector:      comp.Corrector,
		Scoring:        comp.Scorer.Config(),
		Legacy:         legacy,
		Common:         comp.Common,
		Aliases:        comp.Aliases,
		Logger:         a.logger,
		Metrics:        mt,
	})

	b, err := a.loadBundle(ctx, st)
	if err != nil {
		return nil, err
	}
	med.ReloadBundle(b)
	return med, nil
}
