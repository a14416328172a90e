package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidationScope/internal/config"
	"liquidationScope/internal/scanner"
	"liquidationScope/internal/storage"
	"liquidationScope/internal/storage/influx"
	"liquidationScope/internal/storage/postgres"
)

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	since, err := config.ParseTimestamp(cfg.Since)
	if err != nil {
		return fmt.Errorf("parse since: %w", err)
	}

	overrides, err := config.ParseLTVOverrides(cfg.LTV)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []storage.ReportStorage{storage.NewJsonlStorage(cfg.Out)}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	if cfg.InfluxURL != "" {
		writer := influx.NewWriter(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		defer writer.Close()
		sinks = append(sinks, writer)
	}

	var stateStore scanner.StateStore
	if cfg.StateFile != "" {
		stateStore = &scanner.FileStateStore{Path: cfg.StateFile}
	} else if store != nil {
		stateStore = &scanner.DBStateStore{Store: store, Name: "scanner"}
	}

	sc := scanner.NewScanner(scanner.Config{
		BatchSize:    cfg.BatchSize,
		Since:        since,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		LTVOverrides: overrides,
		StateStore:   stateStore,
	}, sinks, logger)

	logger.Info("scan start",
		zap.String("in", cfg.Input),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("influx_url", cfg.InfluxURL),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Uint64("since", since),
		zap.Int("ltv_overrides", len(overrides)),
	)

	return sc.Run(ctx, cfg.Input)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
