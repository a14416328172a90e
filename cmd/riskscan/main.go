package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "riskscan",
		Short:        "Liquidation price scanner for leveraged CLMM positions",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Evaluate position snapshots and persist risk reports",
		RunE:  runScan,
	}

	scanCmd.Flags().String("in", "", "input position snapshots JSONL")
	scanCmd.Flags().String("out", "./data/risk_reports.jsonl", "output risk reports JSONL")
	scanCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	scanCmd.Flags().String("influx-url", "", "InfluxDB server URL")
	scanCmd.Flags().String("influx-token", "", "InfluxDB auth token")
	scanCmd.Flags().String("influx-org", "riskscan", "InfluxDB organization")
	scanCmd.Flags().String("influx-bucket", "liquidation", "InfluxDB bucket")
	scanCmd.Flags().Int("batch-size", 500, "batch size for sink writes")
	scanCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	scanCmd.Flags().String("since", "", "reprocess from timestamp (unix seconds or RFC3339)")
	scanCmd.Flags().Int("max-retries", 5, "maximum sink retry attempts")
	scanCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial sink retry backoff")
	scanCmd.Flags().String("ltv", "", "LTV overrides (comma-separated address=x:y, 1e8 scale)")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate snapshots once and write reports to a file or stdout",
		RunE:  runCheck,
	}

	checkCmd.Flags().String("in", "", "input position snapshots JSONL")
	checkCmd.Flags().String("out", "-", "output risk reports JSONL, - for stdout")
	checkCmd.Flags().String("errors", "./data/eval_errors.jsonl", "evaluation errors JSONL")
	checkCmd.Flags().String("ltv", "", "LTV overrides (comma-separated address=x:y, 1e8 scale)")
	checkCmd.Flags().Bool("pretty", false, "indent report JSON")
	checkCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
