package scanner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"liquidationScope/internal/engine"
	"liquidationScope/internal/model"
	"liquidationScope/internal/storage"
)

// Config controls scan behavior.
type Config struct {
	BatchSize    int
	Since        uint64
	MaxRetries   int
	RetryBackoff time.Duration
	LTVOverrides map[string]model.LTVPair
	StateStore   StateStore
}

// Scanner replays position snapshots from a JSONL file and evaluates each
// into a risk report.
type Scanner struct {
	cfg    Config
	sinks  []storage.ReportStorage
	logger *zap.Logger
}

func NewScanner(cfg Config, sinks []storage.ReportStorage, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{cfg: cfg, sinks: sinks, logger: logger}
}

// Evaluate computes the risk report for a single snapshot.
func Evaluate(snap model.PositionSnapshot, overrides map[string]model.LTVPair) (model.RiskReport, error) {
	params, err := snapshotParams(snap, overrides)
	if err != nil {
		return model.RiskReport{}, err
	}
	result, err := engine.CalculateLiquidationPrices(params)
	if err != nil {
		return model.RiskReport{}, err
	}
	evaluatedAt := time.Now().UTC().Format(time.RFC3339)
	return buildReport(snap, params, result, evaluatedAt), nil
}

// ErrorKind classifies an evaluation failure for logs and error records.
func ErrorKind(err error) string {
	var configErr *engine.ConfigError
	if errors.As(err, &configErr) {
		return "config"
	}
	var convErr *engine.ConvergenceError
	if errors.As(err, &convErr) {
		return "convergence"
	}
	return "input"
}

// Run evaluates a snapshots JSONL file, flushing reports to every sink in
// batches and checkpointing progress after each flush.
func (s *Scanner) Run(ctx context.Context, inputPath string) error {
	if len(s.sinks) == 0 {
		return fmt.Errorf("no report sink configured")
	}
	if s.cfg.BatchSize <= 0 {
		s.cfg.BatchSize = 500
	}

	startTs, err := s.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	lines := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	lines.Buffer(buf, 10*1024*1024)

	batch := make([]model.RiskReport, 0, s.cfg.BatchSize)
	maxTs := startTs
	var total, evaluated, atRisk, skipped, failed int

	for lines.Scan() {
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var snap model.PositionSnapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			failed++
			s.logger.Warn("decode snapshot", zap.Error(err))
			continue
		}

		if snap.Timestamp <= startTs {
			skipped++
			continue
		}

		report, err := Evaluate(snap, s.cfg.LTVOverrides)
		if err != nil {
			failed++
			s.logger.Warn("evaluate snapshot",
				zap.String("position", snap.PositionID),
				zap.Uint64("timestamp", snap.Timestamp),
				zap.String("kind", ErrorKind(err)),
				zap.Error(err),
			)
			continue
		}
		evaluated++

		if report.IsAtRisk {
			atRisk++
			s.logger.Warn("position at risk",
				zap.String("position", report.PositionID),
				zap.String("margin_buffer", report.MarginBuffer),
				zap.String("distance_to_low", report.DistanceToLow),
				zap.String("distance_to_high", report.DistanceToHigh),
			)
		}

		batch = append(batch, report)
		if snap.Timestamp > maxTs {
			maxTs = snap.Timestamp
		}

		if len(batch) >= s.cfg.BatchSize {
			if err := s.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]

			if err := s.saveState(ctx, maxTs); err != nil {
				return err
			}
		}
	}

	if err := lines.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if len(batch) > 0 {
		if err := s.flush(ctx, batch); err != nil {
			return err
		}
	}
	if err := s.saveState(ctx, maxTs); err != nil {
		return err
	}

	s.logger.Info("scan complete",
		zap.Int("total", total),
		zap.Int("evaluated", evaluated),
		zap.Int("at_risk", atRisk),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}

func (s *Scanner) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if s.cfg.Since > 0 {
		return s.cfg.Since - 1, nil
	}
	if s.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := s.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (s *Scanner) saveState(ctx context.Context, ts uint64) error {
	if s.cfg.StateStore == nil {
		return nil
	}
	return s.cfg.StateStore.Save(ctx, ts)
}

func (s *Scanner) flush(ctx context.Context, batch []model.RiskReport) error {
	for _, sink := range s.sinks {
		if err := s.withRetry(ctx, func(ctx context.Context) error {
			return sink.PutReportBatch(ctx, batch)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) withRetry(ctx context.Context, fn func(context.Context) error) error {
	maxRetries := s.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := s.cfg.RetryBackoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		s.logger.Warn("sink write failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
