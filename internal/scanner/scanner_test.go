package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"liquidationScope/internal/model"
	"liquidationScope/internal/storage"
)

type memorySink struct {
	reports []model.RiskReport
	flushes int
}

func (m *memorySink) PutReportBatch(_ context.Context, reports []model.RiskReport) error {
	batch := make([]model.RiskReport, len(reports))
	copy(batch, reports)
	m.reports = append(m.reports, batch...)
	m.flushes++
	return nil
}

type flakySink struct {
	failures int
	calls    int
}

func (f *flakySink) PutReportBatch(_ context.Context, _ []model.RiskReport) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("sink unavailable")
	}
	return nil
}

func testSnapshot(ts uint64, debt string) model.PositionSnapshot {
	return model.PositionSnapshot{
		ChainID:      56,
		PoolAddress:  "0x2222222222222222222222222222222222222222",
		PositionID:   "0x1111111111111111111111111111111111111111",
		Timestamp:    ts,
		XDecimals:    6,
		YDecimals:    6,
		CurrentPrice: "100000000",
		TickLower:    -3000,
		TickUpper:    3000,
		Liquidity:    "100000000000",
		DebtX:        debt,
		DebtY:        debt,
		PendingValue: "0",
		LTV: map[string]model.LTVPair{
			"0x1111111111111111111111111111111111111111": {X: "80000000", Y: "80000000"},
		},
	}
}

func writeSnapshots(t *testing.T, path string, snaps []model.PositionSnapshot, extra []string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open snapshots file: %v", err)
	}
	defer file.Close()

	for _, snap := range snaps {
		line, err := json.Marshal(snap)
		if err != nil {
			t.Fatalf("marshal snapshot: %v", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			t.Fatalf("write snapshot: %v", err)
		}
	}
	for _, raw := range extra {
		if _, err := file.WriteString(raw + "\n"); err != nil {
			t.Fatalf("write raw line: %v", err)
		}
	}
}

func TestScannerRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "snapshots.jsonl")
	statePath := filepath.Join(dir, "state.json")
	writeSnapshots(t, input, []model.PositionSnapshot{
		testSnapshot(100, "50000000"),
		testSnapshot(200, "200000000"),
	}, []string{"not json", ""})

	sink := &memorySink{}
	sc := NewScanner(Config{
		BatchSize:  1,
		StateStore: &FileStateStore{Path: statePath},
	}, []storage.ReportStorage{sink}, nil)

	if err := sc.Run(context.Background(), input); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sink.reports) != 2 {
		t.Fatalf("report count: %d", len(sink.reports))
	}
	if sink.flushes != 2 {
		t.Fatalf("batch size 1 should flush per report: %d", sink.flushes)
	}
	if sink.reports[0].IsAtRisk {
		t.Fatalf("healthy position flagged at risk")
	}
	if !sink.reports[1].IsAtRisk {
		t.Fatalf("underwater position not flagged")
	}
	if sink.reports[1].LiquidationPriceLow != "1.00000000" {
		t.Fatalf("underwater boundary should be the current price: %s", sink.reports[1].LiquidationPriceLow)
	}

	ts, ok, err := (&FileStateStore{Path: statePath}).Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("state load: ts=%d ok=%v err=%v", ts, ok, err)
	}
	if ts != 200 {
		t.Fatalf("state should track the max timestamp: %d", ts)
	}
}

func TestScannerResumesFromState(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "snapshots.jsonl")
	statePath := filepath.Join(dir, "state.json")
	writeSnapshots(t, input, []model.PositionSnapshot{
		testSnapshot(100, "50000000"),
		testSnapshot(200, "50000000"),
	}, nil)

	state := &FileStateStore{Path: statePath}
	first := &memorySink{}
	if err := NewScanner(Config{StateStore: state}, []storage.ReportStorage{first}, nil).Run(context.Background(), input); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(first.reports) != 2 {
		t.Fatalf("first run report count: %d", len(first.reports))
	}

	writeSnapshots(t, input, []model.PositionSnapshot{testSnapshot(300, "50000000")}, nil)

	second := &memorySink{}
	if err := NewScanner(Config{StateStore: state}, []storage.ReportStorage{second}, nil).Run(context.Background(), input); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.reports) != 1 {
		t.Fatalf("resume should only evaluate new lines: %d", len(second.reports))
	}
	if second.reports[0].Timestamp != 300 {
		t.Fatalf("resume picked the wrong line: %d", second.reports[0].Timestamp)
	}
}

func TestScannerSinceOverridesState(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "snapshots.jsonl")
	statePath := filepath.Join(dir, "state.json")
	writeSnapshots(t, input, []model.PositionSnapshot{
		testSnapshot(100, "50000000"),
		testSnapshot(200, "50000000"),
	}, nil)

	state := &FileStateStore{Path: statePath}
	if err := state.Save(context.Background(), 200); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	sink := &memorySink{}
	cfg := Config{Since: 100, StateStore: state}
	if err := NewScanner(cfg, []storage.ReportStorage{sink}, nil).Run(context.Background(), input); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sink.reports) != 2 {
		t.Fatalf("since should reprocess from the given timestamp: %d", len(sink.reports))
	}
}

func TestScannerRetriesFailedFlush(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "snapshots.jsonl")
	writeSnapshots(t, input, []model.PositionSnapshot{testSnapshot(100, "50000000")}, nil)

	sink := &flakySink{failures: 1}
	sc := NewScanner(Config{
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, []storage.ReportStorage{sink}, nil)

	if err := sc.Run(context.Background(), input); err != nil {
		t.Fatalf("run should survive one sink failure: %v", err)
	}
	if sink.calls != 2 {
		t.Fatalf("expected a retry, got %d calls", sink.calls)
	}
}

func TestScannerExhaustsRetries(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "snapshots.jsonl")
	writeSnapshots(t, input, []model.PositionSnapshot{testSnapshot(100, "50000000")}, nil)

	sink := &flakySink{failures: 10}
	sc := NewScanner(Config{
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}, []storage.ReportStorage{sink}, nil)

	if err := sc.Run(context.Background(), input); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if sink.calls != 2 {
		t.Fatalf("expected two attempts, got %d", sink.calls)
	}
}

func TestScannerRequiresSink(t *testing.T) {
	sc := NewScanner(Config{}, nil, nil)
	if err := sc.Run(context.Background(), "unused"); err == nil {
		t.Fatalf("expected error without sinks")
	}
}
