package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidationScope/internal/config"
	"liquidationScope/internal/model"
	"liquidationScope/internal/scanner"
)

func runCheck(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCheck(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	overrides, err := config.ParseLTVOverrides(cfg.LTV)
	if err != nil {
		return err
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := newJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	outWriter.indent = cfg.Pretty
	defer outWriter.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("check start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("ltv_overrides", len(overrides)),
	)

	lines := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	lines.Buffer(buf, 10*1024*1024)

	var total, checked, atRisk, failed int
	for lines.Scan() {
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var snap model.PositionSnapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			failed++
			writeEvalError(errWriter, model.EvalError{Kind: "input", Error: err.Error()})
			continue
		}

		report, err := scanner.Evaluate(snap, overrides)
		if err != nil {
			failed++
			writeEvalError(errWriter, model.EvalError{
				PositionID: snap.PositionID,
				Timestamp:  snap.Timestamp,
				Kind:       scanner.ErrorKind(err),
				Error:      err.Error(),
			})
			continue
		}

		if err := outWriter.Write(report); err != nil {
			return err
		}
		checked++
		if report.IsAtRisk {
			atRisk++
		}
	}

	if err := lines.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("check complete",
		zap.Int("total", total),
		zap.Int("checked", checked),
		zap.Int("at_risk", atRisk),
		zap.Int("failed", failed),
	)

	return nil
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
	stdout bool
	indent bool
}

func newJSONLWriter(path string, appendMode bool) (*jsonlWriter, error) {
	if path == "-" {
		return &jsonlWriter{
			file:   os.Stdout,
			writer: bufio.NewWriter(os.Stdout),
			stdout: true,
		}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	var line []byte
	var err error
	if w.indent {
		line, err = json.MarshalIndent(value, "", "  ")
	} else {
		line, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		if !w.stdout {
			w.file.Close()
		}
		return err
	}
	if w.stdout {
		return nil
	}
	return w.file.Close()
}

func writeEvalError(writer *jsonlWriter, errRecord model.EvalError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
