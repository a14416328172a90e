package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ScanConfig holds configuration for the scan command.
type ScanConfig struct {
	Input        string
	Out          string
	PGDSN        string
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
	BatchSize    int
	StateFile    string
	Since        string
	MaxRetries   int
	RetryBackoff time.Duration
	LTV          map[string]string
	LogLevel     string
}

// LoadScan merges config file, environment variables, and flags into ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RISKSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/risk_reports.jsonl")
	v.SetDefault("batch-size", 500)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("influx-org", "riskscan")
	v.SetDefault("influx-bucket", "liquidation")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ScanConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ScanConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return ScanConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := ScanConfig{
		Input:        v.GetString("in"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		InfluxURL:    v.GetString("influx-url"),
		InfluxToken:  v.GetString("influx-token"),
		InfluxOrg:    v.GetString("influx-org"),
		InfluxBucket: v.GetString("influx-bucket"),
		BatchSize:    v.GetInt("batch-size"),
		StateFile:    v.GetString("state-file"),
		Since:        v.GetString("since"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LTV:          getStringMap(v, "ltv"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
