package scanner

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"liquidationScope/internal/model"
)

func TestFormatFixed(t *testing.T) {
	cases := []struct {
		value *big.Int
		want  string
	}{
		{nil, "0"},
		{big.NewInt(0), "0.00000000"},
		{big.NewInt(1), "0.00000001"},
		{big.NewInt(100000000), "1.00000000"},
		{big.NewInt(-6122470), "-0.06122470"},
		{big.NewInt(12345678901), "123.45678901"},
	}
	for _, tc := range cases {
		if got := formatFixed(tc.value); got != tc.want {
			t.Fatalf("formatFixed(%v) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestEvaluateProducesReport(t *testing.T) {
	snap := testSnapshot(100, "50000000")

	report, err := Evaluate(snap, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if report.PositionID != snap.PositionID || report.Timestamp != 100 {
		t.Fatalf("identity fields: %s %d", report.PositionID, report.Timestamp)
	}
	if report.CurrentPrice != "1.00000000" {
		t.Fatalf("current price: %s", report.CurrentPrice)
	}
	if report.TotalDebtValue != "100.00000000" {
		t.Fatalf("total debt value: %s", report.TotalDebtValue)
	}
	if report.WeightedDebtReq != "125.00000000" {
		t.Fatalf("weighted debt requirement: %s", report.WeightedDebtReq)
	}
	if !strings.HasPrefix(report.TotalAssetValue, "278.") {
		t.Fatalf("total asset value: %s", report.TotalAssetValue)
	}
	if report.IsAtRisk {
		t.Fatalf("healthy position flagged at risk")
	}
	if _, ok := report.Breakdown[snap.PositionID]; !ok {
		t.Fatalf("breakdown missing position entry: %v", report.Breakdown)
	}
	if _, err := time.Parse(time.RFC3339, report.EvaluatedAt); err != nil {
		t.Fatalf("evaluated_at not RFC3339: %s", report.EvaluatedAt)
	}
}

func TestEvaluateErrorKinds(t *testing.T) {
	missing := testSnapshot(100, "50000000")
	missing.AuxAssets = []model.AuxHolding{{
		Address:      "0x4444444444444444444444444444444444444444",
		Amount:       "1000000",
		CurrentPrice: "100000000",
		Correlation:  "0",
		Decimals:     6,
	}}
	_, err := Evaluate(missing, nil)
	if err == nil || ErrorKind(err) != "config" {
		t.Fatalf("missing aux ltv should be a config error: %v", err)
	}

	malformed := testSnapshot(100, "50000000")
	malformed.Liquidity = "!!"
	_, err = Evaluate(malformed, nil)
	if err == nil || ErrorKind(err) != "input" {
		t.Fatalf("malformed field should be an input error: %v", err)
	}
}
