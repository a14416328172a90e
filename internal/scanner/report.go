package scanner

import (
	"math/big"

	"liquidationScope/internal/engine"
	"liquidationScope/internal/model"
)

const reportDecimals = 8

// formatFixed renders a 1e8-scaled integer as an exact decimal string.
func formatFixed(value *big.Int) string {
	if value == nil {
		return "0"
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(reportDecimals), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(reportDecimals)
	if sign < 0 {
		return "-" + text
	}
	return text
}

// buildReport flattens an engine result into the wire report.
func buildReport(snap model.PositionSnapshot, params *engine.Params, res *engine.Result, evaluatedAt string) model.RiskReport {
	breakdown := make(map[string]string, len(res.Breakdown))
	for addr, value := range res.Breakdown {
		breakdown[addr.Hex()] = formatFixed(value)
	}

	return model.RiskReport{
		ChainID:              snap.ChainID,
		PoolAddress:          snap.PoolAddress,
		PositionID:           snap.PositionID,
		Timestamp:            snap.Timestamp,
		EvaluatedAt:          evaluatedAt,
		CurrentPrice:         formatFixed(params.CurrentPrice),
		LiquidationPriceLow:  formatFixed(res.LiquidationPriceLow),
		LiquidationPriceHigh: formatFixed(res.LiquidationPriceHigh),
		MarginRatio:          formatFixed(res.MarginRatio),
		MarginBuffer:         formatFixed(res.MarginBuffer),
		IsAtRisk:             res.IsAtRisk,
		DistanceToLow:        formatFixed(res.DistanceToLow),
		DistanceToHigh:       formatFixed(res.DistanceToHigh),
		TotalAssetValue:      formatFixed(res.TotalAssetValue),
		TotalDebtValue:       formatFixed(res.TotalDebtValue),
		WeightedDebtReq:      formatFixed(res.WeightedDebtReq),
		Breakdown:            breakdown,
	}
}
