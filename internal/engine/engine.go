package engine

import (
	"math/big"

	"liquidationScope/internal/fixedpoint"
)

var (
	searchDownFactor = big.NewInt(70_000_000)  // first guess below: 0.7x current
	searchUpFactor   = big.NewInt(130_000_000) // first guess above: 1.3x current
	atRiskBuffer     = big.NewInt(10_000_000)  // within 10% of the boundary
)

// CalculateLiquidationPrices evaluates one position snapshot end to end:
// health at the snapshot price, then a root search below and above the
// current price when the position is still healthy. Returns a complete
// Result or an error, never a partial Result.
func CalculateLiquidationPrices(params *Params) (*Result, error) {
	ev, err := newEvaluation(params)
	if err != nil {
		return nil, err
	}
	total, breakdown := ev.assetValue(ev.current)
	wdr := ev.debtRequirement(ev.current, total, breakdown)
	xDebt, yDebt := ev.debtValues(ev.current)
	ratio := marginRatio(total, wdr)

	res := &Result{
		MarginRatio:     ratio,
		MarginBuffer:    new(big.Int).Sub(ratio, fixedpoint.One),
		TotalAssetValue: total,
		TotalDebtValue:  new(big.Int).Add(xDebt, yDebt),
		WeightedDebtReq: wdr,
		Breakdown:       breakdown,
	}

	if !healthy(total, wdr) {
		// already past the boundary: the snapshot price is the answer on
		// both sides
		res.LiquidationPriceLow = new(big.Int).Set(ev.current)
		res.LiquidationPriceHigh = new(big.Int).Set(ev.current)
		res.IsAtRisk = true
		res.DistanceToLow = new(big.Int)
		res.DistanceToHigh = new(big.Int)
		return res, nil
	}

	if ev.debtX8.Sign() == 0 && ev.debtY8.Sign() == 0 {
		// no debt, no liquidation boundary on either side
		res.LiquidationPriceLow = new(big.Int).Set(PriceMin)
		res.LiquidationPriceHigh = new(big.Int).Set(PriceMax)
		res.DistanceToLow = new(big.Int).Set(fixedpoint.One)
		res.DistanceToHigh = new(big.Int).Set(fixedpoint.One)
		return res, nil
	}

	low, err := (&solver{ev: ev, dir: SearchDown}).searchFrom(
		fixedpoint.MulDivRound(ev.current, searchDownFactor, fixedpoint.One))
	if err != nil {
		return nil, err
	}
	high, err := (&solver{ev: ev, dir: SearchUp}).searchFrom(
		fixedpoint.MulDivRound(ev.current, searchUpFactor, fixedpoint.One))
	if err != nil {
		return nil, err
	}

	// a root that landed on the wrong side of the current price collapses
	// to its side's sentinel
	if low.Cmp(ev.current) >= 0 {
		low = new(big.Int).Set(PriceMin)
	}
	if high.Cmp(ev.current) <= 0 {
		high = new(big.Int).Set(PriceMax)
	}

	res.LiquidationPriceLow = low
	res.LiquidationPriceHigh = high
	res.IsAtRisk = res.MarginBuffer.Cmp(atRiskBuffer) <= 0
	res.DistanceToLow = distanceBelow(ev.current, low)
	res.DistanceToHigh = distanceAbove(ev.current, high)
	return res, nil
}

// distanceBelow reports how far below current the boundary sits, as a
// fraction of current price; a collapsed side reads as a full move.
func distanceBelow(current, low *big.Int) *big.Int {
	if low.Cmp(PriceMin) <= 0 {
		return new(big.Int).Set(fixedpoint.One)
	}
	return fixedpoint.MulDivRound(new(big.Int).Sub(current, low), fixedpoint.One, current)
}

func distanceAbove(current, high *big.Int) *big.Int {
	if high.Cmp(PriceMax) >= 0 {
		return new(big.Int).Set(fixedpoint.One)
	}
	return fixedpoint.MulDivRound(new(big.Int).Sub(high, current), fixedpoint.One, current)
}
