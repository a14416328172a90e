package clmm

import (
	"math/big"

	"liquidationScope/internal/fixedpoint"
)

// maxTokenAmount saturates the all-X amount when a degenerate zero price
// range would otherwise divide by zero. Such ranges only appear during
// search excursions far outside any real position.
var maxTokenAmount = new(big.Int).Exp(big.NewInt(10), big.NewInt(26), nil)

// Range holds a position's price bounds with their square roots cached: the
// bounds stay fixed while the hypothetical price moves, and the amount
// formulas are the hottest call path of a search.
type Range struct {
	PriceLower *big.Int
	PriceUpper *big.Int
	sqrtLower  *big.Int
	sqrtUpper  *big.Int
}

// NewRange builds a Range from already-scaled 1e8 price bounds.
func NewRange(priceLower, priceUpper *big.Int) *Range {
	return &Range{
		PriceLower: new(big.Int).Set(priceLower),
		PriceUpper: new(big.Int).Set(priceUpper),
		sqrtLower:  fixedpoint.Sqrt1e8(priceLower),
		sqrtUpper:  fixedpoint.Sqrt1e8(priceUpper),
	}
}

// RangeFromTicks builds a Range from a position's tick bounds.
func RangeFromTicks(tickLower, tickUpper int32, xDecimals, yDecimals uint8) *Range {
	return NewRange(
		TickToPrice(tickLower, xDecimals, yDecimals),
		TickToPrice(tickUpper, xDecimals, yDecimals),
	)
}

// Amounts returns the X and Y token quantities (1e8 scale) held by a
// position of the given liquidity at hypothetical price p. Below the range
// the position is all X, above it all Y, in between it holds both.
func (r *Range) Amounts(liquidity, p *big.Int) (*big.Int, *big.Int) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}
	switch {
	case p.Cmp(r.PriceLower) <= 0:
		return r.amountX(liquidity, r.sqrtLower), new(big.Int)
	case p.Cmp(r.PriceUpper) >= 0:
		span := new(big.Int).Sub(r.sqrtUpper, r.sqrtLower)
		return new(big.Int), fixedpoint.MulDivRound(liquidity, span, fixedpoint.One)
	default:
		sqrtP := fixedpoint.Sqrt1e8(p)
		x := r.amountX(liquidity, sqrtP)
		y := fixedpoint.MulDivRound(liquidity, new(big.Int).Sub(sqrtP, r.sqrtLower), fixedpoint.One)
		return x, y
	}
}

// amountX computes L * (sqrtUpper - sqrtFrom) / (sqrtFrom * sqrtUpper) at
// 1e8 scale with the numerator multiplied out first, saturating when the
// denominator collapses to zero.
func (r *Range) amountX(liquidity, sqrtFrom *big.Int) *big.Int {
	den := new(big.Int).Mul(sqrtFrom, r.sqrtUpper)
	if den.Sign() == 0 {
		return new(big.Int).Set(maxTokenAmount)
	}
	num := new(big.Int).Mul(liquidity, new(big.Int).Sub(r.sqrtUpper, sqrtFrom))
	return fixedpoint.MulDivRound(num, fixedpoint.One, den)
}
