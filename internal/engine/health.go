package engine

import (
	"math/big"

	"liquidationScope/internal/fixedpoint"
)

// healthSentinel is the margin ratio reported when there is no debt
// requirement at all: effectively infinite health.
var healthSentinel = new(big.Int).Mul(fixedpoint.One, big.NewInt(1_000_000))

// marginRatio scales total collateral value against the weighted debt
// requirement.
func marginRatio(totalAssets, wdr *big.Int) *big.Int {
	if wdr.Sign() == 0 {
		return new(big.Int).Set(healthSentinel)
	}
	return fixedpoint.MulDivRound(totalAssets, fixedpoint.One, wdr)
}

func healthy(totalAssets, wdr *big.Int) bool {
	return totalAssets.Cmp(wdr) >= 0
}

// marginAt evaluates the margin surplus F(p): collateral value minus the
// weighted debt requirement at hypothetical price p. Roots of F are the
// liquidation boundary.
func (ev *evaluation) marginAt(p *big.Int) *big.Int {
	total, breakdown := ev.assetValue(p)
	wdr := ev.debtRequirement(p, total, breakdown)
	return total.Sub(total, wdr)
}
