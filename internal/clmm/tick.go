package clmm

import (
	"math/big"

	"liquidationScope/internal/fixedpoint"
)

// MaxTick bounds the tick magnitude the conversion accepts; ticks beyond it
// are clamped. Covers every live pool tick with ample headroom.
const MaxTick = 1_000_000

// The exponentiation runs at an 1e18 guard scale so that rounding noise from
// the square-and-multiply steps stays far below the 1e8 output resolution.
var (
	guardOne = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	tickBase = big.NewInt(1_000_100_000_000_000_000) // 1.0001 at the guard scale
)

// TickToPrice converts a pool tick into a Y-per-X price at 1e8 scale,
// adjusted for the two tokens' decimal counts: 1.0001^tick scaled by
// 1e8 * 10^xDecimals / 10^yDecimals. Monotonic in tick.
func TickToPrice(tick int32, xDecimals, yDecimals uint8) *big.Int {
	if tick > MaxTick {
		tick = MaxTick
	} else if tick < -MaxTick {
		tick = -MaxTick
	}
	ratio := pow10001(tick)
	num := new(big.Int).Mul(fixedpoint.One, fixedpoint.Pow10(xDecimals))
	den := new(big.Int).Mul(guardOne, fixedpoint.Pow10(yDecimals))
	return fixedpoint.MulDivRound(ratio, num, den)
}

// pow10001 computes 1.0001^tick at the guard scale by binary exponentiation,
// rounding at every step.
func pow10001(tick int32) *big.Int {
	result := new(big.Int).Set(guardOne)
	if tick == 0 {
		return result
	}
	exp := uint32(tick)
	if tick < 0 {
		exp = uint32(-tick)
	}
	base := new(big.Int).Set(tickBase)
	for exp > 0 {
		if exp&1 == 1 {
			result = fixedpoint.MulDivRound(result, base, guardOne)
		}
		base = fixedpoint.MulDivRound(base, base, guardOne)
		exp >>= 1
	}
	if tick < 0 {
		result = fixedpoint.MulDivRound(guardOne, guardOne, result)
	}
	return result
}
