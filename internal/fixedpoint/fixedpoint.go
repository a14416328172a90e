package fixedpoint

import "math/big"

// One is the fixed-point unit: prices and quote values carry eight decimals.
var One = big.NewInt(100_000_000)

var ten = big.NewInt(10)

// Pow10 returns 10^n as a fresh big.Int.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// MulDivRound computes round(a*b/c) with the numerator multiplied out in
// full before dividing, rounding half away from zero. c must be non-zero.
func MulDivRound(a, b, c *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	quo, rem := new(big.Int).QuoRem(num, c, new(big.Int))
	rem.Abs(rem)
	rem.Lsh(rem, 1)
	if rem.CmpAbs(c) >= 0 {
		if (num.Sign() < 0) != (c.Sign() < 0) {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return quo
}

// Rescale converts amount between decimal scales, truncating toward zero
// when the target scale is coarser.
func Rescale(amount *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	if fromDecimals == toDecimals {
		return new(big.Int).Set(amount)
	}
	if toDecimals > fromDecimals {
		return new(big.Int).Mul(amount, Pow10(toDecimals-fromDecimals))
	}
	return new(big.Int).Quo(amount, Pow10(fromDecimals-toDecimals))
}

// Sqrt1e8 returns round(sqrt(x) * 1e8) for x at 1e8 scale, i.e. the square
// root of the real number x/1e8 rescaled back to eight decimals. Inputs
// that are nil or non-positive return zero.
func Sqrt1e8(x *big.Int) *big.Int {
	if x == nil || x.Sign() <= 0 {
		return new(big.Int)
	}
	n := new(big.Int).Mul(x, One)
	s := new(big.Int).Sqrt(n)
	// n = s^2 + rem with rem in [0, 2s]; the midpoint to the next square
	// sits at rem == s, so anything beyond rounds up.
	rem := new(big.Int).Sub(n, new(big.Int).Mul(s, s))
	if rem.Cmp(s) > 0 {
		s.Add(s, big.NewInt(1))
	}
	return s
}

// Min returns the smaller of a and b as a fresh big.Int.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Max returns the larger of a and b as a fresh big.Int.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Abs returns |a| as a fresh big.Int.
func Abs(a *big.Int) *big.Int {
	return new(big.Int).Abs(a)
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi *big.Int) *big.Int {
	if v.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if v.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(v)
}
