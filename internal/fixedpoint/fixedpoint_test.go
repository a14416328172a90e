package fixedpoint

import (
	"math/big"
	"testing"
)

func TestMulDivRound(t *testing.T) {
	cases := []struct {
		a, b, c int64
		want    int64
	}{
		{10, 10, 4, 25},
		{10, 10, 3, 33},
		{10, 10, 6, 17},
		{1, 1, 2, 1},
		{1, 1, 3, 0},
		{-10, 10, 3, -33},
		{-1, 1, 2, -1},
		{-10, 10, 6, -17},
		{7, 0, 5, 0},
	}
	for _, c := range cases {
		got := MulDivRound(big.NewInt(c.a), big.NewInt(c.b), big.NewInt(c.c))
		if got.Int64() != c.want {
			t.Fatalf("MulDivRound(%d, %d, %d) = %s, want %d", c.a, c.b, c.c, got, c.want)
		}
	}
}

func TestMulDivRoundLarge(t *testing.T) {
	// 1e30 * 1e30 overflows any fixed-width intermediate.
	a := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	got := MulDivRound(a, a, big.NewInt(4))
	want, _ := new(big.Int).SetString("25", 10)
	want.Mul(want, new(big.Int).Exp(big.NewInt(10), big.NewInt(58), nil))
	if got.Cmp(want) != 0 {
		t.Fatalf("large MulDivRound mismatch: %s != %s", got, want)
	}
}

func TestRescale(t *testing.T) {
	cases := []struct {
		amount   int64
		from, to uint8
		want     int64
	}{
		{123, 6, 8, 12300},
		{12345, 8, 6, 123},
		{12399, 8, 6, 123},
		{-12399, 8, 6, -123},
		{42, 8, 8, 42},
		{0, 0, 18, 0},
	}
	for _, c := range cases {
		got := Rescale(big.NewInt(c.amount), c.from, c.to)
		if got.Int64() != c.want {
			t.Fatalf("Rescale(%d, %d, %d) = %s, want %d", c.amount, c.from, c.to, got, c.want)
		}
	}
	if got := Rescale(nil, 6, 8); got.Sign() != 0 {
		t.Fatalf("nil amount should rescale to zero, got %s", got)
	}
}

func TestSqrt1e8(t *testing.T) {
	one := big.NewInt(100_000_000)
	cases := []struct {
		x    *big.Int
		want int64
	}{
		{big.NewInt(100_000_000), 100_000_000},        // sqrt(1) = 1
		{big.NewInt(400_000_000), 200_000_000},        // sqrt(4) = 2
		{big.NewInt(200_000_000), 141_421_356},        // sqrt(2)
		{big.NewInt(25_000_000), 50_000_000},          // sqrt(0.25) = 0.5
		{big.NewInt(1), 10_000},                       // sqrt(1e-8) = 1e-4
		{new(big.Int).Mul(one, one), 1_000_000_000_000}, // sqrt(1e8) = 1e4
		{big.NewInt(0), 0},
		{big.NewInt(-5), 0},
	}
	for _, c := range cases {
		got := Sqrt1e8(c.x)
		if got.Int64() != c.want {
			t.Fatalf("Sqrt1e8(%s) = %s, want %d", c.x, got, c.want)
		}
	}
}

func TestSqrt1e8LargeRange(t *testing.T) {
	// Exactness across the practicable price range: (k*1e8)^2 / 1e8 must
	// root back to k*1e8 for k spanning 1e-4 .. 1e9.
	for _, k := range []int64{1, 137, 10_000, 123_456_789, 1_000_000_000} {
		v := new(big.Int).Mul(big.NewInt(k), One)
		square := MulDivRound(v, v, One)
		got := Sqrt1e8(square)
		if got.Cmp(v) != 0 {
			t.Fatalf("sqrt of squared %s = %s, want %s", v, got, v)
		}
	}
}

func TestClampMinMaxAbs(t *testing.T) {
	lo, hi := big.NewInt(10), big.NewInt(20)
	if got := Clamp(big.NewInt(5), lo, hi); got.Int64() != 10 {
		t.Fatalf("clamp below: %s", got)
	}
	if got := Clamp(big.NewInt(25), lo, hi); got.Int64() != 20 {
		t.Fatalf("clamp above: %s", got)
	}
	if got := Clamp(big.NewInt(15), lo, hi); got.Int64() != 15 {
		t.Fatalf("clamp inside: %s", got)
	}
	if got := Min(big.NewInt(3), big.NewInt(4)); got.Int64() != 3 {
		t.Fatalf("min: %s", got)
	}
	if got := Max(big.NewInt(3), big.NewInt(4)); got.Int64() != 4 {
		t.Fatalf("max: %s", got)
	}
	if got := Abs(big.NewInt(-7)); got.Int64() != 7 {
		t.Fatalf("abs: %s", got)
	}
}

func TestHelpersDoNotAliasInputs(t *testing.T) {
	a := big.NewInt(42)
	got := Min(a, big.NewInt(50))
	got.SetInt64(0)
	if a.Int64() != 42 {
		t.Fatalf("Min aliased its input: %s", a)
	}
}
