package engine

import (
	"errors"
	"math/big"

	"liquidationScope/internal/fixedpoint"
)

// PriceMin and PriceMax bound every price the solver considers or reports.
// A side without a finite liquidation boundary collapses to one of them.
var (
	PriceMin = big.NewInt(1)
	PriceMax = new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)
)

const (
	maxIterations = 100
	// consecutive flat samples tolerated before probing the range boundary
	flatStreakLimit = 5
)

var (
	tolerance    = big.NewInt(100)    // 1e-6 of a quote unit at 1e8 scale
	nearMinPrice = big.NewInt(10_000) // prices at or below this collapse to PriceMin
	deltaDivisor = big.NewInt(10_000) // central-difference delta = p * 0.0001
	// |slope| * flatSlopeScale < 2*delta marks the curve locally flat,
	// i.e. a derivative magnitude under 1e-4 in real terms
	flatSlopeScale = big.NewInt(10_000)
)

// solver walks one side of the margin curve looking for the health
// boundary.
type solver struct {
	ev  *evaluation
	dir Direction
}

// searchFrom runs the damped Newton iteration and, when it stalls on a flat
// stretch of the curve, retries once from a probe near the position's range
// boundary. A healthy boundary means the search side has no finite root and
// the directional sentinel is the answer.
func (s *solver) searchFrom(p0 *big.Int) (*big.Int, error) {
	root, err := s.iterate(p0)
	if err == nil {
		return root, nil
	}
	var flat *flatRegionError
	if !errors.As(err, &flat) {
		return nil, err
	}
	probe, noRoot := s.boundaryProbe(flat.price)
	if noRoot {
		return s.sentinel(), nil
	}
	root, err = s.iterate(probe)
	if err == nil {
		return root, nil
	}
	if errors.As(err, &flat) {
		return nil, &ConvergenceError{Direction: s.dir, Iterations: maxIterations, LastPrice: flat.price}
	}
	return nil, err
}

// iterate is the core loop: Newton steps off a central-difference slope,
// with a secant attempt and then a damped fixed step when the curve runs
// flat, and bisection toward the violated bound when a step leaves the
// valid price range.
func (s *solver) iterate(p0 *big.Int) (*big.Int, error) {
	p := fixedpoint.Clamp(p0, PriceMin, PriceMax)
	flatStreak := 0
	for i := 0; i < maxIterations; i++ {
		f := s.ev.marginAt(p)
		if fixedpoint.Abs(f).Cmp(tolerance) <= 0 {
			return p, nil
		}
		if p.Cmp(nearMinPrice) <= 0 {
			// no meaningful refinement this close to the floor
			return new(big.Int).Set(PriceMin), nil
		}

		delta := fixedpoint.Max(big.NewInt(1), fixedpoint.MulDivRound(p, big.NewInt(1), deltaDivisor))
		fAbove := s.ev.marginAt(new(big.Int).Add(p, delta))
		fBelow := s.ev.marginAt(new(big.Int).Sub(p, delta))
		slope := new(big.Int).Sub(fAbove, fBelow)
		twoDelta := new(big.Int).Lsh(delta, 1)

		if new(big.Int).Mul(fixedpoint.Abs(slope), flatSlopeScale).Cmp(twoDelta) < 0 {
			flatStreak++
			if flatStreak >= flatStreakLimit {
				return nil, &flatRegionError{price: p}
			}
			if slope.Sign() != 0 {
				cand := new(big.Int).Sub(p, fixedpoint.MulDivRound(f, twoDelta, slope))
				if cand.Cmp(PriceMin) > 0 && cand.Cmp(PriceMax) < 0 {
					p = cand
					continue
				}
			}
			// damped fixed step toward shrinking |F|
			step := fixedpoint.Max(big.NewInt(1), new(big.Int).Rsh(delta, 2))
			if f.Sign() > 0 {
				p = new(big.Int).Add(p, step)
			} else {
				p = new(big.Int).Sub(p, step)
			}
			p = fixedpoint.Clamp(p, PriceMin, PriceMax)
			continue
		}
		flatStreak = 0

		pNext := new(big.Int).Sub(p, fixedpoint.MulDivRound(f, twoDelta, slope))
		if pNext.Cmp(PriceMin) <= 0 {
			p = bisect(p, PriceMin)
			continue
		}
		if pNext.Cmp(PriceMax) >= 0 {
			p = bisect(p, PriceMax)
			continue
		}
		stepSize := fixedpoint.Abs(new(big.Int).Sub(pNext, p))
		if stepSize.Cmp(fixedpoint.MulDivRound(tolerance, p, fixedpoint.One)) < 0 {
			return pNext, nil
		}
		p = pNext
	}
	return nil, &ConvergenceError{Direction: s.dir, Iterations: maxIterations, LastPrice: p}
}

// boundaryProbe picks the retry guess after a persistent flat stretch at p.
// Inside the position's own price range the probe is one unit past the
// bound on the search side; outside, the exact bound decides: healthy there
// means no finite root (noRoot true), unhealthy restarts one percent inside
// the range.
func (s *solver) boundaryProbe(p *big.Int) (*big.Int, bool) {
	lower, upper := s.ev.curve.PriceLower, s.ev.curve.PriceUpper
	if p.Cmp(lower) >= 0 && p.Cmp(upper) <= 0 {
		if s.dir == SearchDown {
			return new(big.Int).Sub(lower, big.NewInt(1)), false
		}
		return new(big.Int).Add(upper, big.NewInt(1)), false
	}
	if p.Cmp(lower) < 0 {
		if s.ev.marginAt(lower).Sign() >= 0 {
			return nil, true
		}
		return fixedpoint.MulDivRound(lower, big.NewInt(101_000_000), fixedpoint.One), false
	}
	if s.ev.marginAt(upper).Sign() >= 0 {
		return nil, true
	}
	return fixedpoint.MulDivRound(upper, big.NewInt(99_000_000), fixedpoint.One), false
}

func (s *solver) sentinel() *big.Int {
	if s.dir == SearchDown {
		return new(big.Int).Set(PriceMin)
	}
	return new(big.Int).Set(PriceMax)
}

func bisect(p, bound *big.Int) *big.Int {
	mid := new(big.Int).Add(p, bound)
	return mid.Rsh(mid, 1)
}
