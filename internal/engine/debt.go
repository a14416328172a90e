package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidationScope/internal/fixedpoint"
)

// validateLTV checks the position id and every auxiliary address against
// both sides of the LTV matrix, in input order, so a broken table surfaces
// before any search starts.
func (ev *evaluation) validateLTV() error {
	addrs := ev.breakdownAddrs()
	for _, addr := range addrs {
		if !positiveEntry(ev.params.LTV.X, addr) {
			return &ConfigError{Asset: addr, Side: DebtX}
		}
		if !positiveEntry(ev.params.LTV.Y, addr) {
			return &ConfigError{Asset: addr, Side: DebtY}
		}
	}
	return nil
}

func (ev *evaluation) breakdownAddrs() []common.Address {
	addrs := make([]common.Address, 0, len(ev.aux)+1)
	addrs = append(addrs, ev.params.Position.ID)
	for i := range ev.aux {
		addrs = append(addrs, ev.aux[i].Address)
	}
	return addrs
}

func positiveEntry(side map[common.Address]*big.Int, addr common.Address) bool {
	v, ok := side[addr]
	return ok && v != nil && v.Sign() > 0
}

// debtValues returns both debts valued in quote units at price p: the X
// debt moves with the price, the Y debt is already quote-denominated.
func (ev *evaluation) debtValues(p *big.Int) (*big.Int, *big.Int) {
	xValue := fixedpoint.MulDivRound(ev.debtX8, p, fixedpoint.One)
	return xValue, new(big.Int).Set(ev.debtY8)
}

// debtRequirement computes the minimum collateral value that keeps every
// debt unit within its LTV limit: each debt is spread across the collateral
// proportionally to value, and every spread share is divided by that
// collateral's limit against the debt's side. Empty collateral carries no
// requirement.
func (ev *evaluation) debtRequirement(p, total *big.Int, breakdown Breakdown) *big.Int {
	wdr := new(big.Int)
	if total.Sign() == 0 {
		return wdr
	}
	xDebtValue, yDebtValue := ev.debtValues(p)
	for addr, value := range breakdown {
		wdr.Add(wdr, spread(xDebtValue, value, total, ev.params.LTV.X[addr]))
		wdr.Add(wdr, spread(yDebtValue, value, total, ev.params.LTV.Y[addr]))
	}
	return wdr
}

// spread allocates debtValue to one collateral entry by value weight,
// divided by the entry's LTV limit, with the numerator multiplied out
// before the single division.
func spread(debtValue, value, total, ltv *big.Int) *big.Int {
	num := new(big.Int).Mul(debtValue, value)
	den := new(big.Int).Mul(total, ltv)
	return fixedpoint.MulDivRound(num, fixedpoint.One, den)
}
