package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ConfigError reports a collateral address whose LTV entry is missing or
// non-positive on one debt side. The supplied LTV table is incomplete and
// must be refreshed before retrying.
type ConfigError struct {
	Asset common.Address
	Side  DebtSide
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ltv entry for %s missing or non-positive on %s side", e.Asset.Hex(), e.Side)
}

// ConvergenceError reports a root search that exhausted its iteration
// cap without meeting the tolerance.
type ConvergenceError struct {
	Direction  Direction
	Iterations int
	LastPrice  *big.Int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("liquidation search %s did not converge after %d iterations (last price %s)",
		e.Direction, e.Iterations, e.LastPrice)
}

// flatRegionError signals a run of locally flat margin samples; the solver
// probes the position's range boundary before giving up.
type flatRegionError struct {
	price *big.Int
}

func (e *flatRegionError) Error() string {
	return fmt.Sprintf("margin curve flat near price %s", e.price)
}
