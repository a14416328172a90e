package engine

import (
	"errors"
	"fmt"
	"math/big"

	"liquidationScope/internal/clmm"
	"liquidationScope/internal/fixedpoint"
)

// quoteDecimals is the scale every value is normalized to before combining.
const quoteDecimals = 8

// evaluation caches what stays fixed while the hypothetical price moves:
// the position's price range with its square roots, the debts rescaled to
// quote decimals, and normalized copies of the collateral inputs.
type evaluation struct {
	params    *Params
	current   *big.Int
	liquidity *big.Int
	pending   *big.Int
	debtX8    *big.Int
	debtY8    *big.Int
	curve     *clmm.Range
	aux       []AuxAsset
}

func newEvaluation(params *Params) (*evaluation, error) {
	if params == nil {
		return nil, errors.New("nil liquidation params")
	}
	if params.CurrentPrice == nil || params.CurrentPrice.Sign() <= 0 {
		return nil, errors.New("current price must be positive")
	}
	pos := params.Position
	if pos.TickLower > pos.TickUpper {
		return nil, fmt.Errorf("inverted tick range [%d, %d]", pos.TickLower, pos.TickUpper)
	}
	if isNegative(pos.Liquidity) || isNegative(pos.DebtX) || isNegative(pos.DebtY) ||
		isNegative(pos.PendingFeeAndRewardsValue) {
		return nil, errors.New("position amounts must be non-negative")
	}

	ev := &evaluation{
		params:    params,
		current:   new(big.Int).Set(params.CurrentPrice),
		liquidity: orZero(pos.Liquidity),
		pending:   orZero(pos.PendingFeeAndRewardsValue),
		debtX8:    fixedpoint.Rescale(pos.DebtX, params.XDecimals, quoteDecimals),
		debtY8:    fixedpoint.Rescale(pos.DebtY, params.YDecimals, quoteDecimals),
		curve:     clmm.RangeFromTicks(pos.TickLower, pos.TickUpper, params.XDecimals, params.YDecimals),
	}

	ev.aux = make([]AuxAsset, len(params.AuxAssets))
	for i, a := range params.AuxAssets {
		if isNegative(a.Amount) || isNegative(a.CurrentPrice) {
			return nil, fmt.Errorf("auxiliary asset %s amounts must be non-negative", a.Address.Hex())
		}
		ev.aux[i] = AuxAsset{
			Address:      a.Address,
			Amount:       orZero(a.Amount),
			CurrentPrice: orZero(a.CurrentPrice),
			Correlation:  orZero(a.Correlation),
			Decimals:     a.Decimals,
		}
	}
	if err := ev.validateLTV(); err != nil {
		return nil, err
	}
	return ev, nil
}

// assetValue values all collateral at hypothetical price p: the position's
// bonding-curve holdings converted to quote units plus pending fees and
// rewards, then each auxiliary asset under the correlation model. The
// breakdown keys values by collateral address.
func (ev *evaluation) assetValue(p *big.Int) (*big.Int, Breakdown) {
	x, y := ev.curve.Amounts(ev.liquidity, p)
	value := fixedpoint.MulDivRound(x, p, fixedpoint.One)
	value.Add(value, y)
	value.Add(value, ev.pending)

	breakdown := make(Breakdown, len(ev.aux)+1)
	breakdown[ev.params.Position.ID] = value
	total := new(big.Int).Set(value)
	for i := range ev.aux {
		v := ev.auxValue(&ev.aux[i], p)
		total.Add(total, v)
		breakdown[ev.aux[i].Address] = v
	}
	return total, breakdown
}

// auxValue prices one correlated holding at hypothetical price p: the
// asset's snapshot price is shifted by correlation times the pool price
// move and floored at one to keep the synthetic price positive under
// extreme negative correlation.
func (ev *evaluation) auxValue(asset *AuxAsset, p *big.Int) *big.Int {
	priceRatio := fixedpoint.MulDivRound(p, fixedpoint.One, ev.current)
	move := new(big.Int).Sub(priceRatio, fixedpoint.One)
	change := fixedpoint.MulDivRound(asset.Correlation, move, fixedpoint.One)
	factor := new(big.Int).Add(fixedpoint.One, change)
	synthetic := fixedpoint.MulDivRound(asset.CurrentPrice, factor, fixedpoint.One)
	if synthetic.Cmp(big.NewInt(1)) < 0 {
		synthetic = big.NewInt(1)
	}
	amount := fixedpoint.Rescale(asset.Amount, asset.Decimals, quoteDecimals)
	return fixedpoint.MulDivRound(amount, synthetic, fixedpoint.One)
}

func isNegative(v *big.Int) bool {
	return v != nil && v.Sign() < 0
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
