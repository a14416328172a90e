package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DebtSide identifies which pooled token a debt or LTV entry refers to.
type DebtSide uint8

const (
	DebtX DebtSide = iota
	DebtY
)

func (s DebtSide) String() string {
	if s == DebtX {
		return "x"
	}
	return "y"
}

// Direction identifies which side of the current price a root search walks.
type Direction uint8

const (
	SearchDown Direction = iota
	SearchUp
)

func (d Direction) String() string {
	if d == SearchDown {
		return "down"
	}
	return "up"
}

// Position is a leveraged concentrated-liquidity position snapshot. Amounts
// follow the scales noted per field; the struct is never mutated.
type Position struct {
	ID          common.Address
	Liquidity   *big.Int // 1e8 scale
	TickLower   int32
	TickUpper   int32
	CurrentTick int32
	DebtX       *big.Int // native X decimals
	DebtY       *big.Int // native Y decimals
	// PendingFeeAndRewardsValue is already quote-denominated at 1e8 scale
	// and is added to the position value as-is.
	PendingFeeAndRewardsValue *big.Int
}

// AuxAsset is a correlated collateral holding valued alongside the position.
type AuxAsset struct {
	Address      common.Address
	Amount       *big.Int // native decimals
	CurrentPrice *big.Int // 1e8 scale, quote units, at the snapshot price
	Correlation  *big.Int // 1e8 scale, nominally in [-1e8, 1e8]
	Decimals     uint8
}

// LTVMatrix maps collateral addresses to loan-to-value limits (1e8 scale)
// per debt side. Every address that can appear in a valuation breakdown
// needs a strictly positive entry on both sides.
type LTVMatrix struct {
	X map[common.Address]*big.Int
	Y map[common.Address]*big.Int
}

// Params carries one complete evaluation input: the position, its LTV
// limits, auxiliary collateral, the snapshot price (1e8 scale) and the two
// pooled tokens' native decimal counts. Immutable for one calculation.
type Params struct {
	Position     Position
	AuxAssets    []AuxAsset
	LTV          LTVMatrix
	CurrentPrice *big.Int
	XDecimals    uint8
	YDecimals    uint8
}

// Breakdown maps collateral addresses to their value at the evaluated
// price. Duplicate auxiliary addresses overwrite earlier entries.
type Breakdown map[common.Address]*big.Int

// Result is the complete liquidation assessment for one position. Prices
// collapse to PriceMin/PriceMax when a side has no finite boundary; all
// fields are 1e8 scale except the boolean.
type Result struct {
	LiquidationPriceLow  *big.Int
	LiquidationPriceHigh *big.Int
	MarginRatio          *big.Int
	MarginBuffer         *big.Int // signed: margin ratio minus one
	IsAtRisk             bool
	DistanceToLow        *big.Int // fraction of current price
	DistanceToHigh       *big.Int
	TotalAssetValue      *big.Int
	TotalDebtValue       *big.Int
	WeightedDebtReq      *big.Int
	Breakdown            Breakdown
}
