package model

import (
	"encoding/json"
)

// PositionSnapshot is one captured observation of a leveraged position,
// as emitted by the monitoring pipeline. Prices, liquidity, correlations
// and LTV limits are 1e8-scaled integers encoded as strings; token and
// debt amounts are raw integers at the token's own decimals.
type PositionSnapshot struct {
	ChainID      uint64             `json:"chain_id"`
	PoolAddress  string             `json:"pool_address"`
	PositionID   string             `json:"position_id"`
	Timestamp    uint64             `json:"timestamp"`
	XDecimals    uint8              `json:"x_decimals"`
	YDecimals    uint8              `json:"y_decimals"`
	CurrentPrice string             `json:"current_price"`
	CurrentTick  int32              `json:"current_tick"`
	TickLower    int32              `json:"tick_lower"`
	TickUpper    int32              `json:"tick_upper"`
	Liquidity    string             `json:"liquidity"`
	DebtX        string             `json:"debt_x"`
	DebtY        string             `json:"debt_y"`
	PendingValue string             `json:"pending_value"`
	AuxAssets    []AuxHolding       `json:"aux_assets,omitempty"`
	LTV          map[string]LTVPair `json:"ltv"`
}

// AuxHolding is a correlated holding counted as collateral next to the
// position itself.
type AuxHolding struct {
	Address      string `json:"address"`
	Amount       string `json:"amount"`
	Decimals     uint8  `json:"decimals"`
	CurrentPrice string `json:"current_price"`
	Correlation  string `json:"correlation"`
}

// LTVPair holds the per-debt-side loan-to-value limits for one collateral.
type LTVPair struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// MarshalJSON ensures PositionSnapshot is encoded with stable field names.
func (ps PositionSnapshot) MarshalJSON() ([]byte, error) {
	type Alias PositionSnapshot
	return json.Marshal(Alias(ps))
}

// UnmarshalJSON decodes a PositionSnapshot from JSON.
func (ps *PositionSnapshot) UnmarshalJSON(data []byte) error {
	type Alias PositionSnapshot
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*ps = PositionSnapshot(a)
	return nil
}
