package model

// RiskReport is the liquidation assessment computed for one snapshot.
// Price, ratio and value fields are exact eight-decimal strings.
type RiskReport struct {
	ChainID              uint64            `json:"chain_id"`
	PoolAddress          string            `json:"pool_address"`
	PositionID           string            `json:"position_id"`
	Timestamp            uint64            `json:"timestamp"`
	EvaluatedAt          string            `json:"evaluated_at"`
	CurrentPrice         string            `json:"current_price"`
	LiquidationPriceLow  string            `json:"liquidation_price_low"`
	LiquidationPriceHigh string            `json:"liquidation_price_high"`
	MarginRatio          string            `json:"margin_ratio"`
	MarginBuffer         string            `json:"margin_buffer"`
	IsAtRisk             bool              `json:"is_at_risk"`
	DistanceToLow        string            `json:"distance_to_low"`
	DistanceToHigh       string            `json:"distance_to_high"`
	TotalAssetValue      string            `json:"total_asset_value"`
	TotalDebtValue       string            `json:"total_debt_value"`
	WeightedDebtReq      string            `json:"weighted_debt_requirement"`
	Breakdown            map[string]string `json:"breakdown"`
}

// EvalError records an evaluation failure for a snapshot line.
type EvalError struct {
	PositionID string `json:"position_id"`
	Timestamp  uint64 `json:"timestamp"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
}
