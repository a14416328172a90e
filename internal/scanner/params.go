package scanner

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"liquidationScope/internal/engine"
	"liquidationScope/internal/model"
)

// snapshotParams converts a wire snapshot into engine parameters.
// Overrides extend or replace the snapshot's own LTV entries.
func snapshotParams(snap model.PositionSnapshot, overrides map[string]model.LTVPair) (*engine.Params, error) {
	positionID, err := parseAddress(snap.PositionID)
	if err != nil {
		return nil, fmt.Errorf("position_id: %w", err)
	}
	currentPrice, err := parseBig("current_price", snap.CurrentPrice)
	if err != nil {
		return nil, err
	}
	liquidity, err := parseBig("liquidity", snap.Liquidity)
	if err != nil {
		return nil, err
	}
	debtX, err := parseBig("debt_x", snap.DebtX)
	if err != nil {
		return nil, err
	}
	debtY, err := parseBig("debt_y", snap.DebtY)
	if err != nil {
		return nil, err
	}
	pending, err := parseBig("pending_value", snap.PendingValue)
	if err != nil {
		return nil, err
	}

	aux := make([]engine.AuxAsset, 0, len(snap.AuxAssets))
	for i, holding := range snap.AuxAssets {
		asset, err := auxAsset(holding)
		if err != nil {
			return nil, fmt.Errorf("aux_assets[%d]: %w", i, err)
		}
		aux = append(aux, asset)
	}

	ltv := engine.LTVMatrix{
		X: make(map[common.Address]*big.Int, len(snap.LTV)),
		Y: make(map[common.Address]*big.Int, len(snap.LTV)),
	}
	for key, pair := range snap.LTV {
		if err := addLTV(ltv, key, pair); err != nil {
			return nil, fmt.Errorf("ltv: %w", err)
		}
	}
	for key, pair := range overrides {
		if err := addLTV(ltv, key, pair); err != nil {
			return nil, fmt.Errorf("ltv override: %w", err)
		}
	}

	return &engine.Params{
		Position: engine.Position{
			ID:                        positionID,
			Liquidity:                 liquidity,
			TickLower:                 snap.TickLower,
			TickUpper:                 snap.TickUpper,
			CurrentTick:               snap.CurrentTick,
			DebtX:                     debtX,
			DebtY:                     debtY,
			PendingFeeAndRewardsValue: pending,
		},
		AuxAssets:    aux,
		LTV:          ltv,
		CurrentPrice: currentPrice,
		XDecimals:    snap.XDecimals,
		YDecimals:    snap.YDecimals,
	}, nil
}

func auxAsset(holding model.AuxHolding) (engine.AuxAsset, error) {
	addr, err := parseAddress(holding.Address)
	if err != nil {
		return engine.AuxAsset{}, err
	}
	amount, err := parseBig("amount", holding.Amount)
	if err != nil {
		return engine.AuxAsset{}, err
	}
	price, err := parseBig("current_price", holding.CurrentPrice)
	if err != nil {
		return engine.AuxAsset{}, err
	}
	correlation, err := parseBig("correlation", holding.Correlation)
	if err != nil {
		return engine.AuxAsset{}, err
	}
	return engine.AuxAsset{
		Address:      addr,
		Amount:       amount,
		CurrentPrice: price,
		Correlation:  correlation,
		Decimals:     holding.Decimals,
	}, nil
}

func addLTV(ltv engine.LTVMatrix, key string, pair model.LTVPair) error {
	addr, err := parseAddress(key)
	if err != nil {
		return err
	}
	x, err := parseBig("x", pair.X)
	if err != nil {
		return err
	}
	y, err := parseBig("y", pair.Y)
	if err != nil {
		return err
	}
	ltv.X[addr] = x
	ltv.Y[addr] = y
	return nil
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid address: %q", value)
	}
	return common.HexToAddress(value), nil
}

// parseBig reads a base-10 integer field, treating empty as zero.
func parseBig(field, value string) (*big.Int, error) {
	if strings.TrimSpace(value) == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", field, value)
	}
	return v, nil
}
