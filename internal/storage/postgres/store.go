package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidationScope/internal/model"
)

// Store provides Postgres persistence for risk reports and scanner state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutReportBatch inserts or updates risk reports, one row per position
// and snapshot timestamp.
func (s *Store) PutReportBatch(ctx context.Context, reports []model.RiskReport) error {
	if len(reports) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range reports {
		breakdown, err := json.Marshal(r.Breakdown)
		if err != nil {
			return fmt.Errorf("marshal breakdown: %w", err)
		}
		batch.Queue(`
			INSERT INTO risk_reports (
				chain_id, pool_address, position_id, snapshot_ts, evaluated_at,
				current_price, liq_price_low, liq_price_high, margin_ratio, margin_buffer,
				is_at_risk, distance_to_low, distance_to_high,
				total_asset_value, total_debt_value, weighted_debt_requirement, breakdown,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
			ON CONFLICT (chain_id, position_id, snapshot_ts)
			DO UPDATE SET
				pool_address = EXCLUDED.pool_address,
				evaluated_at = EXCLUDED.evaluated_at,
				current_price = EXCLUDED.current_price,
				liq_price_low = EXCLUDED.liq_price_low,
				liq_price_high = EXCLUDED.liq_price_high,
				margin_ratio = EXCLUDED.margin_ratio,
				margin_buffer = EXCLUDED.margin_buffer,
				is_at_risk = EXCLUDED.is_at_risk,
				distance_to_low = EXCLUDED.distance_to_low,
				distance_to_high = EXCLUDED.distance_to_high,
				total_asset_value = EXCLUDED.total_asset_value,
				total_debt_value = EXCLUDED.total_debt_value,
				weighted_debt_requirement = EXCLUDED.weighted_debt_requirement,
				breakdown = EXCLUDED.breakdown,
				updated_at = now()
		`,
			int64(r.ChainID),
			r.PoolAddress,
			r.PositionID,
			int64(r.Timestamp),
			r.EvaluatedAt,
			r.CurrentPrice,
			r.LiquidationPriceLow,
			r.LiquidationPriceHigh,
			r.MarginRatio,
			r.MarginBuffer,
			r.IsAtRisk,
			r.DistanceToLow,
			r.DistanceToHigh,
			r.TotalAssetValue,
			r.TotalDebtValue,
			r.WeightedDebtReq,
			string(breakdown),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range reports {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM scanner_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scanner_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}
