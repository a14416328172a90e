package influx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"liquidationScope/internal/model"
)

const measurement = "liquidation_risk"

// Writer publishes risk reports as InfluxDB points for dashboards. Values
// are downsampled to float64 on the way out; the exact strings stay in the
// primary sink.
type Writer struct {
	client influxdb2.Client
	api    api.WriteAPIBlocking
}

func NewWriter(url, token, org, bucket string) *Writer {
	client := influxdb2.NewClient(url, token)
	return &Writer{client: client, api: client.WriteAPIBlocking(org, bucket)}
}

func (w *Writer) Close() {
	w.client.Close()
}

// PutReportBatch converts each report to a point and writes the batch.
func (w *Writer) PutReportBatch(ctx context.Context, reports []model.RiskReport) error {
	if len(reports) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(reports))
	for _, r := range reports {
		point, err := reportPoint(r)
		if err != nil {
			return err
		}
		points = append(points, point)
	}
	return w.api.WritePoint(ctx, points...)
}

func reportPoint(r model.RiskReport) (*write.Point, error) {
	fields := make(map[string]interface{}, 10)
	for name, raw := range map[string]string{
		"current_price":             r.CurrentPrice,
		"liq_price_low":             r.LiquidationPriceLow,
		"liq_price_high":            r.LiquidationPriceHigh,
		"margin_ratio":              r.MarginRatio,
		"margin_buffer":             r.MarginBuffer,
		"distance_to_low":           r.DistanceToLow,
		"distance_to_high":          r.DistanceToHigh,
		"total_asset_value":         r.TotalAssetValue,
		"total_debt_value":          r.TotalDebtValue,
		"weighted_debt_requirement": r.WeightedDebtReq,
	} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
		fields[name] = v
	}

	number, suffix := humanize.ComputeSI(fields["total_asset_value"].(float64))
	tags := map[string]string{
		"chain":    strconv.FormatUint(r.ChainID, 10),
		"pool":     r.PoolAddress,
		"position": r.PositionID,
		"at_risk":  strconv.FormatBool(r.IsAtRisk),
		"size":     humanize.Ftoa(number) + suffix,
	}

	ts := time.Unix(int64(r.Timestamp), 0).UTC()
	return write.NewPoint(measurement, tags, fields, ts), nil
}
