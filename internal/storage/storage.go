package storage

import (
	"context"

	"liquidationScope/internal/model"
)

// ReportStorage defines a sink for risk reports.
type ReportStorage interface {
	PutReportBatch(ctx context.Context, reports []model.RiskReport) error
}
