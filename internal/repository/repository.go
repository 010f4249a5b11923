// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

// ItemRepository owns item state. Stock levels are mutated only here; the
// forecasting engine reads them as plain inputs.
type ItemRepository interface {
	Upsert(ctx context.Context, item *domain.Item) (int64, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	UpdateStock(ctx context.Context, sku string, currentStock int) error
	ListSummaries(ctx context.Context) ([]domain.ItemSummary, error)
	ListSKUs(ctx context.Context) ([]string, error)
}

// SalesRepository stores daily-aggregated sale events. At most one row per
// (sku, date) exists; repeated ingests accumulate into the same row.
type SalesRepository interface {
	UpsertDailySales(ctx context.Context, sku string, events []domain.SaleEvent) error
	GetDailySales(ctx context.Context, sku string, lookbackDays int, asOf time.Time) ([]domain.SaleEvent, error)
	GetDailySalesMap(ctx context.Context, sku string, windowDays int, asOf time.Time) (map[string]float64, error)
}

// PredictionRepository persists forecast results, retaining a bounded
// history per item.
type PredictionRepository interface {
	Save(ctx context.Context, prediction *domain.Prediction, retain int) error
	GetLatest(ctx context.Context, sku string) (*domain.Prediction, error)
	GetHistory(ctx context.Context, sku string, limit int) ([]domain.Prediction, error)
	GetLatestAll(ctx context.Context) (map[string]domain.Prediction, error)
}
