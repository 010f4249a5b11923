package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type fakeSalesRepo struct {
	events   map[string][]domain.SaleEvent
	dailyMap map[string]map[string]float64
}

var _ repository.SalesRepository = (*fakeSalesRepo)(nil)

func newFakeSalesRepo() *fakeSalesRepo {
	return &fakeSalesRepo{
		events:   make(map[string][]domain.SaleEvent),
		dailyMap: make(map[string]map[string]float64),
	}
}

func (f *fakeSalesRepo) UpsertDailySales(ctx context.Context, sku string, events []domain.SaleEvent) error {
	f.events[sku] = append(f.events[sku], events...)
	return nil
}

func (f *fakeSalesRepo) GetDailySales(ctx context.Context, sku string, lookbackDays int, asOf time.Time) ([]domain.SaleEvent, error) {
	return f.events[sku], nil
}

func (f *fakeSalesRepo) GetDailySalesMap(ctx context.Context, sku string, windowDays int, asOf time.Time) (map[string]float64, error) {
	return f.dailyMap[sku], nil
}

type fakePredictionRepo struct {
	saved      []domain.Prediction
	lastRetain int
	saveErr    error
}

var _ repository.PredictionRepository = (*fakePredictionRepo)(nil)

func (f *fakePredictionRepo) Save(ctx context.Context, prediction *domain.Prediction, retain int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *prediction)
	f.lastRetain = retain
	return nil
}

func (f *fakePredictionRepo) GetLatest(ctx context.Context, sku string) (*domain.Prediction, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].SKU == sku {
			p := f.saved[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePredictionRepo) GetHistory(ctx context.Context, sku string, limit int) ([]domain.Prediction, error) {
	var history []domain.Prediction
	for i := len(f.saved) - 1; i >= 0 && len(history) < limit; i-- {
		if f.saved[i].SKU == sku {
			history = append(history, f.saved[i])
		}
	}
	return history, nil
}

func (f *fakePredictionRepo) GetLatestAll(ctx context.Context) (map[string]domain.Prediction, error) {
	latest := make(map[string]domain.Prediction)
	for _, p := range f.saved {
		latest[p.SKU] = p
	}
	return latest, nil
}

func steadySales(asOf time.Time, days int, perDay float64) []domain.SaleEvent {
	events := make([]domain.SaleEvent, 0, days)
	for i := days; i >= 1; i-- {
		events = append(events, domain.SaleEvent{
			Date:         asOf.AddDate(0, 0, -i),
			QuantitySold: perDay,
		})
	}
	return events
}

func newTestForecastService(items *fakeItemRepo, sales *fakeSalesRepo, predictions *fakePredictionRepo, now time.Time) *ForecastService {
	svc := NewForecastService(items, sales, predictions, nil, config.ForecastConfig{
		LookbackDays:     90,
		ChartWindowDays:  30,
		RetainedResults:  10,
		BatchWorkerCount: 2,
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestGenerateForItem(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := newFakeItemRepo()
	items.items["SKU-A"] = &domain.Item{SKU: "SKU-A", Name: "widget", CurrentStock: 60, ReorderPoint: 10}

	sales := newFakeSalesRepo()
	sales.events["SKU-A"] = steadySales(now, 30, 2)

	predictions := &fakePredictionRepo{}
	svc := newTestForecastService(items, sales, predictions, now)

	prediction, err := svc.GenerateForItem(context.Background(), "SKU-A", nil)
	require.NoError(t, err)

	require.Equal(t, "SKU-A", prediction.SKU)
	require.Equal(t, 2.0, prediction.SalesVelocity)
	require.NotNil(t, prediction.PredictedRunOutDate)
	// 60 units at 2/day: out in 30 days.
	require.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), *prediction.PredictedRunOutDate)

	require.Len(t, predictions.saved, 1)
	require.Equal(t, 10, predictions.lastRetain)
}

func TestGenerateForItemStockOverride(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := newFakeItemRepo()
	items.items["SKU-A"] = &domain.Item{SKU: "SKU-A", CurrentStock: 60, ReorderPoint: 10}

	sales := newFakeSalesRepo()
	sales.events["SKU-A"] = steadySales(now, 30, 2)

	predictions := &fakePredictionRepo{}
	svc := newTestForecastService(items, sales, predictions, now)

	override := 10
	prediction, err := svc.GenerateForItem(context.Background(), "SKU-A", &override)
	require.NoError(t, err)

	require.Equal(t, 10, items.stockSets["SKU-A"])
	// 10 units at 2/day: out in 5 days.
	require.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC), *prediction.PredictedRunOutDate)
}

func TestGenerateForItemUnknownSKU(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	svc := newTestForecastService(newFakeItemRepo(), newFakeSalesRepo(), &fakePredictionRepo{}, now)

	_, err := svc.GenerateForItem(context.Background(), "SKU-MISSING", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestGenerateAllCollectsFailures(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := newFakeItemRepo()
	items.items["SKU-A"] = &domain.Item{SKU: "SKU-A", CurrentStock: 60, ReorderPoint: 10}
	items.items["SKU-B"] = &domain.Item{SKU: "SKU-B", CurrentStock: 40, ReorderPoint: 5}

	sales := newFakeSalesRepo()
	sales.events["SKU-A"] = steadySales(now, 30, 2)
	sales.events["SKU-B"] = steadySales(now, 30, 1)

	predictions := &fakePredictionRepo{}
	svc := newTestForecastService(items, sales, predictions, now)

	result, err := svc.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Generated)
	require.Empty(t, result.Failures)

	// A persistent save failure surfaces per item without aborting the run.
	predictions.saveErr = errors.New("disk full")
	result, err = svc.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.Generated)
	require.Len(t, result.Failures, 2)
}

func TestChartAnchorsToCurrentStock(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := newFakeItemRepo()
	items.items["SKU-A"] = &domain.Item{SKU: "SKU-A", CurrentStock: 60, ReorderPoint: 10}

	sales := newFakeSalesRepo()
	sales.events["SKU-A"] = steadySales(now, 30, 2)

	predictions := &fakePredictionRepo{}
	svc := newTestForecastService(items, sales, predictions, now)

	// Seed a prediction so the chart has a velocity to project with.
	_, err := svc.GenerateForItem(context.Background(), "SKU-A", nil)
	require.NoError(t, err)

	points, err := svc.Chart(context.Background(), "SKU-A", 5)
	require.NoError(t, err)
	require.Len(t, points, 11)

	today := points[5]
	require.NotNil(t, today.Actual)
	require.Equal(t, 60.0, *today.Actual)
	require.NotNil(t, today.Predicted)
	require.Equal(t, 60.0, *today.Predicted)
	require.Equal(t, 10, today.Threshold)

	last := points[10]
	require.Nil(t, last.Actual)
	require.NotNil(t, last.Predicted)
	require.Equal(t, 50.0, *last.Predicted)
}
