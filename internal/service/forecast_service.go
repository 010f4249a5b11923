// backend-go/internal/service/forecast_service.go
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/forecast"
	"github.com/stockpilot/backend-go/internal/repository"
)

// ErrItemNotFound is returned when a SKU has never been registered.
var ErrItemNotFound = errors.New("item not found")

// ForecastService orchestrates forecast runs: it feeds persisted item state
// and sales history into the pure engine and persists what comes back. The
// engine itself holds no state between calls.
type ForecastService struct {
	items       repository.ItemRepository
	sales       repository.SalesRepository
	predictions repository.PredictionRepository
	cache       cache.AlertsCache
	cfg         config.ForecastConfig
	now         func() time.Time
}

func NewForecastService(
	items repository.ItemRepository,
	sales repository.SalesRepository,
	predictions repository.PredictionRepository,
	cacheImpl cache.AlertsCache,
	cfg config.ForecastConfig,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAlertsCache()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.RetainedResults <= 0 {
		cfg.RetainedResults = 10
	}
	if cfg.BatchWorkerCount < 1 {
		cfg.BatchWorkerCount = 1
	}

	return &ForecastService{
		items:       items,
		sales:       sales,
		predictions: predictions,
		cache:       cacheImpl,
		cfg:         cfg,
		now:         time.Now,
	}
}

// GenerateForItem runs one forecast for a SKU and persists the result.
// currentStock optionally overrides the stored stock level first, matching
// the behavior of an operator correcting stock right before forecasting.
func (s *ForecastService) GenerateForItem(ctx context.Context, sku string, currentStock *int) (*domain.Prediction, error) {
	item, err := s.items.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", sku, ErrItemNotFound)
	}

	if currentStock != nil && *currentStock != item.CurrentStock {
		if err := s.items.UpdateStock(ctx, sku, *currentStock); err != nil {
			return nil, err
		}
		item.CurrentStock = *currentStock
	}

	history, err := s.sales.GetDailySales(ctx, sku, s.cfg.LookbackDays, s.now())
	if err != nil {
		return nil, err
	}

	prediction := forecast.Predict(item.CurrentStock, history, s.now())
	prediction.SKU = sku

	if err := s.predictions.Save(ctx, &prediction, s.cfg.RetainedResults); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast: cache invalidation failed")
	}

	return &prediction, nil
}

// BatchFailure records one item that failed during a catalog run.
type BatchFailure struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

// BatchResult summarizes a catalog-wide forecast run.
type BatchResult struct {
	Generated int            `json:"generated"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Duration  time.Duration  `json:"-"`
}

// GenerateAll forecasts every item in the catalog. Items are independent,
// so the run fans out across a bounded worker pool; one failing item never
// aborts the batch.
func (s *ForecastService) GenerateAll(ctx context.Context) (*BatchResult, error) {
	start := s.now()

	skus, err := s.items.ListSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		result    = &BatchResult{}
		jobChan   = make(chan string, len(skus))
		workerCnt = s.cfg.BatchWorkerCount
	)

	for i := 0; i < workerCnt; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sku := range jobChan {
				if _, err := s.GenerateForItem(ctx, sku, nil); err != nil {
					log.Error().Err(err).Str("sku", sku).Msg("batch forecast failed for item")
					mu.Lock()
					result.Failures = append(result.Failures, BatchFailure{SKU: sku, Error: err.Error()})
					mu.Unlock()
					continue
				}
				mu.Lock()
				result.Generated++
				mu.Unlock()
			}
		}()
	}

	for _, sku := range skus {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- sku:
		}
	}
	close(jobChan)
	wg.Wait()

	result.Duration = s.now().Sub(start)
	log.Info().
		Int("generated", result.Generated).
		Int("failed", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("batch forecast completed")

	return result, nil
}

// Latest returns the most recent prediction for a SKU, nil when none exists.
func (s *ForecastService) Latest(ctx context.Context, sku string) (*domain.Prediction, error) {
	return s.predictions.GetLatest(ctx, sku)
}

// History returns up to limit recent predictions, newest first.
func (s *ForecastService) History(ctx context.Context, sku string, limit int) ([]domain.Prediction, error) {
	return s.predictions.GetHistory(ctx, sku, limit)
}

// ListItems returns every item with its latest forecast summary attached.
func (s *ForecastService) ListItems(ctx context.Context) ([]domain.ItemSummary, error) {
	return s.items.ListSummaries(ctx)
}

// Chart builds the actual/predicted/threshold series for one item over
// [-windowDays, +windowDays] around today.
func (s *ForecastService) Chart(ctx context.Context, sku string, windowDays int) ([]domain.ChartPoint, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.ChartWindowDays
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	asOf := forecast.Day(s.now())

	if points, ok, err := s.cache.GetChart(ctx, sku, windowDays, asOf); err == nil && ok {
		return points, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("forecast: cache get chart failed")
	}

	item, err := s.items.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", sku, ErrItemNotFound)
	}

	var velocity float64
	latest, err := s.predictions.GetLatest(ctx, sku)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		velocity = latest.SalesVelocity
	}

	dailySales, err := s.sales.GetDailySalesMap(ctx, sku, windowDays, asOf)
	if err != nil {
		return nil, err
	}

	points := forecast.Project(item.CurrentStock, item.ReorderPoint, velocity, dailySales, windowDays, asOf)

	if err := s.cache.SetChart(ctx, sku, windowDays, asOf, points); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("forecast: cache set chart failed")
	}

	return points, nil
}

// ExportSalesCSV streams a SKU's recorded daily sales as CSV.
func (s *ForecastService) ExportSalesCSV(ctx context.Context, sku string, w io.Writer) error {
	item, err := s.items.GetBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", sku, ErrItemNotFound)
	}

	// Full recorded history, bounded by the one-year horizon nothing
	// forecasts beyond.
	events, err := s.sales.GetDailySales(ctx, sku, forecast.RunOutHorizonDays, s.now())
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "sku", "quantity", "unit_price"}); err != nil {
		return err
	}

	for _, ev := range events {
		record := []string{
			ev.Date.Format("2006-01-02"),
			sku,
			fmt.Sprintf("%g", ev.QuantitySold),
			fmt.Sprintf("%.2f", ev.UnitPrice),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}
