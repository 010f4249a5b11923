package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/forecast"
	"github.com/stockpilot/backend-go/internal/notify"
	"github.com/stockpilot/backend-go/internal/repository"
)

// AlertService builds the alerts view: every item classified against its
// latest prediction, filtered to the restock window and sorted most urgent
// first.
type AlertService struct {
	items    repository.ItemRepository
	cache    cache.AlertsCache
	notifier *notify.Notifier
	now      func() time.Time
}

func NewAlertService(items repository.ItemRepository, cacheImpl cache.AlertsCache, notifier *notify.Notifier) *AlertService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAlertsCache()
	}

	return &AlertService{
		items:    items,
		cache:    cacheImpl,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *AlertService) List(ctx context.Context) ([]domain.AlertItem, error) {
	if alerts, ok, err := s.cache.GetAlerts(ctx); err == nil && ok {
		return alerts, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("alerts: cache get failed")
	}

	summaries, err := s.items.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	alerts := make([]domain.AlertItem, 0)
	for _, item := range summaries {
		if !forecast.InAlertWindow(item.CurrentStock, item.ReorderPoint, item.PredictedRunOutDate, asOf) {
			continue
		}

		alert := domain.AlertItem{
			SKU:                 item.SKU,
			Name:                item.Name,
			CurrentStock:        item.CurrentStock,
			ReorderPoint:        item.ReorderPoint,
			PredictedRunOutDate: item.PredictedRunOutDate,
			Tier:                forecast.Classify(item.CurrentStock, item.ReorderPoint, item.PredictedRunOutDate, asOf),
		}
		if item.SalesVelocity != nil {
			alert.SalesVelocity = *item.SalesVelocity
		}
		if item.ConfidenceScore != nil {
			alert.ConfidenceScore = *item.ConfidenceScore
		}

		alerts = append(alerts, alert)
	}

	forecast.SortAlerts(alerts)

	if err := s.cache.SetAlerts(ctx, alerts); err != nil {
		log.Warn().Err(err).Msg("alerts: cache set failed")
	}

	return alerts, nil
}

// Notify emails the current low/critical alerts to the given recipients and
// returns the items that were included.
func (s *AlertService) Notify(ctx context.Context, emails []string) ([]domain.AlertItem, error) {
	alerts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	urgent := make([]domain.AlertItem, 0, len(alerts))
	for _, a := range alerts {
		if a.Tier == domain.TierCritical || a.Tier == domain.TierLow {
			urgent = append(urgent, a)
		}
	}

	if len(urgent) == 0 || len(emails) == 0 {
		return urgent, nil
	}

	body := notify.RenderAlertBody(urgent)
	if err := s.notifier.Send(emails, "Inventory Alert", body); err != nil {
		return nil, err
	}

	return urgent, nil
}
