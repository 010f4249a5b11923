package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
)

const (
	alertsKey          = "alerts:list"
	alertsScanBatch    = 100
	alertsKeyPrefix    = "alerts:"
	chartKeyPrefix     = "alerts:chart"
	chartKeyDateLayout = "2006-01-02"
)

// AlertsCache holds the classified alert list between forecast runs. Any
// write to items, sales or predictions invalidates it.
type AlertsCache interface {
	GetAlerts(ctx context.Context) ([]domain.AlertItem, bool, error)
	SetAlerts(ctx context.Context, alerts []domain.AlertItem) error
	GetChart(ctx context.Context, sku string, windowDays int, asOf time.Time) ([]domain.ChartPoint, bool, error)
	SetChart(ctx context.Context, sku string, windowDays int, asOf time.Time, points []domain.ChartPoint) error
	InvalidateAll(ctx context.Context) error
}

type redisAlertsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAlertsCache struct{}

func NewAlertsCache(cfg config.CacheConfig) (AlertsCache, error) {
	if !cfg.Enabled {
		return &noopAlertsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAlertsCache{client: client, ttl: ttl}, nil
}

func NewNoopAlertsCache() AlertsCache {
	return &noopAlertsCache{}
}

func (c *redisAlertsCache) GetAlerts(ctx context.Context) ([]domain.AlertItem, bool, error) {
	payload, err := c.client.Get(ctx, alertsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var alerts []domain.AlertItem
	if err := json.Unmarshal(payload, &alerts); err != nil {
		return nil, false, fmt.Errorf("decode alerts cache: %w", err)
	}

	return alerts, true, nil
}

func (c *redisAlertsCache) SetAlerts(ctx context.Context, alerts []domain.AlertItem) error {
	payload, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("encode alerts cache: %w", err)
	}

	if err := c.client.Set(ctx, alertsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAlertsCache) GetChart(ctx context.Context, sku string, windowDays int, asOf time.Time) ([]domain.ChartPoint, bool, error) {
	payload, err := c.client.Get(ctx, buildChartKey(sku, windowDays, asOf)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var points []domain.ChartPoint
	if err := json.Unmarshal(payload, &points); err != nil {
		return nil, false, fmt.Errorf("decode chart cache: %w", err)
	}

	return points, true, nil
}

func (c *redisAlertsCache) SetChart(ctx context.Context, sku string, windowDays int, asOf time.Time, points []domain.ChartPoint) error {
	payload, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("encode chart cache: %w", err)
	}

	if err := c.client.Set(ctx, buildChartKey(sku, windowDays, asOf), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAlertsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, alertsKeyPrefix, alertsScanBatch)
}

func (n *noopAlertsCache) GetAlerts(ctx context.Context) ([]domain.AlertItem, bool, error) {
	return nil, false, nil
}

func (n *noopAlertsCache) SetAlerts(ctx context.Context, alerts []domain.AlertItem) error {
	return nil
}

func (n *noopAlertsCache) GetChart(ctx context.Context, sku string, windowDays int, asOf time.Time) ([]domain.ChartPoint, bool, error) {
	return nil, false, nil
}

func (n *noopAlertsCache) SetChart(ctx context.Context, sku string, windowDays int, asOf time.Time, points []domain.ChartPoint) error {
	return nil
}

func (n *noopAlertsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildChartKey(sku string, windowDays int, asOf time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", chartKeyPrefix, sku, windowDays, asOf.Format(chartKeyDateLayout))
}
