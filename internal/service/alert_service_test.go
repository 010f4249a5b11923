package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/notify"
	"github.com/stockpilot/backend-go/internal/repository"
)

func notifyConfigEmpty() config.SMTPConfig { return config.SMTPConfig{} }

type fakeItemRepo struct {
	items     map[string]*domain.Item
	summaries []domain.ItemSummary
	stockSets map[string]int
}

var _ repository.ItemRepository = (*fakeItemRepo)(nil)

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:     make(map[string]*domain.Item),
		stockSets: make(map[string]int),
	}
}

func (f *fakeItemRepo) Upsert(ctx context.Context, item *domain.Item) (int64, error) {
	f.items[item.SKU] = item
	return int64(len(f.items)), nil
}

func (f *fakeItemRepo) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	item, ok := f.items[sku]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemRepo) UpdateStock(ctx context.Context, sku string, currentStock int) error {
	f.stockSets[sku] = currentStock
	if item, ok := f.items[sku]; ok {
		item.CurrentStock = currentStock
	}
	return nil
}

func (f *fakeItemRepo) ListSummaries(ctx context.Context) ([]domain.ItemSummary, error) {
	return f.summaries, nil
}

func (f *fakeItemRepo) ListSKUs(ctx context.Context) ([]string, error) {
	skus := make([]string, 0, len(f.items))
	for sku := range f.items {
		skus = append(skus, sku)
	}
	return skus, nil
}

func summaryWithRunOut(sku string, stock, reorder int, runOut *time.Time) domain.ItemSummary {
	velocity := 2.0
	confidence := 0.8
	return domain.ItemSummary{
		Item: domain.Item{
			SKU:          sku,
			Name:         "item " + sku,
			CurrentStock: stock,
			ReorderPoint: reorder,
		},
		SalesVelocity:       &velocity,
		ConfidenceScore:     &confidence,
		PredictedRunOutDate: runOut,
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestAlertServiceList(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := newFakeItemRepo()
	repo.summaries = []domain.ItemSummary{
		summaryWithRunOut("SKU-SAFE", 100, 10, datePtr(now.AddDate(0, 0, 12))),
		summaryWithRunOut("SKU-CRIT", 0, 10, datePtr(now.AddDate(0, 0, 1))),
		summaryWithRunOut("SKU-FAR", 500, 10, datePtr(now.AddDate(0, 0, 60))),
		summaryWithRunOut("SKU-LOW", 5, 10, datePtr(now.AddDate(0, 0, 3))),
		summaryWithRunOut("SKU-WARN", 20, 10, datePtr(now.AddDate(0, 0, 5))),
	}

	svc := NewAlertService(repo, nil, notify.NewNotifier(notifyConfigEmpty()))
	svc.now = func() time.Time { return now }

	alerts, err := svc.List(context.Background())
	require.NoError(t, err)

	// SKU-FAR runs out well beyond the restock window and is excluded.
	require.Len(t, alerts, 4)

	got := make([]string, 0, len(alerts))
	for _, a := range alerts {
		got = append(got, a.SKU)
	}
	require.Equal(t, []string{"SKU-CRIT", "SKU-LOW", "SKU-WARN", "SKU-SAFE"}, got)

	require.Equal(t, domain.TierCritical, alerts[0].Tier)
	require.Equal(t, domain.TierLow, alerts[1].Tier)
	require.Equal(t, domain.TierWarning, alerts[2].Tier)
	require.Equal(t, domain.TierSafe, alerts[3].Tier)

	require.Equal(t, 2.0, alerts[0].SalesVelocity)
	require.Equal(t, 0.8, alerts[0].ConfidenceScore)
}

func TestAlertServiceListNoPrediction(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// An item below its reorder point alerts even before any forecast ran.
	repo := newFakeItemRepo()
	repo.summaries = []domain.ItemSummary{
		{
			Item: domain.Item{SKU: "SKU-NEW", Name: "new item", CurrentStock: 3, ReorderPoint: 10},
		},
	}

	svc := NewAlertService(repo, nil, notify.NewNotifier(notifyConfigEmpty()))
	svc.now = func() time.Time { return now }

	alerts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, domain.TierLow, alerts[0].Tier)
	require.Nil(t, alerts[0].PredictedRunOutDate)
	require.Zero(t, alerts[0].SalesVelocity)
}

func TestAlertServiceNotifyFiltersUrgent(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := newFakeItemRepo()
	repo.summaries = []domain.ItemSummary{
		summaryWithRunOut("SKU-CRIT", 0, 10, datePtr(now.AddDate(0, 0, 1))),
		summaryWithRunOut("SKU-LOW", 5, 10, datePtr(now.AddDate(0, 0, 3))),
		summaryWithRunOut("SKU-WARN", 20, 10, datePtr(now.AddDate(0, 0, 5))),
		summaryWithRunOut("SKU-SAFE", 100, 10, datePtr(now.AddDate(0, 0, 12))),
	}

	// Unconfigured notifier: Send is a no-op, so Notify only filters.
	svc := NewAlertService(repo, nil, notify.NewNotifier(notifyConfigEmpty()))
	svc.now = func() time.Time { return now }

	urgent, err := svc.Notify(context.Background(), []string{"ops@example.com"})
	require.NoError(t, err)
	require.Len(t, urgent, 2)
	require.Equal(t, "SKU-CRIT", urgent[0].SKU)
	require.Equal(t, "SKU-LOW", urgent[1].SKU)
}
