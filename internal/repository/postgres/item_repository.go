package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Upsert(ctx context.Context, item *domain.Item) (int64, error) {
	query := `
		INSERT INTO items (sku, name, current_stock, reorder_point, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (sku)
		DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), items.name),
			current_stock = EXCLUDED.current_stock,
			reorder_point = EXCLUDED.reorder_point,
			updated_at = NOW()
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, item.SKU, item.Name, item.CurrentStock, item.ReorderPoint).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert item %s: %w", item.SKU, err)
	}
	return id, nil
}

func (r *itemRepository) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	query := `
		SELECT id, sku, name, current_stock, reorder_point, created_at, updated_at
		FROM items
		WHERE sku = $1
	`

	var item domain.Item
	if err := r.db.GetContext(ctx, &item, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting item %s: %w", sku, err)
	}

	return &item, nil
}

func (r *itemRepository) UpdateStock(ctx context.Context, sku string, currentStock int) error {
	query := `
		UPDATE items
		SET current_stock = $2, updated_at = NOW()
		WHERE sku = $1
	`

	res, err := r.db.ExecContext(ctx, query, sku, currentStock)
	if err != nil {
		return fmt.Errorf("error updating stock for %s: %w", sku, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("item %s not found", sku)
	}

	return nil
}

func (r *itemRepository) ListSummaries(ctx context.Context) ([]domain.ItemSummary, error) {
	query := `
		SELECT
			i.id, i.sku, i.name, i.current_stock, i.reorder_point,
			i.created_at, i.updated_at,
			p.sales_velocity, p.predicted_run_out_date, p.confidence_score
		FROM items i
		LEFT JOIN LATERAL (
			SELECT sales_velocity, predicted_run_out_date, confidence_score
			FROM predictions
			WHERE sku = i.sku
			ORDER BY generated_at DESC, id DESC
			LIMIT 1
		) p ON TRUE
		ORDER BY i.sku
	`

	var items []domain.ItemSummary
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) ListSKUs(ctx context.Context) ([]string, error) {
	var skus []string
	if err := r.db.SelectContext(ctx, &skus, `SELECT sku FROM items ORDER BY sku`); err != nil {
		return nil, fmt.Errorf("error listing skus: %w", err)
	}

	return skus, nil
}
