package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

// UpsertDailySales accumulates quantities into the one-row-per-day record so
// repeated uploads of the same date never produce duplicate points. The last
// non-zero unit price wins.
func (r *salesRepository) UpsertDailySales(ctx context.Context, sku string, events []domain.SaleEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_sales (sku, sale_date, quantity_sold, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku, sale_date)
		DO UPDATE SET
			quantity_sold = daily_sales.quantity_sold + EXCLUDED.quantity_sold,
			unit_price = CASE WHEN EXCLUDED.unit_price > 0 THEN EXCLUDED.unit_price ELSE daily_sales.unit_price END
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range events {
			if _, err := tx.ExecContext(ctx, query, sku, ev.Date, ev.QuantitySold, ev.UnitPrice); err != nil {
				return fmt.Errorf("failed to upsert daily sales for %s on %s: %w",
					sku, ev.Date.Format("2006-01-02"), err)
			}
		}
		return nil
	})
}

func (r *salesRepository) GetDailySales(ctx context.Context, sku string, lookbackDays int, asOf time.Time) ([]domain.SaleEvent, error) {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}

	query := `
		SELECT sale_date, quantity_sold, unit_price
		FROM daily_sales
		WHERE sku = $1
		  AND sale_date > $2::date - $3::int
		  AND sale_date <= $2::date
		ORDER BY sale_date ASC
	`

	var events []domain.SaleEvent
	if err := r.db.SelectContext(ctx, &events, query, sku, asOf, lookbackDays); err != nil {
		return nil, fmt.Errorf("error getting daily sales for %s: %w", sku, err)
	}

	return events, nil
}

func (r *salesRepository) GetDailySalesMap(ctx context.Context, sku string, windowDays int, asOf time.Time) (map[string]float64, error) {
	query := `
		SELECT to_char(sale_date, 'YYYY-MM-DD') AS date, quantity_sold
		FROM daily_sales
		WHERE sku = $1
		  AND sale_date >= $2::date - $3::int
		  AND sale_date <= $2::date
	`

	rows, err := r.db.QueryxContext(ctx, query, sku, asOf, windowDays)
	if err != nil {
		return nil, fmt.Errorf("error querying daily sales map for %s: %w", sku, err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var date string
		var quantity float64
		if err := rows.Scan(&date, &quantity); err != nil {
			return nil, fmt.Errorf("error scanning daily sales for %s: %w", sku, err)
		}
		result[date] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales for %s: %w", sku, err)
	}

	return result, nil
}
