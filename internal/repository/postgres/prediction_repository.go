package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type predictionRepository struct {
	db *DB
}

func NewPredictionRepository(db *DB) repository.PredictionRepository {
	return &predictionRepository{db: db}
}

// Save inserts a fresh prediction and prunes the item's history down to the
// retain most recent rows in the same transaction.
func (r *predictionRepository) Save(ctx context.Context, prediction *domain.Prediction, retain int) error {
	if retain <= 0 {
		retain = 10
	}

	insert := `
		INSERT INTO predictions (
			sku, sales_velocity, predicted_run_out_date,
			confidence_score, seasonal_factor, data_points, generated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	prune := `
		DELETE FROM predictions
		WHERE sku = $1
		  AND id NOT IN (
			SELECT id FROM predictions
			WHERE sku = $1
			ORDER BY generated_at DESC, id DESC
			LIMIT $2
		  )
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insert,
			prediction.SKU,
			prediction.SalesVelocity,
			prediction.PredictedRunOutDate,
			prediction.ConfidenceScore,
			prediction.SeasonalFactor,
			prediction.DataPoints,
			prediction.GeneratedAt,
		).Scan(&prediction.ID)
		if err != nil {
			return fmt.Errorf("failed to insert prediction for %s: %w", prediction.SKU, err)
		}

		if _, err := tx.ExecContext(ctx, prune, prediction.SKU, retain); err != nil {
			return fmt.Errorf("failed to prune predictions for %s: %w", prediction.SKU, err)
		}

		return nil
	})
}

func (r *predictionRepository) GetLatest(ctx context.Context, sku string) (*domain.Prediction, error) {
	query := `
		SELECT id, sku, sales_velocity, predicted_run_out_date,
		       confidence_score, seasonal_factor, data_points, generated_at
		FROM predictions
		WHERE sku = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`

	var prediction domain.Prediction
	if err := r.db.GetContext(ctx, &prediction, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting latest prediction for %s: %w", sku, err)
	}

	return &prediction, nil
}

func (r *predictionRepository) GetHistory(ctx context.Context, sku string, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, sku, sales_velocity, predicted_run_out_date,
		       confidence_score, seasonal_factor, data_points, generated_at
		FROM predictions
		WHERE sku = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT $2
	`

	var predictions []domain.Prediction
	if err := r.db.SelectContext(ctx, &predictions, query, sku, limit); err != nil {
		return nil, fmt.Errorf("error getting prediction history for %s: %w", sku, err)
	}

	return predictions, nil
}

func (r *predictionRepository) GetLatestAll(ctx context.Context) (map[string]domain.Prediction, error) {
	query := `
		SELECT DISTINCT ON (sku)
		       id, sku, sales_velocity, predicted_run_out_date,
		       confidence_score, seasonal_factor, data_points, generated_at
		FROM predictions
		ORDER BY sku, generated_at DESC, id DESC
	`

	var predictions []domain.Prediction
	if err := r.db.SelectContext(ctx, &predictions, query); err != nil {
		return nil, fmt.Errorf("error getting latest predictions: %w", err)
	}

	result := make(map[string]domain.Prediction, len(predictions))
	for _, p := range predictions {
		result[p.SKU] = p
	}

	return result, nil
}
