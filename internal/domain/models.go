// backend-go/internal/domain/models.go
package domain

import "time"

// Item represents a tracked SKU and its current inventory state.
type Item struct {
	ID           int64     `json:"id" db:"id"`
	SKU          string    `json:"sku" db:"sku"`
	Name         string    `json:"name" db:"name"`
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	ReorderPoint int       `json:"reorder_point" db:"reorder_point"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SaleEvent is one day's aggregated sales for a SKU. Rows are immutable once
// recorded; same-day uploads are accumulated into a single row at ingest time.
type SaleEvent struct {
	Date         time.Time `json:"date" db:"sale_date"`
	QuantitySold float64   `json:"quantity_sold" db:"quantity_sold"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
}

// Prediction is the output of one forecast run for a SKU.
type Prediction struct {
	ID                  int64      `json:"id" db:"id"`
	SKU                 string     `json:"sku" db:"sku"`
	SalesVelocity       float64    `json:"sales_velocity" db:"sales_velocity"`
	PredictedRunOutDate *time.Time `json:"predicted_run_out_date" db:"predicted_run_out_date"`
	ConfidenceScore     float64    `json:"confidence_score" db:"confidence_score"`
	SeasonalFactor      float64    `json:"seasonal_factor" db:"seasonal_factor"`
	DataPoints          int        `json:"data_points" db:"data_points"`
	GeneratedAt         time.Time  `json:"generated_at" db:"generated_at"`
}

// ChartPoint is a single day on the stock projection chart. Actual is set for
// past days, Predicted for today and future days, Threshold on every point.
type ChartPoint struct {
	Date      time.Time `json:"date"`
	Actual    *float64  `json:"actual,omitempty"`
	Predicted *float64  `json:"predicted,omitempty"`
	Threshold int       `json:"threshold"`
}

// ItemSummary combines an item with its latest prediction for list views.
type ItemSummary struct {
	Item
	SalesVelocity       *float64   `json:"sales_velocity,omitempty" db:"sales_velocity"`
	PredictedRunOutDate *time.Time `json:"predicted_run_out_date,omitempty" db:"predicted_run_out_date"`
	ConfidenceScore     *float64   `json:"confidence_score,omitempty" db:"confidence_score"`
}

// AlertItem is one entry in the alerts view: an item, its latest prediction
// and the tier it classified into.
type AlertItem struct {
	SKU                 string     `json:"sku"`
	Name                string     `json:"name"`
	CurrentStock        int        `json:"current_stock"`
	ReorderPoint        int        `json:"reorder_point"`
	SalesVelocity       float64    `json:"sales_velocity"`
	PredictedRunOutDate *time.Time `json:"predicted_run_out_date,omitempty"`
	ConfidenceScore     float64    `json:"confidence_score"`
	Tier                AlertTier  `json:"tier"`
}

// UploadedFile represents an uploaded sales file for processing
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
}

// IngestResult summarizes one processed sales upload.
type IngestResult struct {
	Filename    string    `json:"filename"`
	RowsRead    int       `json:"rows_read"`
	RowsSkipped int       `json:"rows_skipped"`
	Items       int       `json:"items"`
	ProcessedAt time.Time `json:"processed_at"`
}
