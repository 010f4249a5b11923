// Package ingest parses uploaded sales files into daily-aggregated sale
// events. Validation happens here, before anything reaches the forecasting
// engine: bad dates and negative quantities are rejected at this boundary.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/domain"
)

// Result holds the outcome of parsing one sales file: per-SKU daily events
// sorted by date ascending, plus row accounting for the upload response.
type Result struct {
	Events      map[string][]domain.SaleEvent
	RowsRead    int
	RowsSkipped int
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006"}

// ReadRows loads raw records from a .csv or .xlsx sales file.
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRows(path)
	case ".xlsx":
		return readXLSXRows(path)
	default:
		return nil, fmt.Errorf("unsupported file type %s: expected .csv or .xlsx", filepath.Ext(path))
	}
}

// ParseSales turns raw records into validated, daily-aggregated sale events.
// Expected columns: date, sku, quantity and optionally unit_price. A header
// row is detected and skipped. Invalid rows are counted and dropped, never
// fatal; only a structurally unusable file returns an error.
func ParseSales(records [][]string) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no rows")
	}

	start := 0
	if isHeaderRow(records[0]) {
		start = 1
	}

	type dayTotal struct {
		quantity  float64
		unitPrice float64
	}
	totals := make(map[string]map[time.Time]*dayTotal)

	result := &Result{Events: make(map[string][]domain.SaleEvent)}

	for i := start; i < len(records); i++ {
		record := records[i]
		result.RowsRead++

		if len(record) < 3 {
			result.RowsSkipped++
			continue
		}

		date, err := parseDate(strings.TrimSpace(record[0]))
		if err != nil {
			log.Debug().Int("row", i+1).Str("value", record[0]).Msg("skipping row with unparsable date")
			result.RowsSkipped++
			continue
		}

		sku := strings.ToUpper(strings.TrimSpace(record[1]))
		if sku == "" {
			result.RowsSkipped++
			continue
		}

		quantity, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil || quantity < 0 {
			log.Debug().Int("row", i+1).Str("value", record[2]).Msg("skipping row with invalid quantity")
			result.RowsSkipped++
			continue
		}

		var unitPrice float64
		if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
			unitPrice, err = strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
			if err != nil || unitPrice < 0 {
				result.RowsSkipped++
				continue
			}
		}

		if totals[sku] == nil {
			totals[sku] = make(map[time.Time]*dayTotal)
		}
		if t, ok := totals[sku][date]; ok {
			t.quantity += quantity
			if unitPrice > 0 {
				t.unitPrice = unitPrice
			}
		} else {
			totals[sku][date] = &dayTotal{quantity: quantity, unitPrice: unitPrice}
		}
	}

	if result.RowsRead == 0 {
		return nil, fmt.Errorf("file has no data rows")
	}

	for sku, days := range totals {
		events := make([]domain.SaleEvent, 0, len(days))
		for date, t := range days {
			events = append(events, domain.SaleEvent{
				Date:         date,
				QuantitySold: t.quantity,
				UnitPrice:    t.unitPrice,
			})
		}
		sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
		result.Events[sku] = events
	}

	return result, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv %s: %w", path, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := parseDate(strings.TrimSpace(record[0]))
	return err != nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", value)
}
