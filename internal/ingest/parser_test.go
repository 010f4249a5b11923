package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseSalesAggregatesPerDay(t *testing.T) {
	records := [][]string{
		{"date", "sku", "quantity", "unit_price"},
		{"2026-03-01", "SKU001", "3", "4.50"},
		{"2026-03-01", "SKU001", "2", ""},
		{"2026-03-02", "SKU001", "5", "4.50"},
		{"2026-03-01", "sku002", "1", "9.99"},
	}

	result, err := ParseSales(records)
	require.NoError(t, err)
	require.Equal(t, 4, result.RowsRead)
	require.Zero(t, result.RowsSkipped)
	require.Len(t, result.Events, 2)

	events := result.Events["SKU001"]
	require.Len(t, events, 2)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), events[0].Date)
	require.Equal(t, 5.0, events[0].QuantitySold)
	require.Equal(t, 4.50, events[0].UnitPrice)
	require.Equal(t, 5.0, events[1].QuantitySold)

	// lowercase sku is normalized
	require.Len(t, result.Events["SKU002"], 1)
}

func TestParseSalesSkipsInvalidRows(t *testing.T) {
	records := [][]string{
		{"date", "sku", "quantity"},
		{"not-a-date", "SKU001", "3"},
		{"2026-03-01", "", "3"},
		{"2026-03-01", "SKU001", "-4"},
		{"2026-03-01", "SKU001", "abc"},
		{"2026-03-01", "SKU001"},
		{"2026-03-02", "SKU001", "2"},
	}

	result, err := ParseSales(records)
	require.NoError(t, err)
	require.Equal(t, 6, result.RowsRead)
	require.Equal(t, 5, result.RowsSkipped)
	require.Len(t, result.Events["SKU001"], 1)
}

func TestParseSalesNoHeader(t *testing.T) {
	records := [][]string{
		{"2026-03-01", "SKU001", "3"},
	}

	result, err := ParseSales(records)
	require.NoError(t, err)
	require.Equal(t, 1, result.RowsRead)
	require.Len(t, result.Events["SKU001"], 1)
}

func TestParseSalesEmptyFile(t *testing.T) {
	_, err := ParseSales(nil)
	require.Error(t, err)

	_, err = ParseSales([][]string{{"date", "sku", "quantity"}})
	require.Error(t, err)
}

func TestParseSalesAlternateDateFormats(t *testing.T) {
	records := [][]string{
		{"2026/03/01", "SKU001", "1"},
		{"02-03-2026", "SKU001", "1"},
		{"03/03/2026", "SKU001", "1"},
	}

	result, err := ParseSales(records)
	require.NoError(t, err)
	require.Zero(t, result.RowsSkipped)
	require.Len(t, result.Events["SKU001"], 3)
}
