package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "gridsim/pkg/errors"
)

// CSVSource reads a price sequence from a CSV file. Each record is either
// `price` or `timestamp,price` with the timestamp in unix milliseconds or
// RFC3339. A non-numeric first record is treated as a header and skipped.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the given file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string { return "csv" }

// Fetch loads the whole file. Timestamps are empty when the file has a single
// price column.
func (s *CSVSource) Fetch(_ context.Context) ([]float64, []time.Time, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var prices []float64
	var timestamps []time.Time
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		priceField := rec[len(rec)-1]
		price, err := strconv.ParseFloat(priceField, 64)
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, nil, fmt.Errorf("record %d: %w: %q", i+1, apperrors.ErrInvalidPrice, priceField)
		}
		prices = append(prices, price)
		if len(rec) >= 2 {
			ts, err := parseTimestamp(rec[0])
			if err != nil {
				return nil, nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			timestamps = append(timestamps, ts)
		}
	}
	if len(timestamps) > 0 && len(timestamps) != len(prices) {
		return nil, nil, fmt.Errorf("%s: mixed timestamped and bare records", s.path)
	}
	return prices, timestamps, nil
}

func parseTimestamp(field string) (time.Time, error) {
	if ms, err := strconv.ParseInt(field, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	ts, err := time.Parse(time.RFC3339, field)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", field)
	}
	return ts, nil
}
