// Package source adapts stores of raw readings to the daily record reader.
package source

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"cloudpico-dailyagg/internal/modules/daily"
)

//go:embed sql/select-readings.sql
var selectReadingsSQL string

// Header mirrors the leading columns of the CSV export.
var Header = []string{"Station Name", "Measurement Timestamp", "Air Temperature"}

// SQLiteSource yields readings from the stations/readings schema as text
// records, header first, so they run through the same parsing as CSV input.
type SQLiteSource struct {
	rows       *sql.Rows
	loc        *time.Location
	headerSent bool
	n          int
}

var _ daily.RecordReader = (*SQLiteSource)(nil)

// NewSQLiteSource queries all temperature readings. Stored timestamps are
// converted to loc before being split into station days.
func NewSQLiteSource(ctx context.Context, db *sql.DB, loc *time.Location) (*SQLiteSource, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows, err := db.QueryContext(ctx, selectReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	return &SQLiteSource{rows: rows, loc: loc}, nil
}

func (s *SQLiteSource) Read() ([]string, error) {
	if !s.headerSent {
		s.headerSent = true
		return append([]string(nil), Header...), nil
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate readings: %w", err)
		}
		return nil, io.EOF
	}

	var (
		station string
		ts      string
		temp    float64
	)
	if err := s.rows.Scan(&station, &ts, &temp); err != nil {
		return nil, fmt.Errorf("scan reading: %w", err)
	}
	t, err := parseStoredTime(ts)
	if err != nil {
		return nil, err
	}
	s.n++

	return []string{
		station,
		t.In(s.loc).Format(daily.InputTimestampLayout),
		strconv.FormatFloat(temp, 'f', -1, 64),
	}, nil
}

// Count returns the number of readings yielded so far.
func (s *SQLiteSource) Count() int {
	return s.n
}

func (s *SQLiteSource) Close() error {
	if err := s.rows.Close(); err != nil {
		slog.Error("close readings rows", "error", err)
		return err
	}
	return nil
}

func parseStoredTime(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
	}
	return t, nil
}
