package daily

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// RecordReader yields raw input records and io.EOF once exhausted.
// *CSVReader and *csv.Reader satisfy it.
type RecordReader interface {
	Read() ([]string, error)
}

// Process reads comma separated records from r, aggregates them per
// station-day and writes the result to w as comma separated records.
// Nothing is written unless every record is valid.
func Process(r io.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := ProcessRecords(NewCSVReader(r), cw); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ProcessRecords runs one read, aggregate, write cycle over already decoded records.
// The first record is always discarded as the header.
func ProcessRecords(r RecordReader, w RecordWriter) error {
	table, n, err := Aggregate(r)
	if err != nil {
		return err
	}
	slog.Debug("daily aggregation complete", "records", n, "station_days", table.Len())
	return Emit(table, w)
}

// Aggregate consumes r fully and returns the populated table and the number of
// data records read. The first failing record aborts the whole run.
func Aggregate(r RecordReader) (*Table, int, error) {
	if _, err := r.Read(); err != nil {
		var perr *csv.ParseError
		switch {
		case errors.Is(err, io.EOF):
			return nil, 0, ErrEmptyInput
		case errors.As(err, &perr):
			// The header is discarded unread, so its quoting does not matter.
		default:
			return nil, 0, fmt.Errorf("read header: %w", err)
		}
	}

	table := NewTable()
	line := 1
	for {
		line++
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return table, line - 2, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, 0, &RowParseError{Line: line, Row: record, Err: err}
			}
			return nil, 0, fmt.Errorf("read line %d: %w", line, err)
		}

		obs, err := ParseRecord(line, record)
		if err != nil {
			return nil, 0, err
		}
		table.Add(obs)
	}
}
