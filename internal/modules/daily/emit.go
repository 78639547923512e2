package daily

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"cloudpico-dailyagg/internal/modules/daily/types"
)

// Header is the first output record.
var Header = []string{"Station Name", "Date", "Min Temp", "Max Temp", "First Temp", "Last Temp"}

// RecordWriter consumes output records. *csv.Writer satisfies it.
type RecordWriter interface {
	Write(record []string) error
}

// FormatRow renders one station-day in Header column order.
func FormatRow(key types.GroupKey, s types.Summary) []string {
	return []string{
		key.Station,
		key.Date.String(),
		formatTemp(s.Low),
		formatTemp(s.High),
		formatTemp(s.StartTemp),
		formatTemp(s.EndTemp),
	}
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Emit writes the header and then one record per table entry, in table order.
func Emit(t *Table, w RecordWriter) error {
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for key, s := range t.All() {
		if err := w.Write(FormatRow(key, s)); err != nil {
			return fmt.Errorf("write %s %s: %w", key.Station, key.Date, err)
		}
	}
	return nil
}

// EncodeLine renders one record as a CSV line without the trailing newline,
// for sinks that carry one record per message.
func EncodeLine(record []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(record); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
