package daily

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloudpico-dailyagg/internal/modules/daily/types"
)

const (
	// OutputDateLayout is the date format used in output records.
	OutputDateLayout = "01/02/2006"
	// InputTimestampLayout is the only accepted measurement timestamp format.
	InputTimestampLayout = OutputDateLayout + " 03:04:05 PM"
)

// Input columns; anything after temperatureField is ignored.
const (
	stationField = iota
	timestampField
	temperatureField
	minFields
)

// ParseRecord turns one raw data record into an observation.
// line is only used to annotate the returned *RowParseError.
func ParseRecord(line int, record []string) (types.Observation, error) {
	obs, err := parseRecord(record)
	if err != nil {
		return types.Observation{}, &RowParseError{Line: line, Row: record, Err: err}
	}
	return obs, nil
}

func parseRecord(record []string) (types.Observation, error) {
	if len(record) < minFields {
		return types.Observation{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(record), minFields)
	}

	ts, err := parseTimestamp(record[timestampField])
	if err != nil {
		return types.Observation{}, fmt.Errorf("timestamp: %w", err)
	}

	temp, err := parseTemperature(record[temperatureField])
	if err != nil {
		return types.Observation{}, fmt.Errorf("temperature: %w", err)
	}

	return types.Observation{
		Station:     record[stationField],
		Date:        types.DateOf(ts),
		Time:        types.TimeOfDayOf(ts),
		Temperature: temp,
	}, nil
}

// parseTimestamp accepts InputTimestampLayout only. time.Parse alone also takes
// hour 00 on a 12-hour clock and trailing fractional seconds.
func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(InputTimestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if len(s) != len(InputTimestampLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, s)
	}
	if s[11:13] == "00" {
		return time.Time{}, fmt.Errorf("%w: hour 00 in %q", ErrTimestampFormat, s)
	}
	return ts, nil
}

// parseTemperature takes decimal notation, optionally signed or in exponent
// form. Hexadecimal floats and NaN are rejected.
func parseTemperature(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, ErrNotANumber
	}
	return v, nil
}
