package daily

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cloudpico-dailyagg/internal/modules/daily/types"
)

func TestParseRecord_Valid(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   types.Observation
	}{
		{
			name:   "midnight is 12 AM",
			record: []string{"Station", "12/31/2016 12:00:00 AM", "-1.3"},
			want: types.Observation{
				Station:     "Station",
				Date:        types.Date{Year: 2016, Month: time.December, Day: 31},
				Time:        0,
				Temperature: -1.3,
			},
		},
		{
			name:   "noon is 12 PM",
			record: []string{"Station", "06/01/2017 12:00:00 PM", "21"},
			want: types.Observation{
				Station:     "Station",
				Date:        types.Date{Year: 2017, Month: time.June, Day: 1},
				Time:        types.TimeOfDay(12 * time.Hour),
				Temperature: 21,
			},
		},
		{
			name:   "afternoon with seconds",
			record: []string{"Oak Street Weather Station", "05/22/2015 03:04:05 PM", "+14.25"},
			want: types.Observation{
				Station:     "Oak Street Weather Station",
				Date:        types.Date{Year: 2015, Month: time.May, Day: 22},
				Time:        types.TimeOfDay(15*time.Hour + 4*time.Minute + 5*time.Second),
				Temperature: 14.25,
			},
		},
		{
			name:   "trailing fields ignored",
			record: []string{"Foster Weather Station", "12/31/2016 11:00:00 PM", "-1.56", "", "71", "junk"},
			want: types.Observation{
				Station:     "Foster Weather Station",
				Date:        types.Date{Year: 2016, Month: time.December, Day: 31},
				Time:        types.TimeOfDay(23 * time.Hour),
				Temperature: -1.56,
			},
		},
		{
			name:   "temperature surrounded by spaces",
			record: []string{"S", "01/01/2020 01:00:00 AM", " 2.5 "},
			want: types.Observation{
				Station:     "S",
				Date:        types.Date{Year: 2020, Month: time.January, Day: 1},
				Time:        types.TimeOfDay(time.Hour),
				Temperature: 2.5,
			},
		},
		{
			name:   "exponent notation",
			record: []string{"S", "01/01/2020 01:00:00 AM", "1e1"},
			want: types.Observation{
				Station:     "S",
				Date:        types.Date{Year: 2020, Month: time.January, Day: 1},
				Time:        types.TimeOfDay(time.Hour),
				Temperature: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(2, tt.record)
			if err != nil {
				t.Fatalf("ParseRecord() error = %v, want nil", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRecord() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty record",
			record: []string{},
			check:  wantIs(ErrTooFewFields),
		},
		{
			name:   "two fields",
			record: []string{"Station", "12/31/2016 11:00:00 PM"},
			check:  wantIs(ErrTooFewFields),
		},
		{
			name:   "non-numeric temperature",
			record: []string{"Station", "12/31/2016 11:00:00 PM", "non-numeric"},
			check:  wantAs[*strconv.NumError](),
		},
		{
			name:   "empty temperature",
			record: []string{"Station", "12/31/2016 11:00:00 PM", ""},
			check:  wantAs[*strconv.NumError](),
		},
		{
			name:   "NaN temperature",
			record: []string{"Station", "12/31/2016 11:00:00 PM", "NaN"},
			check:  wantIs(ErrNotANumber),
		},
		{
			name:   "ISO timestamp",
			record: []string{"Station", "2016-12-31T23:00:00Z", "1"},
			check:  wantAs[*time.ParseError](),
		},
		{
			name:   "24 hour clock",
			record: []string{"Station", "12/31/2016 23:00:00", "1"},
			check:  wantAs[*time.ParseError](),
		},
		{
			name:   "hour out of range",
			record: []string{"Station", "12/31/2016 13:00:00 PM", "1"},
			check:  wantAs[*time.ParseError](),
		},
		{
			name:   "hour 00 on 12 hour clock",
			record: []string{"Station", "12/31/2016 00:30:00 AM", "1"},
			check:  wantIs(ErrTimestampFormat),
		},
		{
			name:   "fractional seconds",
			record: []string{"Station", "12/31/2016 01:30:00.5 AM", "1"},
			check:  wantIs(ErrTimestampFormat),
		},
		{
			name:   "hexadecimal temperature",
			record: []string{"Station", "12/31/2016 11:00:00 PM", "0x1p3"},
			check:  wantAs[*strconv.NumError](),
		},
		{
			name:   "date only",
			record: []string{"Station", "12/31/2016", "1"},
			check:  wantAs[*time.ParseError](),
		},
		{
			name:   "invalid day",
			record: []string{"Station", "02/30/2016 01:00:00 AM", "1"},
			check:  wantAs[*time.ParseError](),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(7, tt.record)
			if err == nil {
				t.Fatalf("ParseRecord() error = nil, want non-nil")
			}
			var rowErr *RowParseError
			if !errors.As(err, &rowErr) {
				t.Fatalf("ParseRecord() error = %T, want *RowParseError", err)
			}
			if rowErr.Line != 7 {
				t.Errorf("Line = %d, want 7", rowErr.Line)
			}
			if diff := cmp.Diff(tt.record, rowErr.Row); diff != "" {
				t.Errorf("Row mismatch (-want +got):\n%s", diff)
			}
			tt.check(t, err)
		})
	}
}

func wantIs(target error) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		if !errors.Is(err, target) {
			t.Errorf("error = %v, want errors.Is %v", err, target)
		}
	}
}

func wantAs[T error]() func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var target T
		if !errors.As(err, &target) {
			t.Errorf("error = %v, want errors.As %T", err, target)
		}
	}
}
