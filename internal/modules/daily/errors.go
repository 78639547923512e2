package daily

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the input has no records at all, not even a header.
	ErrEmptyInput = errors.New("empty input: no header record")

	ErrTooFewFields = errors.New("too few fields")
	ErrNotANumber   = errors.New("temperature is NaN")

	ErrTimestampFormat = errors.New("timestamp not in " + InputTimestampLayout + " form")
)

// RowParseError reports a data record that could not be turned into an observation.
// Line is the 1-based record number with the header counted as line 1.
type RowParseError struct {
	Line int
	Row  []string
	Err  error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("input error at line %d: %q: %v", e.Line, e.Row, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}
