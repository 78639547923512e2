package daily

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// CSVReader decodes comma separated records like *csv.Reader but keeps blank
// lines: each one is returned as a record with no fields, so record numbers
// stay aligned with input lines and a blank data line fails as a short row.
type CSVReader struct {
	cr  *csv.Reader
	src *newlineCounter

	// next is the input line the next record is expected to start on.
	next int

	// blanks are owed before the held record or error.
	blanks  int
	held    []string
	heldErr error
	heldEnd int
	eof     bool
}

func NewCSVReader(r io.Reader) *CSVReader {
	src := &newlineCounter{r: r}
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	return &CSVReader{cr: cr, src: src, next: 1}
}

func (r *CSVReader) Read() ([]string, error) {
	if r.blanks > 0 {
		r.blanks--
		r.next++
		return []string{}, nil
	}
	if r.held != nil || r.heldErr != nil {
		rec, err := r.held, r.heldErr
		r.held, r.heldErr = nil, nil
		r.next = r.heldEnd + 1
		return rec, err
	}
	if r.eof {
		return nil, io.EOF
	}

	rec, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		r.eof = true
		// encoding/csv drops blank lines silently, trailing ones included.
		if n := r.src.newlines - r.next + 1; n > 0 {
			r.blanks = n
			return r.Read()
		}
		return nil, io.EOF
	}

	var start, end int
	if err != nil {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return nil, err
		}
		// The rest of the failing line has been consumed.
		start, end = perr.StartLine, perr.Line
	} else {
		start, _ = r.cr.FieldPos(0)
		last := len(rec) - 1
		end, _ = r.cr.FieldPos(last)
		end += strings.Count(rec[last], "\n")
	}

	if start > r.next {
		r.blanks = start - r.next
		r.held, r.heldErr, r.heldEnd = rec, err, end
		return r.Read()
	}
	r.next = end + 1
	return rec, err
}

type newlineCounter struct {
	r        io.Reader
	newlines int
}

func (c *newlineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.newlines += bytes.Count(p[:n], []byte{'\n'})
	return n, err
}
