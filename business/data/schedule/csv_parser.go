package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// rowParser reads a GTFS CSV file (trips.txt, stop_times.txt, and so on)
// one row at a time, looking columns up by header name rather than
// position. Errors encountered while extracting a single row's columns
// accumulate in errs rather than aborting the row immediately, so a
// caller can decide whether a missing optional column should skip the
// row or abort the file.
type rowParser struct {
	filename string
	line     int
	reader   *csv.Reader
	headers  []string
	current  []string
	errs     []error
}

// newRowParser builds a rowParser from r, reading and indexing the header
// row immediately.
func newRowParser(r io.Reader, filename string) (*rowParser, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("schedule: unable to read header of %s: %w", filename, err)
	}
	stripBOM(headers)
	return &rowParser{filename: filename, line: 1, reader: csvReader, headers: headers}, nil
}

func stripBOM(headers []string) {
	if len(headers) == 0 || len(headers[0]) == 0 {
		return
	}
	runes := []rune(headers[0])
	if runes[0] == 0xFEFF {
		headers[0] = string(runes[1:])
	}
}

// next advances to the next row, returning io.EOF when the file is
// exhausted.
func (p *rowParser) next() error {
	row, err := p.reader.Read()
	p.current = row
	p.line++
	return err
}

func (p *rowParser) indexOf(name string) int {
	for i, h := range p.headers {
		if h == name {
			return i
		}
	}
	return -1
}

// str returns the named column's value, or "" (recording an error, unless
// optional) if missing.
func (p *rowParser) str(name string, optional bool) string {
	idx := p.indexOf(name)
	if idx < 0 {
		if !optional {
			p.errs = append(p.errs, fmt.Errorf("%s line %d: missing column %s", p.filename, p.line, name))
		}
		return ""
	}
	if idx >= len(p.current) {
		return ""
	}
	value := p.current[idx]
	if value == "" && !optional {
		p.errs = append(p.errs, fmt.Errorf("%s line %d: empty required column %s", p.filename, p.line, name))
	}
	return value
}

// int_ returns the named column parsed as an int, or 0 (recording an
// error) if missing or unparseable.
func (p *rowParser) int_(name string, optional bool) int {
	raw := p.str(name, optional)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s line %d: column %s: %w", p.filename, p.line, name, err))
		return 0
	}
	return v
}

// err returns the accumulated parse errors for the current row, if any.
func (p *rowParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	err := fmt.Errorf("%s line %d: %v", p.filename, p.line, p.errs)
	p.errs = nil
	return err
}

// gtfsTimeSeconds parses a GTFS HH:MM:SS (or H:MM:SS) time-of-day value,
// which may exceed 24:00:00 for post-midnight service.
func gtfsTimeSeconds(value string) (int, error) {
	var h, m, s int
	n, err := fmt.Sscanf(value, "%d:%d:%d", &h, &m, &s)
	if err != nil || n != 3 {
		return 0, fmt.Errorf("schedule: invalid GTFS time %q", value)
	}
	return h*3600 + m*60 + s, nil
}
