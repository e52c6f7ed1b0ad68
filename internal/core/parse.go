package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileSize bounds ParseTable when the caller passes no limit.
const DefaultMaxFileSize = 10 << 20

// ErrFileTooLarge is returned when an upload exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrEmptyFile is returned for a zero-byte upload.
var ErrEmptyFile = errors.New("empty file")

// ParseTable reads a CSV upload, detects its dialect and returns the
// tokenized table. The first non-blank line is the header.
//
// Fatal problems (oversized file, broken CSV, no columns, no data rows)
// are returned as errors; nothing row-level is checked here.
func ParseTable(r io.Reader, maxBytes int64) (*ParsedTable, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	return TableFromRecords(records)
}

// TableFromRecords builds a ParsedTable from already tokenized records.
// Leading and trailing blank lines are dropped; blank lines between data
// rows are kept so row numbers match the file.
func TableFromRecords(records [][]string) (*ParsedTable, error) {
	for len(records) > 0 && isEmptyRow(records[0]) {
		records = records[1:]
	}
	for len(records) > 0 && isEmptyRow(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	if len(records) == 0 {
		return nil, &MalformedTableError{Reason: "no columns"}
	}

	headers := trimTrailingBlank(records[0])
	rows := records[1:]

	dialect, cols, err := Detect(headers, rows)
	if err != nil {
		return nil, err
	}

	return &ParsedTable{
		Headers: headers,
		Rows:    rows,
		Dialect: dialect,
		Columns: cols,
	}, nil
}

// WithMapping returns a copy of t using cols instead of the detected
// mapping. The dialect is kept.
func (t *ParsedTable) WithMapping(cols ColumnMap) *ParsedTable {
	cp := *t
	cp.Columns = cols
	return &cp
}

// Validate runs the batch-level checks Import performs before any row.
func (t *ParsedTable) Validate() error {
	if len(t.Headers) == 0 {
		return &MalformedTableError{Reason: "no columns"}
	}
	if len(t.Rows) == 0 {
		return &MalformedTableError{Reason: "no data rows"}
	}
	return ValidateSchema(t.Dialect, t.Columns, len(t.Headers))
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = sniffDelimiter(data)
	return r.ReadAll()
}

// sniffDelimiter picks ';' or tab over ',' when the header line clearly
// uses it. European spreadsheet exports default to semicolons.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	header := string(line)
	best, bestCount := ',', strings.Count(header, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// trimTrailingBlank drops empty trailing header cells left by spreadsheets
// that pad every line to the same width.
func trimTrailingBlank(header []string) []string {
	end := len(header)
	for end > 0 && CleanCell(header[end-1]) == "" {
		end--
	}
	return header[:end]
}
