package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Reader wraps encoding/csv with the handling client import files need:
// UTF-8 BOM stripping, encoding validation, and header-keyed row access.
// Files exported from spreadsheet tools routinely carry a BOM and ragged
// rows, so fields per record are not enforced.
type Reader struct {
	csv     *csv.Reader
	columns []string
	index   map[string]int
	line    int
}

// NewReader prepares a Reader over r. It fails up front on an empty
// file or content that is not valid UTF-8.
func NewReader(r io.Reader) (*Reader, error) {
	buf := bufio.NewReader(r)

	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := checkEncoding(buf); err != nil {
		return nil, err
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	return &Reader{csv: cr, index: make(map[string]int)}, nil
}

// checkEncoding peeks at the start of the file and rejects content
// that is empty or not UTF-8. 4KB covers the header and the first rows,
// which is where a wrong encoding shows up.
func checkEncoding(buf *bufio.Reader) error {
	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read import file: %w", err)
	}
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return ErrInvalidEncoding
	}
	return nil
}

// ReadHeader consumes the header row and records the column layout for
// subsequent Next calls.
func (r *Reader) ReadHeader() error {
	record, err := r.csv.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	r.columns = make([]string, len(record))
	for i, name := range record {
		name = strings.TrimSpace(name)
		r.columns[i] = name
		r.index[name] = i
	}
	r.line = 1
	return nil
}

// MissingColumns reports which of the required column names did not
// appear in the header.
func (r *Reader) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := r.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Line returns the file line of the most recently read record, counting
// the header as line 1.
func (r *Reader) Line() int {
	return r.line
}

// Row is one data record keyed by column name. Columns absent from a
// short record read as empty strings.
type Row struct {
	Line   int
	fields map[string]string
}

// Get returns the trimmed value of the named column.
func (row *Row) Get(column string) string {
	return row.fields[column]
}

// IsEmpty reports whether every field in the row is blank. Trailing
// blank lines in exported files produce such rows.
func (row *Row) IsEmpty() bool {
	for _, v := range row.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Next reads the following data row. It returns io.EOF when the file is
// exhausted; a malformed record advances the line counter so the error
// can still be attributed to a position in the file.
func (r *Reader) Next() (*Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}

	row := &Row{Line: r.line, fields: make(map[string]string, len(r.columns))}
	for i, name := range r.columns {
		if i < len(record) {
			row.fields[name] = strings.TrimSpace(record[i])
		} else {
			row.fields[name] = ""
		}
	}
	return row, nil
}
