package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes surfaced in the import report. They follow the same
// UPPER_SNAKE convention as the domain error codes so API clients can
// treat them uniformly.
const (
	CodeInvalidFile   = "IMPORT_INVALID_FILE"
	CodeMalformedRow  = "IMPORT_MALFORMED_ROW"
	CodeRequiredField = "IMPORT_REQUIRED_FIELD"
	CodeInvalidFormat = "IMPORT_INVALID_FORMAT"
	CodeDuplicateRow  = "IMPORT_DUPLICATE_ROW"
)

// Whole-file failures. These abort the import before any row is read.
var (
	ErrEmptyFile       = errors.New("import file is empty")
	ErrInvalidEncoding = errors.New("import file is not valid UTF-8")
	ErrMissingHeader   = errors.New("import file has no header row")
)

// RowError describes why a single row was rejected. Column and Value
// are blank when the failure is not tied to one field.
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %q: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// NewRowError builds a RowError without an offending value.
func NewRowError(line int, column, code, message string) RowError {
	return RowError{Line: line, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates row errors up to a cap. The cap keeps a
// pathological file from inflating the import response; the count past
// the cap is still tracked so the report can say it was cut short.
type ErrorCollection struct {
	errors []RowError
	limit  int
	total  int
}

// NewErrorCollection returns a collection retaining at most limit
// errors.
func NewErrorCollection(limit int) *ErrorCollection {
	if limit <= 0 {
		limit = 100
	}
	return &ErrorCollection{limit: limit}
}

// Add records an error, dropping it past the retained limit.
func (c *ErrorCollection) Add(err RowError) {
	c.total++
	if len(c.errors) < c.limit {
		c.errors = append(c.errors, err)
	}
}

// AddRequiredError records a blank required field.
func (c *ErrorCollection) AddRequiredError(line int, column string) {
	c.Add(NewRowError(line, column, CodeRequiredField,
		fmt.Sprintf("column %q must not be empty", column)))
}

// AddFormatError records a value that does not match the expected
// shape, keeping the value for the report.
func (c *ErrorCollection) AddFormatError(line int, column, expected, value string) {
	err := NewRowError(line, column, CodeInvalidFormat,
		fmt.Sprintf("expected a value like %s", expected))
	err.Value = value
	c.Add(err)
}

// AddDuplicateError records a value already seen earlier in the same
// file.
func (c *ErrorCollection) AddDuplicateError(line int, column, value string) {
	err := NewRowError(line, column, CodeDuplicateRow,
		fmt.Sprintf("%q appears more than once in the file", value))
	err.Value = value
	c.Add(err)
}

// Errors returns the retained errors in the order they were added.
func (c *ErrorCollection) Errors() []RowError {
	return c.errors
}

// IsTruncated reports whether errors past the retained limit were
// dropped.
func (c *ErrorCollection) IsTruncated() bool {
	return c.total > c.limit
}
