package errors

import "fmt"

// ParseError wraps a row-level import failure with the row that caused it.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Import errors
var (
	ErrMissingDate        = fmt.Errorf("missing date")
	ErrInvalidDate        = fmt.Errorf("invalid date")
	ErrNoDateColumn       = fmt.Errorf("no date column found")
	ErrEmptySheet         = fmt.Errorf("no rows found")
	ErrUnsupportedFormat  = fmt.Errorf("unsupported file format")
	ErrNoFieldsRecognized = fmt.Errorf("no fields recognized")
	ErrUnreadableInput    = fmt.Errorf("unreadable input")
)

// Boundary errors
var (
	ErrInvalidDateKey   = fmt.Errorf("invalid date key")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
	ErrInvalidConfig    = fmt.Errorf("invalid configuration")
	ErrEmptyPatch       = fmt.Errorf("patch sets no fields")
	ErrInvalidTargetSL  = fmt.Errorf("target service level must be in (0, 100]")
)
