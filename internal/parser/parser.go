package parser

import (
	"errors"
	"fmt"
)

// Parse stages reported in ParseError
const (
	StageDecode = "decode"
	StageHeader = "header"
	StageRow    = "row"
	StageTable  = "table"
	StageSheet  = "sheet"
)

// ErrEmptyTable is returned when a payload carries no data rows.
var ErrEmptyTable = errors.New("table has no data rows")

// ParseError represents a parsing error with a specific stage
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage string, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}
