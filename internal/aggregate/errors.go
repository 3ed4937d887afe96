package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVariables is returned when aggregation is asked for no variables.
	ErrNoVariables = errors.New("no variables to aggregate")
	// ErrMissingValue marks an empty cell where a number was expected.
	ErrMissingValue = errors.New("missing value")
	// ErrUnknownArea is returned by FilterArea for anything but urban or rural.
	ErrUnknownArea = errors.New("unknown area")
)

// MissingColumnError reports a variable the table does not carry
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// DuplicateVariableError reports a variable listed twice
type DuplicateVariableError struct {
	Variable string
}

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("variable %q listed more than once", e.Variable)
}

// CoercionError reports a cell that could not be read as a finite number
type CoercionError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("row %d column %q: cannot use %q as a number: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
