package fetcher

import (
	"errors"
	"fmt"
)

// Fetch stages reported in FetchError
const (
	StageRequest   = "request"
	StageTransport = "transport"
	StageStatus    = "status"
	StageDecode    = "decode"
	StageJoin      = "join"
)

var (
	// ErrEmptyResponse is returned when the API answers without any data rows.
	ErrEmptyResponse = errors.New("empty response")
	// ErrNoTractColumns is returned when RUCA codes are joined to a table that
	// does not identify tracts.
	ErrNoTractColumns = errors.New("table has no state, county and tract columns")
)

// FetchError reports the stage at which a download failed
type FetchError struct {
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error at %s stage: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(stage string, err error) *FetchError {
	return &FetchError{
		Stage: stage,
		Err:   err,
	}
}

// StatusError carries a non-200 answer from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}
