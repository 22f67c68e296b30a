package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches any NetworkError.
	ErrNetwork = errors.New("catalog: network failure")
	// ErrDataFormat matches any DataFormatError.
	ErrDataFormat = errors.New("catalog: unexpected data format")
	// ErrNotFound matches any NotFoundError.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidParams is returned for parameters that fail validation.
	ErrInvalidParams = errors.New("catalog: invalid query params")
	// ErrMalformedQuery is returned when a query string cannot be parsed.
	ErrMalformedQuery = errors.New("catalog: malformed query string")
)

// NetworkError reports a failed request or a non-success response from a data source.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// DataFormatError reports a payload that did not match the expected shape.
type DataFormatError struct {
	Op     string
	Reason string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrDataFormat }

// NotFoundError reports a single-product lookup with no match.
type NotFoundError struct {
	ID ProductID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", string(e.ID))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
