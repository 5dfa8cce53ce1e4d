package domain

import "fmt"

// NetworkError covers transport-level failures against external providers.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError covers malformed structured data, including model output that
// was expected to be valid JSON.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error (%s): %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError covers content retrieval or extraction failures.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error (URL = %s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ModelError covers language model invocation failures and empty output.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error (%s): %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }
