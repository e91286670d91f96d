package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport covers requests that could not be built, sent or decoded.
	KindTransport Kind = iota
	// KindRejected covers responses with a status of 400 or above.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	default:
		return "transport"
	}
}

// Error is the uniform failure signal returned by every Client operation.
type Error struct {
	Op         string // "list", "update", "remove"
	ID         ID     // zero for list
	Kind       Kind
	StatusCode int // set for KindRejected
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := e.Op
	if e.Op != "list" {
		target = fmt.Sprintf("%s %s", e.Op, e.ID)
	}
	if e.Kind == KindRejected {
		return fmt.Sprintf("%s: api returned status %d", target, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", target, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransport reports whether err is a gateway transport failure.
func IsTransport(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == KindTransport
}

// IsRejected reports whether err is a non-success response from the store.
func IsRejected(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == KindRejected
}
