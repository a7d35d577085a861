// Package status carries the structured error codes shared by the sink and
// decoder packages.
package status

import (
	"fmt"
	"strings"
)

// Code is one of the error codes surfaced to callers by the decoder or sink.
type Code int

const (
	// OK indicates no error.
	OK Code = iota
	// MalformedVarint means a varint was longer than 10 bytes or its 10th
	// byte had bits set beyond bit 63.
	MalformedVarint
	// BadWireType means a tag decoded to a wire type outside 0..5, or a
	// wire type that did not match the dispatched field.
	BadWireType
	// BadFieldNumber means a tag's field number was zero or exceeded
	// MAX_FIELDNUMBER.
	BadFieldNumber
	// LengthOverflow means a length-delimited value's declared length
	// extended past the enclosing delimited region.
	LengthOverflow
	// UnbalancedGroup means an END_GROUP tag appeared with no matching
	// enclosing group, or with a mismatched field number.
	UnbalancedGroup
	// NestingTooDeep means a frame push would exceed MaxNesting.
	NestingTooDeep
	// HandlerError means a user handler returned failure.
	HandlerError
	// Truncated means Finish was called with a suspended decode still
	// in progress, or Feed was called after Finish.
	Truncated
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case MalformedVarint:
		return "malformed varint"
	case BadWireType:
		return "bad wire type"
	case BadFieldNumber:
		return "bad field number"
	case LengthOverflow:
		return "length overflow"
	case UnbalancedGroup:
		return "unbalanced group"
	case NestingTooDeep:
		return "nesting too deep"
	case HandlerError:
		return "handler error"
	case Truncated:
		return "truncated"
	default:
		return "unknown status code"
	}
}

// Error is a structured decode/sink failure, optionally annotated with the
// path of field names leading to the point of failure. WithField prepends
// each enclosing field name, so the path reads outermost first and is
// printed in that order.
type Error struct {
	Code      Code
	Message   string
	FieldPath []string
	Err       error // underlying cause, if any
}

// New creates an Error with the given code and a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code that wraps an underlying error.
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.FieldPath) == 0 {
		return msg
	}
	return fmt.Sprintf("at field path %s: %s", strings.Join(e.FieldPath, "."), msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, status.New(code, "")) to match on Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithField returns a copy of e with fieldName prepended to its FieldPath.
func (e *Error) WithField(fieldName string) *Error {
	path := make([]string, 0, len(e.FieldPath)+1)
	path = append(path, fieldName)
	path = append(path, e.FieldPath...)
	return &Error{Code: e.Code, Message: e.Message, FieldPath: path, Err: e.Err}
}
