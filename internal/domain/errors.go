package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a probe failure.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindIOFailure
	KindEncodingFailure
	KindUnreachable
	KindTimeout
	KindTransportFailure
	KindMalformedResponse
	KindUnexpectedShape
	KindHTTPError
)

var kindNames = map[Kind]string{
	KindNone:              "none",
	KindNotFound:          "not_found",
	KindIOFailure:         "io_failure",
	KindEncodingFailure:   "encoding_failure",
	KindUnreachable:       "unreachable",
	KindTimeout:           "timeout",
	KindTransportFailure:  "transport_failure",
	KindMalformedResponse: "malformed_response",
	KindUnexpectedShape:   "unexpected_shape",
	KindHTTPError:         "http_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified probe failure. Status and Body are set for
// KindHTTPError and KindMalformedResponse.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error for op.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindNone.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNone
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
