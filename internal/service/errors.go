package service

import (
	"errors"
	"fmt"
)

// Kind classifies backend and validation failures.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from a backend.
	KindUnknown Kind = iota
	// KindValidation is an empty or otherwise unusable input.
	KindValidation
	// KindStorageUnavailable means the local store could not be read or written.
	KindStorageUnavailable
	// KindMalformedStoredData means the local store held undecodable data.
	KindMalformedStoredData
	// KindNetwork means the remote service could not be reached.
	KindNetwork
	// KindBadStatus means the remote service answered with a non-2xx status.
	KindBadStatus
	// KindNotFound means the referenced task does not exist in the store.
	KindNotFound
	// KindAuth means the service rejected the credentials.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStorageUnavailable:
		return "storage unavailable"
	case KindMalformedStoredData:
		return "malformed stored data"
	case KindNetwork:
		return "network"
	case KindBadStatus:
		return "bad status"
	case KindNotFound:
		return "not found"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks against an *Error of the same kind.
var (
	ErrValidation = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrNotFound   = &Error{Kind: KindNotFound, Msg: "not found"}
)

// Error is the failure type returned by backends.
type Error struct {
	Kind   Kind
	Op     string // e.g. "update task 42"
	Status int    // HTTP status for KindBadStatus/KindNotFound from remote backends
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
		if e.Err != nil {
			msg = e.Err.Error()
		}
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
