// Package apperr defines the error kinds every layer of the backend
// reports. Transport mapping belongs to the HTTP handlers; everything
// below them wraps one of these kinds.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindMissingTenant Kind = iota
	KindCrossTenant
	KindNotFound
	KindInvalidInput
	KindDependencyUnavailable
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindMissingTenant:
		return "missing_tenant"
	case KindCrossTenant:
		return "cross_tenant"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindDependencyUnavailable:
		return "dependency_unavailable"
	default:
		return "internal"
	}
}

// Error is a kinded error. Use the constructors below; match with
// errors.As plus IsKind, or the per-kind Is helpers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func MissingTenant(msg string) error { return New(KindMissingTenant, msg) }
func CrossTenant(msg string) error   { return New(KindCrossTenant, msg) }
func NotFound(msg string) error      { return New(KindNotFound, msg) }
func InvalidInput(msg string) error  { return New(KindInvalidInput, msg) }
func Internal(msg string, err error) error {
	return Wrap(KindInternal, msg, err)
}
func DependencyUnavailable(msg string, err error) error {
	return Wrap(KindDependencyUnavailable, msg, err)
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf returns the kind carried by err, defaulting to internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to its transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingTenant, KindCrossTenant:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindDependencyUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
