package service

import (
	"errors"
	"fmt"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
)

// Kind classifies the failures a caller can act on.
type Kind int

const (
	NotFound Kind = iota + 1
	Forbidden
	Conflict
	Invalid
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid"
	case Unauthorized:
		return "unauthorized"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind   Kind
	Detail string
	// Status is the existing request status on join request conflicts.
	Status models.JoinRequestStatus
	// Fields maps payload fields to what is wrong with them.
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Detail
}

// KindOf returns the kind of a service error, or 0 for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func notFound(detail string) *Error {
	return &Error{Kind: NotFound, Detail: detail}
}

func forbidden(detail string) *Error {
	return &Error{Kind: Forbidden, Detail: detail}
}

func invalid(detail string) *Error {
	return &Error{Kind: Invalid, Detail: detail}
}

func unauthorized(detail string) *Error {
	return &Error{Kind: Unauthorized, Detail: detail}
}

func conflict(detail string, status models.JoinRequestStatus) *Error {
	return &Error{Kind: Conflict, Detail: detail, Status: status}
}

var errNoIdentity = unauthorized("Authentication credentials were not provided.")
