package entity

import "errors"

var (
	ErrCPFRequired     = errors.New("cpf is required")
	ErrInvalidCPF      = errors.New("invalid identifier")
	ErrDuplicateCPF    = errors.New("duplicate identifier")
	ErrStudentNotFound = errors.New("student not found")
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

// KindOf classifies err, including wrapped errors, for the transport layer.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrCPFRequired), errors.Is(err, ErrInvalidCPF):
		return KindValidation
	case errors.Is(err, ErrDuplicateCPF):
		return KindConflict
	case errors.Is(err, ErrStudentNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
