package model

import "fmt"

// ErrorKind классифицирует ошибки бизнес-логики
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNotFound          ErrorKind = "not_found"
	KindSlotUnavailable   ErrorKind = "slot_unavailable"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
)

// Error is a domain error of a known kind with a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind when the target carries no message,
// so errors.Is(err, ErrNotFound) works for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

// Сентинелы для errors.Is
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrSlotUnavailable   = &Error{Kind: KindSlotUnavailable}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
)

// NewError создаёт ошибку заданного вида с форматированным сообщением
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput is shorthand for NewError(KindInvalidInput, ...).
func InvalidInput(format string, args ...interface{}) *Error {
	return NewError(KindInvalidInput, format, args...)
}

// NotFound names the missing entity and its identifier.
func NotFound(entity, id string) *Error {
	return NewError(KindNotFound, "%s not found with ID: %s", entity, id)
}
