package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind - стабильный машиночитаемый код ошибки.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindForbidden        ErrorKind = "FORBIDDEN"
	KindInvalidInput     ErrorKind = "INVALID_INPUT"
	KindInvalidOperation ErrorKind = "INVALID_OPERATION"
	// KindInternal - отказ хранилища или любая ошибка вне бизнес-правил.
	KindInternal ErrorKind = "INTERNAL"
)

// Error - ошибка бизнес-правила с кодом.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func InvalidInput(format string, args ...any) error {
	return newError(KindInvalidInput, format, args...)
}

func InvalidOperation(format string, args ...any) error {
	return newError(KindInvalidOperation, format, args...)
}

// KindOf классифицирует ошибку. Все, что не является *Error, считается внутренним отказом.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// MessageOf возвращает сообщение для клиента; детали внутренних отказов не раскрываются.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
