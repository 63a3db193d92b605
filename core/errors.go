package core

import "github.com/pkg/errors"

// Kind classifies an AppError independently of its numeric id.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthRequired
	KindMethodMismatch
	KindMissingParameter
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalid
	KindTooManyRequests
)

// AppError is an error the API reports to clients as `{"error_id": ID, "error_text": Text}`.
type AppError struct {
	ID   int
	Kind Kind
	Text string
}

func NewAppError(id int, kind Kind, text string) *AppError {
	return &AppError{ID: id, Kind: kind, Text: text}
}

func (err *AppError) Error() string {
	return err.Text
}

// AsAppError returns the *AppError at the root of err, if any.
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := errors.Cause(err).(*AppError)
	return appErr, ok
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
