package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

const (
	MsgInvalidDate    = "invalid or missing date"
	MsgDateOrder      = "start date cannot be after end date"
	MsgTextOrChoice   = "enter text or choose an answer option"
	msgRequired       = "this field is required"
	msgObjectNotFound = "invalid pk %q - object does not exist"
)

// ValidationError carries every rule an input failed, in a human-readable form.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func NewValidationError(msg string, args ...any) *ValidationError {
	return &ValidationError{Messages: []string{fmt.Sprintf(msg, args...)}}
}

// MissingObject reports a reference to a row that does not exist.
func MissingObject(field string, id int) *ValidationError {
	return NewValidationError("%s: "+msgObjectNotFound, field, fmt.Sprint(id))
}

func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
