// storefront/pkg/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Error codes used across the payment flow. The API layer maps these to
// HTTP statuses; handlers never inspect error strings.
const (
	CodeValidation = "VALIDATION"
	CodeSigning    = "SIGNING"
	CodeStorage    = "STORAGE"
)

type E struct {
	Code    string
	Message string
	Err     error
}

func (e E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e E) Unwrap() error { return e.Err }

func Wrap(code, msg string, err error) error {
	return E{Code: code, Message: msg, Err: err}
}

// CodeOf extracts the code from an error produced by Wrap.
// Returns "" for anything else.
func CodeOf(err error) string {
	var e E
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
