package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrQuoteNotFound       = errors.New("quote not found")
)

// FieldError names the request field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRequest }

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// NotFoundError identifies the reference data entry that did not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type CurrencyError struct {
	Code string
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Code)
}

func (e *CurrencyError) Unwrap() error { return ErrUnsupportedCurrency }
