package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyField signals a constraint or grouping directive with no field name.
	ErrEmptyField = errors.New("field name is required")
	// ErrUnknownOperator signals an operator outside the supported set.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrConversion signals a value that cannot be converted for its operator.
	ErrConversion = errors.New("conversion failed")
	// ErrBadPointer signals a malformed pointer object or reference string.
	ErrBadPointer = errors.New("malformed pointer")
	// ErrBadDate signals a value with no recognized date form.
	ErrBadDate = errors.New("not a date")
	// ErrDirectUnavailable signals a direct-mode request without a configured store.
	ErrDirectUnavailable = errors.New("direct execution not configured")
	// ErrRemoteUnavailable signals a remote request without a configured server.
	ErrRemoteUnavailable = errors.New("remote execution not configured")
)

// ConversionError wraps ErrConversion with the field and operator that failed.
type ConversionError struct {
	Field string
	Op    string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert field %q op %s: %v (value %T)", e.Field, e.Op, e.Err, e.Value)
}

func (e *ConversionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConversion
}

// Is reports ErrConversion for any conversion failure, regardless of cause.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// NewConversionError creates a conversion error for a field/operator pair.
func NewConversionError(field, op string, value any, err error) error {
	if err == nil {
		err = ErrConversion
	}
	return &ConversionError{Field: field, Op: op, Value: value, Err: err}
}

// APIError is an error response from the remote aggregation endpoint.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
