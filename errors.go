package docpipe

import "github.com/cloudpeak/docpipe/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyField        = domain.ErrEmptyField
	ErrUnknownOperator   = domain.ErrUnknownOperator
	ErrConversion        = domain.ErrConversion
	ErrBadPointer        = domain.ErrBadPointer
	ErrBadDate           = domain.ErrBadDate
	ErrDirectUnavailable = domain.ErrDirectUnavailable
	ErrRemoteUnavailable = domain.ErrRemoteUnavailable
)

// APIError is an error response from the remote aggregation endpoint.
type APIError = domain.APIError

// ConversionError names the field and operator a compile-time value
// conversion failed on.
type ConversionError = domain.ConversionError
