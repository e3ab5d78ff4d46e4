package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrServiceCall   = errors.New("generative service call failed")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
)
