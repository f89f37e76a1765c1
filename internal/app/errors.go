package app

import "errors"

// Application errors.
var (
	// ErrConfig indicates the configuration could not be loaded or is invalid.
	ErrConfig = errors.New("invalid configuration")
)
