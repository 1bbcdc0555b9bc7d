package model

import "github.com/oneconcern/datastore/pkg/errors"

var (
	// ErrInvalidValue indicates a modeled value which does not satisfy its constraints
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidSettings indicates settings which are individually valid, but inconsistent
	ErrInvalidSettings = errors.New("invalid settings")
)
