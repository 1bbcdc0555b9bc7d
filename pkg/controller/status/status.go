// Package status exports errors produced by the controller package.
package status

import (
	"github.com/oneconcern/datastore/pkg/errors"
)

var (
	// ErrMissingData indicates that no settings could be found, where some are always expected
	ErrMissingData = errors.New("missing data")

	// ErrDataStore indicates a failure of the underlying data store
	ErrDataStore = errors.New("data store error")

	// ErrDeserialization indicates stored values which cannot be deserialized into settings
	ErrDeserialization = errors.New("unable to deserialize settings")

	// ErrSerialization indicates settings which cannot be serialized into keys
	ErrSerialization = errors.New("unable to serialize settings")

	// ErrInvalidKey indicates a requested key which is not a valid data or metadata key
	ErrInvalidKey = errors.New("invalid requested key")
)
