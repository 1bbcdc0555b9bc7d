// Copyright © 2018 One Concern

package deserialization

import "github.com/oneconcern/datastore/pkg/errors"

var (
	// ErrMessage is a general deserialization failure, carrying a message.
	//
	// Validation failures reported by the target type are wrapped with ErrMessage.
	ErrMessage = errors.New("error during deserialization")

	// ErrDeserializeScalar indicates that a leaf value could not be parsed by the scalar codec
	ErrDeserializeScalar = errors.New("error deserializing scalar value")

	// ErrBadRoot indicates that a root value has no name to infer its prefix from:
	// the deserializer must be used on a named struct, or be given a prefix.
	ErrBadRoot = errors.New("data store deserializer must be used on a struct, or you must give a prefix")
)

// Validator is implemented by types which check their own content once deserialized
type Validator interface {
	Validate() error
}
