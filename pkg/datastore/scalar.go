// Copyright © 2018 One Concern

package datastore

import (
	"github.com/oneconcern/datastore/pkg/datastore/status"

	jsoniter "github.com/json-iterator/go"
)

// scalars are serialized with JSON: strings are quoted, null stands for an absent option.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SerializeScalar serializes a scalar value to the data store format
func SerializeScalar(value interface{}) (string, error) {
	s, err := json.MarshalToString(value)
	if err != nil {
		return "", status.ErrScalar.Wrap(err)
	}
	return s, nil
}

// DeserializeScalar deserializes a scalar value from the data store format into target,
// which must be a pointer
func DeserializeScalar(scalar string, target interface{}) error {
	if err := json.UnmarshalFromString(scalar, target); err != nil {
		return status.ErrScalar.Wrap(err)
	}
	return nil
}
