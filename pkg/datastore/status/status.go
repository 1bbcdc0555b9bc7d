// Copyright © 2018 One Concern

// Package status declares error constants returned by
// implementations of the DataStore interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/datastore and one
// of its implementations.
package status

import "github.com/oneconcern/datastore/pkg/errors"

var (
	// Sentinel errors returned by implementations of the interface defined by datastore

	// ErrInvalidKey indicates that a key string is empty or contains disallowed characters
	ErrInvalidKey = errors.New("invalid key")

	// ErrPathTraversal indicates that the path resolved for a key escapes the base directory of the store
	ErrPathTraversal = errors.New("key name would escape the data store base path")

	// ErrKeyRead indicates that the value of a key could not be read
	ErrKeyRead = errors.New("unable to read key")

	// ErrIO indicates a failure to write, create or remove some file on the backing filesystem
	ErrIO = errors.New("data store I/O error")

	// ErrListKeys indicates a failure while walking the data store to discover keys
	ErrListKeys = errors.New("unable to list keys")

	// ErrCorruption indicates the data store is not in the expected state, e.g. its live tree is missing
	ErrCorruption = errors.New("data store corruption")

	// ErrScalar indicates a failure to serialize or deserialize a scalar value
	ErrScalar = errors.New("unable to serialize or deserialize scalar value")

	// ErrInternal indicates a logic error in the data store
	ErrInternal = errors.New("internal data store error")
)
