// Copyright © 2018 One Concern

package datastore

import (
	"fmt"
	"strings"
)

// Committed tells which state of the data a DataStore operation addresses
type Committed int

const (
	// Pending data is staged and not yet visible to consumers
	Pending Committed = iota
	// Live data is current
	Live
)

func (c Committed) String() string {
	switch c {
	case Pending:
		return "pending"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}

// ParseCommitted parses "pending" or "live"
func ParseCommitted(s string) (Committed, error) {
	switch strings.ToLower(s) {
	case "pending":
		return Pending, nil
	case "live":
		return Live, nil
	default:
		return Live, fmt.Errorf("invalid committed state %q: expected pending or live", s)
	}
}

// DataStore implementations know how to read and write data and metadata keys.
//
// Absent values are not errors: getters report them with a false boolean.
//
// Metadata is not staged: it always applies to live data.
type DataStore interface {
	// KeyPopulated tells if a data key holds a value
	KeyPopulated(key Key, committed Committed) (bool, error)

	// ListPopulatedKeys returns the data keys holding a value, with a name starting with prefix
	ListPopulatedKeys(prefix string, committed Committed) (KeySet, error)

	// ListPopulatedMetadata returns, for each data key starting with prefix, the set of metadata keys
	// set on it.
	//
	// When name is not empty, only metadata keys with this name are returned.
	// Data keys need not be populated themselves to carry metadata.
	ListPopulatedMetadata(prefix, name string) (map[Key]KeySet, error)

	// GetKey returns the value of a data key
	GetKey(key Key, committed Committed) (string, bool, error)

	// SetKey sets the value of a data key
	SetKey(key Key, value string, committed Committed) error

	// SetKeys sets a bunch of values
	SetKeys(pairs map[Key]string, committed Committed) error

	// GetMetadataRaw returns the metadata set directly on a data key, without inheritance
	GetMetadataRaw(metadataKey, dataKey Key) (string, bool, error)

	// GetMetadata returns the metadata set on a data key, or on its nearest ancestor
	GetMetadata(metadataKey, dataKey Key) (string, bool, error)

	// SetMetadata sets metadata on a data key
	SetMetadata(metadataKey, dataKey Key, value string) error

	// Commit promotes pending settings to live and returns the promoted keys
	Commit() (KeySet, error)
}

// GetPrefix returns the values of all populated data keys starting with prefix, as a flat map
// keyed by dotted names.
//
// The result is the input expected by the deserialization package.
func GetPrefix(ds DataStore, prefix string, committed Committed) (map[string]string, error) {
	keys, err := ds.ListPopulatedKeys(prefix, committed)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, keys.Len())
	for key := range keys {
		value, ok, err := ds.GetKey(key, committed)
		if err != nil {
			return nil, err
		}
		if !ok {
			// listed but removed concurrently: skip it
			continue
		}
		result[key.Name()] = value
	}
	return result, nil
}

// InheritedMetadata looks up some metadata on a data key, then on each of its ancestors, one segment
// at a time, and returns the first value found.
//
// Metadata set on descendants is never considered.
func InheritedMetadata(ds DataStore, metadataKey, dataKey Key) (string, bool, error) {
	current, hasCurrent := dataKey, true
	for hasCurrent {
		value, ok, err := ds.GetMetadataRaw(metadataKey, current)
		if err != nil {
			return "", false, err
		}
		if ok {
			return value, true, nil
		}
		current, hasCurrent = current.Parent()
	}
	return "", false, nil
}

// GetMetadataPrefix returns the metadata values set on data keys starting with prefix, grouped by data key.
//
// When name is not empty, only metadata keys with this name are returned.
func GetMetadataPrefix(ds DataStore, prefix, name string) (map[Key]map[Key]string, error) {
	found, err := ds.ListPopulatedMetadata(prefix, name)
	if err != nil {
		return nil, err
	}

	result := make(map[Key]map[Key]string, len(found))
	for dataKey, metadataKeys := range found {
		for metadataKey := range metadataKeys {
			value, ok, err := ds.GetMetadataRaw(metadataKey, dataKey)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if _, exists := result[dataKey]; !exists {
				result[dataKey] = make(map[Key]string)
			}
			result[dataKey][metadataKey] = value
		}
	}
	return result, nil
}

// PairsFromMap converts a flat map with dotted names into validated data keys
func PairsFromMap(m map[string]string) (map[Key]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	keys, err := NewKeys(Data, names...)
	if err != nil {
		return nil, err
	}
	pairs := make(map[Key]string, len(keys))
	for _, k := range keys {
		pairs[k] = m[k.Name()]
	}
	return pairs, nil
}
