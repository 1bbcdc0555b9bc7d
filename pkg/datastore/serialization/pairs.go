// Copyright © 2018 One Concern

// Package serialization flattens structured values into dotted key/value pairs,
// the inverse of package deserialization.
package serialization

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/internal/fields"
	"github.com/oneconcern/datastore/pkg/errors"
)

var (
	// ErrBadRoot indicates that a root value has no name to infer its prefix from
	ErrBadRoot = errors.New("data store serializer must be used on a struct, or you must give a prefix")

	// ErrSerializeScalar indicates that a leaf value could not be encoded
	ErrSerializeScalar = errors.New("error serializing scalar value")

	// ErrMessage is a general serialization failure
	ErrMessage = errors.New("error during serialization")
)

var (
	marshalerType     = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// ToPairs flattens v, a named struct, into pairs keyed under its lower-cased type name
func ToPairs(v interface{}) (map[string]string, error) {
	return ToPairsWithPrefix("", v)
}

// ToPairsWithPrefix flattens v into pairs keyed under prefix. v may then be a map.
func ToPairsWithPrefix(prefix string, v interface{}) (map[string]string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, ErrMessage.WithContext("cannot serialize a nil %T", v)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if prefix == "" {
			name := rv.Type().Name()
			if name == "" {
				return nil, ErrBadRoot
			}
			prefix = strings.ToLower(name)
		}
	case reflect.Map:
		if prefix == "" {
			return nil, ErrBadRoot
		}
	default:
		return nil, ErrBadRoot
	}

	pairs := make(map[string]string)
	if err := flatten(pairs, prefix, rv); err != nil {
		return nil, err
	}
	return pairs, nil
}

func isLeaf(v reflect.Value) bool {
	t := v.Type()
	if t.Implements(marshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	if v.CanAddr() {
		pt := reflect.PtrTo(t)
		if pt.Implements(marshalerType) || pt.Implements(textMarshalerType) {
			return true
		}
	}
	return t.Kind() != reflect.Struct && t.Kind() != reflect.Map
}

func flatten(pairs map[string]string, path string, v reflect.Value) error {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if isLeaf(v) {
		var value interface{}
		if v.CanAddr() {
			value = v.Addr().Interface()
		} else {
			value = v.Interface()
		}
		s, err := datastore.SerializeScalar(value)
		if err != nil {
			return ErrSerializeScalar.WithContext("for key %q", path).Wrap(err)
		}
		pairs[path] = s
		return nil
	}

	if v.Kind() == reflect.Map {
		return flattenMap(pairs, path, v)
	}

	for _, f := range fields.Of(v.Type()) {
		fv := v.FieldByIndex(f.Index)
		if f.OmitEmpty && isEmpty(fv) {
			continue
		}
		if err := flatten(pairs, path+datastore.KeySeparator+f.Name, fv); err != nil {
			return err
		}
	}
	return nil
}

func flattenMap(pairs map[string]string, path string, v reflect.Value) error {
	iter := v.MapRange()
	for iter.Next() {
		segment, err := mapSegment(iter.Key())
		if err != nil {
			return ErrMessage.WithContext("under %q", path).Wrap(err)
		}
		if err := flatten(pairs, path+datastore.KeySeparator+segment, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// mapSegment renders a map key as a single key segment
func mapSegment(k reflect.Value) (string, error) {
	var segment string
	switch k.Kind() {
	case reflect.String:
		segment = k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s, err := datastore.SerializeScalar(k.Interface())
		if err != nil {
			return "", err
		}
		segment = s
	default:
		return "", errors.New("unsupported map key type").WithContext("%s", k.Type())
	}

	if strings.Contains(segment, datastore.KeySeparator) {
		return "", errors.New("map key contains the key separator").WithContext("%q", segment)
	}
	if _, err := datastore.NewKey(datastore.Data, segment); err != nil {
		return "", err
	}
	return segment, nil
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}
