// Copyright © 2018 One Concern

// Package deserialization rebuilds structured values from flat dotted key/value pairs.
//
// Each leaf value is the scalar JSON encoding of a field: "a.b.c" = "42" sets field c of the
// struct held in field b of a root value named a. Unknown keys are ignored, missing leaves are left
// at their zero value.
package deserialization

import (
	"reflect"
	"sort"
	"strings"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/internal/fields"
	"go.uber.org/zap"
)

const sep = datastore.KeySeparator

type options struct {
	prefix string
	l      *zap.Logger
}

// Option for the deserializer
type Option func(*options)

// WithPrefix sets the key prefix for the root value.
//
// Without a prefix, the root value must be a named struct: its lower-cased type name is used.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger traces the deserialization with some logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// FromMap fills target, a non-nil pointer, from some flat key/value pairs
func FromMap(m map[string]string, target interface{}, opts ...Option) error {
	o := options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrMessage.WithContext("target must be a non-nil pointer, got %T", target)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := &compound{m: m, keys: keys, path: o.prefix, l: o.l}
	if err := d.decodeRoot(rv.Elem()); err != nil {
		return err
	}
	return validate(rv)
}

// FromMapWithPrefix fills target from the pairs found under prefix
func FromMapWithPrefix(prefix string, m map[string]string, target interface{}, opts ...Option) error {
	return FromMap(m, target, append(opts, WithPrefix(prefix))...)
}

// decoder fills a settable value
type decoder interface {
	decode(reflect.Value) error
}

// leaf decodes a single scalar value
type leaf struct {
	key string
	raw string
}

func (d leaf) decode(v reflect.Value) error {
	if err := datastore.DeserializeScalar(d.raw, v.Addr().Interface()); err != nil {
		return ErrDeserializeScalar.WithContext("for key %q", d.key).Wrap(err)
	}
	return nil
}

// compound decodes a value spread over all keys sharing a common path
type compound struct {
	m    map[string]string
	keys []string // relative to path, sorted
	path string
	l    *zap.Logger
}

// branch is a named member of a compound value
type branch struct {
	name string
	dec  decoder
}

func (d *compound) join(segment string) string {
	if d.path == "" {
		return segment
	}
	return d.path + sep + segment
}

func (d *compound) decodeRoot(v reflect.Value) error {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if d.path == "" {
			name := v.Type().Name()
			if name == "" {
				return ErrBadRoot
			}
			d.path = strings.ToLower(name)
		}
	case reflect.Map, reflect.Interface:
		if d.path == "" {
			return ErrBadRoot
		}
	default:
		return ErrBadRoot
	}

	root := d.path + sep
	relative := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		if strings.HasPrefix(k, root) {
			relative = append(relative, strings.TrimPrefix(k, root))
		}
	}
	d.keys = relative

	d.l.Debug("deserializing", zap.String("root", d.path), zap.Stringer("type", v.Type()))
	return d.decode(v)
}

// branches splits keys on their first segment.
//
// Keys with a single segment are leaves, looked up under the current path.
// Keys with several segments share a compound branch, visited once.
func (d *compound) branches() ([]branch, error) {
	var result []branch
	visited := make(map[string]int)

	for _, k := range d.keys {
		parts := strings.SplitN(k, sep, 2)
		name := parts[0]

		if len(parts) == 1 {
			full := d.join(name)
			raw, ok := d.m[full]
			if !ok {
				d.l.Debug("skipping absent key", zap.String("key", full))
				continue
			}
			if _, seen := visited[name]; seen {
				return nil, ErrMessage.WithContext("duplicate field %q", full)
			}
			visited[name] = len(result)
			result = append(result, branch{name: name, dec: leaf{key: full, raw: raw}})
			continue
		}

		idx, seen := visited[name]
		if seen {
			c, isCompound := result[idx].dec.(*compound)
			if !isCompound {
				return nil, ErrMessage.WithContext("duplicate field %q", d.join(name))
			}
			c.keys = append(c.keys, parts[1])
			continue
		}
		visited[name] = len(result)
		result = append(result, branch{
			name: name,
			dec:  &compound{m: d.m, keys: []string{parts[1]}, path: d.join(name), l: d.l},
		})
	}
	return result, nil
}

func (d *compound) decode(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return d.decode(v.Elem())
	case reflect.Struct:
		return d.decodeStruct(v)
	case reflect.Map:
		return d.decodeMap(v)
	case reflect.Interface:
		if v.NumMethod() != 0 {
			break
		}
		generic := reflect.ValueOf(make(map[string]interface{}))
		if err := d.decodeMap(generic); err != nil {
			return err
		}
		v.Set(generic)
		return nil
	}
	return ErrMessage.WithContext("invalid type: map at %q, expected %s", d.path, v.Type())
}

func (d *compound) decodeStruct(v reflect.Value) error {
	members, err := d.branches()
	if err != nil {
		return err
	}

	list := fields.Of(v.Type())
	found := make(map[int]bool, len(list))
	for _, b := range members {
		i := fields.Lookup(list, b.name)
		if i < 0 {
			d.l.Debug("ignoring unknown field", zap.String("key", d.join(b.name)), zap.Stringer("type", v.Type()))
			continue
		}
		if err := decodeValue(b.dec, v.FieldByIndex(list[i].Index)); err != nil {
			return err
		}
		found[i] = true
	}

	for i, f := range list {
		if !found[i] && !f.Optional {
			return ErrMessage.WithContext("missing field %q", d.join(f.Name))
		}
	}
	return nil
}

func (d *compound) decodeMap(v reflect.Value) error {
	members, err := d.branches()
	if err != nil {
		return err
	}

	t := v.Type()
	if v.IsNil() {
		v.Set(reflect.MakeMap(t))
	}
	for _, b := range members {
		key, err := mapKey(t.Key(), b.name)
		if err != nil {
			return ErrDeserializeScalar.WithContext("for map key %q", d.join(b.name)).Wrap(err)
		}
		elem := reflect.New(t.Elem()).Elem()
		if err := decodeValue(b.dec, elem); err != nil {
			return err
		}
		v.SetMapIndex(key, elem)
	}
	return nil
}

// mapKey converts a key segment into a map key. Non-string keys are parsed as scalars.
func mapKey(t reflect.Type, name string) (reflect.Value, error) {
	if t.Kind() == reflect.String {
		return reflect.ValueOf(name).Convert(t), nil
	}
	key := reflect.New(t)
	if err := datastore.DeserializeScalar(name, key.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return key.Elem(), nil
}

func decodeValue(dec decoder, v reflect.Value) error {
	if err := dec.decode(v); err != nil {
		return err
	}
	return validate(v)
}

// validate runs the Validate hook of a decoded value, if any
func validate(v reflect.Value) error {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	var candidate interface{}
	switch {
	case v.CanAddr():
		candidate = v.Addr().Interface()
	case v.CanInterface():
		candidate = v.Interface()
	default:
		return nil
	}

	if validator, ok := candidate.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return ErrMessage.Wrap(err)
		}
	}
	return nil
}
