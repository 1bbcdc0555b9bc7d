// Copyright © 2018 One Concern

// Package fields lists the struct fields mapped to key segments.
package fields

import (
	"reflect"
	"strings"
)

// Field of a struct, as a key segment
type Field struct {
	Name      string
	Index     []int
	Optional  bool
	OmitEmpty bool
}

// Of lists the fields of a struct which may be mapped to keys.
//
// Names follow json tags. Fields of embedded structs without a tag are promoted.
// Pointer fields and fields tagged omitempty are optional.
func Of(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			for _, inner := range Of(sf.Type) {
				inner.Index = append([]int{i}, inner.Index...)
				fields = append(fields, inner)
			}
			continue
		}
		if sf.PkgPath != "" {
			// unexported
			continue
		}
		if name == "" {
			name = sf.Name
		}
		omitEmpty := strings.Contains(opts, "omitempty")
		fields = append(fields, Field{
			Name:      name,
			Index:     []int{i},
			Optional:  sf.Type.Kind() == reflect.Ptr || omitEmpty,
			OmitEmpty: omitEmpty,
		})
	}
	return fields
}

func parseTag(tag string) (string, string) {
	if idx := strings.Index(tag, ","); idx >= 0 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}

// Lookup finds a field by name, preferring an exact match
func Lookup(fields []Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	for i, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}
