// Copyright © 2018 One Concern

package datastore

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/oneconcern/datastore/pkg/datastore/status"
	"go.uber.org/multierr"
)

const (
	// KeySeparator separates the segments of a dotted key
	KeySeparator = "."

	// MetadataKeyPrefix separates a data key basename from the name of its metadata on disk
	MetadataKeyPrefix = "."

	// SettingsPrefix is the namespace of data keys promoted by Commit
	SettingsPrefix = "settings."
)

// KeyType distinguishes data keys from metadata keys
type KeyType int

const (
	// Data keys address settings values
	Data KeyType = iota
	// Meta keys address metadata attached to a data key
	Meta
)

func (k KeyType) String() string {
	switch k {
	case Data:
		return "data"
	case Meta:
		return "metadata"
	default:
		return "unknown"
	}
}

var keyRe *regexp.Regexp

func init() {
	keyRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*$`)
}

// Key is a validated, dotted identifier for a data or metadata value.
//
// The zero value is not a valid key: use NewKey.
type Key struct {
	kind KeyType
	name string
}

// NewKey validates name and builds a key of the given kind
func NewKey(kind KeyType, name string) (Key, error) {
	if name == "" {
		return Key{}, status.ErrInvalidKey.WithContext("(empty %s key)", kind)
	}
	if !keyRe.MatchString(name) {
		return Key{}, status.ErrInvalidKey.WithContext("%q: %s keys must match %s", name, kind, keyRe.String())
	}
	if kind == Meta && strings.Contains(name, MetadataKeyPrefix) {
		return Key{}, status.ErrInvalidKey.WithContext("%q: metadata keys may not contain %q", name, MetadataKeyPrefix)
	}
	return Key{kind: kind, name: name}, nil
}

// MustKey builds a key or panics. Intended for constants and tests.
func MustKey(kind KeyType, name string) Key {
	k, err := NewKey(kind, name)
	if err != nil {
		panic(err)
	}
	return k
}

// NewKeys validates a batch of names, reporting all invalid ones at once
func NewKeys(kind KeyType, names ...string) ([]Key, error) {
	keys := make([]Key, 0, len(names))
	var errs error
	for _, name := range names {
		k, err := NewKey(kind, name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		keys = append(keys, k)
	}
	if errs != nil {
		return nil, errs
	}
	return keys, nil
}

// Kind of key
func (k Key) Kind() KeyType { return k.kind }

// Name of the key, i.e. its dotted string form
func (k Key) Name() string { return k.name }

func (k Key) String() string { return k.name }

// Equal keys have the same string form
func (k Key) Equal(other Key) bool { return k.name == other.name }

// Segments of the dotted key
func (k Key) Segments() []string { return strings.Split(k.name, KeySeparator) }

// Parent yields the key one segment up, if any
func (k Key) Parent() (Key, bool) {
	i := strings.LastIndex(k.name, KeySeparator)
	if i < 0 {
		return Key{}, false
	}
	return Key{kind: k.kind, name: k.name[:i]}, true
}

// Path maps a dotted key to a filesystem path relative to some base, e.g. "a.b.c" => "a/b/c"
func (k Key) Path() string {
	return strings.Replace(k.name, KeySeparator, string(filepath.Separator), -1)
}

// KeySet is a set of keys
type KeySet map[Key]struct{}

// NewKeySet builds a set from some keys
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add a key to the set
func (s KeySet) Add(k Key) { s[k] = struct{}{} }

// Has tells if the key belongs to the set
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Len of the set
func (s KeySet) Len() int { return len(s) }

// Sorted keys, by name
func (s KeySet) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].name < keys[j].name })
	return keys
}

// Names of the keys in the set, sorted
func (s KeySet) Names() []string {
	sorted := s.Sorted()
	names := make([]string, 0, len(sorted))
	for _, k := range sorted {
		names = append(names, k.name)
	}
	return names
}
