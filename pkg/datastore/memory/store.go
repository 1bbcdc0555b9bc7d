// Copyright © 2018 One Concern

// Package memory implements an in-memory data store, intended for tests.
package memory

import (
	"strings"
	"sync"

	"github.com/oneconcern/datastore/pkg/datastore"
	"go.uber.org/zap"
)

var _ datastore.DataStore = &Store{}

// Store keeps data and metadata in maps.
//
// The maps are guarded by a mutex, but a Commit still needs to be serialized
// with other writers by the caller.
type Store struct {
	mu       sync.RWMutex
	live     map[datastore.Key]string
	pending  map[datastore.Key]string
	metadata map[datastore.Key]map[datastore.Key]string // data key => metadata key => value
	l        *zap.Logger
}

// Option configures an in-memory store
type Option func(*Store)

// WithLogger sets a logger for the store. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// New in-memory data store
func New(opts ...Option) *Store {
	s := &Store{
		live:     make(map[datastore.Key]string),
		pending:  make(map[datastore.Key]string),
		metadata: make(map[datastore.Key]map[datastore.Key]string),
		l:        zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func (s *Store) String() string { return "memory" }

func (s *Store) dataset(committed datastore.Committed) map[datastore.Key]string {
	if committed == datastore.Pending {
		return s.pending
	}
	return s.live
}

// KeyPopulated tells if a data key holds a value
func (s *Store) KeyPopulated(key datastore.Key, committed datastore.Committed) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.dataset(committed)[key]
	return ok, nil
}

// ListPopulatedKeys returns data keys starting with prefix
func (s *Store) ListPopulatedKeys(prefix string, committed datastore.Committed) (datastore.KeySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(datastore.KeySet)
	for k := range s.dataset(committed) {
		if strings.HasPrefix(k.Name(), prefix) {
			keys.Add(k)
		}
	}
	return keys, nil
}

// ListPopulatedMetadata returns metadata keys set on data keys starting with prefix
func (s *Store) ListPopulatedMetadata(prefix, name string) (map[datastore.Key]datastore.KeySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[datastore.Key]datastore.KeySet)
	for dataKey, entries := range s.metadata {
		if !strings.HasPrefix(dataKey.Name(), prefix) {
			continue
		}
		for metadataKey := range entries {
			if name != "" && name != metadataKey.Name() {
				continue
			}
			set, ok := result[dataKey]
			if !ok {
				set = make(datastore.KeySet)
				result[dataKey] = set
			}
			set.Add(metadataKey)
		}
	}
	return result, nil
}

// GetKey returns the value of a data key
func (s *Store) GetKey(key datastore.Key, committed datastore.Committed) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.dataset(committed)[key]
	return value, ok, nil
}

// SetKey sets the value of a data key
func (s *Store) SetKey(key datastore.Key, value string, committed datastore.Committed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset(committed)[key] = value
	return nil
}

// SetKeys sets several data keys
func (s *Store) SetKeys(pairs map[datastore.Key]string, committed datastore.Committed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.dataset(committed)
	for k, v := range pairs {
		data[k] = v
	}
	return nil
}

// GetMetadataRaw returns the metadata set directly on a data key
func (s *Store) GetMetadataRaw(metadataKey, dataKey datastore.Key) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.metadata[dataKey]
	if !ok {
		return "", false, nil
	}
	value, ok := entries[metadataKey]
	return value, ok, nil
}

// GetMetadata returns the metadata set on a data key or inherited from its nearest ancestor
func (s *Store) GetMetadata(metadataKey, dataKey datastore.Key) (string, bool, error) {
	return datastore.InheritedMetadata(s, metadataKey, dataKey)
}

// SetMetadata sets metadata on a data key
func (s *Store) SetMetadata(metadataKey, dataKey datastore.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.metadata[dataKey]
	if !ok {
		entries = make(map[datastore.Key]string)
		s.metadata[dataKey] = entries
	}
	entries[metadataKey] = value
	return nil
}

// Commit promotes pending settings to live, then drops all pending keys
func (s *Store) Commit() (datastore.KeySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	committed := make(datastore.KeySet)
	for k, v := range s.pending {
		if !strings.HasPrefix(k.Name(), datastore.SettingsPrefix) {
			continue
		}
		s.live[k] = v
		committed.Add(k)
	}

	if committed.Len() == 0 {
		return committed, nil
	}

	s.l.Debug("committed pending keys", zap.Int("keys", committed.Len()))
	s.pending = make(map[datastore.Key]string)
	return committed, nil
}
