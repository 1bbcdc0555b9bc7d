// Copyright © 2018 One Concern

// Package filesystem implements a data store backed by files.
//
// Each key maps to a file: the data key "settings.a.b" is stored in "settings/a/b", and its
// metadata "meta1" in "settings/a/b.meta1". Pending and live data are stored under separate roots.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	liveDir    = "live"
	pendingDir = "pending"

	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

var _ datastore.DataStore = &Store{}

// Store is a data store persisted on some filesystem.
//
// Store does not serialize concurrent writers.
type Store struct {
	fs          afero.Fs
	livePath    string
	pendingPath string
	l           *zap.Logger
}

// Option configures a file system store
type Option func(*Store)

// WithLogger sets a logger for the store. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// New creates a file system backed data store rooted at basePath.
//
// When fs is nil, the OS file system is used.
func New(fs afero.Fs, basePath string, opts ...Option) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	base := filepath.Clean(basePath)
	s := &Store{
		fs:          fs,
		livePath:    filepath.Join(base, liveDir),
		pendingPath: filepath.Join(base, pendingDir),
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// NewOS creates a data store on the OS file system
func NewOS(basePath string, opts ...Option) *Store {
	return New(afero.NewOsFs(), basePath, opts...)
}

func (s *Store) String() string {
	return "filesystem@" + filepath.Dir(s.livePath)
}

// basePath returns the root for pending or live data
func (s *Store) basePath(committed datastore.Committed) string {
	if committed == datastore.Pending {
		return s.pendingPath
	}
	return s.livePath
}

// dataPath returns the path on the filesystem for some data key.
//
// Keys are validated for acceptable characters, but the resulting path is still checked to be a
// strict descendant of the base path.
func (s *Store) dataPath(key datastore.Key, committed datastore.Committed) (string, error) {
	base := s.basePath(committed)
	path := filepath.Join(base, key.Path())

	if path == base || !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", status.ErrPathTraversal.WithContext("(key %q)", key.Name())
	}
	return path, nil
}

// metadataPath returns the path on the filesystem for some metadata key set on a data key.
//
// The metadata file sits next to the data file, as in "{dir}/{basename}.{metadata}".
func (s *Store) metadataPath(metadataKey, dataKey datastore.Key, committed datastore.Committed) (string, error) {
	path, err := s.dataPath(dataKey, committed)
	if err != nil {
		return "", err
	}

	dir, basename := filepath.Split(path)
	if dir == "" || basename == "" {
		return "", status.ErrInternal.WithContext("invalid path generated for key %q: %s", dataKey.Name(), path)
	}
	return filepath.Join(dir, basename+datastore.MetadataKeyPrefix+metadataKey.Name()), nil
}

// readFileForKey reads a key value from the filesystem. A missing file is reported as an absent value, not an error.
func (s *Store) readFileForKey(key datastore.Key, path string) (string, bool, error) {
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, status.ErrKeyRead.WithContext("%q", key.Name()).Wrap(err)
	}
	return string(b), true, nil
}

// writeFileMkdir writes a file and creates its parent directories beforehand,
// so that arbitrarily dotted keys may be set without any prior structure.
func (s *Store) writeFileMkdir(path, value string) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, dirMode); err != nil {
		return status.ErrIO.WithContext("on %s", dir).Wrap(err)
	}
	if err := afero.WriteFile(s.fs, path, []byte(value), fileMode); err != nil {
		return status.ErrIO.WithContext("on %s", path).Wrap(err)
	}
	return nil
}

// KeyPopulated tells if a data key is stored
func (s *Store) KeyPopulated(key datastore.Key, committed datastore.Committed) (bool, error) {
	path, err := s.dataPath(key, committed)
	if err != nil {
		return false, err
	}
	fi, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, status.ErrKeyRead.WithContext("%q", key.Name()).Wrap(err)
	}
	return fi.Mode().IsRegular(), nil
}

// ListPopulatedKeys returns the data keys stored with a name starting with prefix
func (s *Store) ListPopulatedKeys(prefix string, committed datastore.Committed) (datastore.KeySet, error) {
	keyPaths, err := s.findPopulatedKeyPaths(datastore.Data, prefix, committed)
	if err != nil {
		return nil, err
	}

	keys := make(datastore.KeySet, len(keyPaths))
	for _, kp := range keyPaths {
		keys.Add(kp.dataKey)
	}
	return keys, nil
}

// ListPopulatedMetadata returns the metadata keys stored for data keys starting with prefix,
// optionally restricted to metadata keys with a given name.
//
// Only data keys carrying some matching metadata are returned.
func (s *Store) ListPopulatedMetadata(prefix, name string) (map[datastore.Key]datastore.KeySet, error) {
	keyPaths, err := s.findPopulatedKeyPaths(datastore.Meta, prefix, datastore.Live)
	if err != nil {
		return nil, err
	}

	result := make(map[datastore.Key]datastore.KeySet)
	for _, kp := range keyPaths {
		if kp.metadataKey == nil {
			return nil, status.ErrInternal.WithContext("found metadata key path with no separator: %s", kp.dataKey.Name())
		}
		metadataKey := *kp.metadataKey
		if name != "" && name != metadataKey.Name() {
			continue
		}

		set, ok := result[kp.dataKey]
		if !ok {
			set = make(datastore.KeySet)
			result[kp.dataKey] = set
		}
		set.Add(metadataKey)
	}
	return result, nil
}

// GetKey reads the value of a data key
func (s *Store) GetKey(key datastore.Key, committed datastore.Committed) (string, bool, error) {
	path, err := s.dataPath(key, committed)
	if err != nil {
		return "", false, err
	}
	return s.readFileForKey(key, path)
}

// SetKey writes the value of a data key
func (s *Store) SetKey(key datastore.Key, value string, committed datastore.Committed) error {
	path, err := s.dataPath(key, committed)
	if err != nil {
		return err
	}
	s.l.Debug("set key", zap.String("key", key.Name()), zap.Stringer("committed", committed), zap.String("path", path))
	return s.writeFileMkdir(path, value)
}

// SetKeys writes several data keys, stopping at the first failure
func (s *Store) SetKeys(pairs map[datastore.Key]string, committed datastore.Committed) error {
	for key, value := range pairs {
		if err := s.SetKey(key, value, committed); err != nil {
			return err
		}
	}
	return nil
}

// GetMetadataRaw reads the metadata set directly on a data key
func (s *Store) GetMetadataRaw(metadataKey, dataKey datastore.Key) (string, bool, error) {
	path, err := s.metadataPath(metadataKey, dataKey, datastore.Live)
	if err != nil {
		return "", false, err
	}
	return s.readFileForKey(metadataKey, path)
}

// GetMetadata reads the metadata set on a data key or inherited from its nearest ancestor
func (s *Store) GetMetadata(metadataKey, dataKey datastore.Key) (string, bool, error) {
	return datastore.InheritedMetadata(s, metadataKey, dataKey)
}

// SetMetadata writes some metadata for a data key
func (s *Store) SetMetadata(metadataKey, dataKey datastore.Key, value string) error {
	path, err := s.metadataPath(metadataKey, dataKey, datastore.Live)
	if err != nil {
		return err
	}
	s.l.Debug("set metadata", zap.String("metadata", metadataKey.Name()), zap.String("key", dataKey.Name()), zap.String("path", path))
	return s.writeFileMkdir(path, value)
}

// Commit copies pending settings to live, then removes the pending tree.
//
// This is not atomic: if removing pending fails after live has been written, both copies remain
// and pending still shows ahead of live. Committing again is safe and converges.
// Callers must serialize calls to Commit.
func (s *Store) Commit() (datastore.KeySet, error) {
	pending, err := datastore.GetPrefix(s, datastore.SettingsPrefix, datastore.Pending)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		s.l.Debug("no pending keys to commit")
		return datastore.NewKeySet(), nil
	}

	pairs, err := datastore.PairsFromMap(pending)
	if err != nil {
		return nil, err
	}

	s.l.Debug("writing pending keys to live", zap.Int("keys", len(pairs)))
	if err := s.SetKeys(pairs, datastore.Live); err != nil {
		return nil, err
	}

	s.l.Debug("removing old pending keys", zap.String("path", s.pendingPath))
	if err := s.fs.RemoveAll(s.pendingPath); err != nil {
		return nil, status.ErrIO.WithContext("on %s", s.pendingPath).Wrap(err)
	}

	committed := make(datastore.KeySet, len(pairs))
	for k := range pairs {
		committed.Add(k)
	}
	return committed, nil
}
