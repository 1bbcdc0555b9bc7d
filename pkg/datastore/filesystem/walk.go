// Copyright © 2018 One Concern

package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/status"
	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// keyPath represents the path to a data or metadata key, relative to the base path of
// the live or pending data store.
//
// For example, the data key "settings.a.b" is at "settings/a/b", and the metadata key "meta1"
// for "settings.a.b" is at "settings/a/b.meta1".
type keyPath struct {
	dataKey     datastore.Key
	metadataKey *datastore.Key
}

func newKeyPath(path string) (keyPath, error) {
	if !utf8.ValidString(path) {
		return keyPath{}, status.ErrCorruption.WithContext("non-UTF-8 path: %q", path)
	}

	parts := strings.SplitN(filepath.ToSlash(path), datastore.MetadataKeyPrefix, 2)
	if parts[0] == "" {
		return keyPath{}, status.ErrInternal.WithContext("key path given empty path")
	}

	dataKey, err := datastore.NewKey(datastore.Data, strings.Replace(parts[0], "/", datastore.KeySeparator, -1))
	if err != nil {
		return keyPath{}, err
	}

	kp := keyPath{dataKey: dataKey}
	if len(parts) > 1 {
		metadataKey, err := datastore.NewKey(datastore.Meta, parts[1])
		if err != nil {
			return keyPath{}, err
		}
		kp.metadataKey = &metadataKey
	}
	return kp, nil
}

func (kp keyPath) keyType() datastore.KeyType {
	if kp.metadataKey != nil {
		return datastore.Meta
	}
	return datastore.Data
}

// keyPathForEntry yields a key path when the entry looks like a data store key.
//
// Directories, links and files which do not parse into keys are skipped.
func keyPathForEntry(path string, info os.FileInfo, base string) (keyPath, bool, error) {
	if !info.Mode().IsRegular() {
		return keyPath{}, false, nil
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		return keyPath{}, false, status.ErrInternal.WithContext("path %s is not under %s", path, base).Wrap(err)
	}

	kp, err := newKeyPath(rel)
	if err != nil {
		return keyPath{}, false, nil
	}
	return kp, true, nil
}

// findPopulatedKeyPaths walks the filesystem to find populated keys of the given type,
// with a data key starting with prefix.
//
// Symbolic links are not followed, and the walk does not descend into other filesystems.
func (s *Store) findPopulatedKeyPaths(keyType datastore.KeyType, prefix string, committed datastore.Committed) ([]keyPath, error) {
	base := s.basePath(committed)

	rootInfo, err := s.fs.Stat(base)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, status.ErrListKeys.WithContext("under %s", base).Wrap(err)
		}
		if committed == datastore.Live {
			// there is always a live tree in an initialized data store
			return nil, status.ErrCorruption.WithContext("live data store missing at %s", base)
		}
		s.l.Debug("no pending keys", zap.String("path", base))
		return nil, nil
	}
	rootDevice, hasDevice := deviceID(rootInfo)

	s.l.Debug("walking data store",
		zap.Stringer("type", keyType),
		zap.String("prefix", prefix),
		zap.String("path", base),
	)

	var keyPaths []keyPath
	err = afero.Walk(s.fs, base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if dev, ok := deviceID(info); hasDevice && ok && dev != rootDevice {
				s.l.Debug("skipping mount point", zap.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}

		kp, ok, err := keyPathForEntry(path, info, base)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if !strings.HasPrefix(kp.dataKey.Name(), prefix) || kp.keyType() != keyType {
			return nil
		}

		keyPaths = append(keyPaths, kp)
		return nil
	})
	if err != nil {
		if errors.Is(err, status.ErrInternal) {
			return nil, err
		}
		return nil, status.ErrListKeys.WithContext("under %s", base).Wrap(err)
	}
	return keyPaths, nil
}
