// Copyright © 2018 One Concern

package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/status"
	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = filepath.FromSlash("/base")

func setupStore(t testing.TB) (*Store, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(base, liveDir), 0755))
	return New(fs, base), fs
}

func TestDataPath(t *testing.T) {
	f := New(afero.NewMemMapFs(), base)
	key := datastore.MustKey(datastore.Data, "a.b.c")

	pending, err := f.dataPath(key, datastore.Pending)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/base/pending/a/b/c"), pending)

	live, err := f.dataPath(key, datastore.Live)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/base/live/a/b/c"), live)
}

func TestMetadataPath(t *testing.T) {
	f := New(afero.NewMemMapFs(), base)
	dataKey := datastore.MustKey(datastore.Data, "a.b.c")
	mdKey := datastore.MustKey(datastore.Meta, "my-metadata")

	pending, err := f.metadataPath(mdKey, dataKey, datastore.Pending)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/base/pending/a/b/c.my-metadata"), pending)

	live, err := f.metadataPath(mdKey, dataKey, datastore.Live)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/base/live/a/b/c.my-metadata"), live)

	dataPath, err := f.dataPath(dataKey, datastore.Live)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(dataPath), filepath.Base(dataPath)+".my-metadata"), live)
}

func TestPathTraversal(t *testing.T) {
	f := New(afero.NewMemMapFs(), base)

	// keys with traversal patterns can't be built...
	_, err := datastore.NewKey(datastore.Data, "..")
	require.Error(t, err)
	_, err = datastore.NewKey(datastore.Data, "a.../b")
	require.Error(t, err)

	// ...and a key bypassing validation is still rejected by path construction
	var zero datastore.Key
	_, err = f.dataPath(zero, datastore.Live)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrPathTraversal))
}

func TestGetSetKey(t *testing.T) {
	f, _ := setupStore(t)
	key := datastore.MustKey(datastore.Data, "settings.a.b")

	_, ok, err := f.GetKey(key, datastore.Pending)
	require.NoError(t, err)
	assert.False(t, ok)

	populated, err := f.KeyPopulated(key, datastore.Pending)
	require.NoError(t, err)
	assert.False(t, populated)

	require.NoError(t, f.SetKey(key, `"one"`, datastore.Pending))
	require.NoError(t, f.SetKey(key, `"two"`, datastore.Pending))

	v, ok, err := f.GetKey(key, datastore.Pending)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"two"`, v)

	populated, err = f.KeyPopulated(key, datastore.Pending)
	require.NoError(t, err)
	assert.True(t, populated)

	_, ok, err = f.GetKey(key, datastore.Live)
	require.NoError(t, err)
	assert.False(t, ok)
}

// failingFs fails to open any file
type failingFs struct {
	afero.Fs
}

func (failingFs) Open(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
}

func TestReadError(t *testing.T) {
	f := New(failingFs{Fs: afero.NewMemMapFs()}, base)

	_, _, err := f.GetKey(datastore.MustKey(datastore.Data, "settings.forbidden"), datastore.Live)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrKeyRead))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Contains(t, err.Error(), "settings.forbidden")
}

func TestWriteError(t *testing.T) {
	f := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), base)

	err := f.SetKey(datastore.MustKey(datastore.Data, "settings.a"), "1", datastore.Pending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrIO))
	assert.Contains(t, err.Error(), filepath.Join(base, pendingDir))
}

func TestListPopulatedKeys(t *testing.T) {
	f, fs := setupStore(t)

	for _, name := range []string{"settings.a.b", "settings.a.c", "settings.x", "other.y"} {
		require.NoError(t, f.SetKey(datastore.MustKey(datastore.Data, name), "1", datastore.Live))
	}
	require.NoError(t, f.SetMetadata(
		datastore.MustKey(datastore.Meta, "meta1"),
		datastore.MustKey(datastore.Data, "settings.a.b"),
		"true",
	))
	// not a key: skipped
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, liveDir, "settings", "not a key"), []byte("x"), 0644))

	keys, err := f.ListPopulatedKeys("settings.", datastore.Live)
	require.NoError(t, err)
	assert.Equal(t, []string{"settings.a.b", "settings.a.c", "settings.x"}, keys.Names())

	keys, err = f.ListPopulatedKeys("settings.a", datastore.Live)
	require.NoError(t, err)
	assert.Equal(t, []string{"settings.a.b", "settings.a.c"}, keys.Names())

	keys, err = f.ListPopulatedKeys("", datastore.Live)
	require.NoError(t, err)
	assert.Len(t, keys, 4)
}

func TestListMissingBase(t *testing.T) {
	f := New(afero.NewMemMapFs(), base)

	keys, err := f.ListPopulatedKeys("", datastore.Pending)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = f.ListPopulatedKeys("", datastore.Live)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCorruption))
}

func TestListPopulatedMetadata(t *testing.T) {
	f, _ := setupStore(t)

	k1 := datastore.MustKey(datastore.Data, "x.1")
	k2 := datastore.MustKey(datastore.Data, "x.2")
	k3 := datastore.MustKey(datastore.Data, "y.3")
	mk1 := datastore.MustKey(datastore.Meta, "metatest1")
	mk2 := datastore.MustKey(datastore.Meta, "metatest2")

	require.NoError(t, f.SetMetadata(mk1, k1, "41"))
	require.NoError(t, f.SetMetadata(mk2, k1, "42"))
	require.NoError(t, f.SetMetadata(mk2, k2, "43"))
	require.NoError(t, f.SetMetadata(mk1, k3, "44"))

	all, err := f.ListPopulatedMetadata("x.", "")
	require.NoError(t, err)
	assert.Equal(t, map[datastore.Key]datastore.KeySet{
		k1: datastore.NewKeySet(mk1, mk2),
		k2: datastore.NewKeySet(mk2),
	}, all)

	named, err := f.ListPopulatedMetadata("", "metatest1")
	require.NoError(t, err)
	assert.Equal(t, map[datastore.Key]datastore.KeySet{
		k1: datastore.NewKeySet(mk1),
		k3: datastore.NewKeySet(mk1),
	}, named)

	// metadata is not listed as data
	keys, err := f.ListPopulatedKeys("", datastore.Live)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMetadataInheritance(t *testing.T) {
	f, _ := setupStore(t)

	meta := datastore.MustKey(datastore.Meta, "mymeta")
	parent := datastore.MustKey(datastore.Data, "a")
	child := datastore.MustKey(datastore.Data, "a.b")
	grandchild := datastore.MustKey(datastore.Data, "a.b.c")

	require.NoError(t, f.SetMetadata(meta, parent, `"parent"`))

	v, ok, err := f.GetMetadata(meta, grandchild)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"parent"`, v)

	_, ok, err = f.GetMetadataRaw(meta, grandchild)
	require.NoError(t, err)
	assert.False(t, ok)

	// the nearest ancestor wins
	require.NoError(t, f.SetMetadata(meta, child, `"child"`))
	v, ok, err = f.GetMetadata(meta, grandchild)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"child"`, v)

	// descendants are never used for an ancestor
	v, ok, err = f.GetMetadata(meta, parent)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"parent"`, v)
}

func TestCommit(t *testing.T) {
	f, fs := setupStore(t)

	pairs := map[datastore.Key]string{
		datastore.MustKey(datastore.Data, "settings.x.1"): `"a"`,
		datastore.MustKey(datastore.Data, "settings.x.2"): `"b"`,
	}
	require.NoError(t, f.SetKeys(pairs, datastore.Pending))

	committed, err := f.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{"settings.x.1", "settings.x.2"}, committed.Names())

	for k, expected := range pairs {
		v, ok, err := f.GetKey(k, datastore.Live)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, expected, v)
	}

	pending, err := f.ListPopulatedKeys("", datastore.Pending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	exists, err := afero.DirExists(fs, filepath.Join(base, pendingDir))
	require.NoError(t, err)
	assert.False(t, exists)

	// committing again is a no-op
	committed, err = f.Commit()
	require.NoError(t, err)
	assert.Empty(t, committed)
}

func TestCommitNothingPending(t *testing.T) {
	f, fs := setupStore(t)

	// pending exists but holds nothing under settings
	require.NoError(t, f.SetKey(datastore.MustKey(datastore.Data, "other.key"), "1", datastore.Pending))

	committed, err := f.Commit()
	require.NoError(t, err)
	assert.Empty(t, committed)

	// no change on the file system
	exists, err := afero.Exists(fs, filepath.Join(base, pendingDir, "other", "key"))
	require.NoError(t, err)
	assert.True(t, exists)

	live, err := f.ListPopulatedKeys("", datastore.Live)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestCommitIsRetryable(t *testing.T) {
	f, fs := setupStore(t)
	key := datastore.MustKey(datastore.Data, "settings.motd")

	// simulate a crash after live was written but before pending was removed
	require.NoError(t, f.SetKey(key, `"hello"`, datastore.Pending))
	require.NoError(t, f.SetKey(key, `"hello"`, datastore.Live))

	committed, err := f.Commit()
	require.NoError(t, err)
	assert.True(t, committed.Has(key))

	_, err = fs.Stat(filepath.Join(base, pendingDir))
	assert.True(t, os.IsNotExist(err))
}

func TestNewKeyPath(t *testing.T) {
	kp, err := newKeyPath(filepath.FromSlash("settings/a/b"))
	require.NoError(t, err)
	assert.Equal(t, "settings.a.b", kp.dataKey.Name())
	assert.Nil(t, kp.metadataKey)
	assert.Equal(t, datastore.Data, kp.keyType())

	kp, err = newKeyPath(filepath.FromSlash("settings/a/b.meta1"))
	require.NoError(t, err)
	assert.Equal(t, "settings.a.b", kp.dataKey.Name())
	require.NotNil(t, kp.metadataKey)
	assert.Equal(t, "meta1", kp.metadataKey.Name())
	assert.Equal(t, datastore.Meta, kp.keyType())

	_, err = newKeyPath(filepath.FromSlash("settings/a/b.meta.extra"))
	require.Error(t, err)

	_, err = newKeyPath("\xff")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCorruption))
}
