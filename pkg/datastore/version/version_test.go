package version

import (
	"testing"

	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder(t *testing.T) {
	assert.Equal(t, New(1, 1), New(1, 1))
	assert.NotEqual(t, New(0, 1), New(1, 0))

	assert.True(t, New(0, 0).Less(New(0, 1)))
	assert.True(t, New(0, 99).Less(New(1, 0)))
	assert.True(t, New(1, 0).Less(New(1, 1)))
	assert.False(t, New(1, 1).Less(New(1, 0)))
	assert.False(t, New(1, 1).Less(New(1, 1)))
}

func TestParse(t *testing.T) {
	for _, toPin := range []struct {
		input    string
		expected Version
		err      bool
	}{
		{input: "0.1", expected: New(0, 1)},
		{input: "2.3", expected: New(2, 3)},
		{input: "v1.0", expected: New(1, 0)},
		{input: "v12.34", expected: New(12, 34)},
		{input: "1", err: true},
		{input: "v1.x", err: true},
		{input: "x1.2", err: true},
		{input: "1.2.3", err: true},
		{input: "99999999999.1", err: true},
	} {
		fixture := toPin
		t.Run(fixture.input, func(t *testing.T) {
			v, err := Parse(fixture.input)
			if fixture.err {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidVersion))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fixture.expected, v)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "v0.1", New(0, 1).String())
	assert.Equal(t, "v2.3", New(2, 3).String())
}

func TestDirectoryName(t *testing.T) {
	v, id, err := FromDirectoryName("v1.5_0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, New(1, 5), v)
	assert.Equal(t, "0123456789abcdef", id)

	_, _, err = FromDirectoryName("v1.5")
	assert.True(t, errors.Is(err, ErrInvalidVersion))

	name := NewDirectoryName(New(2, 0))
	v, id, err = FromDirectoryName(name)
	require.NoError(t, err)
	assert.Equal(t, New(2, 0), v)
	_, err = ksuid.Parse(id)
	assert.NoError(t, err)

	assert.NotEqual(t, name, NewDirectoryName(New(2, 0)))
}

func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := FromFile(fs, "/datastore/version")
	assert.True(t, errors.Is(err, ErrVersionRead))

	require.NoError(t, WriteFile(fs, "/datastore/version", New(1, 2)))
	v, err := FromFile(fs, "/datastore/version")
	require.NoError(t, err)
	assert.Equal(t, New(1, 2), v)

	require.NoError(t, afero.WriteFile(fs, "/datastore/version", []byte("garbage"), 0644))
	_, err = FromFile(fs, "/datastore/version")
	assert.True(t, errors.Is(err, ErrInvalidVersion))

	err = WriteFile(afero.NewReadOnlyFs(fs), "/datastore/version", New(1, 3))
	assert.True(t, errors.Is(err, ErrVersionWrite))
}
