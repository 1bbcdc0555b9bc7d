package datastore

import (
	"testing"

	"github.com/oneconcern/datastore/pkg/datastore/status"
	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	s, err := SerializeScalar("it's my name")
	require.NoError(t, err)
	assert.Equal(t, `"it's my name"`, s)

	var str string
	require.NoError(t, DeserializeScalar(s, &str))
	assert.Equal(t, "it's my name", str)

	s, err = SerializeScalar([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", s)

	var list []int
	require.NoError(t, DeserializeScalar("[1,2, 3]", &list))
	assert.Equal(t, []int{1, 2, 3}, list)

	var b bool
	require.NoError(t, DeserializeScalar("true", &b))
	assert.True(t, b)
}

func TestScalarNullIsAbsent(t *testing.T) {
	value := int64(42)
	opt := &value
	require.NoError(t, DeserializeScalar("null", &opt))
	assert.Nil(t, opt)
}

func TestScalarErrors(t *testing.T) {
	var str string
	err := DeserializeScalar("not quoted", &str)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrScalar))

	_, err = SerializeScalar(make(chan int))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrScalar))
}
