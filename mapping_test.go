package binarize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroValueMappingIsUsable(t *testing.T) {
	m := &Mapping{}
	m.SetString("a", Number(1))
	m.SetString("b", Number(2))
	m.SetString("a", Number(3))

	require.Equal(t, 2, m.Len())
	a, ok := m.GetString("a")
	require.True(t, ok)
	require.Equal(t, Number(3), a)

	enc, err := Pack(m)
	require.NoError(t, err)
	res, err := Unpack(enc)
	require.NoError(t, err)
	require.True(t, Equal(m, res))

	var empty Mapping
	_, ok = empty.GetString("missing")
	require.False(t, ok)
}
