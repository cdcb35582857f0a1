package binarize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanRoundTripEveryCategory(t *testing.T) {
	v := sampleTree()

	enc, err := Pack(v)
	require.NoError(t, err)

	res, err := Unpack(enc)
	require.NoError(t, err)
	require.True(t, Equal(v, res))

	// Key order survives the trip
	var keys []string
	for _, e := range res.(*Mapping).Entries() {
		keys = append(keys, e.Key.String())
	}
	require.Equal(t, []string{"name", "array", "object", "flags", "ints", "raw", "blob", "emoji"}, keys)
}

func TestStringsRoundTripCodeUnits(t *testing.T) {
	// A lone surrogate is not valid text but must survive unchanged
	s := String{0x0061, 0xD800, 0x0062}

	enc, err := Pack(s)
	require.NoError(t, err)

	res, err := Unpack(enc)
	require.NoError(t, err)
	require.Equal(t, s, res)

	// A supplementary code point takes two code units
	require.Len(t, NewString("😀"), 2)
}

func TestCannotUnpackUnknownTag(t *testing.T) {
	res, err := Unpack([]byte{0xFF, 0x00, 0x00})
	require.ErrorIs(t, err, ErrUnknownTypeTag)
	require.Nil(t, res)

	// An unknown tag nested in a sequence fails the whole decode
	res, err = Unpack([]byte{0x05, 0x00, 0x01, 0x00, 0x03, 0x7F, 0x00, 0x00})
	require.ErrorIs(t, err, ErrUnknownTypeTag)
	require.Nil(t, res)
}

func TestCannotUnpackTruncatedBuffer(t *testing.T) {
	enc, err := Pack(sampleTree())
	require.NoError(t, err)

	for _, n := range []int{0, 1, 3, 5, 10, len(enc) / 2, len(enc) - 1} {
		res, err := Unpack(enc[:n])
		require.ErrorIs(t, err, ErrTruncatedBuffer, "length %d", n)
		require.Nil(t, res)
	}
}

func TestBooleanDecodingIsStrict(t *testing.T) {
	v, err := Unpack([]byte{0x04, 0x00, 0x01, 0x01})
	require.NoError(t, err)
	require.Equal(t, Boolean(true), v)

	v, err = Unpack([]byte{0x04, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, Boolean(false), v)

	_, err = Unpack([]byte{0x04, 0x00, 0x01, 0x02})
	require.ErrorIs(t, err, ErrDecode)
}

func TestCannotUnpackBadLeafLength(t *testing.T) {
	// Odd string length
	_, err := Unpack([]byte{0x02, 0x00, 0x03, 0x00, 0x41, 0x00})
	require.ErrorIs(t, err, ErrDecode)

	// Number with four bytes
	_, err = Unpack([]byte{0x03, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, ErrDecode)

	// Null with a payload
	_, err = Unpack([]byte{0x00, 0x00, 0x01, 0x00})
	require.ErrorIs(t, err, ErrDecode)

	// Int32Array length not a multiple of four
	_, err = Unpack([]byte{0x09, 0x00, 0x02, 0x00, 0x00})
	require.ErrorIs(t, err, ErrDecode)
}

func TestContainerLengthIsEnforced(t *testing.T) {
	// Sequence of one Null declaring 4 bytes instead of 3
	_, err := Unpack([]byte{0x05, 0x00, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, ErrDecode)
}

func TestMappingKeyMustBeString(t *testing.T) {
	// Mapping with a Number key
	_, err := Unpack([]byte{
		0x06, 0x00, 0x01, 0x00, 0x0E,
		0x03, 0x00, 0x08, 0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00,
	})
	require.ErrorIs(t, err, ErrDecode)
}

func TestDuplicateKeysLastWriteWins(t *testing.T) {
	enc := []byte{
		0x06, 0x00, 0x03, 0x00, 0x1A,
		0x02, 0x00, 0x02, 0x00, 0x61, // "a"
		0x04, 0x00, 0x01, 0x00, // false
		0x02, 0x00, 0x02, 0x00, 0x62, // "b"
		0x00, 0x00, 0x00, // null
		0x02, 0x00, 0x02, 0x00, 0x61, // "a"
		0x04, 0x00, 0x01, 0x01, // true
	}

	v, err := Unpack(enc)
	require.NoError(t, err)

	m := v.(*Mapping)
	require.Equal(t, 2, m.Len())
	require.Equal(t, "a", m.Entries()[0].Key.String())
	require.Equal(t, "b", m.Entries()[1].Key.String())

	a, ok := m.GetString("a")
	require.True(t, ok)
	require.Equal(t, Boolean(true), a)
}

func TestTrailingBytesAreIgnored(t *testing.T) {
	enc, err := Pack(Number(7))
	require.NoError(t, err)

	v, err := Unpack(append(enc, 0xFF, 0xFF))
	require.NoError(t, err)
	require.Equal(t, Number(7), v)
}

func TestUnpackAtReturnsNextCursor(t *testing.T) {
	first, err := Pack(NewString("one"))
	require.NoError(t, err)
	second, err := Pack(Boolean(true))
	require.NoError(t, err)
	buf := append(append([]byte{}, first...), second...)

	v, next, err := UnpackAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "one", v.(String).String())
	require.Equal(t, len(first), next)

	v, next, err = UnpackAt(buf, next)
	require.NoError(t, err)
	require.Equal(t, Boolean(true), v)
	require.Equal(t, len(buf), next)

	_, _, err = UnpackAt(buf, len(buf)+1)
	require.ErrorIs(t, err, ErrTruncatedBuffer)
}
