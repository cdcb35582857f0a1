package binarize

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanDecodeConsecutiveValues(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder()
	require.NoError(t, enc.Encode(context.Background(), &buf, sampleTree()))
	require.NoError(t, enc.Encode(context.Background(), &buf, Number(-1)))

	first, err := Decode(&buf)
	require.NoError(t, err)
	require.True(t, Equal(sampleTree(), first))

	second, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, Number(-1), second)

	require.Equal(t, 0, buf.Len())

	// The stream ends cleanly between nodes
	_, err = Decode(&buf)
	require.ErrorIs(t, err, io.EOF)
	require.NotErrorIs(t, err, ErrTruncatedBuffer)
}

func TestCannotDecodeShortStream(t *testing.T) {
	// Cut inside the header
	_, err := Decode(bytes.NewReader([]byte{0x03, 0x00}))
	require.ErrorIs(t, err, ErrTruncatedBuffer)

	// Cut inside the payload
	_, err = Decode(bytes.NewReader([]byte{0x03, 0x00, 0x08, 0x00}))
	require.ErrorIs(t, err, ErrTruncatedBuffer)

	_, err = Decode(bytes.NewReader([]byte{0xAA}))
	require.ErrorIs(t, err, ErrUnknownTypeTag)
}
