package binarize

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Encode packs v and writes the buffer to w
func (e *Encoder) Encode(ctx context.Context, w io.Writer, v any) error {
	buf, err := e.Pack(ctx, v)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Decode reads exactly one encoded node from r and decodes it. Nothing past
// the node is consumed, so consecutive values can be read from one stream.
// It returns io.EOF when r ends before the first byte of a node.
func Decode(r io.Reader) (Value, error) {
	// Read the tag
	var head [containerHeaderSize]byte
	if _, err := io.ReadFull(r, head[:tagLength]); err != nil {
		// A clean end between nodes is reported as io.EOF
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(ErrTruncatedBuffer, err.Error())
	}
	tag := Tag(head[0])
	if !tag.Valid() {
		return nil, errors.Wrapf(ErrUnknownTypeTag, "tag 0x%02x", head[0])
	}

	// Read the rest of the header
	hs := tag.HeaderSize()
	if _, err := io.ReadFull(r, head[tagLength:hs]); err != nil {
		return nil, errors.Wrap(ErrTruncatedBuffer, err.Error())
	}
	byteLength := int(binary.BigEndian.Uint16(head[hs-byteLengthLength : hs]))

	// Allocate space for the whole node and read its payload
	buf := make([]byte, hs+byteLength)
	copy(buf, head[:hs])
	if _, err := io.ReadFull(r, buf[hs:]); err != nil {
		return nil, errors.Wrap(ErrTruncatedBuffer, err.Error())
	}

	v, next, err := UnpackAt(buf, 0)
	if err != nil {
		return nil, err
	}
	if next != len(buf) {
		return nil, errors.Wrapf(ErrDecode, "node declares %d bytes, decoded %d", len(buf), next)
	}
	return v, nil
}
