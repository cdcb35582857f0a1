package binarize

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Unpack decodes the node at the start of buf. Bytes after the root node are
// ignored.
func Unpack(buf []byte) (Value, error) {
	v, _, err := UnpackAt(buf, 0)
	return v, err
}

// UnpackAt decodes the node starting at cursor and returns it along with the
// offset just past it
func UnpackAt(buf []byte, cursor int) (v Value, next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic in Unpack: %s", r)
		}
		if err != nil {
			v, next = nil, 0
		}
	}()

	if cursor < 0 || cursor > len(buf) {
		return nil, 0, errors.Wrapf(ErrTruncatedBuffer, "cursor %d outside buffer of %d bytes", cursor, len(buf))
	}
	d := decoder{buf: buf, cursor: cursor}
	v, err = d.node()
	if err != nil {
		return nil, 0, err
	}
	return v, d.cursor, nil
}

// header is a decoded node header
type header struct {
	tag        Tag
	count      int
	byteLength int
}

type decoder struct {
	buf    []byte
	cursor int
}

// take returns the next n bytes and advances the cursor
func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.cursor < n {
		return nil, errors.Wrapf(ErrTruncatedBuffer, "need %d bytes at offset %d, have %d", n, d.cursor, len(d.buf)-d.cursor)
	}
	b := d.buf[d.cursor : d.cursor+n]
	d.cursor += n
	return b, nil
}

func (d *decoder) uint16() (int, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(b)), nil
}

// header reads a tag, the element count if the tag is a container, and the
// byte length
func (d *decoder) header() (h header, err error) {
	// First byte: type identifier
	b, err := d.take(tagLength)
	if err != nil {
		return h, err
	}
	h.tag = Tag(b[0])

	// Ensure the tag is one we know about
	if !h.tag.Valid() {
		return h, errors.Wrapf(ErrUnknownTypeTag, "tag 0x%02x at offset %d", b[0], d.cursor-tagLength)
	}

	// Containers carry an element count
	if h.tag.IsContainer() {
		if h.count, err = d.uint16(); err != nil {
			return h, err
		}
	}

	// Decode the byte length
	h.byteLength, err = d.uint16()
	return h, err
}

// node decodes one node and everything below it
func (d *decoder) node() (Value, error) {
	start := d.cursor
	h, err := d.header()
	if err != nil {
		return nil, err
	}

	if h.tag.IsContainer() {
		payloadStart := d.cursor
		v, err := d.container(h)
		if err != nil {
			return nil, err
		}

		// The children must exactly fill the declared length
		if consumed := d.cursor - payloadStart; consumed != h.byteLength {
			return nil, errors.Wrapf(ErrDecode, "%s at offset %d declares %d bytes, children use %d", h.tag, start, h.byteLength, consumed)
		}
		return v, nil
	}

	// Leaf payload lengths are fixed by the category
	if err := checkLeafLength(h); err != nil {
		return nil, errors.Wrapf(err, "offset %d", start)
	}
	payload, err := d.take(h.byteLength)
	if err != nil {
		return nil, err
	}
	return decodeLeaf(h, payload)
}

func (d *decoder) container(h header) (Value, error) {
	switch h.tag {
	case TagSequence:
		seq := make(Sequence, 0, h.count)
		for i := 0; i < h.count; i++ {
			el, err := d.node()
			if err != nil {
				return nil, err
			}
			seq = append(seq, el)
		}
		return seq, nil

	case TagMapping:
		m := NewMapping()
		for i := 0; i < h.count; i++ {
			// Each pair is a String key node followed by a value node
			k, err := d.node()
			if err != nil {
				return nil, err
			}
			key, ok := k.(String)
			if !ok {
				return nil, errors.Wrapf(ErrDecode, "mapping key %d is %s, not String", i, k.Tag())
			}
			val, err := d.node()
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil

	case TagBlob:
		if h.count != 1 && h.count != 2 {
			return nil, errors.Wrapf(ErrDecode, "blob has %d children, want 1 or 2", h.count)
		}
		data, err := d.node()
		if err != nil {
			return nil, err
		}
		payload, ok := data.(Bytes)
		if !ok {
			return nil, errors.Wrapf(ErrDecode, "blob payload is %s, not Bytes", data.Tag())
		}
		b := Blob{Data: payload}
		if h.count == 2 {
			mt, err := d.node()
			if err != nil {
				return nil, err
			}
			mimeType, ok := mt.(String)
			if !ok {
				return nil, errors.Wrapf(ErrDecode, "blob mime type is %s, not String", mt.Tag())
			}
			b.MimeType = mimeType.String()
		}
		return b, nil
	}
	return nil, errors.Wrapf(ErrUnknownTypeTag, "%s is not a container", h.tag)
}

// checkLeafLength rejects byte lengths that cannot hold a whole payload for
// the tag
func checkLeafLength(h header) error {
	switch h.tag {
	case TagNull, TagUndefined:
		if h.byteLength != 0 {
			return errors.Wrapf(ErrDecode, "%s has %d payload bytes", h.tag, h.byteLength)
		}
	case TagNumber, TagBoolean:
		if h.byteLength != h.tag.Width() {
			return errors.Wrapf(ErrDecode, "%s has %d payload bytes, want %d", h.tag, h.byteLength, h.tag.Width())
		}
	default:
		if h.byteLength%h.tag.Width() != 0 {
			return errors.Wrapf(ErrDecode, "%s byte length %d is not a multiple of %d", h.tag, h.byteLength, h.tag.Width())
		}
	}
	return nil
}

// decodeLeaf builds a leaf value from its payload bytes
func decodeLeaf(h header, b []byte) (Value, error) {
	be := binary.BigEndian
	n := 0
	if w := h.tag.Width(); w > 0 {
		n = len(b) / w
	}

	switch h.tag {
	case TagNull:
		return Null{}, nil
	case TagUndefined:
		return Undefined{}, nil
	case TagString:
		s := make(String, n)
		for i := range s {
			s[i] = be.Uint16(b[2*i:])
		}
		return s, nil
	case TagNumber:
		return Number(math.Float64frombits(be.Uint64(b))), nil
	case TagBoolean:
		switch b[0] {
		case 0:
			return Boolean(false), nil
		case 1:
			return Boolean(true), nil
		}
		return nil, errors.Wrapf(ErrDecode, "boolean byte is 0x%02x", b[0])
	case TagInt8Array:
		a := make(Int8Array, n)
		for i := range a {
			a[i] = int8(b[i])
		}
		return a, nil
	case TagInt16Array:
		a := make(Int16Array, n)
		for i := range a {
			a[i] = int16(be.Uint16(b[2*i:]))
		}
		return a, nil
	case TagInt32Array:
		a := make(Int32Array, n)
		for i := range a {
			a[i] = int32(be.Uint32(b[4*i:]))
		}
		return a, nil
	case TagUint8Array:
		a := make(Uint8Array, n)
		copy(a, b)
		return a, nil
	case TagUint16Array:
		a := make(Uint16Array, n)
		for i := range a {
			a[i] = be.Uint16(b[2*i:])
		}
		return a, nil
	case TagUint32Array:
		a := make(Uint32Array, n)
		for i := range a {
			a[i] = be.Uint32(b[4*i:])
		}
		return a, nil
	case TagFloat32Array:
		a := make(Float32Array, n)
		for i := range a {
			a[i] = math.Float32frombits(be.Uint32(b[4*i:]))
		}
		return a, nil
	case TagFloat64Array:
		a := make(Float64Array, n)
		for i := range a {
			a[i] = math.Float64frombits(be.Uint64(b[8*i:]))
		}
		return a, nil
	case TagBytes:
		a := make(Bytes, n)
		copy(a, b)
		return a, nil
	}
	return nil, errors.Wrapf(ErrUnknownTypeTag, "%s has no leaf decoding", h.tag)
}
