package binarize

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Encoder packs value trees. The zero value is not usable, create one with
// NewEncoder. An Encoder is safe for concurrent use.
type Encoder struct {
	source ByteSource
	log    *zap.SugaredLogger
}

// Option configures an Encoder
type Option func(*Encoder)

// WithByteSource sets the source handle-backed Blobs are read from
func WithByteSource(src ByteSource) Option {
	return func(e *Encoder) {
		e.source = src
	}
}

// WithLogger replaces the encoder's logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Encoder) {
		e.log = log.Sugar().With("service", "binarize")
	}
}

// NewEncoder returns an Encoder configured by opts
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		log: zap.L().Sugar().With("service", "binarize"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pack encodes v with a default Encoder. v may be a Value or any Go value
// ValueOf accepts. Handle-backed Blobs fail since no ByteSource is set.
func Pack(v any) ([]byte, error) {
	return NewEncoder().Pack(context.Background(), v)
}

// Pack encodes v into a single buffer. ctx is handed to the ByteSource for
// every blob read.
func (e *Encoder) Pack(ctx context.Context, v any) (res []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic in Pack: %s", r)
		}
		if err != nil {
			res = nil
			e.log.Debugw("pack failed", "error", err)
		}
	}()

	// Convert v to a value tree if it isn't one already
	val, err := ValueOf(v)
	if err != nil {
		return nil, err
	}

	// Fetch every blob payload before anything is serialized
	blobs, err := resolveBlobs(ctx, e.source, val, e.log)
	if err != nil {
		return nil, err
	}

	// Flatten the tree into descriptors with all sizes known
	descs, err := serialize(val, blobs)
	if err != nil {
		return nil, err
	}

	return pack(descs)
}

// pack writes a pre-order descriptor list into one buffer sized from the
// root descriptor
func pack(descs []descriptor) ([]byte, error) {
	if len(descs) == 0 {
		return nil, errors.New("nothing to pack")
	}

	// Allocate the whole buffer once
	buf := make([]byte, descs[0].size())
	cursor := 0

	for i := range descs {
		d := &descs[i]

		// Header fields must fit before anything is written
		if d.tag.IsContainer() {
			if err := checkField(d.count, "element count", d.tag); err != nil {
				return nil, err
			}
		}
		if err := checkField(d.byteLength, "byte length", d.tag); err != nil {
			return nil, err
		}
		if cursor+d.tag.HeaderSize() > len(buf) {
			return nil, fmt.Errorf("%s node at offset %d overruns buffer", d.tag, cursor)
		}

		// First byte: type identifier
		buf[cursor] = byte(d.tag)
		cursor += tagLength

		// Next two bytes, containers only: element count
		if d.tag.IsContainer() {
			binary.BigEndian.PutUint16(buf[cursor:], uint16(d.count))
			cursor += countLength
		}

		// Next two bytes: payload byte length
		binary.BigEndian.PutUint16(buf[cursor:], uint16(d.byteLength))
		cursor += byteLengthLength

		// Containers are followed by their children, not a payload
		if d.tag.IsContainer() {
			continue
		}
		if cursor+d.byteLength > len(buf) {
			return nil, fmt.Errorf("%s payload at offset %d overruns buffer", d.tag, cursor)
		}
		n, err := writePayload(buf[cursor:cursor+d.byteLength], d.value)
		if err != nil {
			return nil, err
		}
		if n != d.byteLength {
			return nil, fmt.Errorf("%s payload wrote %d bytes, header says %d", d.tag, n, d.byteLength)
		}
		cursor += n
	}

	// Sanity check, every byte should have been written
	if cursor != len(buf) {
		return nil, fmt.Errorf("packed %d bytes into %d byte buffer", cursor, len(buf))
	}
	return buf, nil
}

// writePayload writes the inline payload of a leaf value into b and returns
// the number of bytes written
func writePayload(b []byte, v Value) (int, error) {
	be := binary.BigEndian
	switch tv := v.(type) {
	case Null, Undefined:
		return 0, nil
	case String:
		for i, u := range tv {
			be.PutUint16(b[2*i:], u)
		}
		return 2 * len(tv), nil
	case Number:
		be.PutUint64(b, math.Float64bits(float64(tv)))
		return 8, nil
	case Boolean:
		b[0] = 0
		if tv {
			b[0] = 1
		}
		return 1, nil
	case Int8Array:
		for i, x := range tv {
			b[i] = byte(x)
		}
		return len(tv), nil
	case Int16Array:
		for i, x := range tv {
			be.PutUint16(b[2*i:], uint16(x))
		}
		return 2 * len(tv), nil
	case Int32Array:
		for i, x := range tv {
			be.PutUint32(b[4*i:], uint32(x))
		}
		return 4 * len(tv), nil
	case Uint8Array:
		return copy(b, tv), nil
	case Uint16Array:
		for i, x := range tv {
			be.PutUint16(b[2*i:], x)
		}
		return 2 * len(tv), nil
	case Uint32Array:
		for i, x := range tv {
			be.PutUint32(b[4*i:], x)
		}
		return 4 * len(tv), nil
	case Float32Array:
		for i, x := range tv {
			be.PutUint32(b[4*i:], math.Float32bits(x))
		}
		return 4 * len(tv), nil
	case Float64Array:
		for i, x := range tv {
			be.PutUint64(b[8*i:], math.Float64bits(x))
		}
		return 8 * len(tv), nil
	case Bytes:
		return copy(b, tv), nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedType, "no payload encoding for %T", v)
	}
}
