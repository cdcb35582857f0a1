package binarize

import (
	"github.com/pkg/errors"
)

// descriptor is the header metadata and inline payload of one node. A
// serialized tree is a pre-order slice of descriptors.
type descriptor struct {
	tag        Tag
	count      int
	byteLength int
	value      Value
}

// size is the number of bytes the node's own header and payload occupy,
// which for containers includes all descendants
func (d *descriptor) size() int {
	return d.tag.HeaderSize() + d.byteLength
}

// serializer flattens a value tree into descriptors. blobs holds the
// pre-fetched payloads of handle-backed Blobs in traversal order.
type serializer struct {
	out      []descriptor
	blobs    []resolvedBlob
	nextBlob int
	depth    int
}

// maxDepth bounds container nesting so a value that contains itself fails
// instead of exhausting the stack
const maxDepth = 1000

// serialize returns the pre-order descriptor list for v
func serialize(v Value, blobs []resolvedBlob) ([]descriptor, error) {
	s := &serializer{blobs: blobs}
	if _, err := s.node(v); err != nil {
		return nil, err
	}
	return s.out, nil
}

// leaf appends a node with an inline payload of n elements
func (s *serializer) leaf(tag Tag, n int, v Value) (int, error) {
	d := descriptor{
		tag:        tag,
		count:      n,
		byteLength: n * tag.Width(),
		value:      v,
	}
	if err := checkField(d.byteLength, "byte length", tag); err != nil {
		return 0, err
	}
	s.out = append(s.out, d)
	return d.size(), nil
}

// container appends a node whose payload is produced by children. The
// header slot is reserved first so the output stays in pre-order.
func (s *serializer) container(tag Tag, count int, children func() (int, error)) (int, error) {
	if err := checkField(count, "element count", tag); err != nil {
		return 0, err
	}

	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxDepth {
		return 0, errors.Wrapf(ErrUnsupportedType, "value nested deeper than %d levels", maxDepth)
	}

	slot := len(s.out)
	s.out = append(s.out, descriptor{tag: tag, count: count})

	byteLength, err := children()
	if err != nil {
		return 0, err
	}
	if err := checkField(byteLength, "byte length", tag); err != nil {
		return 0, err
	}

	s.out[slot].byteLength = byteLength
	return s.out[slot].size(), nil
}

// node classifies v and appends its descriptors, returning the number of
// bytes they will occupy on the wire
func (s *serializer) node(v Value) (int, error) {
	switch tv := v.(type) {
	case Undefined:
		return s.leaf(TagUndefined, 0, tv)
	case Null:
		return s.leaf(TagNull, 0, tv)
	case String:
		return s.leaf(TagString, len(tv), tv)
	case Number:
		return s.leaf(TagNumber, 1, tv)
	case Boolean:
		return s.leaf(TagBoolean, 1, tv)
	case Int8Array:
		return s.leaf(TagInt8Array, len(tv), tv)
	case Int16Array:
		return s.leaf(TagInt16Array, len(tv), tv)
	case Int32Array:
		return s.leaf(TagInt32Array, len(tv), tv)
	case Uint8Array:
		return s.leaf(TagUint8Array, len(tv), tv)
	case Uint16Array:
		return s.leaf(TagUint16Array, len(tv), tv)
	case Uint32Array:
		return s.leaf(TagUint32Array, len(tv), tv)
	case Float32Array:
		return s.leaf(TagFloat32Array, len(tv), tv)
	case Float64Array:
		return s.leaf(TagFloat64Array, len(tv), tv)
	case Sequence:
		return s.container(TagSequence, len(tv), func() (int, error) {
			total := 0
			for _, child := range tv {
				n, err := s.node(child)
				if err != nil {
					return 0, err
				}
				total += n
			}
			return total, nil
		})
	case *Mapping:
		entries := tv.Entries()
		return s.container(TagMapping, len(entries), func() (int, error) {
			total := 0
			for _, e := range entries {
				// Key first, then its value
				kn, err := s.node(e.Key)
				if err != nil {
					return 0, err
				}
				vn, err := s.node(e.Value)
				if err != nil {
					return 0, err
				}
				total += kn + vn
			}
			return total, nil
		})
	case Bytes:
		return s.leaf(TagBytes, len(tv), tv)
	case Blob:
		return s.blob(tv)
	default:
		return 0, errors.Wrapf(ErrUnsupportedType, "cannot serialize %T", v)
	}
}

// blob appends a Blob node: a Bytes child followed by a String mime type
// child when one is known
func (s *serializer) blob(b Blob) (int, error) {
	data, mimeType := b.Data, b.MimeType
	if b.Handle != nil {
		if s.nextBlob >= len(s.blobs) {
			return 0, errors.Wrapf(ErrBlobRead, "blob %d was not resolved", s.nextBlob)
		}
		r := s.blobs[s.nextBlob]
		s.nextBlob++
		data = r.data
		if r.mimeType != "" {
			mimeType = r.mimeType
		}
	}

	count := 1
	if mimeType != "" {
		count = 2
	}
	return s.container(TagBlob, count, func() (int, error) {
		total, err := s.node(Bytes(data))
		if err != nil {
			return 0, err
		}
		if mimeType != "" {
			n, err := s.node(NewString(mimeType))
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	})
}
