package binarize

import "fmt"

// Tag is the 1-byte type identifier that starts every encoded node
type Tag uint8

const (
	TagNull Tag = iota
	TagUndefined
	TagString
	TagNumber
	TagBoolean
	TagSequence
	TagMapping
	TagInt8Array
	TagInt16Array
	TagInt32Array
	TagUint8Array
	TagUint16Array
	TagUint32Array
	TagFloat32Array
	TagFloat64Array
	TagBytes
	TagBlob
)

const (
	// tagLength, countLength and byteLengthLength are the sizes of the
	// three header fields on the wire
	tagLength        = 1
	countLength      = 2
	byteLengthLength = 2

	leafHeaderSize      = tagLength + byteLengthLength
	containerHeaderSize = tagLength + countLength + byteLengthLength

	// maxField is the largest value either 16-bit header field can hold
	maxField = 0xFFFF
)

type typeInfo struct {
	name      string
	width     int
	container bool
}

// registry is indexed by Tag. Width is the size in bytes of one payload
// element, zero for categories with no fixed element.
var registry = [...]typeInfo{
	TagNull:         {name: "Null"},
	TagUndefined:    {name: "Undefined"},
	TagString:       {name: "String", width: 2},
	TagNumber:       {name: "Number", width: 8},
	TagBoolean:      {name: "Boolean", width: 1},
	TagSequence:     {name: "Sequence", container: true},
	TagMapping:      {name: "Mapping", container: true},
	TagInt8Array:    {name: "Int8Array", width: 1},
	TagInt16Array:   {name: "Int16Array", width: 2},
	TagInt32Array:   {name: "Int32Array", width: 4},
	TagUint8Array:   {name: "Uint8Array", width: 1},
	TagUint16Array:  {name: "Uint16Array", width: 2},
	TagUint32Array:  {name: "Uint32Array", width: 4},
	TagFloat32Array: {name: "Float32Array", width: 4},
	TagFloat64Array: {name: "Float64Array", width: 8},
	TagBytes:        {name: "Bytes", width: 1},
	TagBlob:         {name: "Blob", container: true},
}

// Valid reports whether t is a registered tag
func (t Tag) Valid() bool {
	return int(t) < len(registry)
}

// Width returns the byte width of one payload element
func (t Tag) Width() int {
	if !t.Valid() {
		return 0
	}
	return registry[t].width
}

// IsContainer reports whether nodes with this tag carry an element count
// and are followed by their children instead of an inline payload
func (t Tag) IsContainer() bool {
	return t.Valid() && registry[t].container
}

// HeaderSize returns the number of header bytes for a node with this tag
func (t Tag) HeaderSize() int {
	if t.IsContainer() {
		return containerHeaderSize
	}
	return leafHeaderSize
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
	return registry[t].name
}
