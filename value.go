package binarize

import "unicode/utf16"

// Value is a node of an encodable value tree. The set of implementations is
// closed: only the types in this package satisfy it.
type Value interface {
	Tag() Tag
	isValue()
}

type (
	// Null is the null sentinel
	Null struct{}

	// Undefined is the undefined sentinel, distinct from Null
	Undefined struct{}

	// String is a sequence of UTF-16 code units. Code points outside the
	// basic plane are stored as surrogate pairs and lone surrogates are
	// preserved as-is.
	String []uint16

	// Number is a 64-bit float
	Number float64

	// Boolean is a true/false value
	Boolean bool

	// Sequence is an ordered list of values
	Sequence []Value

	Int8Array    []int8
	Int16Array   []int16
	Int32Array   []int32
	Uint8Array   []uint8
	Uint16Array  []uint16
	Uint32Array  []uint32
	Float32Array []float32
	Float64Array []float64

	// Bytes is an opaque byte payload
	Bytes []byte
)

// Blob is an opaque byte payload with an optional MIME type. When Handle is
// set the payload is fetched from the encoder's ByteSource at pack time and
// Data is ignored. Decoded blobs always have a nil Handle.
type Blob struct {
	Handle   any
	Data     []byte
	MimeType string
}

// NewString converts Go text into UTF-16 code units
func NewString(s string) String {
	return String(utf16.Encode([]rune(s)))
}

// String converts the code units back into Go text. Lone surrogates become
// U+FFFD.
func (s String) String() string {
	return string(utf16.Decode(s))
}

func (Null) Tag() Tag         { return TagNull }
func (Undefined) Tag() Tag    { return TagUndefined }
func (String) Tag() Tag       { return TagString }
func (Number) Tag() Tag       { return TagNumber }
func (Boolean) Tag() Tag      { return TagBoolean }
func (Sequence) Tag() Tag     { return TagSequence }
func (*Mapping) Tag() Tag     { return TagMapping }
func (Int8Array) Tag() Tag    { return TagInt8Array }
func (Int16Array) Tag() Tag   { return TagInt16Array }
func (Int32Array) Tag() Tag   { return TagInt32Array }
func (Uint8Array) Tag() Tag   { return TagUint8Array }
func (Uint16Array) Tag() Tag  { return TagUint16Array }
func (Uint32Array) Tag() Tag  { return TagUint32Array }
func (Float32Array) Tag() Tag { return TagFloat32Array }
func (Float64Array) Tag() Tag { return TagFloat64Array }
func (Bytes) Tag() Tag        { return TagBytes }
func (Blob) Tag() Tag         { return TagBlob }

func (Null) isValue()         {}
func (Undefined) isValue()    {}
func (String) isValue()       {}
func (Number) isValue()       {}
func (Boolean) isValue()      {}
func (Sequence) isValue()     {}
func (*Mapping) isValue()     {}
func (Int8Array) isValue()    {}
func (Int16Array) isValue()   {}
func (Int32Array) isValue()   {}
func (Uint8Array) isValue()   {}
func (Uint16Array) isValue()  {}
func (Uint32Array) isValue()  {}
func (Float32Array) isValue() {}
func (Float64Array) isValue() {}
func (Bytes) isValue()        {}
func (Blob) isValue()         {}
