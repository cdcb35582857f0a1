package binarize

import "github.com/pkg/errors"

var (
	// ErrUnsupportedType is returned when a value falls outside the set of
	// encodable categories
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrFieldOverflow is returned when an element count or byte length
	// does not fit in its 16-bit header field
	ErrFieldOverflow = errors.New("header field overflow")

	// ErrUnknownTypeTag is returned when a decoded tag is not registered
	ErrUnknownTypeTag = errors.New("unknown type tag")

	// ErrTruncatedBuffer is returned when decoding would read past the end
	// of the buffer
	ErrTruncatedBuffer = errors.New("buffer too short")

	// ErrDecode is returned when a buffer is well formed at the byte level
	// but violates the encoding rules
	ErrDecode = errors.New("malformed encoding")

	// ErrBlobRead is returned when a ByteSource fails to produce a blob
	ErrBlobRead = errors.New("blob read failure")
)

// checkField returns ErrFieldOverflow if n cannot be stored in a header field
func checkField(n int, field string, tag Tag) error {
	if n < 0 || n > maxField {
		return errors.Wrapf(ErrFieldOverflow, "%s %s is %d, max is %d", tag, field, n, maxField)
	}
	return nil
}
