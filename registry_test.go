package binarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryWidths(t *testing.T) {
	widths := map[Tag]int{
		TagNull:         0,
		TagUndefined:    0,
		TagString:       2,
		TagNumber:       8,
		TagBoolean:      1,
		TagSequence:     0,
		TagMapping:      0,
		TagInt8Array:    1,
		TagInt16Array:   2,
		TagInt32Array:   4,
		TagUint8Array:   1,
		TagUint16Array:  2,
		TagUint32Array:  4,
		TagFloat32Array: 4,
		TagFloat64Array: 8,
		TagBytes:        1,
		TagBlob:         0,
	}
	for tag, w := range widths {
		assert.Equal(t, w, tag.Width(), tag.String())
	}
}

func TestRegistryHeaders(t *testing.T) {
	assert.Equal(t, 5, TagSequence.HeaderSize())
	assert.Equal(t, 5, TagMapping.HeaderSize())
	assert.Equal(t, 5, TagBlob.HeaderSize())
	assert.Equal(t, 3, TagString.HeaderSize())
	assert.Equal(t, 3, TagNull.HeaderSize())

	assert.Equal(t, Tag(14), TagFloat64Array)
	assert.False(t, Tag(0xFF).Valid())
	assert.Equal(t, "Tag(255)", Tag(0xFF).String())
	assert.Equal(t, "Mapping", TagMapping.String())
}
