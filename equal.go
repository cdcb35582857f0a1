package binarize

import "math"

// Equal reports whether a and b are structurally equal: strings compare
// code unit by code unit, arrays element by element and mappings pair by
// pair in order. Float elements compare by bit pattern so NaN equals itself.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}

	switch av := a.(type) {
	case Null, Undefined:
		return true
	case String:
		return equalSlices(av, b.(String), eq[uint16])
	case Number:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Number)))
	case Boolean:
		return av == b.(Boolean)
	case Int8Array:
		return equalSlices(av, b.(Int8Array), eq[int8])
	case Int16Array:
		return equalSlices(av, b.(Int16Array), eq[int16])
	case Int32Array:
		return equalSlices(av, b.(Int32Array), eq[int32])
	case Uint8Array:
		return equalSlices(av, b.(Uint8Array), eq[uint8])
	case Uint16Array:
		return equalSlices(av, b.(Uint16Array), eq[uint16])
	case Uint32Array:
		return equalSlices(av, b.(Uint32Array), eq[uint32])
	case Float32Array:
		return equalSlices(av, b.(Float32Array), func(x, y float32) bool {
			return math.Float32bits(x) == math.Float32bits(y)
		})
	case Float64Array:
		return equalSlices(av, b.(Float64Array), func(x, y float64) bool {
			return math.Float64bits(x) == math.Float64bits(y)
		})
	case Bytes:
		return equalSlices(av, b.(Bytes), eq[byte])
	case Blob:
		bv := b.(Blob)
		return av.MimeType == bv.MimeType && equalSlices(av.Data, bv.Data, eq[byte])
	case Sequence:
		return equalSlices(av, b.(Sequence), Equal)
	case *Mapping:
		ae, be := av.Entries(), b.(*Mapping).Entries()
		return equalSlices(ae, be, func(x, y Entry) bool {
			return equalSlices(x.Key, y.Key, eq[uint16]) && Equal(x.Value, y.Value)
		})
	}
	return false
}

func eq[T comparable](x, y T) bool {
	return x == y
}

func equalSlices[S ~[]E, E any](a, b S, f func(E, E) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !f(a[i], b[i]) {
			return false
		}
	}
	return true
}
