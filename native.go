package binarize

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// structTagKey is the struct tag that names a field's mapping key
const structTagKey = "binarize"

// ValueOf converts an ordinary Go value into a Value tree. Values are
// returned unchanged. Conversions:
//
//   - nil, nil pointers and nil interfaces become Null
//   - strings become String, bools become Boolean
//   - every integer and float kind becomes Number
//   - slices and arrays of int8, int16, int32, uint8, uint16, uint32,
//     float32 and float64 become the matching fixed array
//   - other slices and arrays become Sequence
//   - maps with string keys become Mapping, keys sorted
//   - structs become Mapping, fields in declaration order
//
// Struct fields are keyed by their `binarize:"name"` tag, or the field name
// when untagged. `binarize:"-"` skips a field.
func ValueOf(v any) (Value, error) {
	if v == nil {
		return Null{}, nil
	}
	return valueOf(reflect.ValueOf(v), 0)
}

var mappingType = reflect.TypeOf((*Mapping)(nil))

func valueOf(rv reflect.Value, depth int) (Value, error) {
	// Pointer cycles would otherwise recurse forever
	if depth > maxDepth {
		return nil, errors.Wrapf(ErrUnsupportedType, "value nested deeper than %d levels", maxDepth)
	}

	// Pass Values through untouched. Pointers to value types also satisfy
	// Value, so only *Mapping is taken as-is and other pointers are followed.
	if rv.IsValid() && rv.CanInterface() && (rv.Kind() != reflect.Ptr || rv.Type() == mappingType) {
		if val, ok := rv.Interface().(Value); ok {
			return val, nil
		}
	}

	switch kind := rv.Kind(); kind {
	case reflect.Invalid:
		return Null{}, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return valueOf(rv.Elem(), depth+1)
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if kind == reflect.Slice && rv.IsNil() {
			return Null{}, nil
		}
		return sliceValue(rv, depth)
	case reflect.Map:
		return mapValue(rv, depth)
	case reflect.Struct:
		return structValue(rv, depth)
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "cannot convert %s", rv.Type())
	}
}

// sliceValue converts numeric slices to fixed arrays and everything else to
// a Sequence
func sliceValue(rv reflect.Value, depth int) (Value, error) {
	n := rv.Len()
	switch rv.Type().Elem().Kind() {
	case reflect.Int8:
		return fill(make(Int8Array, n), rv, func(e reflect.Value) int8 { return int8(e.Int()) }), nil
	case reflect.Int16:
		return fill(make(Int16Array, n), rv, func(e reflect.Value) int16 { return int16(e.Int()) }), nil
	case reflect.Int32:
		return fill(make(Int32Array, n), rv, func(e reflect.Value) int32 { return int32(e.Int()) }), nil
	case reflect.Uint8:
		return fill(make(Uint8Array, n), rv, func(e reflect.Value) uint8 { return uint8(e.Uint()) }), nil
	case reflect.Uint16:
		return fill(make(Uint16Array, n), rv, func(e reflect.Value) uint16 { return uint16(e.Uint()) }), nil
	case reflect.Uint32:
		return fill(make(Uint32Array, n), rv, func(e reflect.Value) uint32 { return uint32(e.Uint()) }), nil
	case reflect.Float32:
		return fill(make(Float32Array, n), rv, func(e reflect.Value) float32 { return float32(e.Float()) }), nil
	case reflect.Float64:
		return fill(make(Float64Array, n), rv, func(e reflect.Value) float64 { return e.Float() }), nil
	}

	seq := make(Sequence, 0, n)
	for i := 0; i < n; i++ {
		el, err := valueOf(rv.Index(i), depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "index %d", i)
		}
		seq = append(seq, el)
	}
	return seq, nil
}

func fill[S ~[]E, E any](dst S, rv reflect.Value, conv func(reflect.Value) E) S {
	for i := range dst {
		dst[i] = conv(rv.Index(i))
	}
	return dst
}

// mapValue converts a string-keyed map. Keys are sorted so the same map
// always packs to the same bytes.
func mapValue(rv reflect.Value, depth int) (Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Wrapf(ErrUnsupportedType, "map keys must be strings, not %s", rv.Type().Key())
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	m := NewMapping()
	for _, k := range keys {
		el, err := valueOf(rv.MapIndex(k), depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "key '%s'", k.String())
		}
		m.SetString(k.String(), el)
	}
	return m, nil
}

// parsedStructField is an exported struct field and the key it is stored
// under
type parsedStructField struct {
	offset int
	name   string
}

// structFields returns the encodable fields of t in declaration order. t.Kind()
// must be reflect.Struct
func structFields(t reflect.Type) ([]parsedStructField, error) {
	fields := make([]parsedStructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		// Take the wire name from the tag if there is one
		name := field.Name
		if tag, ok := field.Tag.Lookup(structTagKey); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		fields = append(fields, parsedStructField{offset: i, name: name})
	}

	// Do a scan over a sorted copy to check for duplicate names
	sorted := append([]parsedStructField(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].name < sorted[j].name
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].name == sorted[i-1].name {
			return nil, fmt.Errorf("found duplicate key '%s' in %s", sorted[i].name, t)
		}
	}

	return fields, nil
}

func structValue(rv reflect.Value, depth int) (Value, error) {
	t := rv.Type()
	fields, err := structFields(t)
	if err != nil {
		return nil, err
	}

	m := NewMapping()
	for _, f := range fields {
		el, err := valueOf(rv.Field(f.offset), depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "field '%s'", f.name)
		}
		m.SetString(f.name, el)
	}
	return m, nil
}
