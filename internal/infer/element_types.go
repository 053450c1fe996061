package infer

import "github.com/oxhq/semcore/internal/types"

// packedElementTypes maps packed-array aliases to their fixed element
// type, per the table in spec.md §4.6.
var packedElementTypes = map[string]types.Type{
	"PackedStringArray":  types.Primitive{Name: "String"},
	"PackedInt32Array":   types.Primitive{Name: "Int"},
	"PackedInt64Array":   types.Primitive{Name: "Int"},
	"PackedByteArray":    types.Primitive{Name: "Int"},
	"PackedFloat32Array": types.Primitive{Name: "Float"},
	"PackedFloat64Array": types.Primitive{Name: "Float"},
	"PackedVector2Array": types.Named{Name: "Vector2"},
	"PackedVector3Array": types.Named{Name: "Vector3"},
	"PackedColorArray":   types.Named{Name: "Color"},
}

// IteratorElementType implements the `for x in collection` element-type
// table (spec.md §4.6). Dictionaries yield their key type only — values
// are reached by a subsequent index, not by iteration.
func IteratorElementType(t types.Type) types.Type {
	switch v := t.(type) {
	case types.Generic:
		if v.Base == "Array" {
			if len(v.Args) == 1 {
				return v.Args[0]
			}
			return types.Variant{}
		}
		if v.Base == "Dictionary" {
			if len(v.Args) == 2 {
				return v.Args[0]
			}
			return types.Variant{}
		}
		if elem, ok := packedElementTypes[v.Base]; ok {
			return elem
		}
	case types.Primitive:
		if v.Name == "Int" || v.Name == "String" {
			return v
		}
	case types.Named:
		if v.Name == "Range" {
			return types.Primitive{Name: "Int"}
		}
	}
	return types.Variant{}
}

// CollectionElementType implements the engine's general
// collection_element_type query (spec.md §4.4): indexing `recv[i]`,
// where a Dictionary's element is its value type (unlike iteration,
// which sees only keys).
func CollectionElementType(t types.Type) types.Type {
	switch v := t.(type) {
	case types.Generic:
		if v.Base == "Array" {
			if len(v.Args) == 1 {
				return v.Args[0]
			}
			return types.Variant{}
		}
		if v.Base == "Dictionary" {
			if len(v.Args) == 2 {
				return v.Args[1]
			}
			return types.Variant{}
		}
		if elem, ok := packedElementTypes[v.Base]; ok {
			return elem
		}
	case types.Primitive:
		if v.Name == "String" {
			return v
		}
	case types.Named:
		if v.Name == "Range" {
			return types.Primitive{Name: "Int"}
		}
	}
	return types.Variant{}
}
