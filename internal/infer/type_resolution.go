package infer

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/types"
)

var primitiveNames = map[string]bool{
	"Int": true, "Float": true, "Bool": true,
	"String": true, "StringName": true, "NodePath": true,
}

var containerBaseNames = map[string]bool{
	"Array": true, "Dictionary": true,
	"PackedInt32Array": true, "PackedInt64Array": true, "PackedByteArray": true,
	"PackedStringArray": true, "PackedFloat32Array": true, "PackedFloat64Array": true,
	"PackedVector2Array": true, "PackedVector3Array": true, "PackedColorArray": true,
}

// ResolveType converts a syntactic type annotation node into a
// types.Type, the same way the engine resolves parameter and variable
// declarations internally. Exported for callers outside this package
// (the Semantic Reference Collector, in particular) that need to turn a
// declaration's TypeNode into a concrete type without re-implementing
// the Primitive/Generic/Named classification rules.
func (e *Engine) ResolveType(node ast.NodeID) types.Type {
	return e.resolveTypeNode(node)
}

// resolveTypeNode converts a syntactic type annotation into a types.Type.
func (e *Engine) resolveTypeNode(node ast.NodeID) types.Type {
	tn, ok := e.Arena.TypeNode(node)
	if !ok {
		return types.Variant{}
	}
	return e.resolveTypeName(tn.Name, tn.Args)
}

// resolveTypeName converts a bare type name (from a syntactic annotation
// or a runtime-provider member's type string) into a types.Type,
// classifying it as Primitive, Generic (container), or Named.
func (e *Engine) resolveTypeName(name string, argNodes []ast.NodeID) types.Type {
	switch name {
	case "", "Variant":
		return types.Variant{}
	case "null", "Null":
		return types.Null{}
	}
	if primitiveNames[name] {
		return types.Primitive{Name: name}
	}
	if containerBaseNames[name] || len(argNodes) > 0 {
		args := make([]types.Type, 0, len(argNodes))
		for _, an := range argNodes {
			args = append(args, e.resolveTypeNode(an))
		}
		return types.Generic{Base: name, Args: args}
	}
	return types.Named{Name: name}
}
