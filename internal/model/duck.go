package model

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/container"
	"github.com/oxhq/semcore/internal/paramresolve"
	"github.com/oxhq/semcore/internal/paramusage"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/types"
)

// DuckType is the result of running the structural usage pipeline
// (internal/paramusage -> internal/paramresolve) for one parameter: its
// ranked candidate types plus the collapsed Type a caller can use
// directly (spec.md §4.5).
type DuckType struct {
	Type       types.Type
	Candidates []paramresolve.Candidate
}

// TypeDiff implements get_type_diff(node): the declared/expected type, the
// flow-inferred actual type, and (for a parameter) the duck-typed
// candidate, each attributed to the analysis that produced it.
type TypeDiff struct {
	Expected types.Type
	Actual   types.Type
	Duck     types.Type // nil when node's symbol isn't a parameter
	Sources  []string
}

// fingerprintFor returns the cached (or freshly built) usage fingerprint
// for sym, a KindParameter symbol whose Scope is the enclosing method and
// whose Name is the parameter name.
func (fm *FileModel) fingerprintFor(sym *symbols.Symbol) (*paramusage.Fingerprint, bool) {
	md, ok := fm.Arena.MethodDecl(sym.Scope)
	if !ok {
		return nil, false
	}
	key := fingerprintKey{method: sym.Scope, param: sym.Name}
	if fp, ok := fm.fingerprintCache[key]; ok {
		return fp, true
	}
	ma := fm.Engine.AnalyzeMethod(sym.Scope)
	an := &paramusage.Analyzer{Engine: fm.Engine, Method: ma}
	fp := an.Analyze(md.Body, sym.Name)
	fm.fingerprintCache[key] = fp
	return fp, true
}

// GetDuckType implements get_duck_type(variable): meaningful only for
// parameters, since only a parameter's usage (not a local's) is resolved
// against the runtime provider's catalog by spec.md §4.5.
func (fm *FileModel) GetDuckType(sym *symbols.Symbol) (DuckType, bool) {
	if sym.Kind != symbols.KindParameter {
		return DuckType{}, false
	}
	key := fingerprintKey{method: sym.Scope, param: sym.Name}
	if dt, ok := fm.duckTypeCache[key]; ok {
		return dt, true
	}
	fp, ok := fm.fingerprintFor(sym)
	if !ok {
		return DuckType{}, false
	}
	resolved := fm.paramResolver.Resolve(fp)
	dt := DuckType{Type: resolved.Type, Candidates: resolved.Candidates}
	fm.duckTypeCache[key] = dt
	return dt, true
}

// GetUnionType implements get_union_type(variable_or_method): for a
// method symbol, its return type when that type is a Union (e.g. every
// return statement didn't agree on one concrete type); for a parameter,
// its duck-typed candidate union; for anything else, its declared type
// when that is itself a Union.
func (fm *FileModel) GetUnionType(sym *symbols.Symbol) (types.Type, bool) {
	if sym.Kind == symbols.KindMethod {
		rt := fm.Engine.MethodReturnType(sym.DeclaringType, sym.Name)
		if _, ok := rt.(types.Union); ok {
			return rt, true
		}
		return nil, false
	}
	if u, ok := sym.DeclaredType.(types.Union); ok {
		return u, true
	}
	if sym.Kind == symbols.KindParameter {
		if dt, ok := fm.GetDuckType(sym); ok {
			if u, ok := dt.Type.(types.Union); ok {
				return u, true
			}
		}
	}
	return nil, false
}

// GetContainerProfile implements get_container_profile(variable): the
// accumulated evidence for what a collection variable's value/key slots
// hold, scoped to the method sym was declared in.
func (fm *FileModel) GetContainerProfile(sym *symbols.Symbol) (*container.Profile, bool) {
	md, ok := fm.Arena.MethodDecl(sym.Scope)
	if !ok {
		return nil, false
	}
	profiles, ok := fm.containerCache[sym.Scope]
	if !ok {
		ma := fm.Engine.AnalyzeMethod(sym.Scope)
		col := container.NewCollector(fm.Engine, ma)
		profiles = col.Collect(md.Body)
		fm.containerCache[sym.Scope] = profiles
	}
	p, ok := profiles[sym.Name]
	return p, ok
}

// InferParameterTypes implements infer_parameter_types(method): the duck
// type of every declared parameter of methodSym, keyed by parameter name.
func (fm *FileModel) InferParameterTypes(methodSym *symbols.Symbol) map[string]DuckType {
	out := make(map[string]DuckType)
	md, ok := fm.Arena.MethodDecl(methodSym.Decl)
	if !ok {
		return out
	}
	for _, p := range md.Params {
		pd, ok := fm.Arena.ParamDecl(p)
		if !ok {
			continue
		}
		paramSym, ok := fm.declNodeToSymbol[p]
		if !ok {
			continue
		}
		if dt, ok := fm.GetDuckType(paramSym); ok {
			out[pd.Name] = dt
		}
	}
	return out
}

// GetTypeDiff implements get_type_diff(node): compares the declared (or
// duck-typed) expected type against the flow-inferred actual type at
// node, with each contributing source named. node must resolve to a
// symbol (via GetSymbolForNode); a node with no resolvable symbol has
// nothing to diff.
func (fm *FileModel) GetTypeDiff(node ast.NodeID) (TypeDiff, bool) {
	sym, ok := fm.GetSymbolForNode(node)
	if !ok {
		return TypeDiff{}, false
	}
	diff := TypeDiff{Actual: fm.GetTypeForNode(node)}
	diff.Sources = append(diff.Sources, "flow analysis")

	if sym.DeclaredType != nil {
		diff.Expected = sym.DeclaredType
		diff.Sources = append(diff.Sources, "declared annotation")
	} else {
		diff.Expected = types.Variant{}
	}

	if sym.Kind == symbols.KindParameter {
		if dt, ok := fm.GetDuckType(sym); ok {
			diff.Duck = dt.Type
			diff.Sources = append(diff.Sources, "duck-typing pipeline")
			if sym.DeclaredType == nil {
				diff.Expected = dt.Type
			}
		}
	}
	return diff, true
}
