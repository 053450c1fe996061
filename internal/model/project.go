package model

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/collector"
	"github.com/oxhq/semcore/internal/config"
	"github.com/oxhq/semcore/internal/cycles"
	"github.com/oxhq/semcore/internal/diag"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/provider"
	"github.com/oxhq/semcore/internal/symbols"
)

// Project is the Project Semantic Model (spec.md §4.9, component C15): a
// collection of FileModels sharing one runtime provider, one call-site
// registry, and one resolve-across-files view. Grounded on the teacher's
// ModuleLoader/LoadedModule split in analyzer.go: where a single
// Analyzer resolves everything it can see inside one file, the loader
// resolves what spans several — here, cross-file references, call
// sites, and inheritance chains.
type Project struct {
	Provider provider.Provider
	Limits   config.Limits

	// CallSites is the project-wide registry every FileModel's engine
	// records into, and the graph the Inference Cycle Detector (C14) runs
	// over to schedule return-type inference (spec.md §4.9).
	CallSites *infer.CallSiteRegistry

	// Generation is bumped by InvalidateFile. A FileModel's own Generation
	// field, stamped at construction time, lets a caller holding onto a
	// FileModel compare it against the Project's current Generation in
	// O(1) to know whether it (and anything derived from it) is stale,
	// without re-walking the project to see what changed (spec.md §4.16).
	Generation uuid.UUID

	mu    sync.RWMutex
	files map[string]*FileModel
}

// NewProject returns an empty project over prov, bounding inference and
// parameter resolution with limits.
func NewProject(prov provider.Provider, limits config.Limits) *Project {
	return &Project{
		Provider:   prov,
		Limits:     limits,
		CallSites:  infer.NewCallSiteRegistry(),
		Generation: uuid.New(),
		files:      make(map[string]*FileModel),
	}
}

// AddFile builds a FileModel for an already-parsed arena and registers it
// under path, replacing any prior model for the same path.
func (p *Project) AddFile(path string, arena *ast.Arena, diags *diag.Bag) *FileModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	fm := newFileModel(path, arena, p.Provider, p.Limits, p.CallSites, diags, p.Generation)
	p.files[path] = fm
	return fm
}

// GetSemanticModel implements get_semantic_model(file).
func (p *Project) GetSemanticModel(path string) (*FileModel, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fm, ok := p.files[path]
	return fm, ok
}

// InvalidateFile implements invalidate_file(path) (spec.md §4.16): drops
// the file's model, removes its contribution to the call-site registry,
// and bumps Generation so every other FileModel's stamped Generation is
// now recognizably stale to a caller checking it.
func (p *Project) InvalidateFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, path)
	p.CallSites.RemoveFile(path)
	p.Generation = uuid.New()
}

// GetReferencesInProject implements get_references_in_project(symbol):
// every reference to sym across every file currently in the project
// (sym's own declaring file included).
func (p *Project) GetReferencesInProject(sym *symbols.Symbol) []collector.Reference {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []collector.Reference
	for _, fm := range p.files {
		out = append(out, fm.GetReferencesTo(sym)...)
	}
	return out
}

// GetCallSites implements get_call_sites(method_symbol): every recorded
// call site targeting (class, method) across the whole project.
func (p *Project) GetCallSites(class, method string) []infer.CallSite {
	return p.CallSites.CallSitesFor(class, method)
}

// ResolveDeclaration implements resolve_declaration(name, from_file):
// looks in fromFile's own model first (lexical/class scope), then falls
// back to scanning every other file's class-member and file-scope
// symbols, in path order, for a same-named top-level declaration.
func (p *Project) ResolveDeclaration(name, fromFile string) (*symbols.Symbol, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if fm, ok := p.files[fromFile]; ok {
		if sym, ok := fm.FindSymbol(name); ok {
			return sym, true
		}
	}
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		if path != fromFile {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	for _, path := range paths {
		if sym, ok := p.files[path].FindSymbol(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// FindImplementations implements find_implementations(method): every
// method symbol named methodName declared on any class across the
// project, sorted by declaring type then file path for determinism.
func (p *Project) FindImplementations(methodName string) []*symbols.Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	type impl struct {
		sym  *symbols.Symbol
		path string
	}
	var found []impl
	for path, fm := range p.files {
		for _, ci := range fm.Engine.Classes.All() {
			if sym, ok := ci.Members[methodName]; ok && sym.Kind == symbols.KindMethod {
				found = append(found, impl{sym: sym, path: path})
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].sym.DeclaringType != found[j].sym.DeclaringType {
			return found[i].sym.DeclaringType < found[j].sym.DeclaringType
		}
		return found[i].path < found[j].path
	})
	var out []*symbols.Symbol
	for _, f := range found {
		out = append(out, f.sym)
	}
	return out
}

// GetInheritanceChain implements get_inheritance_chain(file): for each
// top-level (non-inner) class the file declares, its own name followed
// by every base type out to the runtime provider's root, guarded against
// a cyclic base chain by tracking visited names.
func (p *Project) GetInheritanceChain(path string) []string {
	p.mu.RLock()
	fm, ok := p.files[path]
	p.mu.RUnlock()
	if !ok {
		return nil
	}

	var chain []string
	for _, ci := range fm.Engine.Classes.All() {
		// Inner classes are registered under "Outer.Inner"; only
		// top-level classes (no dot) start their own chain here.
		if containsDot(ci.Name) {
			continue
		}
		chain = append(chain, ci.Name)
		visited := map[string]bool{ci.Name: true}
		cur := ci.Base
		for cur != "" && !visited[cur] {
			chain = append(chain, cur)
			visited[cur] = true
			base, ok := p.Provider.GetBaseType(cur)
			if !ok {
				break
			}
			cur = base
		}
	}
	return chain
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

// InferenceOrder runs the Inference Cycle Detector (C14) over the
// project's call-site registry, returning every observed "class.method"
// key non-cyclic first in callee-before-caller order, cyclic members
// last (spec.md §4.9).
func (p *Project) InferenceOrder() []cycles.Result {
	return cycles.Order(p.CallSites)
}

// WidenCycleReturns runs the optional second pass spec.md §4.9 allows for
// methods caught in an inference cycle: each cyclic method initially
// resolves to Variant (the first pass's conservative fallback) because
// its callee's return type wasn't cached yet. Invalidating and
// re-running every cyclic method, once per member of the cycle, lets
// later members see an earlier member's now-cached (and possibly
// concrete) return type. Bounded to one pass per cycle member so this
// always terminates.
func (p *Project) WidenCycleReturns() {
	p.mu.RLock()
	order := cycles.Order(p.CallSites)
	p.mu.RUnlock()

	var cyclic []string
	for _, r := range order {
		if r.InCycle {
			cyclic = append(cyclic, r.Key)
		}
	}
	if len(cyclic) == 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for pass := 0; pass < len(cyclic); pass++ {
		for _, key := range cyclic {
			class, method := splitMethodKey(key)
			if class == "" {
				continue
			}
			fm := p.fileDeclaring(class)
			if fm == nil {
				continue
			}
			fm.Engine.InvalidateReturnType(class, method)
			fm.Engine.MethodReturnType(class, method)
		}
	}
}

func (p *Project) fileDeclaring(class string) *FileModel {
	for _, fm := range p.files {
		if _, ok := fm.Engine.Classes.Class(class); ok {
			return fm
		}
	}
	return nil
}

func splitMethodKey(key string) (class, method string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return "", ""
}
