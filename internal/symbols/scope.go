package symbols

import "github.com/oxhq/semcore/internal/ast"

// Scope is one lexical scope frame: a method body, a lambda body, a
// block (if/for/while/match arm), or the file-level scope. Scopes form a
// tree via Parent, mirroring the Flow State's "every branch point clones
// the parent" discipline — but Scope itself is not cloned; it is a
// write-once-per-declaration structure built during Pass 1 of the
// Semantic Reference Collector (spec.md §4.7) and read thereafter.
type Scope struct {
	Owner   ast.NodeID // the node that introduces this scope
	Parent  *Scope
	symbols map[string]*Symbol
}

func newScope(owner ast.NodeID, parent *Scope) *Scope {
	return &Scope{Owner: owner, Parent: parent, symbols: make(map[string]*Symbol)}
}

// Declare adds sym to this scope, shadowing (not replacing) any
// same-named symbol in an ancestor scope. Idempotent per scope: a
// second Declare with the same name in the same scope simply replaces
// the previous entry, matching spec.md §4.1's "declare is idempotent
// per scope; later declare in a child scope shadows" contract as applied
// to symbol declaration.
func (s *Scope) Declare(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

// Lookup searches this scope and its ancestors, returning the nearest
// (most-shadowing) match.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal searches only this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// All returns every symbol declared directly in this scope (not
// ancestors), for diagnostics and test assertions.
func (s *Scope) All() []*Symbol {
	out := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, sym)
	}
	return out
}

// Table owns the scope tree for one file: a root (file-level) scope plus
// a map from owning AST node (method/lambda/block) to its Scope, so the
// collector can re-enter the scope matching any node during Pass 2
// without re-walking Pass 1.
type Table struct {
	root    *Scope
	byOwner map[ast.NodeID]*Scope
}

// NewTable creates a table with an empty file-level root scope owned by
// root (typically ast.Arena.Root()).
func NewTable(root ast.NodeID) *Table {
	t := &Table{byOwner: make(map[ast.NodeID]*Scope)}
	t.root = newScope(root, nil)
	t.byOwner[root] = t.root
	return t
}

// Root returns the file-level scope.
func (t *Table) Root() *Scope { return t.root }

// PushScope creates and registers a new child scope owned by owner,
// nested under parent.
func (t *Table) PushScope(owner ast.NodeID, parent *Scope) *Scope {
	s := newScope(owner, parent)
	t.byOwner[owner] = s
	return s
}

// ScopeFor returns the scope owned by owner, if one has been registered
// via PushScope (or is the root).
func (t *Table) ScopeFor(owner ast.NodeID) (*Scope, bool) {
	s, ok := t.byOwner[owner]
	return s, ok
}

// Scopes returns every scope registered in the table, root included, in
// no particular order. Used by callers that need to enumerate every
// locally-declared symbol across a file (e.g. the semantic model's
// find_symbol/find_symbols, which search every method and lambda scope
// rather than just the one nearest a context node).
func (t *Table) Scopes() []*Scope {
	out := make([]*Scope, 0, len(t.byOwner))
	for _, s := range t.byOwner {
		out = append(out, s)
	}
	return out
}

// FindInScope looks up name starting from the scope owned by
// contextNode (or the nearest registered ancestor scope, found by
// walking up the AST via arena, if contextNode itself never pushed a
// scope — e.g. a plain expression node inside a block). This implements
// spec.md §6's find_symbol_in_scope and guarantees scope isolation
// (spec.md §8 property 5): two methods each declaring a local `x`
// resolve independently because each method's scope is a distinct Scope
// value, never merged.
func (t *Table) FindInScope(arena *ast.Arena, name string, contextNode ast.NodeID) (*Symbol, bool) {
	scope := t.nearestScope(arena, contextNode)
	if scope == nil {
		return nil, false
	}
	return scope.Lookup(name)
}

func (t *Table) nearestScope(arena *ast.Arena, node ast.NodeID) *Scope {
	cur := node
	for {
		if s, ok := t.byOwner[cur]; ok {
			return s
		}
		if !arena.Valid(cur) {
			return t.root
		}
		cur = arena.Parent(cur)
	}
}
