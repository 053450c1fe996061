package symbols

// ClassInfo is the set of members declared directly on one class (not
// including inherited members, which are resolved through the Runtime
// Provider's base-type chain per spec.md §6 — the symbol table only
// knows about user-declared classes in the current project).
type ClassInfo struct {
	Name    string
	Base    string // empty if no explicit base, or a runtime-provided base
	Members map[string]*Symbol
}

// ClassTable indexes every user-declared class discovered during Pass 1
// of the Semantic Reference Collector (spec.md §4.7), keyed by class
// name. Inner classes are registered under their own synthetic
// qualified name (Outer.Inner) so member lookup never conflates two
// same-named inner classes declared in different outers.
type ClassTable struct {
	classes map[string]*ClassInfo
}

// NewClassTable returns an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*ClassInfo)}
}

// DeclareClass registers a class (or inner class) with the given base.
// Re-declaring an existing name replaces it — the collector only calls
// this once per class per file, so this is purely a safety net against
// double-visiting in Pass 1.
func (ct *ClassTable) DeclareClass(name, base string) *ClassInfo {
	ci := &ClassInfo{Name: name, Base: base, Members: make(map[string]*Symbol)}
	ct.classes[name] = ci
	return ci
}

// AddMember registers sym as a member of className, stamping
// sym.DeclaringType.
func (ct *ClassTable) AddMember(className string, sym *Symbol) {
	ci, ok := ct.classes[className]
	if !ok {
		ci = ct.DeclareClass(className, "")
	}
	sym.DeclaringType = className
	ci.Members[sym.Name] = sym
}

// Class returns the ClassInfo for name, if declared in this file.
func (ct *ClassTable) Class(name string) (*ClassInfo, bool) {
	ci, ok := ct.classes[name]
	return ci, ok
}

// Member looks up memberName directly on className (not walking the
// base chain — that requires the Runtime Provider for base types not
// declared in this file, and is the caller's job to combine).
func (ct *ClassTable) Member(className, memberName string) (*Symbol, bool) {
	ci, ok := ct.classes[className]
	if !ok {
		return nil, false
	}
	sym, ok := ci.Members[memberName]
	return sym, ok
}

// All returns every class declared in this file.
func (ct *ClassTable) All() []*ClassInfo {
	out := make([]*ClassInfo, 0, len(ct.classes))
	for _, ci := range ct.classes {
		out = append(out, ci)
	}
	return out
}
