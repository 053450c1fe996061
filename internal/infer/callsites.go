package infer

import (
	"sync"

	"github.com/oxhq/semcore/internal/ast"
)

// CallSite is one recorded call expression targeting a (class, method)
// pair, per spec.md §3's call-site registry.
type CallSite struct {
	FilePath string
	Node     ast.NodeID
	Args     []ast.NodeID
}

// CallSiteRegistry maps (class, method) to every call site across the
// project, and symmetrically tracks caller -> callee edges for the
// Inference Cycle Detector (C14). Safe for concurrent population from
// multiple files, per spec.md §5's "concurrent map keyed by file path
// with a per-method lock during merge" — here a single mutex serializes
// all writes, which is sufficient at this scale.
type CallSiteRegistry struct {
	mu              sync.Mutex
	sites           map[string][]CallSite
	callerToCallees map[string]map[string]bool
}

// NewCallSiteRegistry returns an empty registry.
func NewCallSiteRegistry() *CallSiteRegistry {
	return &CallSiteRegistry{
		sites:           make(map[string][]CallSite),
		callerToCallees: make(map[string]map[string]bool),
	}
}

func methodKey(class, method string) string { return class + "." + method }

// Record appends a call site for (class, method), attributing it to
// callerKey (empty if the call happens outside any method, e.g. in a
// constant initializer).
func (r *CallSiteRegistry) Record(callerKey, class, method, filePath string, node ast.NodeID, args []ast.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := methodKey(class, method)
	r.sites[k] = append(r.sites[k], CallSite{FilePath: filePath, Node: node, Args: args})
	if callerKey != "" {
		if r.callerToCallees[callerKey] == nil {
			r.callerToCallees[callerKey] = make(map[string]bool)
		}
		r.callerToCallees[callerKey][k] = true
	}
}

// CallSitesFor returns every recorded call site for (class, method).
func (r *CallSiteRegistry) CallSitesFor(class, method string) []CallSite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CallSite(nil), r.sites[methodKey(class, method)]...)
}

// Callees returns the set of "class.method" keys callerKey (itself a
// "class.method" key) has been observed calling.
func (r *CallSiteRegistry) Callees(callerKey string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.callerToCallees[callerKey]))
	for k := range r.callerToCallees[callerKey] {
		out = append(out, k)
	}
	return out
}

// RemoveFile discards every call site recorded from filePath, for a
// project invalidating one file's contribution to the registry.
// Caller->callee edges are left in place as a sound over-approximation:
// a stale edge can only pull an extra key into a cycle (falling back to
// Variant), never produce an incorrect concrete return type.
func (r *CallSiteRegistry) RemoveFile(filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, sites := range r.sites {
		kept := sites[:0]
		for _, s := range sites {
			if s.FilePath != filePath {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(r.sites, k)
		} else {
			r.sites[k] = kept
		}
	}
}

// CallerKeys returns every "class.method" key that has made at least one
// recorded call, the root set the Cycle Detector (C14) walks from.
func (r *CallSiteRegistry) CallerKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.callerToCallees))
	for k := range r.callerToCallees {
		out = append(out, k)
	}
	return out
}
