package infer

import "github.com/oxhq/semcore/internal/symbols"

// ClassMemberInChain resolves memberName starting at className: its own
// members first, then its declared base chain, walking only classes this
// file's ClassTable knows about (spec.md §4.4 item 4, §4.7 Pass 2:
// "resolve through scope -> inheritance chain -> built-in globals").
// A cycle in the declared base chain (which should never happen, but
// isn't this package's job to reject) stops the walk rather than
// looping forever.
//
// When the member isn't found anywhere in the project-local chain,
// escapedBase names the first link in the chain that ClassTable has no
// record of — the point the Runtime Provider's own catalog takes over —
// or "" if the chain simply ran out of bases without escaping.
func (e *Engine) ClassMemberInChain(className, memberName string) (declClass string, sym *symbols.Symbol, escapedBase string, ok bool) {
	visited := make(map[string]bool)
	cur := className
	for cur != "" && !visited[cur] {
		visited[cur] = true
		if s, ok := e.Classes.Member(cur, memberName); ok {
			return cur, s, "", true
		}
		ci, known := e.Classes.Class(cur)
		if !known {
			return "", nil, cur, false
		}
		cur = ci.Base
	}
	return "", nil, "", false
}
