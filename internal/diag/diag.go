// Package diag collects diagnostics surfaced during semantic analysis,
// deduplicating by position the same way the teacher compiler's analyzer
// walker does.
package diag

import (
	"fmt"
	"sort"

	"github.com/oxhq/semcore/internal/ast"
)

// Severity classifies how strongly a Diagnostic should be surfaced.
type Severity int

const (
	// Info marks a NameMatch-confidence finding: a name resolved with no
	// corroborating scope or provider evidence.
	Info Severity = iota
	// Warning marks a Potential-confidence finding or a resolvable but
	// risky construct (e.g. a majority-vote union member access).
	Warning
	// Error marks a finding that blocks a dependent query, such as a
	// cyclic inference that had to fall back to Variant.
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Code identifies the kind of finding, independent of its message text.
type Code string

const (
	CodeNameMatchOnly     Code = "D001" // member resolved by name only, no type evidence
	CodeUnionMajorityOnly Code = "D002" // member resolved via majority vote across a union
	CodeInferenceCycle    Code = "D003" // return type inference hit a call cycle
	CodeUnresolvedMember  Code = "D004" // member could not be resolved by any means
)

// Diagnostic is one surfaced finding, anchored to the arena node it concerns.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Node     ast.NodeID
	Pos      ast.Pos
}

// Bag accumulates diagnostics, deduplicating by (line, column, code) the
// way the teacher's walker.addError does.
type Bag struct {
	set map[string]Diagnostic
}

// NewBag returns an empty diagnostics bag.
func NewBag() *Bag {
	return &Bag{set: make(map[string]Diagnostic)}
}

// Add records d, overwriting any prior diagnostic at the same position and
// code.
func (b *Bag) Add(d Diagnostic) {
	if b.set == nil {
		b.set = make(map[string]Diagnostic)
	}
	key := fmt.Sprintf("%d:%d:%s", d.Pos.Line, d.Pos.Column, d.Code)
	b.set[key] = d
}

// Addf is a convenience wrapper that builds a Diagnostic from a
// printf-style message.
func (b *Bag) Addf(code Code, sev Severity, node ast.NodeID, pos ast.Pos, format string, args ...any) {
	b.Add(Diagnostic{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...), Node: node, Pos: pos})
}

// All returns every unique diagnostic, sorted by position then code for
// deterministic output.
func (b *Bag) All() []Diagnostic {
	result := make([]Diagnostic, 0, len(b.set))
	for _, d := range b.set {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		a, c := result[i], result[j]
		if a.Pos.Line != c.Pos.Line {
			return a.Pos.Line < c.Pos.Line
		}
		if a.Pos.Column != c.Pos.Column {
			return a.Pos.Column < c.Pos.Column
		}
		return a.Code < c.Code
	})
	return result
}

// Len reports how many unique diagnostics are currently recorded.
func (b *Bag) Len() int {
	return len(b.set)
}
