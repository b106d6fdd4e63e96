// Package result implements the queryable result surface (spec.md §4.8):
// reachable methods, call edges, every pointer class's points-to set, and
// extensible named sub-results contributed by plug-ins (e.g. the taint
// plug-in's "Taint" flows). It also owns the dump/compare round trip
// (spec.md §6, §7, §8).
package result

import (
	"sort"

	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/solver"
)

// Result snapshots a finished Solver's elements and call graph. Safe to
// build after Solve returns, whether it succeeded or stopped early with
// errs.ErrCancelled: a cancelled run's partial sets are still a sound
// under-approximation worth querying (spec.md §5).
type Result struct {
	elements *cs.Elements
	cg       *callgraph.Graph
	named    map[string]any
}

// New builds a Result over s's current elements and call graph.
func New(s *solver.Solver) *Result {
	return &Result{
		elements: s.Elements(),
		cg:       s.CallGraph(),
		named:    make(map[string]any),
	}
}

func (r *Result) CallGraph() *callgraph.Graph          { return r.cg }
func (r *Result) ReachableMethods() []*cs.CSMethod     { return r.cg.ReachableMethods() }
func (r *Result) CallEdges() []*callgraph.Edge         { return r.cg.Edges() }
func (r *Result) CSVars() []*cs.CSVar                  { return r.elements.AllCSVars() }
func (r *Result) StaticFields() []*cs.StaticField      { return r.elements.AllStaticFields() }
func (r *Result) InstanceFields() []*cs.InstanceField  { return r.elements.AllInstanceFields() }
func (r *Result) ArrayIndexes() []*cs.ArrayIndex       { return r.elements.AllArrayIndexes() }

// SetNamed attaches a plug-in-contributed sub-result under key (spec.md
// §4.8 "extensible named sub-results"). cmd/pta calls this after Solve
// returns, e.g. result.SetNamed("Taint", taintPlugin.Flows()).
func (r *Result) SetNamed(key string, value any) { r.named[key] = value }

// Named returns the sub-result registered under key, if any.
func (r *Result) Named(key string) (any, bool) {
	v, ok := r.named[key]
	return v, ok
}

// PointsTo returns p's current points-to set, sorted by CSObj.String()
// for deterministic output (spec.md §6 dump format).
func PointsTo(p cs.Pointer) []*cs.CSObj {
	var out []*cs.CSObj
	p.PointsTo().Iterate(func(o *cs.CSObj) { out = append(out, o) })
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
