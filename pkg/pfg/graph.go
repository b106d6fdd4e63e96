// Package pfg implements the pointer-flow-graph operations (spec.md
// §4.5): adding edges between cs.Pointer nodes, rejecting duplicates, and
// retroactively propagating the source's current points-to set into a
// freshly added edge's target.
//
// The edges themselves, and each Pointer's outgoing-edge list, are owned
// by the cs package (see its doc comment for why); this package is the
// thin operation layer the solver drives.
package pfg

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/index"
)

// Propagator receives the retroactive-propagation obligation created by
// adding an edge into a pointer whose source already has a non-empty
// points-to set. The solver implements this by pushing onto its
// worklist.
type Propagator interface {
	Enqueue(target cs.Pointer, delta *cs.PointsToSet)
}

// Graph tracks which (src, dst, kind, filter) edges already exist, so
// that repeated statement translation (e.g. the same instance-load fired
// again as the base variable's points-to set grows) never creates a
// duplicate edge (spec.md §4.5: "Duplicate edges are rejected").
type Graph struct {
	propagator Propagator
	seen       map[edgeKey]bool
	edges      []*cs.Edge
}

type edgeKey struct {
	src, dst cs.Pointer
	kind     cs.EdgeKind
	filter   ir.Type
}

func New(propagator Propagator) *Graph {
	return &Graph{propagator: propagator, seen: make(map[edgeKey]bool)}
}

// AddEdge adds src -> dst (kind, filter) if it doesn't already exist,
// propagating src's filtered points-to set into dst as required by
// spec.md §4.5. It reports whether the edge was newly added.
func (g *Graph) AddEdge(src, dst cs.Pointer, kind cs.EdgeKind, filter ir.Type) bool {
	if src == dst && filter == nil {
		// A self-loop with no filter can never add anything new; the
		// teacher's analysis.copy short-circuits src==dst identically.
		return false
	}
	key := edgeKey{src, dst, kind, filter}
	if g.seen[key] {
		return false
	}
	g.seen[key] = true

	e := &cs.Edge{Src: src, Dst: dst, Kind: kind, Filter: filter}
	src.AddOutEdge(e)
	g.edges = append(g.edges, e)

	if src.PointsTo().Len() > 0 {
		scratch := index.New[*cs.CSObj](dst.PointsTo().Indexer())
		if delta := Filter(src.PointsTo(), filter, scratch); delta != nil {
			g.propagator.Enqueue(dst, delta)
		}
	}
	return true
}

// Edges returns every edge added so far.
func (g *Graph) Edges() []*cs.Edge { return g.edges }

// Filter returns the subset of set whose Obj.Type is assignable to
// filter (spec.md §3 invariant: "only CSObj whose Obj.type is assignable
// to T is propagated"), or set itself unfiltered if filter is nil. It
// returns nil (no allocation) when the result would be empty.
func Filter(set *cs.PointsToSet, filter ir.Type, scratch *cs.PointsToSet) *cs.PointsToSet {
	if filter == nil {
		if set.Len() == 0 {
			return nil
		}
		return set
	}
	var out *cs.PointsToSet
	set.Iterate(func(o *cs.CSObj) {
		if assignable(o.Type(), filter) {
			if out == nil {
				out = scratch
			}
			out.Add(o)
		}
	})
	return out
}

// assignable is a minimal, hierarchy-free assignability check sufficient
// for PFG filtering: identical named types, a null-typed object or null
// filter, or a java.lang.Object filter. Real subtype reasoning (interfaces,
// superclasses) is the class hierarchy's job (spec.md §1); callers that
// need precise dispatch-time assignability go through ir.Hierarchy
// instead (see pkg/solver).
func assignable(t, filter ir.Type) bool {
	if t == ir.NullType || filter == ir.NullType {
		return true
	}
	if filter.Name() == ir.ObjectType.Name() {
		return true
	}
	return t.Name() == filter.Name()
}
