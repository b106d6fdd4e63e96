// Package callgraph implements the on-the-fly CS call graph and its
// context-insensitive projection (spec.md §4.8). Node/edge naming
// follows golang.org/x/tools/go/callgraph's shape, which several repos
// in the retrieval pack (golang-tools, damonchen-gossa, picatz-taint)
// depend on for exactly this purpose.
package callgraph

import (
	"sort"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

// CallKind discriminates how a call edge was resolved (spec.md §3).
type CallKind int

const (
	CallStatic CallKind = iota
	CallVirtual
	CallSpecial
	CallInterface
	CallOther
)

func (k CallKind) String() string {
	switch k {
	case CallStatic:
		return "STATIC"
	case CallVirtual:
		return "VIRTUAL"
	case CallSpecial:
		return "SPECIAL"
	case CallInterface:
		return "INTERFACE"
	default:
		return "OTHER"
	}
}

// Edge is a CS call edge: (csCallSite, csMethod, kind) (spec.md §3).
// Added once; idempotent.
type Edge struct {
	CallSite *cs.CSCallSite
	Callee   *cs.CSMethod
	Kind     CallKind
}

func (e *Edge) String() string {
	return e.CallSite.String() + " -> " + e.Callee.String() + " [" + e.Kind.String() + "]"
}

// Graph is the incrementally maintained CS call graph (spec.md §4.8):
// nodes are reachable CSMethods, edges are call Edges.
type Graph struct {
	reachable map[*cs.CSMethod]bool
	order     []*cs.CSMethod // reachable methods in the order they became so, for deterministic dumps
	edges     []*Edge
	byKey     map[edgeKey]*Edge
	out       map[*cs.CSMethod][]*Edge
	in        map[*cs.CSMethod][]*Edge
}

type edgeKey struct {
	cs *cs.CSCallSite
	m  *cs.CSMethod
}

func New() *Graph {
	return &Graph{
		reachable: make(map[*cs.CSMethod]bool),
		byKey:     make(map[edgeKey]*Edge),
		out:       make(map[*cs.CSMethod][]*Edge),
		in:        make(map[*cs.CSMethod][]*Edge),
	}
}

// AddReachable marks m reachable, reporting whether it was newly added
// (spec.md §4.6 markReachable: "first-time only").
func (g *Graph) AddReachable(m *cs.CSMethod) bool {
	if g.reachable[m] {
		return false
	}
	g.reachable[m] = true
	g.order = append(g.order, m)
	return true
}

func (g *Graph) IsReachable(m *cs.CSMethod) bool { return g.reachable[m] }

// ReachableMethods returns every reachable CSMethod in discovery order.
func (g *Graph) ReachableMethods() []*cs.CSMethod { return g.order }

// AddEdge adds (site, callee, kind) if it isn't already present,
// reporting whether it was new (spec.md §3: "Added once; idempotent").
func (g *Graph) AddEdge(site *cs.CSCallSite, callee *cs.CSMethod, kind CallKind) (*Edge, bool) {
	key := edgeKey{site, callee}
	if e, ok := g.byKey[key]; ok {
		return e, false
	}
	e := &Edge{CallSite: site, Callee: callee, Kind: kind}
	g.byKey[key] = e
	g.edges = append(g.edges, e)
	g.out[site.Caller()] = append(g.out[site.Caller()], e)
	g.in[callee] = append(g.in[callee], e)
	return e, true
}

// Edges returns every call edge added so far, in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// CalleesOf returns the edges out of caller.
func (g *Graph) CalleesOf(caller *cs.CSMethod) []*Edge { return g.out[caller] }

// CallersOf returns the edges into callee.
func (g *Graph) CallersOf(callee *cs.CSMethod) []*Edge { return g.in[callee] }

// CIEdge is a context-insensitive call edge, the projection unit.
type CIEdge struct {
	Caller, Callee *ir.Method
	Kind           CallKind
}

// CIGraph is the context-insensitive projection of a Graph: contexts are
// collapsed, and edges/nodes that differ only by context are merged
// (spec.md §4.8).
type CIGraph struct {
	Methods []*ir.Method
	Edges   []CIEdge
}

// Project collapses g's contexts, deduplicating nodes by the underlying
// *ir.Method and edges by (caller *ir.Method, callee *ir.Method, kind);
// distinct call sites with the same caller, callee and kind merge into
// one CIEdge.
func (g *Graph) Project() *CIGraph {
	methodSeen := make(map[*ir.Method]bool)
	var methods []*ir.Method
	for _, m := range g.order {
		if !methodSeen[m.Method()] {
			methodSeen[m.Method()] = true
			methods = append(methods, m.Method())
		}
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].String() < methods[j].String() })

	type ciKey struct {
		caller, callee *ir.Method
		kind           CallKind
	}
	edgeSeen := make(map[ciKey]bool)
	var edges []CIEdge
	for _, e := range g.edges {
		k := ciKey{e.CallSite.Caller().Method(), e.Callee.Method(), e.Kind}
		if edgeSeen[k] {
			continue
		}
		edgeSeen[k] = true
		edges = append(edges, CIEdge{Caller: k.caller, Callee: k.callee, Kind: k.kind})
	}
	return &CIGraph{Methods: methods, Edges: edges}
}
