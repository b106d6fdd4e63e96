package cs

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/index"
)

// PointsToSet is the concrete representation of a Pointer's points-to
// set (spec.md §3).
type PointsToSet = index.HybridBitSet[*CSObj]

// EdgeKind discriminates pointer-flow-graph edges (spec.md §4.5).
type EdgeKind int

const (
	LocalAssign EdgeKind = iota
	Cast
	StaticLoad
	StaticStore
	InstanceLoad
	InstanceStore
	ArrayLoad
	ArrayStore
	Parameter
	Return
)

func (k EdgeKind) String() string {
	switch k {
	case LocalAssign:
		return "local-assign"
	case Cast:
		return "cast"
	case StaticLoad:
		return "static-load"
	case StaticStore:
		return "static-store"
	case InstanceLoad:
		return "instance-load"
	case InstanceStore:
		return "instance-store"
	case ArrayLoad:
		return "array-load"
	case ArrayStore:
		return "array-store"
	case Parameter:
		return "parameter"
	case Return:
		return "return"
	default:
		return "?"
	}
}

// Edge is a directed, optionally type-filtered pointer-flow-graph edge
// (spec.md §3 PFGEdge, §4.5).
type Edge struct {
	Src, Dst Pointer
	Kind     EdgeKind
	Filter   ir.Type // nil means unfiltered
}

// Pointer is the common interface of every PFG node: CSVar, StaticField,
// InstanceField, ArrayIndex (spec.md §3, §4.5). Concrete types are
// discriminated with a type switch (PointerKind), the same sum-type-via-
// interface idiom the teacher uses for ssa.Value.
type Pointer interface {
	Index() int
	PointsTo() *PointsToSet
	OutEdges() []*Edge
	// AddOutEdge records e as one of this pointer's outgoing edges.
	// Exported only so pkg/pfg's Graph (the sole intended caller) can
	// keep a pointer's edge list in sync with its own duplicate-edge
	// bookkeeping; solver code should go through pfg.Graph.AddEdge.
	AddOutEdge(e *Edge)
	Kind() PointerKind
	String() string
}

// PointerKind discriminates the four concrete Pointer types without a
// class hierarchy (spec.md §9 tagged unions).
type PointerKind int

const (
	KindCSVar PointerKind = iota
	KindStaticField
	KindInstanceField
	KindArrayIndex
)

// pointerBase factors the mutable state every Pointer owns: its dense
// index, points-to set, and outgoing edge list (spec.md §3: "Pointers
// hold their points-to sets by value and their PFG edges by value").
type pointerBase struct {
	id       int
	pointsTo *PointsToSet
	outEdges []*Edge
}

func (p *pointerBase) Index() int            { return p.id }
func (p *pointerBase) PointsTo() *PointsToSet { return p.pointsTo }
func (p *pointerBase) OutEdges() []*Edge      { return p.outEdges }
func (p *pointerBase) AddOutEdge(e *Edge)     { p.outEdges = append(p.outEdges, e) }
