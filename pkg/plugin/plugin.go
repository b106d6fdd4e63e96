// Package plugin implements the pointer analysis's plug-in framework
// (spec.md §4.7): an ordered set of handlers invoked synchronously from
// inside the solver's worklist loop on new-method, new-points-to-set, and
// new-call-edge events.
//
// Rather than one fat interface with every hook mandatory, each lifecycle
// hook is its own small interface (SolverAware, Starter, Finisher,
// MethodHandler, PointsToHandler, CallEdgeHandler); a plug-in implements
// whichever subset it needs and the Registry detects them with a type
// assertion, the same "optional interface" idiom the standard library
// uses for io.Closer-shaped hooks. This keeps a trivial plug-in (e.g. one
// that only watches call edges) free of empty method bodies.
package plugin

import (
	"go.uber.org/zap"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

// Plugin is the minimal contract every plug-in satisfies: a stable name
// used in error wrapping (spec.md §7 "Wrapped with plug-in identity").
type Plugin interface {
	Name() string
}

// Host is the capability surface the solver exposes to plug-ins
// (spec.md §4.7: "A plug-in may add PFG edges, mark methods reachable,
// inject CS-objects, and register new call edges"). Defined here rather
// than depended on from pkg/solver to avoid an import cycle: pkg/solver
// implements Host, pkg/plugin only consumes it.
type Host interface {
	AddPFGEdge(src, dst cs.Pointer, kind cs.EdgeKind, filter ir.Type) bool
	// AddPointsTo injects obj directly into p's points-to set, the
	// mechanism a plug-in uses to assert a fact that did not arrive
	// through an ordinary PFG edge (a folded MethodType constant, a
	// reflection-modelled allocation, a receiver pass at dispatch time).
	AddPointsTo(p cs.Pointer, obj *cs.CSObj) bool
	MarkReachable(m *cs.CSMethod) bool
	AddCallEdge(site *cs.CSCallSite, callee *cs.CSMethod, kind callgraph.CallKind) (*callgraph.Edge, bool)

	GetCSObj(ctx *cs.Context, obj *cs.Obj) *cs.CSObj
	GetCSVar(ctx *cs.Context, v *ir.Var) *cs.CSVar
	GetStaticField(f *ir.Field) *cs.StaticField
	GetInstanceField(base *cs.CSObj, f *ir.Field) *cs.InstanceField
	GetArrayIndex(base *cs.CSObj) *cs.ArrayIndex
	GetCSCallSite(ctx *cs.Context, invoke *ir.Invoke, caller *cs.CSMethod) *cs.CSCallSite
	GetCSMethod(ctx *cs.Context, m *ir.Method) *cs.CSMethod

	Heap() *cs.HeapModel
	Selector() cs.Selector
	Hierarchy() ir.Hierarchy
	CallGraph() *callgraph.Graph
	Elements() *cs.Elements
	Logger() *zap.SugaredLogger
}

// DynamicCallResolver is implemented by a plug-in that resolves
// InvokeDynamic call sites (spec.md §4.7 "Invokedynamic / Lambda"). The
// solver calls it at statement-translation time, in registration order,
// using the first plug-in that reports ok.
type DynamicCallResolver interface {
	ResolveDynamicCall(site *cs.CSCallSite) (callee *ir.Method, ok bool)
}

// SolverAware plug-ins receive the Host once, before OnStart.
type SolverAware interface {
	SetHost(h Host)
}

// Starter plug-ins run setup once, before any method is processed.
type Starter interface {
	OnStart()
}

// Finisher plug-ins run teardown/reporting once, after the worklist
// drains (or cancellation stops it).
type Finisher interface {
	OnFinish()
}

// MethodHandler plug-ins are notified the first time a method becomes
// reachable (spec.md §4.6 markReachable: "enqueue plug-in
// handleNewMethod").
type MethodHandler interface {
	HandleNewMethod(m *cs.CSMethod)
}

// PointsToHandler plug-ins are notified of every points-to delta the
// solver pops off the worklist (spec.md §4.6 main loop: "notify plug-ins
// of the delta").
type PointsToHandler interface {
	HandleNewPointsToSet(v *cs.CSVar, delta *cs.PointsToSet)
}

// CallEdgeHandler plug-ins are notified of every newly added call edge.
type CallEdgeHandler interface {
	HandleNewCallEdge(e *callgraph.Edge)
}
