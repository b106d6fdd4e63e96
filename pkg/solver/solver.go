package solver

import (
	"context"

	"go.uber.org/zap"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/errs"
	"github.com/cs-cat/Tai-e/pkg/index"
	"github.com/cs-cat/Tai-e/pkg/pfg"
	"github.com/cs-cat/Tai-e/pkg/plugin"
)

// methodInfo is the per-CSMethod bookkeeping the solver needs once a
// method has been translated (spec.md §4.6 "link args -> params,
// returns -> result"): its formal parameter and receiver pointers, and
// every return-statement's value pointer, so a call resolved later (by
// the worklist loop, possibly long after translation) can wire PARAMETER
// and RETURN edges without re-scanning the method body.
type methodInfo struct {
	thisVar    *cs.CSVar
	paramVars  []*cs.CSVar
	returnVars []*cs.CSVar
}

// pendingCall is a virtual or interface call site whose dispatch is
// deferred until its receiver variable's points-to set grows (spec.md
// §4.6 "deferred; dispatch on y's objects").
type pendingCall struct {
	invoke *ir.Invoke
	site   *cs.CSCallSite
}

// Solver is the worklist fixed-point engine (spec.md §4.6). It
// implements plugin.Host (the capability surface plug-ins call back
// into) and pfg.Propagator (the enqueue hook pkg/pfg uses for
// retroactive edge propagation).
type Solver struct {
	world *World

	pfgGraph *pfg.Graph
	cg       *callgraph.Graph
	plugins  *plugin.Registry

	wl queue

	methodInfo  map[*cs.CSMethod]*methodInfo
	classInited map[*ir.Class]bool

	pendingInstanceLoad  map[*cs.CSVar][]*ir.LoadField
	pendingInstanceStore map[*cs.CSVar][]*ir.StoreField
	pendingArrayLoad     map[*cs.CSVar][]*ir.LoadArray
	pendingArrayStore    map[*cs.CSVar][]*ir.StoreArray
	pendingCalls         map[*cs.CSVar][]*pendingCall

	fatal error
}

type dimKey struct {
	stmt *ir.NewArray
	dim  int
}

var _ plugin.Host = (*Solver)(nil)
var _ pfg.Propagator = (*Solver)(nil)

// New assembles a Solver over w, registering plugins in the order given.
func New(w *World, plugins []plugin.Plugin) *Solver {
	s := &Solver{
		world:                w,
		cg:                   callgraph.New(),
		plugins:              plugin.NewRegistry(),
		methodInfo:           make(map[*cs.CSMethod]*methodInfo),
		classInited:          make(map[*ir.Class]bool),
		pendingInstanceLoad:  make(map[*cs.CSVar][]*ir.LoadField),
		pendingInstanceStore: make(map[*cs.CSVar][]*ir.StoreField),
		pendingArrayLoad:     make(map[*cs.CSVar][]*ir.LoadArray),
		pendingArrayStore:    make(map[*cs.CSVar][]*ir.StoreArray),
		pendingCalls:         make(map[*cs.CSVar][]*pendingCall),
	}
	s.pfgGraph = pfg.New(s)
	for _, p := range plugins {
		s.plugins.Register(p)
	}
	return s
}

// CallGraph returns the CS call graph built so far.
func (s *Solver) CallGraph() *callgraph.Graph { return s.cg }

// Elements returns the CS element manager backing this solver's world.
func (s *Solver) Elements() *cs.Elements { return s.world.Elements }

// PFG returns the pointer-flow graph built so far.
func (s *Solver) PFG() *pfg.Graph { return s.pfgGraph }

// World returns the immutable context this solver was built from.
func (s *Solver) World() *World { return s.world }

// --- plugin.Host ---

func (s *Solver) AddPFGEdge(src, dst cs.Pointer, kind cs.EdgeKind, filter ir.Type) bool {
	return s.pfgGraph.AddEdge(src, dst, kind, filter)
}

func (s *Solver) AddPointsTo(p cs.Pointer, obj *cs.CSObj) bool {
	single := index.New[*cs.CSObj](p.PointsTo().Indexer())
	single.Add(obj)
	s.Enqueue(p, single)
	return true
}

func (s *Solver) MarkReachable(m *cs.CSMethod) bool { return s.markReachable(m) }

func (s *Solver) AddCallEdge(site *cs.CSCallSite, callee *cs.CSMethod, kind callgraph.CallKind) (*callgraph.Edge, bool) {
	e, isNew := s.cg.AddEdge(site, callee, kind)
	if isNew {
		if err := s.plugins.HandleNewCallEdge(e); err != nil {
			s.recordFatal(err)
		}
	}
	return e, isNew
}

func (s *Solver) GetCSObj(ctx *cs.Context, obj *cs.Obj) *cs.CSObj {
	return s.world.Elements.GetCSObj(ctx, obj)
}
func (s *Solver) GetCSVar(ctx *cs.Context, v *ir.Var) *cs.CSVar {
	return s.world.Elements.GetCSVar(ctx, v)
}
func (s *Solver) GetStaticField(f *ir.Field) *cs.StaticField {
	return s.world.Elements.GetStaticField(f)
}
func (s *Solver) GetInstanceField(base *cs.CSObj, f *ir.Field) *cs.InstanceField {
	return s.world.Elements.GetInstanceField(base, f)
}
func (s *Solver) GetArrayIndex(base *cs.CSObj) *cs.ArrayIndex {
	return s.world.Elements.GetArrayIndex(base)
}
func (s *Solver) GetCSCallSite(ctx *cs.Context, invoke *ir.Invoke, caller *cs.CSMethod) *cs.CSCallSite {
	return s.world.Elements.GetCSCallSite(ctx, invoke, caller)
}
func (s *Solver) GetCSMethod(ctx *cs.Context, m *ir.Method) *cs.CSMethod {
	return s.world.Elements.GetCSMethod(ctx, m)
}

func (s *Solver) Heap() *cs.HeapModel        { return s.world.Heap }
func (s *Solver) Selector() cs.Selector      { return s.world.Selector }
func (s *Solver) Hierarchy() ir.Hierarchy    { return s.world.Program.Hierarchy }
func (s *Solver) Logger() *zap.SugaredLogger { return s.world.Logger }

// --- pfg.Propagator ---

// Enqueue pushes target's filtered delta onto the worklist. Both the
// PFG's retroactive-propagation hook and AddPointsTo funnel through
// here, so every points-to change the solver makes, however it
// originated, is processed by the same main-loop discipline (spec.md
// §4.7: "It must not mutate existing points-to sets except through
// solver APIs").
func (s *Solver) Enqueue(target cs.Pointer, delta *cs.PointsToSet) {
	s.wl.push(workItem{p: target, delta: delta})
}

func (s *Solver) recordFatal(err error) {
	if s.fatal == nil {
		s.fatal = err
	}
}

// Solve runs the worklist loop to quiescence (spec.md §4.6), or until
// ctx is cancelled, or until a plug-in callback fails. It returns the
// first fatal error encountered, or errs.ErrCancelled if ctx ended the
// run before the worklist drained, or nil on normal completion.
func (s *Solver) Solve(ctx context.Context) error {
	if err := s.plugins.Attach(s); err != nil {
		return err
	}
	if err := s.plugins.OnStart(); err != nil {
		return err
	}

	for _, m := range s.world.Program.EntryMethods {
		cm := s.GetCSMethod(s.world.ContextMgr.Empty(), m)
		s.markReachable(cm)
		if s.fatal != nil {
			return s.finish(s.fatal)
		}
	}

	var cancelled bool
	for !s.wl.empty() {
		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		item := s.wl.pop()
		actual := item.p.PointsTo().AddAllDiff(item.delta)
		if actual == nil {
			continue
		}

		for _, e := range item.p.OutEdges() {
			// Type filter via the class hierarchy, so subtype objects pass.
			filtered := actual
			if e.Filter != nil {
				filtered = nil
				actual.Iterate(func(o *cs.CSObj) {
					if s.Hierarchy().IsSubtype(o.Type(), e.Filter) {
						if filtered == nil {
							filtered = index.New[*cs.CSObj](e.Dst.PointsTo().Indexer())
						}
						filtered.Add(o)
					}
				})
			}
			if filtered != nil {
				s.Enqueue(e.Dst, filtered)
			}
		}

		if v, ok := item.p.(*cs.CSVar); ok {
			s.processVarDelta(v, actual)
			if err := s.plugins.HandleNewPointsToSet(v, actual); err != nil {
				s.recordFatal(err)
			}
		}

		if s.fatal != nil {
			break
		}
	}

	if s.fatal != nil {
		return s.finish(s.fatal)
	}
	if cancelled {
		return s.finish(errs.ErrCancelled)
	}
	return s.finish(nil)
}

func (s *Solver) finish(result error) error {
	if err := s.plugins.OnFinish(); err != nil && result == nil {
		result = err
	}
	return result
}

// processVarDelta performs the pointer-type-specific derived work
// (spec.md §4.6 main loop, step 3): instance loads/stores, array
// loads/stores, and deferred virtual/interface dispatch, restricted to
// the newly arrived objects in actual.
func (s *Solver) processVarDelta(v *cs.CSVar, actual *cs.PointsToSet) {
	ctx := v.Context()

	for _, stmt := range s.pendingInstanceLoad[v] {
		actual.Iterate(func(o *cs.CSObj) {
			f := s.GetInstanceField(o, stmt.Field)
			s.AddPFGEdge(f, s.GetCSVar(ctx, stmt.LHS), cs.InstanceLoad, nil)
		})
	}
	for _, stmt := range s.pendingInstanceStore[v] {
		actual.Iterate(func(o *cs.CSObj) {
			f := s.GetInstanceField(o, stmt.Field)
			s.AddPFGEdge(s.GetCSVar(ctx, stmt.RHS), f, cs.InstanceStore, stmt.Field.Type)
		})
	}
	for _, stmt := range s.pendingArrayLoad[v] {
		actual.Iterate(func(o *cs.CSObj) {
			a := s.GetArrayIndex(o)
			s.AddPFGEdge(a, s.GetCSVar(ctx, stmt.LHS), cs.ArrayLoad, nil)
		})
	}
	for _, stmt := range s.pendingArrayStore[v] {
		actual.Iterate(func(o *cs.CSObj) {
			a := s.GetArrayIndex(o)
			s.AddPFGEdge(s.GetCSVar(ctx, stmt.RHS), a, cs.ArrayStore, arrayComponentType(stmt.Base.Type))
		})
	}
	for _, pc := range s.pendingCalls[v] {
		actual.Iterate(func(o *cs.CSObj) {
			s.resolveInstanceCall(ctx, pc, o)
		})
	}
}

func arrayComponentType(t ir.Type) ir.Type {
	if at, ok := t.(*ir.ArrayType); ok {
		return at.Elem
	}
	return nil
}

// markReachable translates m's statements the first time it becomes
// reachable (spec.md §4.6). It is safe to call repeatedly; every call
// after the first is a no-op beyond the callgraph.Graph.AddReachable
// check.
func (s *Solver) markReachable(cm *cs.CSMethod) bool {
	if !s.cg.AddReachable(cm) {
		return false
	}
	m := cm.Method()
	s.ensureClassInit(m.Declaring)

	ctx := cm.Context()
	info := &methodInfo{}
	if m.This != nil {
		info.thisVar = s.GetCSVar(ctx, m.This)
	}
	for _, p := range m.Params {
		info.paramVars = append(info.paramVars, s.GetCSVar(ctx, p))
	}
	s.methodInfo[cm] = info

	if m.Stmts == nil {
		s.world.Logger.Debugw("missing CFG, treating as empty body", "method", m.String())
	}
	for _, stmt := range m.Stmts {
		s.translateStmt(cm, stmt, info)
	}

	if err := s.plugins.HandleNewMethod(cm); err != nil {
		s.recordFatal(err)
	}
	return true
}

// ensureClassInit marks class's static initializer (if any) reachable
// under the empty context the first time any of its methods becomes
// reachable (spec.md §4.6 "add static field pointers for this method's
// class if unfulfilled"). Class initializers run at most once per class
// regardless of which context first reached them, matching the
// once-per-class-not-per-context semantics of real static initializers.
func (s *Solver) ensureClassInit(class *ir.Class) {
	if s.classInited[class] {
		return
	}
	s.classInited[class] = true
	for _, m := range class.Methods {
		if m.Name == "<clinit>" {
			cm := s.GetCSMethod(s.world.ContextMgr.Empty(), m)
			s.markReachable(cm)
			return
		}
	}
}

func (s *Solver) dispatchFailure(site *ir.Invoke, runtime ir.Type) {
	s.world.Logger.Debugw("dispatch failure, dropping call for this object",
		"call", site.String(), "runtimeType", runtime.Name())
}

