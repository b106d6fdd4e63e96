package solver

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

// translateStmt dispatches on stmt's concrete type (spec.md §4.6
// "Statement translation"), the same type-switch-over-a-sealed-interface
// idiom the teacher uses for ssa.Instruction.
func (s *Solver) translateStmt(cm *cs.CSMethod, stmt ir.Stmt, info *methodInfo) {
	ctx := cm.Context()
	switch st := stmt.(type) {
	case *ir.New:
		obj := s.world.Heap.Allocate(st, st, st.Type, cm.Method())
		heapCtx := s.world.Selector.SelectHeapContext(ctx, st)
		csObj := s.GetCSObj(heapCtx, obj)
		s.AddPointsTo(s.GetCSVar(ctx, st.Result), csObj)

	case *ir.NewArray:
		s.translateNewArray(cm, st)

	case *ir.Assign:
		s.AddPFGEdge(s.GetCSVar(ctx, st.RHS), s.GetCSVar(ctx, st.LHS), cs.LocalAssign, st.LHS.Type)

	case *ir.Cast:
		s.AddPFGEdge(s.GetCSVar(ctx, st.RHS), s.GetCSVar(ctx, st.LHS), cs.Cast, st.Type)

	case *ir.LoadConstant:
		obj := s.constantObj(st.Value)
		heapCtx := s.world.Selector.SelectHeapContext(ctx, nil)
		s.AddPointsTo(s.GetCSVar(ctx, st.LHS), s.GetCSObj(heapCtx, obj))

	case *ir.LoadStaticField:
		s.AddPFGEdge(s.GetStaticField(st.Field), s.GetCSVar(ctx, st.LHS), cs.StaticLoad, nil)

	case *ir.StoreStaticField:
		s.AddPFGEdge(s.GetCSVar(ctx, st.RHS), s.GetStaticField(st.Field), cs.StaticStore, st.Field.Type)

	case *ir.LoadField:
		base := s.GetCSVar(ctx, st.Base)
		s.pendingInstanceLoad[base] = append(s.pendingInstanceLoad[base], st)

	case *ir.StoreField:
		base := s.GetCSVar(ctx, st.Base)
		s.pendingInstanceStore[base] = append(s.pendingInstanceStore[base], st)

	case *ir.LoadArray:
		base := s.GetCSVar(ctx, st.Base)
		s.pendingArrayLoad[base] = append(s.pendingArrayLoad[base], st)

	case *ir.StoreArray:
		base := s.GetCSVar(ctx, st.Base)
		s.pendingArrayStore[base] = append(s.pendingArrayStore[base], st)

	case *ir.Invoke:
		s.translateInvoke(cm, st)

	case *ir.Return:
		if st.Value != nil {
			info.returnVars = append(info.returnVars, s.GetCSVar(ctx, st.Value))
		}

	default:
		s.world.Logger.Debugw("unrecognised statement kind, skipped", "stmt", stmt.String())
	}
}

// constantObj turns a source-level Constant into the heap model's shared
// Obj for it (spec.md §4.2).
func (s *Solver) constantObj(c ir.Constant) *cs.Obj {
	switch v := c.(type) {
	case ir.StringConst:
		return s.world.Heap.Constant(v, ir.StringType)
	case ir.ClassLiteral:
		return s.world.Heap.Constant(v, ir.ClassClassType)
	case ir.MethodTypeConst:
		return s.world.Heap.Constant(v, ir.MethodTypeType)
	default:
		return s.world.Heap.Constant(c, ir.ObjectType)
	}
}

// translateNewArray allocates the outer array object and, for
// multi-dimensional arrays, chains a fresh inner array object into every
// element of the previous dimension via its ArrayIndex pointer (spec.md
// §4.6). Each dimension's Obj is shared across every execution of this
// statement under every context, consistent with allocation-site
// semantics: the heap model's siteKey is (stmt, dim), not (ctx, stmt,
// dim), so the per-dimension Obj is created once and CSObj interning
// still differentiates it by heap context.
func (s *Solver) translateNewArray(cm *cs.CSMethod, st *ir.NewArray) {
	ctx := cm.Context()
	heapCtx := s.world.Selector.SelectHeapContext(ctx, st)

	outerType := ir.Type(st.ArrType)
	outerObj := s.world.Heap.Allocate(dimKey{st, 0}, st, outerType, cm.Method())
	outerCSObj := s.GetCSObj(heapCtx, outerObj)
	s.AddPointsTo(s.GetCSVar(ctx, st.Result), outerCSObj)

	curType := outerType
	curObj := outerCSObj
	for d := 1; d < st.Dims; d++ {
		at, ok := curType.(*ir.ArrayType)
		if !ok {
			break
		}
		curType = at.Elem
		innerObj := s.world.Heap.Allocate(dimKey{st, d}, nil, curType, cm.Method())
		innerCSObj := s.GetCSObj(heapCtx, innerObj)
		s.AddPointsTo(s.GetArrayIndex(curObj), innerCSObj)
		curObj = innerCSObj
	}
}

// translateInvoke handles the eager forms of call resolution (static,
// special, dynamic) immediately, and registers virtual/interface calls
// for deferred dispatch on the receiver's points-to set (spec.md §4.6).
func (s *Solver) translateInvoke(cm *cs.CSMethod, st *ir.Invoke) {
	ctx := cm.Context()
	site := s.GetCSCallSite(ctx, st, cm)

	switch st.Kind {
	case ir.InvokeStatic:
		callee, ok := s.Hierarchy().ResolveStatic(st.Container, st.Sub)
		if !ok {
			s.dispatchFailure(st, st.Container.Type())
			return
		}
		calleeCtx := s.world.Selector.SelectContext(ctx, st, nil, callee)
		csCallee := s.GetCSMethod(calleeCtx, callee)
		s.linkCall(ctx, site, csCallee, callgraph.CallStatic, st, nil)

	case ir.InvokeSpecial:
		callee, ok := s.Hierarchy().ResolveSpecial(st.Container, st.Sub)
		if !ok {
			s.dispatchFailure(st, st.Container.Type())
			return
		}
		calleeCtx := s.world.Selector.SelectContext(ctx, st, nil, callee)
		csCallee := s.GetCSMethod(calleeCtx, callee)
		s.linkCall(ctx, site, csCallee, callgraph.CallSpecial, st, st.Base)

	case ir.InvokeDynamic:
		callee, ok := s.plugins.ResolveDynamicCall(site)
		if !ok {
			s.world.Logger.Debugw("invokedynamic left unresolved, no plug-in claimed it", "call", st.String())
			return
		}
		calleeCtx := s.world.Selector.SelectContext(ctx, st, nil, callee)
		csCallee := s.GetCSMethod(calleeCtx, callee)
		s.linkCall(ctx, site, csCallee, callgraph.CallOther, st, nil)
		if st.Bootstrap != nil {
			s.linkCapturedArgs(ctx, csCallee, st.Bootstrap.CapturedArgs)
		}

	case ir.InvokeVirtual, ir.InvokeInterface:
		base := s.GetCSVar(ctx, st.Base)
		s.pendingCalls[base] = append(s.pendingCalls[base], &pendingCall{invoke: st, site: site})

	default:
		s.world.Logger.Debugw("unrecognised invoke kind, skipped", "call", st.String())
	}
}

// resolveInstanceCall performs dispatch for one (pending virtual/interface
// call, receiver object) pair, as objects arrive at the receiver variable
// (spec.md §4.6 "for o in actual: resolve dispatch...").
func (s *Solver) resolveInstanceCall(ctx *cs.Context, pc *pendingCall, o *cs.CSObj) {
	st := pc.invoke
	var callee *ir.Method
	var ok bool
	if st.Kind == ir.InvokeInterface {
		callee, ok = s.Hierarchy().ResolveInterface(o.Type(), st.Sub)
	} else {
		callee, ok = s.Hierarchy().ResolveVirtual(o.Type(), st.Sub)
	}
	if !ok {
		s.dispatchFailure(st, o.Type())
		return
	}

	calleeCtx := s.world.Selector.SelectContext(ctx, st, o, callee)
	csCallee := s.GetCSMethod(calleeCtx, callee)

	kind := callgraph.CallVirtual
	if st.Kind == ir.InvokeInterface {
		kind = callgraph.CallInterface
	}
	s.linkCall(ctx, pc.site, csCallee, kind, st, nil)

	if info := s.methodInfo[csCallee]; info != nil && info.thisVar != nil {
		s.AddPointsTo(info.thisVar, o)
	}
}

// linkCall records the call edge, translates the callee if newly
// reachable, and links arguments/results (spec.md §4.6 "link args ->
// params, returns -> result"). explicitRecv is non-nil only for special
// calls, whose receiver is an ordinary Var rather than a dispatch-bound
// CSObj.
func (s *Solver) linkCall(ctx *cs.Context, site *cs.CSCallSite, callee *cs.CSMethod, kind callgraph.CallKind, st *ir.Invoke, explicitRecv *ir.Var) {
	s.AddCallEdge(site, callee, kind)
	s.markReachable(callee)

	info := s.methodInfo[callee]
	if info == nil {
		return
	}

	if explicitRecv != nil && info.thisVar != nil {
		s.AddPFGEdge(s.GetCSVar(ctx, explicitRecv), info.thisVar, cs.Parameter, callee.Method().Declaring.Type())
	}

	n := len(st.Args)
	if n > len(info.paramVars) {
		n = len(info.paramVars)
	}
	for i := 0; i < n; i++ {
		paramType := callee.Method().Params[i].Type
		s.AddPFGEdge(s.GetCSVar(ctx, st.Args[i]), info.paramVars[i], cs.Parameter, paramType)
	}

	if st.Result != nil {
		resultVar := s.GetCSVar(ctx, st.Result)
		for _, rv := range info.returnVars {
			s.AddPFGEdge(rv, resultVar, cs.Return, st.Result.Type)
		}
	}
}

// linkCapturedArgs wires an invokedynamic bootstrap's captured arguments
// into the synthetic target's leading parameters (spec.md §4.7
// "Invokedynamic / Lambda"), matching how a Java lambda's captured
// locals become the synthetic method's leading formals.
func (s *Solver) linkCapturedArgs(ctx *cs.Context, callee *cs.CSMethod, captured []*ir.Var) {
	info := s.methodInfo[callee]
	if info == nil {
		return
	}
	n := len(captured)
	if n > len(info.paramVars) {
		n = len(info.paramVars)
	}
	for i := 0; i < n; i++ {
		s.AddPFGEdge(s.GetCSVar(ctx, captured[i]), info.paramVars[i], cs.Parameter, callee.Method().Params[i].Type)
	}
}
