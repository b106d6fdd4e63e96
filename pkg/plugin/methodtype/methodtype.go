// Package methodtype implements the MethodType-folding built-in plug-in
// (spec.md §4.7): it recognises calls to
// java.lang.invoke.MethodType.methodType(...) and, once its arguments
// resolve to ClassLiteral/MethodType constant objects, folds the call
// into a single MethodType constant object injected into the call's
// result variable.
package methodtype

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/plugin"
)

const (
	className  = "java.lang.invoke.MethodType"
	methodName = "methodType"
)

// pending is one unresolved methodType(...) call: its result variable and
// the CSVars of its not-yet-all-constant arguments.
type pending struct {
	resultVar *cs.CSVar
	args      []*cs.CSVar
	folded    bool
}

// Plugin folds methodType(...) calls into MethodType constant objects
// (spec.md §4.7, scenario S2).
type Plugin struct {
	host plugin.Host

	// byArg indexes every still-unfolded pending call by each of its
	// argument CSVars, so a HandleNewPointsToSet delta on any one
	// argument retries exactly the calls that could now fold.
	byArg map[*cs.CSVar][]*pending
}

func New() *Plugin {
	return &Plugin{byArg: make(map[*cs.CSVar][]*pending)}
}

func (p *Plugin) Name() string { return "methodtype" }

func (p *Plugin) SetHost(h plugin.Host) { p.host = h }

func (p *Plugin) HandleNewCallEdge(e *callgraph.Edge) {
	m := e.Callee.Method()
	if m.Declaring.Name != className || m.Name != methodName {
		return
	}
	site := e.CallSite
	invoke := site.Stmt()
	if invoke.Result == nil {
		return
	}
	ctx := site.Context()
	pc := &pending{resultVar: p.host.GetCSVar(ctx, invoke.Result)}
	for _, a := range invoke.Args {
		av := p.host.GetCSVar(ctx, a)
		pc.args = append(pc.args, av)
		p.byArg[av] = append(p.byArg[av], pc)
	}
	p.tryFold(pc)
}

func (p *Plugin) HandleNewPointsToSet(v *cs.CSVar, _ *cs.PointsToSet) {
	for _, pc := range p.byArg[v] {
		p.tryFold(pc)
	}
}

// tryFold attempts to resolve pc's MethodType once every argument's
// points-to set contains at least one recognised constant object. It is
// safe to call repeatedly; it is a no-op once pc.folded is set.
func (p *Plugin) tryFold(pc *pending) {
	if pc.folded {
		return
	}
	var ret ir.Type
	var params []ir.Type
	for i, argVar := range pc.args {
		t, ok := constantTypeOf(argVar)
		if !ok {
			return
		}
		if i == 0 {
			ret = t
			continue
		}
		params = append(params, t)
	}
	if ret == nil {
		return
	}
	pc.folded = true

	mt := ir.MethodTypeConst{Ret: ret, Params: params}
	obj := p.host.Heap().Constant(mt, ir.MethodTypeType)
	heapCtx := p.host.Selector().SelectHeapContext(pc.resultVar.Context(), nil)
	p.host.AddPointsTo(pc.resultVar, p.host.GetCSObj(heapCtx, obj))
}

// constantTypeOf inspects v's current points-to set for the first
// ClassLiteral or MethodTypeConst object and returns the type it
// denotes: a class literal denotes that class; a MethodType constant
// (when folding the multi-arg overload) denotes its own return type,
// matching the source overload's (MethodType, Class...) signature.
func constantTypeOf(v *cs.CSVar) (ir.Type, bool) {
	var found ir.Type
	v.PointsTo().Iterate(func(o *cs.CSObj) {
		if found != nil {
			return
		}
		obj := o.Obj()
		if obj.Kind() != cs.ObjConstant {
			return
		}
		switch c := obj.Constant().(type) {
		case ir.ClassLiteral:
			found = c.Of
		case ir.MethodTypeConst:
			found = c.Ret
		}
	})
	if found == nil {
		return nil, false
	}
	return found, true
}
