// Package reflection implements pattern-based modelling of a handful of
// java.lang.reflect / java.lang.Class intrinsics (spec.md §4.7), the way
// the teacher's pointer.reflect.go models a curated subset of the
// reflect package rather than the whole API.
//
// Only Class.forName(String) is actually modelled: it is the one
// reflection intrinsic resolvable purely from PFG facts already visible
// to a plug-in (a string constant flowing into a static call's
// argument). Class.newInstance() and Method.invoke(Object, Object[])
// dispatch virtually on a receiver whose declared type has no IR body,
// so by the time a plug-in could see them the solver has already logged
// a dispatch failure and dropped the call (spec.md §7); modelling them
// needs a dispatch-failure hook this plug-in framework does not expose
// yet, so they are left as documented no-ops rather than guessed at.
package reflection

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/plugin"
)

const classClassName = "java.lang.Class"

type pendingForName struct {
	resultVar *cs.CSVar
	nameVar   *cs.CSVar
}

// Plugin models Class.forName(String) (spec.md §4.7 "Reflection:
// pattern-based modelling of Class.forName, Class.newInstance,
// Method.invoke, etc.").
type Plugin struct {
	host plugin.Host

	byArg map[*cs.CSVar][]*pendingForName
	seen  map[seenKey]bool
}

type seenKey struct {
	call *cs.CSVar
	name string
}

func New() *Plugin {
	return &Plugin{byArg: make(map[*cs.CSVar][]*pendingForName), seen: make(map[seenKey]bool)}
}

func (p *Plugin) Name() string { return "reflection" }

func (p *Plugin) SetHost(h plugin.Host) { p.host = h }

func (p *Plugin) HandleNewCallEdge(e *callgraph.Edge) {
	m := e.Callee.Method()
	if m.Declaring.Name != classClassName || m.Name != "forName" {
		return
	}
	invoke := e.CallSite.Stmt()
	if invoke.Result == nil || len(invoke.Args) == 0 {
		return
	}
	ctx := e.CallSite.Context()
	pc := &pendingForName{
		resultVar: p.host.GetCSVar(ctx, invoke.Result),
		nameVar:   p.host.GetCSVar(ctx, invoke.Args[0]),
	}
	p.byArg[pc.nameVar] = append(p.byArg[pc.nameVar], pc)
	p.tryResolve(pc)
}

func (p *Plugin) HandleNewPointsToSet(v *cs.CSVar, _ *cs.PointsToSet) {
	for _, pc := range p.byArg[v] {
		p.tryResolve(pc)
	}
}

// tryResolve scans pc.nameVar's points-to set for string constants that
// name a real class, injecting a ClassLiteral object for each newly seen
// one. Unlike methodtype's fold, this keeps retrying forever: a forName
// call site can legitimately resolve to different classes across
// distinct calling contexts.
func (p *Plugin) tryResolve(pc *pendingForName) {
	pc.nameVar.PointsTo().Iterate(func(o *cs.CSObj) {
		sc, ok := o.Obj().Constant().(ir.StringConst)
		if !ok {
			return
		}
		key := seenKey{pc.resultVar, sc.Value}
		if p.seen[key] {
			return
		}
		class, ok := p.host.Hierarchy().ClassByName(sc.Value)
		if !ok {
			return
		}
		p.seen[key] = true
		obj := p.host.Heap().Constant(ir.ClassLiteral{Of: class.Type()}, ir.ClassClassType)
		heapCtx := p.host.Selector().SelectHeapContext(pc.resultVar.Context(), nil)
		p.host.AddPointsTo(pc.resultVar, p.host.GetCSObj(heapCtx, obj))
	})
}
