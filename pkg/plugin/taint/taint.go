// Package taint implements the taint-tracking built-in plug-in (spec.md
// §4.7): it marks the return value of configured source methods with a
// synthetic taint-marker object, watches configured sink call arguments
// for that marker, and reports each source-to-sink path found as a
// TaintFlow (spec.md §6 "Taint" named sub-result, scenario S5).
//
// The shape (source -> marker -> sink -> flow) is grounded on
// picatz-taint's dedicated taint-analysis module structure, adapted here
// to ride on this engine's own PFG rather than building a second
// analysis on top of golang.org/x/tools/go/ssa.
package taint

import (
	"fmt"
	"strings"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/plugin"
)

// markerPrefix tags the synthetic ClassType a taint marker Obj is
// allocated under; any Obj whose Type().Name() carries this prefix is a
// taint marker, and the suffix is the source call site's own String().
const markerPrefix = "«taint-source»"

// Flow is one detected source-to-sink path (spec.md §6 "Taint" key).
type Flow struct {
	Source string
	Sink   string
}

func (f Flow) String() string { return fmt.Sprintf("TaintFlow{%s -> %s}", f.Source, f.Sink) }

type pendingSink struct {
	sinkSite string
	argVar   *cs.CSVar
}

// Plugin implements spec.md §4.7's Taint built-in.
type Plugin struct {
	cfg  *Config
	host plugin.Host

	sinks []*pendingSink
	flows []Flow
	seen  map[string]bool
}

func New(cfg *Config) *Plugin {
	return &Plugin{cfg: cfg, seen: make(map[string]bool)}
}

func (p *Plugin) Name() string { return "taint" }

func (p *Plugin) SetHost(h plugin.Host) { p.host = h }

// Flows returns every TaintFlow detected so far, in discovery order
// (spec.md §4.8 "extensible named sub-results").
func (p *Plugin) Flows() []Flow { return p.flows }

func (p *Plugin) HandleNewCallEdge(e *callgraph.Edge) {
	m := e.Callee.Method()
	invoke := e.CallSite.Stmt()

	for _, src := range p.cfg.Sources {
		if m.Declaring.Name == src.Class && m.Name == src.Method {
			p.markSource(e.CallSite, invoke)
		}
	}
	for _, sink := range p.cfg.Sinks {
		if m.Declaring.Name != sink.Class || m.Name != sink.Method {
			continue
		}
		if sink.ArgIndex < 0 || sink.ArgIndex >= len(invoke.Args) {
			continue
		}
		argVar := p.host.GetCSVar(e.CallSite.Context(), invoke.Args[sink.ArgIndex])
		ps := &pendingSink{sinkSite: invoke.String(), argVar: argVar}
		p.sinks = append(p.sinks, ps)
		p.checkSink(ps)
	}
}

func (p *Plugin) HandleNewPointsToSet(v *cs.CSVar, _ *cs.PointsToSet) {
	for _, ps := range p.sinks {
		if ps.argVar == v {
			p.checkSink(ps)
		}
	}
}

func (p *Plugin) markSource(site *cs.CSCallSite, invoke *ir.Invoke) {
	if invoke.Result == nil {
		return
	}
	resultVar := p.host.GetCSVar(site.Context(), invoke.Result)
	markerType := &ir.ClassType{ClassName: markerPrefix + invoke.String()}
	obj := p.host.Heap().Allocate(invoke, invoke, markerType, nil)
	heapCtx := p.host.Selector().SelectHeapContext(site.Context(), invoke)
	p.host.AddPointsTo(resultVar, p.host.GetCSObj(heapCtx, obj))
}

func (p *Plugin) checkSink(ps *pendingSink) {
	ps.argVar.PointsTo().Iterate(func(o *cs.CSObj) {
		name := o.Type().Name()
		if !strings.HasPrefix(name, markerPrefix) {
			return
		}
		sourceSite := strings.TrimPrefix(name, markerPrefix)
		key := sourceSite + "->" + ps.sinkSite
		if p.seen[key] {
			return
		}
		p.seen[key] = true
		p.flows = append(p.flows, Flow{Source: sourceSite, Sink: ps.sinkSite})
	})
}
