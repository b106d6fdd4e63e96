package plugin

import (
	"fmt"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/callgraph"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/errs"
)

// Registry holds plug-ins in registration order and fans lifecycle
// events out to them synchronously (spec.md §4.7: "Plug-ins are invoked
// in registration order, synchronously, within the solver loop").
type Registry struct {
	plugins []Plugin
}

func NewRegistry() *Registry { return &Registry{} }

// Register appends p, preserving call order for future events. It does
// not deliver the Host: SetHost reaches only the plug-ins registered
// when Attach runs.
func (r *Registry) Register(p Plugin) { r.plugins = append(r.plugins, p) }

// Plugins returns the registered plug-ins in registration order.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// Attach gives every registered SolverAware plug-in the Host.
func (r *Registry) Attach(h Host) error {
	for _, p := range r.plugins {
		if sa, ok := p.(SolverAware); ok {
			if err := r.guard(p, "SetHost", func() { sa.SetHost(h) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) OnStart() error {
	for _, p := range r.plugins {
		if s, ok := p.(Starter); ok {
			if err := r.guard(p, "OnStart", s.OnStart); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) OnFinish() error {
	for _, p := range r.plugins {
		if f, ok := p.(Finisher); ok {
			if err := r.guard(p, "OnFinish", f.OnFinish); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) HandleNewMethod(m *cs.CSMethod) error {
	for _, p := range r.plugins {
		if h, ok := p.(MethodHandler); ok {
			if err := r.guard(p, "HandleNewMethod", func() { h.HandleNewMethod(m) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) HandleNewPointsToSet(v *cs.CSVar, delta *cs.PointsToSet) error {
	for _, p := range r.plugins {
		if h, ok := p.(PointsToHandler); ok {
			if err := r.guard(p, "HandleNewPointsToSet", func() { h.HandleNewPointsToSet(v, delta) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) HandleNewCallEdge(e *callgraph.Edge) error {
	for _, p := range r.plugins {
		if h, ok := p.(CallEdgeHandler); ok {
			if err := r.guard(p, "HandleNewCallEdge", func() { h.HandleNewCallEdge(e) }); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveDynamicCall offers site to every registered DynamicCallResolver
// in registration order, returning the first match. Resolver panics are
// not guarded: they run outside the worklist loop's per-event recovery
// because the solver needs the (method, ok) result synchronously to
// decide how to translate the statement; a panic here propagates as a
// plain Go panic, same as a bug in the solver's own dispatch code would.
func (r *Registry) ResolveDynamicCall(site *cs.CSCallSite) (*ir.Method, bool) {
	for _, p := range r.plugins {
		if d, ok := p.(DynamicCallResolver); ok {
			if m, resolved := d.ResolveDynamicCall(site); resolved {
				return m, true
			}
		}
	}
	return nil, false
}

// guard runs fn, converting a panic inside a plug-in callback into a
// *errs.PluginError instead of crashing the whole process, per spec.md
// §7 ("an exception in a callback... re-raised as a fatal
// AnalysisException").
func (r *Registry) guard(p Plugin, event string, fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("%v", rec)
			}
			err = &errs.PluginError{Plugin: p.Name(), Event: event, Cause: cause}
		}
	}()
	fn()
	return nil
}
