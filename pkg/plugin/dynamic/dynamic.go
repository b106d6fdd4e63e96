// Package dynamic implements the invokedynamic/lambda resolution
// built-in plug-in (spec.md §4.7): it resolves a call site's bootstrap
// method handle to a concrete synthetic target method.
//
// Unlike the other built-ins this plug-in has no lifecycle hooks at all;
// it only implements plugin.DynamicCallResolver, which the solver calls
// directly at statement-translation time (spec.md §4.6 "Invoke dynamic"
// is resolved eagerly, not deferred on a receiver's points-to set).
package dynamic

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

// Plugin resolves InvokeDynamic call sites using the bootstrap
// information the IR already carries (spec.md §4.7). Real bootstrap
// method handle resolution (constant-pool parsing, method-handle kinds)
// is an external collaborator's job; by the time this plug-in sees a
// call site, BootstrapInfo.TargetMethod has already been determined by
// whoever built the IR, and this plug-in's job is only to surface it to
// the solver through the DynamicCallResolver seam.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return "dynamic" }

func (p *Plugin) ResolveDynamicCall(site *cs.CSCallSite) (*ir.Method, bool) {
	invoke := site.Stmt()
	if invoke.Bootstrap == nil || invoke.Bootstrap.TargetMethod == nil {
		return nil, false
	}
	return invoke.Bootstrap.TargetMethod, true
}
