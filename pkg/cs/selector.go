package cs

import "github.com/cs-cat/Tai-e/internal/ir"

// Selector is the context selector contract (spec.md §4.3): for a caller
// context, call site, and (possibly nil, for static calls) receiver
// object, produce the callee's context; symmetrically, for an allocation
// produce its heap context. Every built-in policy fixes a finite element
// set, which is what guarantees the solver terminates (spec.md §4.3).
type Selector interface {
	// SelectContext chooses the callee context for a call from callerCtx
	// through site to callee, with receiver recv (nil for static calls).
	SelectContext(callerCtx *Context, site *ir.Invoke, recv *CSObj, callee *ir.Method) *Context
	// SelectHeapContext chooses the heap context for an allocation at
	// site, executing under allocCtx.
	SelectHeapContext(allocCtx *Context, site ir.Stmt) *Context
	String() string
}

// ContextInsensitive always selects the empty context: the degenerate
// "ci" policy (spec.md §6).
type ContextInsensitive struct{ mgr *ContextManager }

func NewContextInsensitive(mgr *ContextManager) *ContextInsensitive {
	return &ContextInsensitive{mgr: mgr}
}

func (s *ContextInsensitive) SelectContext(*Context, *ir.Invoke, *CSObj, *ir.Method) *Context {
	return s.mgr.Empty()
}
func (s *ContextInsensitive) SelectHeapContext(*Context, ir.Stmt) *Context { return s.mgr.Empty() }
func (s *ContextInsensitive) String() string                              { return "ci" }

// CallSiteSensitive is k-call-site-sensitivity: the callee context is the
// last k call sites on the call chain (spec.md §6 "1-call", "2-call").
type CallSiteSensitive struct {
	mgr *ContextManager
	k   int
}

func NewCallSiteSensitive(mgr *ContextManager, k int) *CallSiteSensitive {
	return &CallSiteSensitive{mgr: mgr, k: k}
}

func (s *CallSiteSensitive) SelectContext(callerCtx *Context, site *ir.Invoke, _ *CSObj, _ *ir.Method) *Context {
	return s.mgr.Append(callerCtx, site, s.k)
}
func (s *CallSiteSensitive) SelectHeapContext(allocCtx *Context, _ ir.Stmt) *Context {
	// Allocations inherit the allocating method's call-chain context
	// unchanged; call-site sensitivity does not further distinguish
	// heap contexts by allocation site.
	return allocCtx
}
func (s *CallSiteSensitive) String() string { return kSensString(s.k, "call") }

// ObjectSensitive is k-object-sensitivity: the callee context is the
// receiver object's own (context, Obj) identity, truncated to k entries
// (spec.md §6 "1-obj", "2-obj").
type ObjectSensitive struct {
	mgr *ContextManager
	k   int
}

func NewObjectSensitive(mgr *ContextManager, k int) *ObjectSensitive {
	return &ObjectSensitive{mgr: mgr, k: k}
}

func (s *ObjectSensitive) SelectContext(_ *Context, _ *ir.Invoke, recv *CSObj, _ *ir.Method) *Context {
	if recv == nil {
		// Static call: no receiver to key on, fall back to the empty
		// context, matching the degenerate case in the literature.
		return s.mgr.Empty()
	}
	return s.mgr.Append(recv.Context(), recv.Obj(), s.k)
}
func (s *ObjectSensitive) SelectHeapContext(allocCtx *Context, _ ir.Stmt) *Context {
	return allocCtx
}
func (s *ObjectSensitive) String() string { return kSensString(s.k, "obj") }

// TypeSensitive is k-type-sensitivity: like ObjectSensitive, but keys on
// the receiver object's allocation type rather than its full identity,
// trading precision for a (much) smaller context domain (spec.md §6
// "1-type", "2-type").
type TypeSensitive struct {
	mgr *ContextManager
	k   int
}

func NewTypeSensitive(mgr *ContextManager, k int) *TypeSensitive {
	return &TypeSensitive{mgr: mgr, k: k}
}

func (s *TypeSensitive) SelectContext(_ *Context, _ *ir.Invoke, recv *CSObj, _ *ir.Method) *Context {
	if recv == nil {
		return s.mgr.Empty()
	}
	return s.mgr.Append(recv.Context(), recv.Type().Name(), s.k)
}
func (s *TypeSensitive) SelectHeapContext(allocCtx *Context, _ ir.Stmt) *Context {
	return allocCtx
}
func (s *TypeSensitive) String() string { return kSensString(s.k, "type") }

// Hybrid composes a method-level selector with an allocation-level one,
// the shape of Tai-e's and Doop's "hybrid" policies: call picks method
// contexts, alloc picks heap contexts. Every built-in selector except
// ContextInsensitive returns the allocating context unchanged as the heap
// context, whatever its k.
type Hybrid struct {
	call  Selector
	alloc Selector
}

func NewHybrid(call, alloc Selector) *Hybrid {
	return &Hybrid{call: call, alloc: alloc}
}

func (s *Hybrid) SelectContext(callerCtx *Context, site *ir.Invoke, recv *CSObj, callee *ir.Method) *Context {
	return s.call.SelectContext(callerCtx, site, recv, callee)
}
func (s *Hybrid) SelectHeapContext(allocCtx *Context, site ir.Stmt) *Context {
	return s.alloc.SelectHeapContext(allocCtx, site)
}
func (s *Hybrid) String() string { return "hybrid(" + s.call.String() + "+" + s.alloc.String() + ")" }

func kSensString(k int, unit string) string {
	digits := "0123456789"
	if k < 0 || k >= len(digits) {
		return "k-" + unit
	}
	return string(digits[k]) + "-" + unit
}
