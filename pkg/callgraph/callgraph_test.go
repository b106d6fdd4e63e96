package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

func newTestCSMethod(elems *cs.Elements, mgr *cs.ContextManager, ctx *cs.Context, m *ir.Method) *cs.CSMethod {
	return elems.GetCSMethod(ctx, m)
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	g := New()

	class := &ir.Class{Name: "demo.C"}
	caller := &ir.Method{Name: "caller", Declaring: class}
	callee := &ir.Method{Name: "callee", Declaring: class}
	csCaller := newTestCSMethod(elems, mgr, mgr.Empty(), caller)
	csCallee := newTestCSMethod(elems, mgr, mgr.Empty(), callee)
	invoke := &ir.Invoke{Kind: ir.InvokeStatic, Container: class, Sub: ir.MakeSubsignature("callee", nil)}
	site := elems.GetCSCallSite(mgr.Empty(), invoke, csCaller)

	e1, isNew1 := g.AddEdge(site, csCallee, CallStatic)
	e2, isNew2 := g.AddEdge(site, csCallee, CallStatic)
	assert.True(t, isNew1)
	assert.False(t, isNew2)
	assert.Same(t, e1, e2)
	assert.Len(t, g.Edges(), 1)
}

func TestAddReachableOnlyOnce(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	g := New()

	m := &ir.Method{Name: "m", Declaring: &ir.Class{Name: "demo.C"}}
	cm := elems.GetCSMethod(mgr.Empty(), m)

	assert.True(t, g.AddReachable(cm))
	assert.False(t, g.AddReachable(cm))
	assert.Len(t, g.ReachableMethods(), 1)
	assert.True(t, g.IsReachable(cm))
}

func TestProjectCollapsesContextsByUnderlyingMethod(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	g := New()

	class := &ir.Class{Name: "demo.C"}
	caller := &ir.Method{Name: "caller", Declaring: class}
	callee := &ir.Method{Name: "callee", Declaring: class}

	ctxA := mgr.Single("site-a")
	ctxB := mgr.Single("site-b")
	csCallerA := elems.GetCSMethod(ctxA, caller)
	csCallerB := elems.GetCSMethod(ctxB, caller)
	csCalleeA := elems.GetCSMethod(ctxA, callee)
	csCalleeB := elems.GetCSMethod(ctxB, callee)
	g.AddReachable(csCallerA)
	g.AddReachable(csCallerB)

	invoke := &ir.Invoke{Kind: ir.InvokeStatic, Container: class, Sub: ir.MakeSubsignature("callee", nil)}
	siteA := elems.GetCSCallSite(ctxA, invoke, csCallerA)
	siteB := elems.GetCSCallSite(ctxB, invoke, csCallerB)
	g.AddEdge(siteA, csCalleeA, CallStatic)
	g.AddEdge(siteB, csCalleeB, CallStatic)

	proj := g.Project()
	require.Len(t, proj.Edges, 1, "two context-qualified edges over the same (caller, callee, kind) must collapse into one")
	assert.Equal(t, caller, proj.Edges[0].Caller)
	assert.Equal(t, callee, proj.Edges[0].Callee)
}
