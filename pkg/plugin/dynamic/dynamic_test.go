package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/internal/toyir"
	"github.com/cs-cat/Tai-e/pkg/cs"
)

func newCallSite(invoke *ir.Invoke, caller *ir.Method) *cs.CSCallSite {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	csCaller := elems.GetCSMethod(mgr.Empty(), caller)
	return elems.GetCSCallSite(mgr.Empty(), invoke, csCaller)
}

func TestResolveDynamicCallReturnsBootstrapTarget(t *testing.T) {
	b := toyir.NewBuilder()
	object := b.LibraryClass("java.lang.Object", nil)
	lambdaHost := b.Class("demo.Lambdas", object)
	target := b.Method(lambdaHost, "lambda$main$0", nil, nil, true)

	main := b.Class("demo.Main", object)
	mm := b.Method(main, "main", nil, nil, true)
	invoke := &ir.Invoke{
		Kind:      ir.InvokeDynamic,
		Sub:       ir.MakeSubsignature("run", nil),
		Bootstrap: &ir.BootstrapInfo{TargetMethod: target},
	}
	b.SetBody(mm, []ir.Stmt{invoke, &ir.Return{}})

	p := New()
	assert.Equal(t, "dynamic", p.Name())

	m, ok := p.ResolveDynamicCall(newCallSite(invoke, mm))
	require.True(t, ok)
	assert.Same(t, target, m)
}

func TestResolveDynamicCallFailsWithoutBootstrap(t *testing.T) {
	b := toyir.NewBuilder()
	object := b.LibraryClass("java.lang.Object", nil)
	main := b.Class("demo.Main", object)
	mm := b.Method(main, "main", nil, nil, true)
	invoke := &ir.Invoke{Kind: ir.InvokeDynamic, Sub: ir.MakeSubsignature("run", nil)}
	b.SetBody(mm, []ir.Stmt{invoke, &ir.Return{}})

	p := New()
	_, ok := p.ResolveDynamicCall(newCallSite(invoke, mm))
	assert.False(t, ok)
}
