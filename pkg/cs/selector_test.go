package cs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
)

func newTestElements() (*Elements, *HeapModel) {
	h := NewHeapModel(HeapPolicy{})
	return NewElements(h), h
}

func TestContextInsensitiveAlwaysEmpty(t *testing.T) {
	mgr := NewContextManager()
	sel := NewContextInsensitive(mgr)
	callerCtx := mgr.Single("whatever")
	assert.Same(t, mgr.Empty(), sel.SelectContext(callerCtx, nil, nil, nil))
	assert.Same(t, mgr.Empty(), sel.SelectHeapContext(callerCtx, nil))
	assert.Equal(t, "ci", sel.String())
}

func TestCallSiteSensitiveAppendsSite(t *testing.T) {
	mgr := NewContextManager()
	sel := NewCallSiteSensitive(mgr, 1)
	site := &ir.Invoke{}
	c := sel.SelectContext(mgr.Empty(), site, nil, nil)
	require.Equal(t, 1, c.Len())
	assert.Same(t, site, c.Elem(0))
	assert.Equal(t, "1-call", sel.String())

	// Heap context is inherited unchanged for call-site sensitivity.
	assert.Same(t, c, sel.SelectHeapContext(c, nil))
}

func TestObjectSensitiveKeysOnReceiverIdentity(t *testing.T) {
	mgr := NewContextManager()
	elems, heap := newTestElements()
	sel := NewObjectSensitive(mgr, 1)

	site := &ir.New{Type: &ir.ClassType{ClassName: "demo.Dog"}}
	obj := heap.Allocate(site, site, site.Type, nil)
	recv := elems.GetCSObj(mgr.Empty(), obj)

	c := sel.SelectContext(mgr.Empty(), nil, recv, nil)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, obj, c.Elem(0))
	assert.Equal(t, "1-obj", sel.String())
}

func TestObjectSensitiveStaticCallFallsBackToEmpty(t *testing.T) {
	mgr := NewContextManager()
	sel := NewObjectSensitive(mgr, 2)
	assert.Same(t, mgr.Empty(), sel.SelectContext(mgr.Empty(), nil, nil, nil))
}

func TestTypeSensitiveKeysOnReceiverType(t *testing.T) {
	mgr := NewContextManager()
	elems, heap := newTestElements()
	sel := NewTypeSensitive(mgr, 1)

	dogType := &ir.ClassType{ClassName: "demo.Dog"}
	site1 := &ir.New{Type: dogType}
	site2 := &ir.New{Type: dogType}
	obj1 := heap.Allocate(site1, site1, dogType, nil)
	obj2 := heap.Allocate(site2, site2, dogType, nil)
	recv1 := elems.GetCSObj(mgr.Empty(), obj1)
	recv2 := elems.GetCSObj(mgr.Empty(), obj2)

	c1 := sel.SelectContext(mgr.Empty(), nil, recv1, nil)
	c2 := sel.SelectContext(mgr.Empty(), nil, recv2, nil)
	assert.Same(t, c1, c2, "two distinct objects of the same type must collapse to one type-sensitive context")
	assert.Equal(t, "1-type", sel.String())
}

func TestHybridComposesCallAndAllocSelectors(t *testing.T) {
	mgr := NewContextManager()
	call := NewCallSiteSensitive(mgr, 2)
	alloc := NewObjectSensitive(mgr, 1)
	h := NewHybrid(call, alloc)

	site := &ir.Invoke{}
	c := h.SelectContext(mgr.Empty(), site, nil, nil)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "hybrid(2-call+1-obj)", h.String())
}
