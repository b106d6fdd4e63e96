package cs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
)

func TestGetCSObjInternUniqueness(t *testing.T) {
	elems, heap := newTestElements()
	mgr := NewContextManager()
	site := &ir.New{Type: ir.ObjectType}
	obj := heap.Allocate(site, site, ir.ObjectType, nil)

	a := elems.GetCSObj(mgr.Empty(), obj)
	b := elems.GetCSObj(mgr.Empty(), obj)
	assert.Same(t, a, b, "equal (ctx, obj) keys must intern to the identical CSObj")

	ctx2 := mgr.Single("x")
	c := elems.GetCSObj(ctx2, obj)
	assert.NotSame(t, a, c)
}

func TestGetCSVarInternAndPointsToIsShared(t *testing.T) {
	elems, _ := newTestElements()
	mgr := NewContextManager()
	m := &ir.Method{Name: "m"}
	v := &ir.Var{Name: "x", Type: ir.ObjectType, Method: m, Index: -1}

	p1 := elems.GetCSVar(mgr.Empty(), v)
	p2 := elems.GetCSVar(mgr.Empty(), v)
	require.Same(t, p1, p2)
	assert.Equal(t, KindCSVar, p1.Kind())
	require.NotNil(t, p1.PointsTo())
	assert.Same(t, p1.PointsTo(), p2.PointsTo())
}

func TestArrayIndexKeyedOnCSObjAlone(t *testing.T) {
	// Two zero-length array allocations at the same site under the same
	// context share a CSObj and therefore share an ArrayIndex too.
	elems, heap := newTestElements()
	mgr := NewContextManager()
	site := &ir.NewArray{ArrType: &ir.ArrayType{Elem: ir.ObjectType}}
	obj := heap.Allocate(site, site, site.ArrType, nil)
	csObj := elems.GetCSObj(mgr.Empty(), obj)

	a1 := elems.GetArrayIndex(csObj)
	a2 := elems.GetArrayIndex(csObj)
	assert.Same(t, a1, a2)
	assert.Equal(t, KindArrayIndex, a1.Kind())
}

func TestInstanceFieldKeyedOnBaseAndField(t *testing.T) {
	elems, heap := newTestElements()
	mgr := NewContextManager()
	class := &ir.Class{Name: "demo.Box"}
	field := &ir.Field{Name: "elem", Declaring: class, Type: ir.ObjectType}

	site := &ir.New{Type: class.Type()}
	obj := heap.Allocate(site, site, class.Type(), nil)
	base := elems.GetCSObj(mgr.Empty(), obj)

	f1 := elems.GetInstanceField(base, field)
	f2 := elems.GetInstanceField(base, field)
	assert.Same(t, f1, f2)
	assert.Equal(t, KindInstanceField, f1.Kind())
	assert.Equal(t, base, f1.Base())
}

func TestStaticFieldInternedPerField(t *testing.T) {
	elems, _ := newTestElements()
	class := &ir.Class{Name: "demo.C"}
	f := &ir.Field{Name: "f", Declaring: class, Type: ir.ObjectType, IsStatic: true}
	p1 := elems.GetStaticField(f)
	p2 := elems.GetStaticField(f)
	assert.Same(t, p1, p2)
	assert.Equal(t, "demo.C.f", p1.String())
}

func TestPointerIndicesAreDenseAcrossKinds(t *testing.T) {
	elems, _ := newTestElements()
	mgr := NewContextManager()
	m := &ir.Method{Name: "m"}
	v := &ir.Var{Name: "x", Type: ir.ObjectType, Method: m, Index: -1}
	class := &ir.Class{Name: "demo.C"}
	f := &ir.Field{Name: "f", Declaring: class, Type: ir.ObjectType, IsStatic: true}

	p1 := elems.GetCSVar(mgr.Empty(), v)
	p2 := elems.GetStaticField(f)
	assert.NotEqual(t, p1.Index(), p2.Index())
	assert.Equal(t, p1.Index()+1, p2.Index())
}
