package cs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
)

func TestHeapModelAllocateIsIdempotentPerSite(t *testing.T) {
	h := NewHeapModel(HeapPolicy{})
	stmt := &ir.New{Type: &ir.ClassType{ClassName: "demo.Dog"}}

	o1 := h.Allocate(stmt, stmt, stmt.Type, nil)
	o2 := h.Allocate(stmt, stmt, stmt.Type, nil)
	assert.Same(t, o1, o2, "the same site key must yield the identical Obj")
	assert.Equal(t, ObjAllocation, o1.Kind())
}

func TestHeapModelAllocateDistinctSites(t *testing.T) {
	h := NewHeapModel(HeapPolicy{})
	s1 := &ir.New{Type: ir.ObjectType}
	s2 := &ir.New{Type: ir.ObjectType}
	o1 := h.Allocate(s1, s1, ir.ObjectType, nil)
	o2 := h.Allocate(s2, s2, ir.ObjectType, nil)
	assert.NotSame(t, o1, o2)
}

func TestHeapModelConstantDeduplicatesByKey(t *testing.T) {
	h := NewHeapModel(HeapPolicy{})
	c1 := ir.StringConst{Value: "hi"}
	c2 := ir.StringConst{Value: "hi"}
	o1 := h.Constant(c1, ir.StringType)
	o2 := h.Constant(c2, ir.StringType)
	assert.Same(t, o1, o2, "equal constant values must share one Obj")
	assert.Equal(t, ObjConstant, o1.Kind())

	other := h.Constant(ir.StringConst{Value: "bye"}, ir.StringType)
	assert.NotSame(t, o1, other)
}

func TestHeapModelMergeExceptionObjects(t *testing.T) {
	h := NewHeapModel(HeapPolicy{
		MergeExceptionObjects: true,
		IsThrowable: func(t ir.Type) bool {
			return t.Name() == "demo.MyException"
		},
	})
	excType := &ir.ClassType{ClassName: "demo.MyException"}
	s1 := &ir.New{Type: excType}
	s2 := &ir.New{Type: excType}
	o1 := h.Allocate(s1, s1, excType, nil)
	o2 := h.Allocate(s2, s2, excType, nil)
	require.Same(t, o1, o2, "two distinct exception allocation sites must merge by type")
	assert.Equal(t, ObjMerged, o1.Kind())
}

func TestHeapModelMergeStringObjects(t *testing.T) {
	h := NewHeapModel(HeapPolicy{MergeStringObjects: true})
	o1 := h.Constant(ir.StringConst{Value: "a"}, ir.StringType)
	o2 := h.Constant(ir.StringConst{Value: "b"}, ir.StringType)
	assert.Same(t, o1, o2, "merge-string-objects collapses every string literal into one Obj")
}

func TestHeapModelAllIncludesEveryAllocation(t *testing.T) {
	h := NewHeapModel(HeapPolicy{})
	s1 := &ir.New{Type: ir.ObjectType}
	h.Allocate(s1, s1, ir.ObjectType, nil)
	h.Constant(ir.StringConst{Value: "x"}, ir.StringType)
	assert.Len(t, h.All(), 2)
}
