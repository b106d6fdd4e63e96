package pfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/index"
)

// recordingPropagator captures every Enqueue call instead of driving a
// real worklist, so these tests can assert exactly what a Graph decided
// to propagate without pulling in pkg/solver.
type recordingPropagator struct {
	calls []struct {
		target cs.Pointer
		delta  *cs.PointsToSet
	}
}

func (r *recordingPropagator) Enqueue(target cs.Pointer, delta *cs.PointsToSet) {
	r.calls = append(r.calls, struct {
		target cs.Pointer
		delta  *cs.PointsToSet
	}{target, delta})
}

func newTestVar(elems *cs.Elements, mgr *cs.ContextManager, name string, t ir.Type) *cs.CSVar {
	m := &ir.Method{Name: "m"}
	v := &ir.Var{Name: name, Type: t, Method: m, Index: -1}
	return elems.GetCSVar(mgr.Empty(), v)
}

func TestAddEdgeRejectsDuplicates(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	prop := &recordingPropagator{}
	g := New(prop)

	src := newTestVar(elems, mgr, "src", ir.ObjectType)
	dst := newTestVar(elems, mgr, "dst", ir.ObjectType)

	assert.True(t, g.AddEdge(src, dst, cs.LocalAssign, nil))
	assert.False(t, g.AddEdge(src, dst, cs.LocalAssign, nil), "re-adding the same edge must report no change")
	assert.Len(t, g.Edges(), 1)
}

func TestAddEdgeRejectsSelfLoopWithNoFilter(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	g := New(&recordingPropagator{})

	v := newTestVar(elems, mgr, "v", ir.ObjectType)
	assert.False(t, g.AddEdge(v, v, cs.LocalAssign, nil))
	assert.Empty(t, g.Edges())
}

func TestAddEdgePropagatesExistingPointsToRetroactively(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	prop := &recordingPropagator{}
	g := New(prop)

	src := newTestVar(elems, mgr, "src", ir.ObjectType)
	dst := newTestVar(elems, mgr, "dst", ir.ObjectType)

	site := &ir.New{Type: ir.ObjectType}
	obj := heap.Allocate(site, site, ir.ObjectType, nil)
	csObj := elems.GetCSObj(mgr.Empty(), obj)
	src.PointsTo().Add(csObj)

	added := g.AddEdge(src, dst, cs.LocalAssign, nil)
	require.True(t, added)
	require.Len(t, prop.calls, 1, "adding an edge from a non-empty source must enqueue its current set into dst")
	assert.Same(t, dst, prop.calls[0].target)
	assert.True(t, prop.calls[0].delta.Contains(csObj))
}

func TestFilterDropsObjectsNotAssignableToFilterType(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()

	dogType := &ir.ClassType{ClassName: "demo.Dog"}
	catType := &ir.ClassType{ClassName: "demo.Cat"}
	dogSite := &ir.New{Type: dogType}
	catSite := &ir.New{Type: catType}
	dogObj := elems.GetCSObj(mgr.Empty(), heap.Allocate(dogSite, dogSite, dogType, nil))
	catObj := elems.GetCSObj(mgr.Empty(), heap.Allocate(catSite, catSite, catType, nil))

	pts := elems.GetCSVar(mgr.Empty(), &ir.Var{Name: "v", Type: ir.ObjectType, Method: &ir.Method{Name: "m"}, Index: -1}).PointsTo()
	pts.Add(dogObj)
	pts.Add(catObj)

	scratch := index.New[*cs.CSObj](pts.Indexer())
	filtered := Filter(pts, dogType, scratch)
	require.NotNil(t, filtered)
	assert.True(t, filtered.Contains(dogObj))
	assert.False(t, filtered.Contains(catObj))
}

func TestFilterNilMeansUnfilteredUnlessEmpty(t *testing.T) {
	heap := cs.NewHeapModel(cs.HeapPolicy{})
	elems := cs.NewElements(heap)
	mgr := cs.NewContextManager()
	v := elems.GetCSVar(mgr.Empty(), &ir.Var{Name: "v", Type: ir.ObjectType, Method: &ir.Method{Name: "m"}, Index: -1})

	assert.Nil(t, Filter(v.PointsTo(), nil, nil), "an empty set must filter to nil regardless of filter type")

	site := &ir.New{Type: ir.ObjectType}
	obj := elems.GetCSObj(mgr.Empty(), heap.Allocate(site, site, ir.ObjectType, nil))
	v.PointsTo().Add(obj)
	assert.Same(t, v.PointsTo(), Filter(v.PointsTo(), nil, nil))
}
