package cs

import (
	"fmt"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/index"
)

// CSObj is a context-qualified heap object, (heapContext, Obj) (spec.md
// §3). CSObj implements index.Indexed so PointsToSet can store it in a
// HybridBitSet without a second lookup table.
type CSObj struct {
	id  int
	ctx *Context
	obj *Obj
}

func (o *CSObj) Index() int        { return o.id }
func (o *CSObj) Context() *Context { return o.ctx }
func (o *CSObj) Obj() *Obj         { return o.obj }
func (o *CSObj) Type() ir.Type     { return o.obj.Type() }
func (o *CSObj) String() string    { return o.ctx.String() + ":" + o.obj.String() }

// CSVar is a context-qualified local variable: CSVar(ctx, var).
type CSVar struct {
	pointerBase
	ctx *Context
	v   *ir.Var
}

func (p *CSVar) Kind() PointerKind { return KindCSVar }
func (p *CSVar) Context() *Context { return p.ctx }
func (p *CSVar) Var() *ir.Var      { return p.v }
func (p *CSVar) String() string    { return p.ctx.String() + ":" + p.v.String() }

// StaticField is a pointer for a static field; static fields carry no
// context of their own (spec.md §3).
type StaticField struct {
	pointerBase
	field *ir.Field
}

func (p *StaticField) Kind() PointerKind { return KindStaticField }
func (p *StaticField) Field() *ir.Field  { return p.field }
func (p *StaticField) String() string    { return p.field.String() }

// InstanceField is a pointer for field f of object base: InstanceField(base, f).
type InstanceField struct {
	pointerBase
	base  *CSObj
	field *ir.Field
}

func (p *InstanceField) Kind() PointerKind { return KindInstanceField }
func (p *InstanceField) Base() *CSObj      { return p.base }
func (p *InstanceField) Field() *ir.Field  { return p.field }
func (p *InstanceField) String() string {
	return p.base.String() + "." + p.field.Name
}

// ArrayIndex is a pointer for all elements of array object base. It is
// keyed by the array object alone, with no length or index component
// (spec.md §4.5 zero-sized/empty-array caveat): an allocation of length 0
// still yields a valid, queryable ArrayIndex.
type ArrayIndex struct {
	pointerBase
	base *CSObj
}

func (p *ArrayIndex) Kind() PointerKind { return KindArrayIndex }
func (p *ArrayIndex) Base() *CSObj      { return p.base }
func (p *ArrayIndex) String() string    { return p.base.String() + "[*]" }

// CSCallSite is a context-qualified call site.
type CSCallSite struct {
	ctx    *Context
	invoke *ir.Invoke
	caller *CSMethod
}

func (c *CSCallSite) Context() *Context { return c.ctx }
func (c *CSCallSite) Stmt() *ir.Invoke  { return c.invoke }
func (c *CSCallSite) Caller() *CSMethod { return c.caller }
func (c *CSCallSite) String() string    { return c.ctx.String() + ":" + c.invoke.String() }

// CSMethod is a context-qualified method.
type CSMethod struct {
	ctx *Context
	m   *ir.Method
}

func (m *CSMethod) Context() *Context { return m.ctx }
func (m *CSMethod) Method() *ir.Method { return m.m }
func (m *CSMethod) String() string     { return m.ctx.String() + ":" + m.m.String() }

// Elements is the CS element manager (spec.md §4.4): intern tables for
// every context-qualified entity, plus the pointer-index counter they
// all share so HybridBitSets can be built over any Pointer subtype.
//
// Elements is built for the solver's single-threaded phase (spec.md §5);
// it takes no locks.
type Elements struct {
	heap *HeapModel

	nextPointerID int
	nextObjID     int // CSObj ids, independent of Obj ids
	objByIndex    []*CSObj

	csObjs      map[csObjKey]*CSObj
	csVars      map[csVarKey]*CSVar
	staticFlds  map[*ir.Field]*StaticField
	instFlds    map[instFieldKey]*InstanceField
	arrIdx      map[*CSObj]*ArrayIndex
	callSites   map[csCallSiteKey]*CSCallSite
	csMethods   map[csMethodKey]*CSMethod
}

type csObjKey struct {
	ctx *Context
	obj *Obj
}
type csVarKey struct {
	ctx *Context
	v   *ir.Var
}
type instFieldKey struct {
	base  *CSObj
	field *ir.Field
}
type csCallSiteKey struct {
	ctx    *Context
	invoke *ir.Invoke
}
type csMethodKey struct {
	ctx *Context
	m   *ir.Method
}

// Heap returns the heap model backing this manager's CSObjs.
func (e *Elements) Heap() *HeapModel { return e.heap }

func NewElements(heap *HeapModel) *Elements {
	return &Elements{
		heap:       heap,
		csObjs:     make(map[csObjKey]*CSObj),
		csVars:     make(map[csVarKey]*CSVar),
		staticFlds: make(map[*ir.Field]*StaticField),
		instFlds:   make(map[instFieldKey]*InstanceField),
		arrIdx:     make(map[*CSObj]*ArrayIndex),
		callSites:  make(map[csCallSiteKey]*CSCallSite),
		csMethods:  make(map[csMethodKey]*CSMethod),
	}
}

// GetCSObj interns (ctx, obj). Idempotent: equal keys yield the identical
// instance (spec.md §3 "intern uniqueness", §8 property 5).
func (e *Elements) GetCSObj(ctx *Context, obj *Obj) *CSObj {
	k := csObjKey{ctx, obj}
	if o, ok := e.csObjs[k]; ok {
		return o
	}
	o := &CSObj{id: e.nextObjID, ctx: ctx, obj: obj}
	e.nextObjID++
	e.csObjs[k] = o
	e.objByIndex = append(e.objByIndex, o)
	return o
}

func (e *Elements) newPointsTo() *PointsToSet {
	return index.New[*CSObj](csObjIndexer{e})
}

// csObjIndexer adapts Elements to index.Indexer[*CSObj] via CSObj.Index,
// which is already dense because GetCSObj assigns ids sequentially.
type csObjIndexer struct{ e *Elements }

func (csObjIndexer) IndexOf(o *CSObj) int { return o.Index() }
func (ix csObjIndexer) ObjectOf(i int) *CSObj {
	if i < 0 || i >= len(ix.e.objByIndex) {
		panic(fmt.Sprintf("no CSObj with index %d", i))
	}
	return ix.e.objByIndex[i]
}
func (ix csObjIndexer) Len() int { return ix.e.nextObjID }

func (e *Elements) GetCSVar(ctx *Context, v *ir.Var) *CSVar {
	k := csVarKey{ctx, v}
	if p, ok := e.csVars[k]; ok {
		return p
	}
	p := &CSVar{ctx: ctx, v: v}
	p.id = e.nextPointerID
	e.nextPointerID++
	p.pointsTo = e.newPointsTo()
	e.csVars[k] = p
	return p
}

func (e *Elements) GetStaticField(f *ir.Field) *StaticField {
	if p, ok := e.staticFlds[f]; ok {
		return p
	}
	p := &StaticField{field: f}
	p.id = e.nextPointerID
	e.nextPointerID++
	p.pointsTo = e.newPointsTo()
	e.staticFlds[f] = p
	return p
}

func (e *Elements) GetInstanceField(base *CSObj, f *ir.Field) *InstanceField {
	k := instFieldKey{base, f}
	if p, ok := e.instFlds[k]; ok {
		return p
	}
	p := &InstanceField{base: base, field: f}
	p.id = e.nextPointerID
	e.nextPointerID++
	p.pointsTo = e.newPointsTo()
	e.instFlds[k] = p
	return p
}

// GetArrayIndex interns the ArrayIndex pointer for array object base.
// Keyed on base alone: spec.md §4.5's zero-sized/empty-array caveat means
// two allocations of T[0] at the same site under the same context share a
// CSObj (via GetCSObj) and therefore share an ArrayIndex too.
func (e *Elements) GetArrayIndex(base *CSObj) *ArrayIndex {
	if p, ok := e.arrIdx[base]; ok {
		return p
	}
	p := &ArrayIndex{base: base}
	p.id = e.nextPointerID
	e.nextPointerID++
	p.pointsTo = e.newPointsTo()
	e.arrIdx[base] = p
	return p
}

func (e *Elements) GetCSCallSite(ctx *Context, invoke *ir.Invoke, caller *CSMethod) *CSCallSite {
	k := csCallSiteKey{ctx, invoke}
	if c, ok := e.callSites[k]; ok {
		return c
	}
	c := &CSCallSite{ctx: ctx, invoke: invoke, caller: caller}
	e.callSites[k] = c
	return c
}

func (e *Elements) GetCSMethod(ctx *Context, m *ir.Method) *CSMethod {
	k := csMethodKey{ctx, m}
	if cm, ok := e.csMethods[k]; ok {
		return cm
	}
	cm := &CSMethod{ctx: ctx, m: m}
	e.csMethods[k] = cm
	return cm
}

// AllCSVars, AllStaticFields, AllInstanceFields, AllArrayIndexes, and
// AllCSMethods expose the interned entities for the result surface
// (spec.md §4.8) in an unspecified order; callers needing the dump's
// sorted-by-toString order (spec.md §6) must sort.
func (e *Elements) AllCSVars() []*CSVar {
	out := make([]*CSVar, 0, len(e.csVars))
	for _, p := range e.csVars {
		out = append(out, p)
	}
	return out
}

func (e *Elements) AllStaticFields() []*StaticField {
	out := make([]*StaticField, 0, len(e.staticFlds))
	for _, p := range e.staticFlds {
		out = append(out, p)
	}
	return out
}

func (e *Elements) AllInstanceFields() []*InstanceField {
	out := make([]*InstanceField, 0, len(e.instFlds))
	for _, p := range e.instFlds {
		out = append(out, p)
	}
	return out
}

func (e *Elements) AllArrayIndexes() []*ArrayIndex {
	out := make([]*ArrayIndex, 0, len(e.arrIdx))
	for _, p := range e.arrIdx {
		out = append(out, p)
	}
	return out
}

func (e *Elements) AllCSMethods() []*CSMethod {
	out := make([]*CSMethod, 0, len(e.csMethods))
	for _, m := range e.csMethods {
		out = append(out, m)
	}
	return out
}
