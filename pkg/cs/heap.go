package cs

import (
	"fmt"

	"github.com/cs-cat/Tai-e/internal/ir"
)

// ObjKind discriminates how an Obj's identity was derived.
type ObjKind int

const (
	// ObjAllocation is a plain allocation-site object: one Obj per New
	// or NewArray statement.
	ObjAllocation ObjKind = iota
	// ObjConstant is a shared constant object (string literal, class
	// literal, method-type descriptor): one Obj per distinct value,
	// regardless of how many statements produce it (spec.md §4.2).
	ObjConstant
	// ObjMerged is an allocation-site object collapsed with others of
	// the same type by a heap-merging policy (spec.md §4.2).
	ObjMerged
)

// Obj is a context-insensitive abstract heap object. Combined with a
// Context by the context selector it becomes a CSObj (spec.md §3).
type Obj struct {
	id       int
	kind     ObjKind
	typ      ir.Type
	site     ir.Stmt // allocation site; nil for constants
	method   *ir.Method
	constant ir.Constant // non-nil iff kind == ObjConstant
}

// Index implements index.Indexed so Obj can back a HybridBitSet
// directly. (CSObj carries its own, independent id.)
func (o *Obj) Index() int   { return o.id }
func (o *Obj) Type() ir.Type { return o.typ }
func (o *Obj) Kind() ObjKind { return o.kind }

// Allocation returns the allocation-site statement, or nil for constant
// and merged objects.
func (o *Obj) Allocation() ir.Stmt { return o.site }

// Constant returns the source-level constant this Obj represents, or nil
// unless Kind() == ObjConstant. Plug-ins that fold on specific constant
// shapes (methodtype's ClassLiteral/MethodTypeConst arguments) use this
// rather than Type(), since Type() is the constant object's own runtime
// type (java.lang.Class for every class literal) not the value it denotes.
func (o *Obj) Constant() ir.Constant { return o.constant }

func (o *Obj) String() string {
	switch o.kind {
	case ObjConstant:
		return fmt.Sprintf("Const[%s]", o.constant)
	case ObjMerged:
		return fmt.Sprintf("Merged[%s]", o.typ)
	default:
		if m := o.method; m != nil {
			return fmt.Sprintf("%s/%T@%p", m, o.site, o.site)
		}
		return fmt.Sprintf("%T@%p", o.site, o.site)
	}
}

// HeapPolicy selects merging strategies (spec.md §4.2, §6).
type HeapPolicy struct {
	MergeStringObjects    bool
	MergeStringBuilders   bool
	MergeExceptionObjects bool

	// IsStringBuilder and IsThrowable classify a type for the above
	// merge policies; the heap model has no hierarchy of its own, so
	// World supplies these from the real class hierarchy.
	IsStringBuilder func(ir.Type) bool
	IsThrowable     func(ir.Type) bool
}

// HeapModel maps allocation sites and constant values to deduplicated
// Obj instances (spec.md §4.2). It is deterministic: given the same
// sequence of Allocate/Constant calls it assigns the same ids, and
// idempotent: repeated calls for the same site/value return the same Obj.
type HeapModel struct {
	policy    HeapPolicy
	nextID    int
	bySite    map[any]*Obj
	byConst   map[string]*Obj
	byMergeTy map[string]*Obj
	all       []*Obj
}

func NewHeapModel(policy HeapPolicy) *HeapModel {
	return &HeapModel{
		policy:    policy,
		bySite:    make(map[any]*Obj),
		byConst:   make(map[string]*Obj),
		byMergeTy: make(map[string]*Obj),
	}
}

// Allocate returns the Obj for the allocation site identified by
// siteKey, applying merge-by-type policies first. siteKey is usually the
// allocating *ir.New/*ir.NewArray statement itself; multi-dimensional
// array chaining (spec.md §4.6) allocates one Obj per nested dimension
// using a synthetic key distinct from any ir.Stmt, since ir.Stmt's
// sum-type closure deliberately keeps external packages from minting
// their own statement values (see ir.Stmt's doc comment). display is the
// statement shown in the Obj's String() form and returned by
// Allocation(); it may be nil for synthetic inner-dimension objects.
func (h *HeapModel) Allocate(siteKey any, display ir.Stmt, typ ir.Type, method *ir.Method) *Obj {
	if h.policy.MergeExceptionObjects && h.policy.IsThrowable != nil && h.policy.IsThrowable(typ) {
		return h.mergedByType("exc:"+typ.Name(), typ)
	}
	if h.policy.MergeStringBuilders && h.policy.IsStringBuilder != nil && h.policy.IsStringBuilder(typ) {
		return h.mergedByType("sb:"+typ.Name(), typ)
	}
	if o, ok := h.bySite[siteKey]; ok {
		return o
	}
	o := h.newObj(ObjAllocation, typ, display, method, nil)
	h.bySite[siteKey] = o
	return o
}

func (h *HeapModel) mergedByType(key string, typ ir.Type) *Obj {
	if o, ok := h.byMergeTy[key]; ok {
		return o
	}
	o := h.newObj(ObjMerged, typ, nil, nil, nil)
	h.byMergeTy[key] = o
	return o
}

// Constant returns the shared Obj for constant value c of type typ
// (spec.md §4.2: one Obj per String value, per referenced Class, per
// MethodType tuple).
func (h *HeapModel) Constant(c ir.Constant, typ ir.Type) *Obj {
	if h.policy.MergeStringObjects {
		if _, ok := c.(ir.StringConst); ok {
			return h.mergedByType("strmerge", ir.StringType)
		}
	}
	key := c.Key()
	if o, ok := h.byConst[key]; ok {
		return o
	}
	o := h.newObj(ObjConstant, typ, nil, nil, c)
	h.byConst[key] = o
	return o
}

func (h *HeapModel) newObj(kind ObjKind, typ ir.Type, site ir.Stmt, method *ir.Method, c ir.Constant) *Obj {
	o := &Obj{id: h.nextID, kind: kind, typ: typ, site: site, method: method, constant: c}
	h.nextID++
	h.all = append(h.all, o)
	return o
}

// All returns every Obj created so far, in creation order.
func (h *HeapModel) All() []*Obj { return h.all }
