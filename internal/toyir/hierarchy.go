// Package toyir is a minimal, builder-pattern ir.Hierarchy
// implementation with no parser: it exists so tests and the demo CLI can
// assemble small class hierarchies and method bodies directly as Go
// values, satisfying the "external collaborator" contract internal/ir
// defines (spec.md §1 "IR construction from class files... out of
// scope"). A real front-end (class-file or bytecode reader) would
// implement the same ir.Hierarchy interface; toyir only needs to be
// correct, not efficient or complete.
package toyir

import "github.com/cs-cat/Tai-e/internal/ir"

// Hierarchy is a hand-built ir.Hierarchy over an explicitly registered
// set of classes.
type Hierarchy struct {
	classes map[string]*ir.Class
	order   []*ir.Class
	appOnly map[*ir.Class]bool
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{classes: make(map[string]*ir.Class), appOnly: make(map[*ir.Class]bool)}
}

// AddClass registers c as an application class.
func (h *Hierarchy) AddClass(c *ir.Class) *ir.Class {
	h.classes[c.Name] = c
	h.order = append(h.order, c)
	h.appOnly[c] = true
	return c
}

// AddLibraryClass registers c as a non-application class (spec.md §6
// "only-app: restrict reachability to application classes").
func (h *Hierarchy) AddLibraryClass(c *ir.Class) *ir.Class {
	h.classes[c.Name] = c
	h.order = append(h.order, c)
	h.appOnly[c] = false
	return c
}

func (h *Hierarchy) ClassByName(name string) (*ir.Class, bool) {
	c, ok := h.classes[name]
	return c, ok
}

func (h *Hierarchy) IsSubtype(sub, sup ir.Type) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sup.Name() == ir.ObjectType.Name() {
		return true
	}
	if sub.Name() == ir.NullType.Name() {
		return true
	}
	if subAT, ok := sub.(*ir.ArrayType); ok {
		supAT, ok2 := sup.(*ir.ArrayType)
		if !ok2 {
			return false
		}
		return h.IsSubtype(subAT.Elem, supAT.Elem)
	}
	if sub.Name() == sup.Name() {
		return true
	}
	c, ok := h.classes[sub.Name()]
	if !ok {
		return false
	}
	return h.classExtends(c, sup.Name(), make(map[*ir.Class]bool))
}

func (h *Hierarchy) classExtends(c *ir.Class, name string, visited map[*ir.Class]bool) bool {
	if c == nil || visited[c] {
		return false
	}
	visited[c] = true
	if c.Name == name {
		return true
	}
	if c.Super != nil && h.classExtends(c.Super, name, visited) {
		return true
	}
	for _, i := range c.Interfaces {
		if h.classExtends(i, name, visited) {
			return true
		}
	}
	return false
}

func (h *Hierarchy) ResolveVirtual(runtime ir.Type, sub ir.Subsignature) (*ir.Method, bool) {
	c, ok := h.classOf(runtime)
	if !ok {
		return nil, false
	}
	return h.lookupUp(c, sub)
}

func (h *Hierarchy) ResolveInterface(runtime ir.Type, sub ir.Subsignature) (*ir.Method, bool) {
	return h.ResolveVirtual(runtime, sub)
}

func (h *Hierarchy) ResolveSpecial(container *ir.Class, sub ir.Subsignature) (*ir.Method, bool) {
	return h.lookupUp(container, sub)
}

func (h *Hierarchy) ResolveStatic(container *ir.Class, sub ir.Subsignature) (*ir.Method, bool) {
	return h.lookupUp(container, sub)
}

func (h *Hierarchy) lookupUp(c *ir.Class, sub ir.Subsignature) (*ir.Method, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.DeclaredMethod(sub); ok {
			return m, true
		}
	}
	return nil, false
}

func (h *Hierarchy) classOf(t ir.Type) (*ir.Class, bool) {
	ct, ok := t.(*ir.ClassType)
	if !ok {
		return nil, false
	}
	c, ok := h.classes[ct.ClassName]
	return c, ok
}

func (h *Hierarchy) Subclasses(c *ir.Class) []*ir.Class {
	var out []*ir.Class
	for _, cand := range h.order {
		if cand == c || cand.IsAbstract || cand.IsInterface {
			continue
		}
		if h.classExtends(cand, c.Name, make(map[*ir.Class]bool)) {
			out = append(out, cand)
		}
	}
	return out
}

func (h *Hierarchy) ApplicationClasses() []*ir.Class {
	var out []*ir.Class
	for _, c := range h.order {
		if h.appOnly[c] {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hierarchy) IsApplicationClass(c *ir.Class) bool { return h.appOnly[c] }
