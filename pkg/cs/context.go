// Package cs implements the context-sensitive element layer of the
// pointer analysis: contexts, the heap model, and the interned
// context-qualified entities (CSVar, CSObj, StaticField, InstanceField,
// ArrayIndex, CSCallSite, CSMethod) that double as pointer-flow-graph
// nodes (spec.md §3, §4.2, §4.3, §4.4).
//
// Context, the heap model, and the CS elements are kept in one package
// deliberately: spec.md's data model has Pointer (a CSVar/StaticField/
// InstanceField/ArrayIndex) own its points-to set and outgoing edges
// directly, and context selection is defined in terms of CSObj and
// CSMethod. Splitting these along the spec's module boundaries would
// produce a Go import cycle that the original per-concern Java packages
// never had to worry about; pkg/pfg (the graph-level operations) and
// pkg/solver (the worklist) depend on this package instead, not the
// reverse.
package cs

import "fmt"

// Context is an interned, immutable tuple of context elements (call
// sites, objects, or types, depending on policy). The empty context is
// used by context-insensitive analysis and as the root of every k-limited
// context chain.
type Context struct {
	elems []any
	key   string
}

// Len returns the number of elements in the context.
func (c *Context) Len() int { return len(c.elems) }

// Elem returns the i'th element (0 = oldest).
func (c *Context) Elem(i int) any { return c.elems[i] }

func (c *Context) String() string {
	if c == nil || len(c.elems) == 0 {
		return "[]"
	}
	s := "["
	for i, e := range c.elems {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%v", e)
	}
	return s + "]"
}

// ContextManager interns Context values so that two selections yielding
// equal element tuples produce the identical *Context (spec.md §3 "intern
// uniqueness").
type ContextManager struct {
	table map[string]*Context
	empty *Context
}

func NewContextManager() *ContextManager {
	m := &ContextManager{table: make(map[string]*Context)}
	m.empty = m.intern(nil)
	return m
}

// Empty returns the interned zero-length context.
func (m *ContextManager) Empty() *Context { return m.empty }

// Append returns the context formed by appending elem to c, truncated to
// the most recent k elements (k<=0 collapses to the empty context, i.e.
// context-insensitive).
func (m *ContextManager) Append(c *Context, elem any, k int) *Context {
	if k <= 0 {
		return m.empty
	}
	elems := make([]any, 0, c.Len()+1)
	elems = append(elems, c.elems...)
	elems = append(elems, elem)
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	return m.intern(elems)
}

// Single returns the context consisting of exactly one element. The
// built-in selectors build their contexts with Append instead.
func (m *ContextManager) Single(elem any) *Context {
	return m.intern([]any{elem})
}

func (m *ContextManager) intern(elems []any) *Context {
	key := fmt.Sprintf("%v", elems)
	if c, ok := m.table[key]; ok {
		return c
	}
	c := &Context{elems: elems, key: key}
	m.table[key] = c
	return c
}
