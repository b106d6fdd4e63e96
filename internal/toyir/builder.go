package toyir

import "github.com/cs-cat/Tai-e/internal/ir"

// Builder accumulates classes into a Hierarchy while handing back plain
// *ir.Class/*ir.Method/*ir.Var values, so callers assemble a scenario as a
// sequence of small, readable steps instead of one large struct literal.
type Builder struct {
	H *Hierarchy
}

func NewBuilder() *Builder {
	return &Builder{H: NewHierarchy()}
}

// Class declares a concrete application class. super may be nil (only
// java.lang.Object itself should omit a super in practice).
func (b *Builder) Class(name string, super *ir.Class, ifaces ...*ir.Class) *ir.Class {
	c := &ir.Class{Name: name, Super: super, Interfaces: ifaces}
	return b.H.AddClass(c)
}

// Interface declares an application interface.
func (b *Builder) Interface(name string, extends ...*ir.Class) *ir.Class {
	c := &ir.Class{Name: name, Interfaces: extends, IsInterface: true, IsAbstract: true}
	return b.H.AddClass(c)
}

// LibraryClass declares a class outside the application (e.g. java.lang.*),
// excluded from "only-app" reachability views.
func (b *Builder) LibraryClass(name string, super *ir.Class, ifaces ...*ir.Class) *ir.Class {
	c := &ir.Class{Name: name, Super: super, Interfaces: ifaces}
	return b.H.AddLibraryClass(c)
}

// Method declares a method on class c and appends it to c.Methods. Stmts
// are attached afterward via SetBody (a Method's Stmts often reference Vars
// returned from this call, so body construction happens in two steps).
func (b *Builder) Method(c *ir.Class, name string, params []ir.Type, ret ir.Type, static bool) *ir.Method {
	m := &ir.Method{Name: name, Declaring: c, RetType: ret, IsStatic: static}
	if !static {
		m.This = &ir.Var{Name: "this", Type: c.Type(), Method: m, Index: -1}
	}
	for i, pt := range params {
		m.Params = append(m.Params, &ir.Var{Name: paramName(i), Type: pt, Method: m, Index: i})
	}
	c.Methods = append(c.Methods, m)
	return m
}

// NativeMethod declares a method with no CFG (spec.md §7 "Missing CFG").
func (b *Builder) NativeMethod(c *ir.Class, name string, params []ir.Type, ret ir.Type, static bool) *ir.Method {
	m := b.Method(c, name, params, ret, static)
	m.IsNative = true
	return m
}

// Local declares an extra local variable on m, beyond its params/this.
func (b *Builder) Local(m *ir.Method, name string, t ir.Type) *ir.Var {
	return &ir.Var{Name: name, Type: t, Method: m, Index: -1}
}

func (b *Builder) SetBody(m *ir.Method, stmts []ir.Stmt) { m.Stmts = stmts }

func (b *Builder) Field(c *ir.Class, name string, t ir.Type, static bool) *ir.Field {
	f := &ir.Field{Name: name, Declaring: c, Type: t, IsStatic: static}
	c.Fields = append(c.Fields, f)
	return f
}

func paramName(i int) string {
	names := [...]string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	if i < len(names) {
		return names[i]
	}
	return "p" + string(rune('0'+i))
}
