package ir

// Field is a declared field, static or instance.
type Field struct {
	Name      string
	Declaring *Class
	Type      Type
	IsStatic  bool
}

func (f *Field) String() string {
	return f.Declaring.Name + "." + f.Name
}

// Class is a declared class or interface.
type Class struct {
	Name        string
	Super       *Class
	Interfaces  []*Class
	Fields      []*Field
	Methods     []*Method
	IsInterface bool
	IsAbstract  bool
}

func (c *Class) Type() Type { return &ClassType{ClassName: c.Name} }

// DeclaredField looks up a field declared directly on c (not inherited).
func (c *Class) DeclaredField(name string) (*Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// DeclaredMethod looks up a method declared directly on c by subsignature.
func (c *Class) DeclaredMethod(sub Subsignature) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Subsignature() == sub {
			return m, true
		}
	}
	return nil, false
}

// Subsignature is a method's name plus parameter arity/types, the unit
// virtual dispatch resolves against (return type does not participate in
// overload resolution in this IR, matching typical bytecode subsignatures).
type Subsignature struct {
	Name       string
	ParamTypes string // pre-joined for cheap comparison/hashing
}

func MakeSubsignature(name string, params []Type) Subsignature {
	s := name + "("
	for i, p := range params {
		if i > 0 {
			s += ","
		}
		s += p.Name()
	}
	s += ")"
	return Subsignature{Name: name, ParamTypes: s}
}

// Method is a declared method. Native methods and interface method
// declarations carry Stmts == nil; the solver treats that as "missing
// CFG" per spec.md §7, not as an error.
type Method struct {
	Name      string
	Declaring *Class
	Params    []*Var
	This      *Var // nil for static methods
	RetType   Type
	Stmts     []Stmt
	IsStatic  bool
	IsNative  bool
	IsAbstract bool
}

func (m *Method) Subsignature() Subsignature {
	ptypes := make([]Type, len(m.Params))
	for i, p := range m.Params {
		ptypes[i] = p.Type
	}
	return MakeSubsignature(m.Name, ptypes)
}

func (m *Method) String() string {
	return m.Declaring.Name + "." + m.Name
}

// Var is a local variable (including formal parameters and the implicit
// "this" receiver). Identity is pointer identity; two Vars with the same
// name in different methods are distinct.
type Var struct {
	Name   string
	Type   Type
	Method *Method
	Index  int // position in Method.Params, or -1 for locals/this
}

func (v *Var) String() string {
	if v.Method == nil {
		return v.Name
	}
	return v.Method.String() + "/" + v.Name
}
