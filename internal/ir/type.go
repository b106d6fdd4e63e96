// Package ir defines the minimal class-based intermediate representation
// the solver consumes: types, fields, methods, statements, and the class
// hierarchy it dispatches against. Building this IR from real class files
// is an external collaborator's job (see spec.md §1); this package only
// fixes the shapes that collaborator must produce.
package ir

import "fmt"

// Type is any type in the analysed program: a class/interface, an array,
// or a primitive. Subtype and assignability queries live on Hierarchy,
// not here, since they require whole-program knowledge.
type Type interface {
	Name() string
	fmt.Stringer
}

// ClassType names a declared class or interface.
type ClassType struct {
	ClassName string
}

func (t *ClassType) Name() string   { return t.ClassName }
func (t *ClassType) String() string { return t.ClassName }

// ArrayType is T[]; it may itself have an ArrayType element for T[][].
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) Name() string   { return t.Elem.Name() + "[]" }
func (t *ArrayType) String() string { return t.Name() }

// PrimitiveType is a scalar value type (int, boolean, ...); pointers to
// primitives never appear in points-to sets.
type PrimitiveType struct {
	PrimName string
}

func (t *PrimitiveType) Name() string   { return t.PrimName }
func (t *PrimitiveType) String() string { return t.PrimName }

// NullType is the type of the null constant; it is a subtype of every
// reference type.
var NullType Type = &nullType{}

type nullType struct{}

func (*nullType) Name() string   { return "null" }
func (*nullType) String() string { return "null" }

// IsReference reports whether t can head a points-to set (classes, arrays,
// interfaces, and null); primitives cannot.
func IsReference(t Type) bool {
	switch t.(type) {
	case *ClassType, *ArrayType, *nullType:
		return true
	default:
		return false
	}
}

var (
	// ObjectType is java.lang.Object / the analysis's universal supertype.
	ObjectType = &ClassType{ClassName: "java.lang.Object"}
	// StringType names the builtin string class, used by the heap model
	// for string-literal constant objects.
	StringType = &ClassType{ClassName: "java.lang.String"}
	// ClassClassType is the type of class-literal constant objects.
	ClassClassType = &ClassType{ClassName: "java.lang.Class"}
	// MethodTypeType is the type of MethodType constant objects.
	MethodTypeType = &ClassType{ClassName: "java.lang.invoke.MethodType"}
	// ThrowableType is the common supertype merged-exception-objects
	// heap policy allocates under.
	ThrowableType = &ClassType{ClassName: "java.lang.Throwable"}
)
