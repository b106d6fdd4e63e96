package main

import (
	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/internal/toyir"
)

// buildDemoProgram assembles a small, self-contained class hierarchy and
// method bodies with no external front-end (spec.md §1 treats IR/hierarchy
// construction as an external collaborator's job). It exercises virtual
// dispatch, an instance field, an array, a static call, and a
// MethodType-folding call site, so a default run of the CLI has something
// to show without any input files.
func buildDemoProgram() *ir.Program {
	b := toyir.NewBuilder()

	object := b.LibraryClass("java.lang.Object", nil)
	b.LibraryClass("java.lang.String", object)
	mtClass := b.LibraryClass("java.lang.invoke.MethodType", object)
	b.Method(mtClass, "methodType", []ir.Type{ir.ClassClassType, ir.ClassClassType}, ir.MethodTypeType, true)

	animal := b.Class("demo.Animal", object)
	animalSpeak := b.Method(animal, "speak", nil, ir.StringType, false)
	animalResult := b.Local(animalSpeak, "r", ir.StringType)
	b.SetBody(animalSpeak, []ir.Stmt{
		&ir.LoadConstant{LHS: animalResult, Value: ir.StringConst{Value: "..."}},
		&ir.Return{Value: animalResult},
	})

	dog := b.Class("demo.Dog", animal)
	dogSpeak := b.Method(dog, "speak", nil, ir.StringType, false)
	dogResult := b.Local(dogSpeak, "r", ir.StringType)
	b.SetBody(dogSpeak, []ir.Stmt{
		&ir.LoadConstant{LHS: dogResult, Value: ir.StringConst{Value: "woof"}},
		&ir.Return{Value: dogResult},
	})

	box := b.Class("demo.Box", object)
	elemField := b.Field(box, "elem", animal.Type(), false)

	mainClass := b.Class("demo.Main", object)
	mainMethod := b.Method(mainClass, "main", []ir.Type{&ir.ArrayType{Elem: ir.StringType}}, nil, true)

	a := b.Local(mainMethod, "a", animal.Type())
	d := b.Local(mainMethod, "d", dog.Type())
	r := b.Local(mainMethod, "r", ir.StringType)
	bx := b.Local(mainMethod, "bx", box.Type())
	arr := b.Local(mainMethod, "arr", &ir.ArrayType{Elem: animal.Type()})
	c1 := b.Local(mainMethod, "c1", ir.ClassClassType)
	c2 := b.Local(mainMethod, "c2", ir.ClassClassType)
	mt := b.Local(mainMethod, "mt", ir.MethodTypeType)

	speakSub := ir.MakeSubsignature("speak", nil)

	b.SetBody(mainMethod, []ir.Stmt{
		&ir.New{Result: d, Type: &ir.ClassType{ClassName: dog.Name}},
		&ir.Assign{LHS: a, RHS: d},
		&ir.Invoke{Result: r, Kind: ir.InvokeVirtual, Base: a, Container: animal, Sub: speakSub},

		&ir.New{Result: bx, Type: &ir.ClassType{ClassName: box.Name}},
		&ir.StoreField{Base: bx, Field: elemField, RHS: a},

		&ir.NewArray{Result: arr, ArrType: &ir.ArrayType{Elem: animal.Type()}, Dims: 1},
		&ir.StoreArray{Base: arr, RHS: a},

		&ir.LoadConstant{LHS: c1, Value: ir.ClassLiteral{Of: animal.Type()}},
		&ir.LoadConstant{LHS: c2, Value: ir.ClassLiteral{Of: dog.Type()}},
		&ir.Invoke{Result: mt, Kind: ir.InvokeStatic, Container: mtClass,
			Sub:  ir.MakeSubsignature("methodType", []ir.Type{ir.ClassClassType, ir.ClassClassType}),
			Args: []*ir.Var{c1, c2}},

		&ir.Return{},
	})

	h := b.H
	return &ir.Program{Hierarchy: h, EntryMethods: []*ir.Method{mainMethod}}
}
