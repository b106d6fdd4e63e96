package ir

// Hierarchy answers the subtype and dispatch queries the solver needs.
// Building the hierarchy from class files is an external collaborator's
// job (spec.md §1); internal/toyir ships a minimal implementation for
// tests and the demo CLI.
type Hierarchy interface {
	// ClassByName looks up a class or interface by fully-qualified name.
	ClassByName(name string) (*Class, bool)

	// IsSubtype reports whether sub is assignable to sup (reflexive).
	IsSubtype(sub, sup Type) bool

	// ResolveVirtual resolves a virtual or special-free instance call:
	// given the runtime type of the receiver and the invoked
	// subsignature, find the most-derived overriding method.
	ResolveVirtual(runtime Type, sub Subsignature) (*Method, bool)

	// ResolveInterface is ResolveVirtual for interface-typed call sites;
	// kept distinct because some hierarchies resolve default methods
	// differently (spec.md §4.6 "Interface calls use subtype-based
	// lookup").
	ResolveInterface(runtime Type, sub Subsignature) (*Method, bool)

	// ResolveSpecial resolves super/constructor/private calls, which
	// bypass override resolution (spec.md §4.6).
	ResolveSpecial(container *Class, sub Subsignature) (*Method, bool)

	// ResolveStatic resolves a static call.
	ResolveStatic(container *Class, sub Subsignature) (*Method, bool)

	// Subclasses returns every concrete class implementing/extending c,
	// used by plug-ins that need to enumerate possible runtime types
	// (e.g. reflection's Class.newInstance modelling).
	Subclasses(c *Class) []*Class

	// ApplicationClasses restricts reachability when "only-app" is set
	// (spec.md §6).
	ApplicationClasses() []*Class
	IsApplicationClass(c *Class) bool
}

// Program bundles everything the engine needs as input (spec.md §6):
// the hierarchy plus the entry-method specification.
type Program struct {
	Hierarchy    Hierarchy
	EntryMethods []*Method
}
