// Package solver implements the worklist fixed-point solver (spec.md
// §4.6): the pointer-flow-graph propagation loop, on-the-fly call-graph
// construction, statement translation, and dispatch resolution that make
// up the engine's algorithmic core.
package solver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/options"
)

// World is the explicit, immutable context object a Solver is built from
// (spec.md §9 design notes: "Re-architect as an explicit immutable
// context object threaded into the solver constructor; avoid ambient
// singletons"). There is no package-level World value anywhere in this
// module; every function that needs hierarchy, options, or the heap model
// takes one as a constructor argument or struct field.
type World struct {
	Program *ir.Program
	Options options.Options
	Logger  *zap.SugaredLogger

	ContextMgr *cs.ContextManager
	Selector   cs.Selector
	Heap       *cs.HeapModel
	Elements   *cs.Elements
}

// NewWorld validates opts, checks that prog has a hierarchy and at least
// one entry method, and assembles the
// context-sensitivity and heap machinery the policy names (spec.md §6).
func NewWorld(prog *ir.Program, opts options.Options, logger *zap.SugaredLogger) (*World, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if prog.Hierarchy == nil {
		return nil, &options.ConfigError{Option: "program", Reason: "hierarchy is nil"}
	}
	if len(prog.EntryMethods) == 0 {
		return nil, &options.ConfigError{Option: "entry-methods", Reason: "at least one entry method is required"}
	}

	mgr := cs.NewContextManager()
	selector, err := buildSelector(opts.CS, mgr)
	if err != nil {
		return nil, err
	}

	h := prog.Hierarchy
	policy := cs.HeapPolicy{
		MergeStringObjects:    opts.MergeStringObjects,
		MergeStringBuilders:   opts.MergeStringBuilders,
		MergeExceptionObjects: opts.MergeExceptionObjects,
		IsStringBuilder: func(t ir.Type) bool {
			return t.Name() == "java.lang.StringBuilder" || t.Name() == "java.lang.StringBuffer"
		},
		IsThrowable: func(t ir.Type) bool {
			ct, ok := t.(*ir.ClassType)
			if !ok {
				return false
			}
			c, ok := h.ClassByName(ct.ClassName)
			if !ok {
				return false
			}
			return h.IsSubtype(c.Type(), ir.ThrowableType)
		},
	}
	heap := cs.NewHeapModel(policy)
	elements := cs.NewElements(heap)

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &World{
		Program:    prog,
		Options:    opts,
		Logger:     logger,
		ContextMgr: mgr,
		Selector:   selector,
		Heap:       heap,
		Elements:   elements,
	}, nil
}

func buildSelector(policy options.CSPolicy, mgr *cs.ContextManager) (cs.Selector, error) {
	switch policy {
	case options.CI:
		return cs.NewContextInsensitive(mgr), nil
	case options.Call1:
		return cs.NewCallSiteSensitive(mgr, 1), nil
	case options.Call2:
		return cs.NewCallSiteSensitive(mgr, 2), nil
	case options.Obj1:
		return cs.NewObjectSensitive(mgr, 1), nil
	case options.Obj2:
		return cs.NewObjectSensitive(mgr, 2), nil
	case options.Type1:
		return cs.NewTypeSensitive(mgr, 1), nil
	case options.Type2:
		return cs.NewTypeSensitive(mgr, 2), nil
	default:
		return nil, &options.ConfigError{Option: "cs", Reason: fmt.Sprintf("unknown policy %q", policy)}
	}
}
