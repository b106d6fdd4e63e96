// Package sweep runs one ir.Program through several context-sensitivity
// policies concurrently (spec.md's supplemented "Sweep runner" feature):
// the one place the engine is legitimately concurrent, since each
// Options.CS variant gets its own Solver over the same immutable
// internal/ir.Program, and per spec.md §5 the solver itself stays
// single-threaded.
package sweep

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/options"
	"github.com/cs-cat/Tai-e/pkg/plugin"
	"github.com/cs-cat/Tai-e/pkg/result"
	"github.com/cs-cat/Tai-e/pkg/solver"
)

// Run is one policy's outcome: either a Result or the error that stopped
// its Solver.
type Run struct {
	Options options.Options
	Result  *result.Result
	Err     error
}

// Plugins builds the set of plug-ins a Solver should register for one
// sweep member; it is called once per policy since plug-ins hold
// per-run state and must not be shared across concurrent Solvers.
type Plugins func(opts options.Options) ([]plugin.Plugin, error)

// Sweep runs prog once per entry in policies, each under its own Solver
// and World, concurrently. It returns one Run per policy in the same
// order as policies, regardless of completion order (errgroup only
// decides how many run in parallel, not the order results are reported
// in).
func Sweep(ctx context.Context, prog *ir.Program, policies []options.CSPolicy, base options.Options, logger *zap.SugaredLogger, newPlugins Plugins) ([]Run, error) {
	runs := make([]Run, len(policies))
	g, gctx := errgroup.WithContext(ctx)

	for i, cs := range policies {
		i, cs := i, cs
		g.Go(func() error {
			opts := base
			opts.CS = cs

			w, err := solver.NewWorld(prog, opts, logger)
			if err != nil {
				runs[i] = Run{Options: opts, Err: err}
				return nil
			}

			plugins, err := newPlugins(opts)
			if err != nil {
				runs[i] = Run{Options: opts, Err: err}
				return nil
			}

			s := solver.New(w, plugins)
			runErr := s.Solve(gctx)
			runs[i] = Run{Options: opts, Result: result.New(s), Err: runErr}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}
