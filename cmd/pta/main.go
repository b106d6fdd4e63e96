// Command pta is the pointer analysis engine's CLI front-end: it parses
// options with pflag, builds the bundled demo program (spec.md §1 treats a
// real class-file/bytecode front-end as out of scope), runs the solver,
// and prints or compares the result, mapping the outcome to spec.md §6's
// exit codes.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/errs"
	"github.com/cs-cat/Tai-e/pkg/options"
	"github.com/cs-cat/Tai-e/pkg/plugin"
	"github.com/cs-cat/Tai-e/pkg/plugin/dynamic"
	"github.com/cs-cat/Tai-e/pkg/plugin/methodtype"
	"github.com/cs-cat/Tai-e/pkg/plugin/reflection"
	"github.com/cs-cat/Tai-e/pkg/plugin/resultproc"
	"github.com/cs-cat/Tai-e/pkg/plugin/taint"
	"github.com/cs-cat/Tai-e/pkg/result"
	"github.com/cs-cat/Tai-e/pkg/solver"
	"github.com/cs-cat/Tai-e/pkg/sweep"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cs                    = pflag.String("cs", "ci", "context-sensitivity policy: ci, 1-call, 2-call, 1-obj, 2-obj, 1-type, 2-type")
		onlyApp               = pflag.Bool("only-app", false, "restrict reachability to application classes")
		mergeStringObjects    = pflag.Bool("merge-string-objects", false, "merge all String objects into one")
		mergeStringBuilders   = pflag.Bool("merge-string-builders", false, "merge StringBuilder/StringBuffer objects by type")
		mergeExceptionObjects = pflag.Bool("merge-exception-objects", false, "merge Throwable subtype objects by type")
		dump                  = pflag.Bool("dump", false, "print the context-sensitive points-to dump")
		dumpCI                = pflag.Bool("dump-ci", false, "print the context-insensitive points-to dump")
		expectedFile          = pflag.String("expected-file", "", "compare the run's result against this dump file")
		taintConfig           = pflag.String("taint-config", "", "path to a taint source/sink specification")
		plugins               = pflag.StringSlice("plugins", nil, "built-in plug-ins to enable (methodtype,dynamic,reflection,taint,resultproc); default: all but taint, plus taint when --taint-config is set")
		timeLimit             = pflag.Duration("time-limit", 0, "abort the solver after this long and report a partial result")
		sweepPolicies         = pflag.StringSlice("sweep", nil, "comma-separated list of cs policies to run concurrently and compare")
	)
	pflag.Parse()

	logger := zap.NewExample().Sugar()
	defer logger.Sync()

	base := options.Options{
		CS:                    options.CSPolicy(*cs),
		OnlyApp:               *onlyApp,
		MergeStringObjects:    *mergeStringObjects,
		MergeStringBuilders:   *mergeStringBuilders,
		MergeExceptionObjects: *mergeExceptionObjects,
		Dump:                  *dump,
		DumpCI:                *dumpCI,
		ExpectedFile:          *expectedFile,
		TaintConfig:           *taintConfig,
		Plugins:               *plugins,
		TimeLimit:             *timeLimit,
	}

	prog := buildDemoProgram()

	if len(*sweepPolicies) > 0 {
		return runSweep(prog, *sweepPolicies, base, logger)
	}
	return runSingle(prog, base, logger)
}

func runSingle(prog *ir.Program, base options.Options, logger *zap.SugaredLogger) int {
	w, err := solver.NewWorld(prog, base, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(errs.ExitCodeFor(err))
	}

	plugins, tp, err := buildPlugins(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(errs.ExitCodeFor(err))
	}

	s := solver.New(w, plugins)

	ctx := context.Background()
	var cancel context.CancelFunc
	if base.TimeLimit > 0 {
		ctx, cancel = context.WithTimeout(ctx, base.TimeLimit)
		defer cancel()
	}

	runErr := s.Solve(ctx)
	res := result.New(s)
	if tp != nil {
		res.SetNamed("Taint", tp.Flows())
	}

	if runErr != nil && runErr != errs.ErrCancelled {
		fmt.Fprintln(os.Stderr, runErr)
		return int(errs.ExitCodeFor(runErr))
	}

	if base.ExpectedFile != "" {
		expected, err := result.LoadExpected(base.ExpectedFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return int(errs.ExitCodeFor(err))
		}
		if cmpErr := result.Compare(res, expected); cmpErr != nil {
			fmt.Fprintln(os.Stderr, cmpErr)
			return int(errs.ExitCodeFor(cmpErr))
		}
		fmt.Println("OK: result matches expected file")
		return int(errs.ExitOK)
	}

	if base.DumpCI {
		result.DumpCI(os.Stdout, res)
	}
	if base.Dump || (!base.DumpCI && base.ExpectedFile == "") {
		result.Dump(os.Stdout, res)
	}
	return int(errs.ExitCodeFor(runErr))
}

func runSweep(prog *ir.Program, policiesCSV []string, base options.Options, logger *zap.SugaredLogger) int {
	var policies []options.CSPolicy
	for _, raw := range policiesCSV {
		for _, s := range strings.Split(raw, ",") {
			if s != "" {
				policies = append(policies, options.CSPolicy(s))
			}
		}
	}

	runs, err := sweep.Sweep(context.Background(), prog, policies, base, logger, func(opts options.Options) ([]plugin.Plugin, error) {
		ps, _, err := buildPlugins(opts)
		return ps, err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(errs.ExitInternal)
	}

	worst := errs.ExitOK
	for _, r := range runs {
		fmt.Printf("=== cs=%s ===\n", r.Options.CS)
		if r.Err != nil && r.Err != errs.ErrCancelled {
			fmt.Fprintln(os.Stderr, r.Err)
			if code := errs.ExitCodeFor(r.Err); code > worst {
				worst = code
			}
			continue
		}
		result.Dump(os.Stdout, r.Result)
	}
	return int(worst)
}

func buildPlugins(opts options.Options) ([]plugin.Plugin, *taint.Plugin, error) {
	names := opts.Plugins
	if len(names) == 0 {
		names = []string{"methodtype", "dynamic", "reflection", "resultproc"}
		if opts.TaintConfig != "" {
			names = append(names, "taint")
		}
	}

	var out []plugin.Plugin
	var tp *taint.Plugin
	for _, name := range names {
		switch name {
		case "methodtype":
			out = append(out, methodtype.New())
		case "dynamic":
			out = append(out, dynamic.New())
		case "reflection":
			out = append(out, reflection.New())
		case "resultproc":
			out = append(out, resultproc.New())
		case "taint":
			if opts.TaintConfig == "" {
				return nil, nil, &options.ConfigError{Option: "plugins", Reason: "taint plug-in enabled but taint-config is empty"}
			}
			cfg, err := taint.LoadConfigFile(opts.TaintConfig)
			if err != nil {
				return nil, nil, err
			}
			tp = taint.New(cfg)
			out = append(out, tp)
		default:
			return nil, nil, &options.ConfigError{Option: "plugins", Reason: fmt.Sprintf("unrecognised plug-in %q", name)}
		}
	}
	return out, tp, nil
}
