// Package errs defines the engine's error taxonomy (spec.md §7) and the
// exit-code mapping a CLI front-end applies to it (spec.md §6).
package errs

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by the solver when its context is cancelled
// before the worklist drains (spec.md §5 "on cancellation the result
// contains partial, sound-under-the-assumption... sets").
var ErrCancelled = errors.New("pointer analysis cancelled before reaching a fixed point")

// ExitCode classifies a terminal error for a CLI front-end.
type ExitCode int

const (
	ExitOK                ExitCode = 0
	ExitMismatch          ExitCode = 1
	ExitConfigError       ExitCode = 2
	ExitInternal          ExitCode = 3
)

// PluginError wraps a panic or error raised from inside a plug-in
// callback with the plug-in's identity, then is re-raised as fatal
// (spec.md §7: "Wrapped with plug-in identity and re-raised as a fatal
// AnalysisException").
type PluginError struct {
	Plugin string
	Event  string
	Cause  error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %q failed during %s: %v", e.Plugin, e.Event, e.Cause)
}

func (e *PluginError) Unwrap() error { return e.Cause }

// Mismatch is one entry of a comparison-mode mismatch (spec.md §7):
// expected and given are nil when the corresponding side had no entry
// for Pointer.
type Mismatch struct {
	Pointer  string
	Expected []string // nil = absent
	Given    []string // nil = absent
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s, expected: %s, given: %s", m.Pointer, formatSide(m.Expected), formatSide(m.Given))
}

func formatSide(side []string) string {
	if side == nil {
		return "null"
	}
	return fmt.Sprintf("%v", side)
}

// ComparisonError aggregates every Mismatch found between a run's result
// and an expected-file (spec.md §7 "raised as a single aggregate error").
type ComparisonError struct {
	Mismatches []Mismatch
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%d points-to mismatch(es) against expected file", len(e.Mismatches))
}

// ExitCodeFor maps a terminal error (nil meaning success) to the exit
// code a CLI front-end should use (spec.md §6).
func ExitCodeFor(err error) ExitCode {
	switch err.(type) {
	case nil:
		return ExitOK
	case *ComparisonError:
		return ExitMismatch
	default:
		if isConfigError(err) {
			return ExitConfigError
		}
		return ExitInternal
	}
}

// isConfigError recognises pkg/options.ConfigError by its message prefix
// rather than its type, keeping this package import-free of pkg/options
// so every other package (including options) can depend on errs.
func isConfigError(err error) bool {
	const prefix = "configuration error: "
	msg := err.Error()
	return len(msg) >= len(prefix) && msg[:len(prefix)] == prefix
}
