package result

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/cs-cat/Tai-e/pkg/errs"
)

// ParseDump reads a dump in the format Dump/DumpCI write (spec.md §6) and
// returns pointer -> sorted points-to-string map. Section headers and blank
// lines (which have no " -> ") and the taint-flow section's TaintFlow{...}
// lines are skipped.
func ParseDump(r io.Reader) (map[string][]string, error) {
	out := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "TaintFlow{") {
			continue
		}
		idx := strings.Index(line, " -> ")
		if idx < 0 {
			continue
		}
		pointer := line[:idx]
		rest := strings.TrimSpace(line[idx+len(" -> "):])
		rest = strings.TrimPrefix(rest, "[")
		rest = strings.TrimSuffix(rest, "]")
		var objs []string
		if rest != "" {
			objs = strings.Split(rest, ",")
		}
		sort.Strings(objs)
		out[pointer] = objs
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadExpected reads an expected-file for comparison mode (spec.md §6
// "expected-file: enable comparison mode").
func LoadExpected(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDump(f)
}

// Compare dumps r (context-sensitively) and diffs it against expected,
// returning a *errs.ComparisonError aggregating every mismatch (spec.md
// §7 "raised as a single aggregate error"), or nil if every pointer's
// points-to set matches exactly.
//
// Each pointer's two sides are compared with cmp.Equal rather than a
// manual slice-equality loop; ParseDump sorts both sides, so a set that
// differs only in element order still counts as a match.
func Compare(r *Result, expected map[string][]string) error {
	var buf bytes.Buffer
	if err := Dump(&buf, r); err != nil {
		return err
	}
	given, err := ParseDump(&buf)
	if err != nil {
		return err
	}

	keys := make(map[string]bool, len(expected)+len(given))
	for k := range expected {
		keys[k] = true
	}
	for k := range given {
		keys[k] = true
	}

	var mismatches []errs.Mismatch
	for k := range keys {
		exp, expOK := expected[k]
		got, gotOK := given[k]
		if cmp.Equal(exp, got) {
			continue
		}
		m := errs.Mismatch{Pointer: k}
		if expOK {
			m.Expected = exp
		}
		if gotOK {
			m.Given = got
		}
		mismatches = append(mismatches, m)
	}
	if len(mismatches) == 0 {
		return nil
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Pointer < mismatches[j].Pointer })
	return &errs.ComparisonError{Mismatches: mismatches}
}
