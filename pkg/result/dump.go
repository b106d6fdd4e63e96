package result

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/pkg/cs"
	"github.com/cs-cat/Tai-e/pkg/plugin/taint"
)

// entry is one dump line's (pointer, points-to) pair, already rendered to
// its final textual form.
type entry struct {
	pointer string
	objs    []string
}

func entriesFor[P cs.Pointer](ps []P) []entry {
	out := make([]entry, 0, len(ps))
	for _, p := range ps {
		objs := PointsTo(p)
		strs := make([]string, len(objs))
		for i, o := range objs {
			strs[i] = o.String()
		}
		out = append(out, entry{pointer: p.String(), objs: strs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pointer < out[j].pointer })
	return out
}

func writeSection(w *bufio.Writer, title string, entries []entry) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(w, "%s -> [%s]\n", e.pointer, strings.Join(e.objs, ","))
	}
	fmt.Fprintln(w)
}

// Dump writes the full context-sensitive dump (spec.md §6 "Dump format"):
// one section per pointer class, sorted by toString, separated by blank
// lines, terminated by the taint-flow section if the result carries one.
func Dump(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	writeSection(bw, "variables", entriesFor(r.CSVars()))
	writeSection(bw, "static fields", entriesFor(r.StaticFields()))
	writeSection(bw, "instance fields", entriesFor(r.InstanceFields()))
	writeSection(bw, "array indexes", entriesFor(r.ArrayIndexes()))
	writeTaintSection(bw, r)
	return bw.Flush()
}

func writeTaintSection(w *bufio.Writer, r *Result) {
	v, ok := r.Named("Taint")
	if !ok {
		return
	}
	flows, ok := v.([]taint.Flow)
	if !ok {
		return
	}
	fmt.Fprintf(w, "Detected %d taint flow(s):\n", len(flows))
	for _, f := range flows {
		fmt.Fprintln(w, f.String())
	}
}

// DumpCI writes the context-insensitive dump (spec.md §6 "dump-ci"): every
// CSVar collapses onto its underlying *ir.Var, and every CSObj in a
// points-to set collapses onto its underlying *cs.Obj, unioning points-to
// sets that only differed by context.
func DumpCI(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	writeSection(bw, "variables", ciVarEntries(r.CSVars()))
	writeSection(bw, "static fields", ciStaticFieldEntries(r.StaticFields()))
	writeSection(bw, "instance fields", ciInstanceFieldEntries(r.InstanceFields()))
	writeSection(bw, "array indexes", ciArrayIndexEntries(r.ArrayIndexes()))
	writeTaintSection(bw, r)
	return bw.Flush()
}

func ciVarEntries(vars []*cs.CSVar) []entry {
	byVar := make(map[*ir.Var]map[string]bool)
	for _, v := range vars {
		set, ok := byVar[v.Var()]
		if !ok {
			set = make(map[string]bool)
			byVar[v.Var()] = set
		}
		for _, o := range PointsTo(v) {
			set[o.Obj().String()] = true
		}
	}
	out := make([]entry, 0, len(byVar))
	for v, set := range byVar {
		out = append(out, entry{pointer: v.String(), objs: sortedKeys(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pointer < out[j].pointer })
	return out
}

func ciStaticFieldEntries(fields []*cs.StaticField) []entry {
	out := make([]entry, 0, len(fields))
	for _, f := range fields {
		set := make(map[string]bool)
		for _, o := range PointsTo(f) {
			set[o.Obj().String()] = true
		}
		out = append(out, entry{pointer: f.String(), objs: sortedKeys(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pointer < out[j].pointer })
	return out
}

func ciInstanceFieldEntries(fields []*cs.InstanceField) []entry {
	type key struct {
		obj *cs.Obj
		f   *ir.Field
	}
	byKey := make(map[key]map[string]bool)
	for _, f := range fields {
		k := key{f.Base().Obj(), f.Field()}
		set, ok := byKey[k]
		if !ok {
			set = make(map[string]bool)
			byKey[k] = set
		}
		for _, o := range PointsTo(f) {
			set[o.Obj().String()] = true
		}
	}
	out := make([]entry, 0, len(byKey))
	for k, set := range byKey {
		out = append(out, entry{pointer: k.obj.String() + "." + k.f.Name, objs: sortedKeys(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pointer < out[j].pointer })
	return out
}

func ciArrayIndexEntries(indexes []*cs.ArrayIndex) []entry {
	byObj := make(map[*cs.Obj]map[string]bool)
	for _, a := range indexes {
		k := a.Base().Obj()
		set, ok := byObj[k]
		if !ok {
			set = make(map[string]bool)
			byObj[k] = set
		}
		for _, o := range PointsTo(a) {
			set[o.Obj().String()] = true
		}
	}
	out := make([]entry, 0, len(byObj))
	for k, set := range byObj {
		out = append(out, entry{pointer: k.String() + "[*]", objs: sortedKeys(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pointer < out[j].pointer })
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
