package result

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-cat/Tai-e/internal/ir"
	"github.com/cs-cat/Tai-e/internal/toyir"
	"github.com/cs-cat/Tai-e/pkg/options"
	"github.com/cs-cat/Tai-e/pkg/solver"
)

func buildSimpleResult(t *testing.T) *Result {
	t.Helper()
	b := toyir.NewBuilder()
	object := b.LibraryClass("java.lang.Object", nil)
	main := b.Class("demo.Main", object)
	mm := b.Method(main, "main", nil, nil, true)
	x := b.Local(mm, "x", ir.ObjectType)
	b.SetBody(mm, []ir.Stmt{
		&ir.New{Result: x, Type: &ir.ClassType{ClassName: object.Name}},
		&ir.Return{},
	})
	prog := &ir.Program{Hierarchy: b.H, EntryMethods: []*ir.Method{mm}}
	w, err := solver.NewWorld(prog, options.Default(), nil)
	require.NoError(t, err)
	s := solver.New(w, nil)
	require.NoError(t, s.Solve(context.Background()))
	return New(s)
}

func TestDumpFormatUsesCommaSeparatedBracketedObjects(t *testing.T) {
	r := buildSimpleResult(t)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "variables:\n")
	assert.Contains(t, out, "static fields:\n")
	assert.Contains(t, out, "instance fields:\n")
	assert.Contains(t, out, "array indexes:\n")

	var varLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " -> [") {
			varLine = line
			break
		}
	}
	require.NotEmpty(t, varLine, "expected at least one pointer -> [objs] line")
	assert.NotContains(t, varLine, " -> [ ", "objects in a dump line must be comma-, not space-, separated")
}

func TestDumpCompareRoundTripHasNoMismatches(t *testing.T) {
	r := buildSimpleResult(t)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, r))

	expected, err := ParseDump(&buf)
	require.NoError(t, err)

	err = Compare(r, expected)
	assert.NoError(t, err, "dumping and re-loading the same result must compare clean")
}

// TestCompareReportsMissingEntryAsMismatch mirrors scenario S6: an
// expected file missing one pointer's line produces exactly one
// mismatch of the documented shape.
func TestCompareReportsMissingEntryAsMismatch(t *testing.T) {
	r := buildSimpleResult(t)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, r))
	expected, err := ParseDump(&buf)
	require.NoError(t, err)

	var removedKey string
	for k := range expected {
		removedKey = k
		break
	}
	require.NotEmpty(t, removedKey)
	delete(expected, removedKey)

	err = Compare(r, expected)
	require.Error(t, err)
	cmpErr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	assert.Contains(t, cmpErr.Error(), "1 points-to mismatch")
}

func TestParseDumpSkipsHeadersAndTaintLines(t *testing.T) {
	text := "variables:\nv -> [o1,o2]\n\nDetected 1 taint flow(s):\nTaintFlow{a -> b}\n"
	parsed, err := ParseDump(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, []string{"o1", "o2"}, parsed["v"])
}
