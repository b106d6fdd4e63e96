package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridBitSetSmallAndPromoted(t *testing.T) {
	ix := NewMapped[string]()
	s := New[string](ix)

	for _, v := range []string{"a", "b", "c"} {
		ix.IndexOf(v)
		assert.True(t, s.Add(v))
	}
	assert.False(t, s.Add("a"), "re-adding an existing member must report no change")
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("z"))

	// Cross the small/bitmap promotion threshold and check membership
	// survives the switch in representation.
	for i := 0; i < smallThreshold+5; i++ {
		v := string(rune('A' + i))
		ix.IndexOf(v)
		s.Add(v)
	}
	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains(string(rune('A'))))
	assert.Equal(t, 3+smallThreshold+5, s.Len())
}

func TestHybridBitSetIterateVisitsEveryMember(t *testing.T) {
	ix := NewMapped[int]()
	s := New[int](ix)
	want := map[int]bool{}
	for i := 0; i < 20; i++ {
		ix.IndexOf(i)
		s.Add(i)
		want[i] = true
	}
	got := map[int]bool{}
	s.Iterate(func(v int) { got[v] = true })
	assert.Equal(t, want, got)
}

func TestAddAllDiffReturnsOnlyNewMembers(t *testing.T) {
	ix := NewMapped[string]()
	a := New[string](ix)
	b := New[string](ix)
	for _, v := range []string{"x", "y"} {
		ix.IndexOf(v)
		a.Add(v)
	}
	for _, v := range []string{"y", "z"} {
		ix.IndexOf(v)
		b.Add(v)
	}

	diff := a.AddAllDiff(b)
	require.NotNil(t, diff)
	assert.Equal(t, 1, diff.Len())
	assert.True(t, diff.Contains("z"))
	assert.True(t, a.Contains("z"))
	assert.True(t, a.Contains("x"))
}

func TestAddAllDiffNilOnNoChange(t *testing.T) {
	ix := NewMapped[string]()
	a := New[string](ix)
	b := New[string](ix)
	ix.IndexOf("p")
	a.Add("p")
	b.Add("p")

	diff := a.AddAllDiff(b)
	assert.Nil(t, diff, "re-adding an identical set must not allocate a diff")
}

func TestAddAllDiffNilInput(t *testing.T) {
	ix := NewMapped[string]()
	a := New[string](ix)
	assert.Nil(t, a.AddAllDiff(nil))
}

type implicitItem struct{ idx int }

func (i *implicitItem) Index() int { return i.idx }

func TestImplicitIndexer(t *testing.T) {
	var im Implicit[*implicitItem]
	a := &implicitItem{idx: 0}
	b := &implicitItem{idx: 3}
	im.Register(a)
	im.Register(b)
	assert.Equal(t, a, im.ObjectOf(0))
	assert.Equal(t, b, im.ObjectOf(3))
	assert.Equal(t, 4, im.Len())
}
