package solver

import "github.com/cs-cat/Tai-e/pkg/cs"

// workItem is one worklist entry (spec.md §4.6): a pointer and the
// points-to delta waiting to be merged into it.
type workItem struct {
	p     cs.Pointer
	delta *cs.PointsToSet
}

// queue is a FIFO worklist. Order across independent pops is
// semantically irrelevant (spec.md §5: "commutative on the monotone
// lattice"), so a plain slice-backed queue is enough; no priority
// ordering is needed.
type queue struct {
	items []workItem
	head  int
}

func (q *queue) push(it workItem) { q.items = append(q.items, it) }

func (q *queue) empty() bool { return q.head >= len(q.items) }

func (q *queue) pop() workItem {
	it := q.items[q.head]
	q.items[q.head] = workItem{}
	q.head++
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append([]workItem(nil), q.items[q.head:]...)
		q.head = 0
	}
	return it
}
