package search

import (
	"container/heap"
	"sort"

	"github.com/zucenko/pathviz/model"
)

type openEntry struct {
	score int
	cell  model.Cell
	index int
}

// openHeap orders by score, then cell, so pops are deterministic.
type openHeap []*openEntry

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].cell.Less(h[j].cell)
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x interface{}) {
	e := x.(*openEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// openSet is the frontier: a heap plus a cell index for score updates.
type openSet struct {
	heap  openHeap
	cells map[model.Cell]*openEntry
}

func newOpenSet() *openSet {
	return &openSet{
		heap:  make(openHeap, 0),
		cells: make(map[model.Cell]*openEntry),
	}
}

func (o *openSet) Len() int {
	return len(o.heap)
}

func (o *openSet) contains(c model.Cell) bool {
	_, found := o.cells[c]
	return found
}

// push inserts c, or reorders it if it is already queued.
func (o *openSet) push(score int, c model.Cell) {
	if e, found := o.cells[c]; found {
		e.score = score
		heap.Fix(&o.heap, e.index)
		return
	}
	e := &openEntry{score: score, cell: c}
	heap.Push(&o.heap, e)
	o.cells[c] = e
}

func (o *openSet) pop() model.ScoredCell {
	e := heap.Pop(&o.heap).(*openEntry)
	delete(o.cells, e.cell)
	return model.ScoredCell{Score: e.score, Cell: e.cell}
}

// entries returns the frontier in pop order.
func (o *openSet) entries() []model.ScoredCell {
	out := make([]model.ScoredCell, len(o.heap))
	for i, e := range o.heap {
		out[i] = model.ScoredCell{Score: e.score, Cell: e.cell}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Cell.Less(out[j].Cell)
	})
	return out
}
