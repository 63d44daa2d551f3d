package inmemory

import (
	"container/heap"

	"github.com/UkralStul/socialgraph/internal/domain"
)

// postStream отдает посты от новых к старым; nil - конец.
type postStream interface {
	next() *domain.Post
}

type timelineStream struct {
	list []*domain.Post
	pos  int
}

func newTimelineStream(list []*domain.Post) *timelineStream {
	return &timelineStream{list: list, pos: len(list) - 1}
}

func (t *timelineStream) next() *domain.Post {
	if t.pos < 0 {
		return nil
	}
	p := t.list[t.pos]
	t.pos--
	return p
}

// mergeStream сливает упорядоченные ленты авторов (fan-out) в одну через кучу.
type mergeStream struct {
	h cursorHeap
}

type authorCursor struct {
	list []*domain.Post
	pos  int
}

func (c *authorCursor) head() *domain.Post { return c.list[c.pos] }

type cursorHeap []*authorCursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return domain.Newer(h[i].head(), h[j].head()) }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)        { *h = append(*h, x.(*authorCursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

func newMergeStream(lists [][]*domain.Post) *mergeStream {
	m := &mergeStream{h: make(cursorHeap, 0, len(lists))}
	for _, l := range lists {
		m.h = append(m.h, &authorCursor{list: l, pos: len(l) - 1})
	}
	heap.Init(&m.h)
	return m
}

func (m *mergeStream) next() *domain.Post {
	if m.h.Len() == 0 {
		return nil
	}
	top := m.h[0]
	p := top.head()
	top.pos--
	if top.pos < 0 {
		heap.Pop(&m.h)
	} else {
		heap.Fix(&m.h, 0)
	}
	return p
}
