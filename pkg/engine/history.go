package engine

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

const historySize = MoveTypeCount * SquareCount * SquareCount

// historyTable scores quiet moves by how often they caused beta cutoffs,
// indexed by (move type, from, to).
type historyTable struct {
	buckets []int
}

func (h *historyTable) Clear() {
	if h.buckets == nil {
		h.buckets = make([]int, historySize)
		return
	}
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

func historyIndex(m Move) int {
	return (m.Type()*SquareCount+m.From())*SquareCount + m.To()
}

func (h *historyTable) Read(m Move) int {
	if h.buckets == nil {
		return 0
	}
	return h.buckets[historyIndex(m)]
}

func (h *historyTable) Update(m Move, depth int) {
	if h.buckets == nil {
		h.buckets = make([]int, historySize)
	}
	var idx = historyIndex(m)
	var v = h.buckets[idx] + depth*depth
	if v > 1_000_000 {
		v = 1_000_000
	}
	h.buckets[idx] = v
}
