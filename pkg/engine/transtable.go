package engine

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

const (
	boundExact = iota
	boundLower
	boundUpper
)

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

// 24 bytes
type transEntry struct {
	key   uint64
	move  Move
	score int32
	depth int16
	bound uint8
}

// transTable is a single-writer open-addressed table. Concurrent searches
// must run with the table disabled; resizing and clearing require that no
// search is in flight.
type transTable struct {
	megabytes int
	entries   []transEntry
	mask      uint64
}

func newTransTable(megabytes int) *transTable {
	if megabytes < 1 {
		megabytes = 1
	}
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 24)
	if size < 1024 {
		size = 1024
	}
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint64(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	var entry = &tt.entries[key&tt.mask]
	if entry.key == key {
		depth = int(entry.depth)
		score = int(entry.score)
		bound = int(entry.bound)
		move = entry.move
		ok = true
	}
	return
}

// Update replaces on empty slot, same key, or a search at least as deep.
func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var entry = &tt.entries[key&tt.mask]
	if entry.key == 0 || entry.key == key || depth >= int(entry.depth) {
		entry.key = key
		entry.move = move
		entry.score = int32(score)
		entry.depth = int16(depth)
		entry.bound = uint8(bound)
	}
}
