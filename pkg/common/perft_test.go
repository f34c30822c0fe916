package common

import (
	"testing"
)

// Depth-1 perft from the initial position, counted by hand:
// 9 mason pushes, 7 constructs (the rook-file masons are attacked by the
// enemy Lancers through their own mason screen), 25 commands
// (5 eligible masons x (1 step + 4 builds)), 4 Pegasus leaps and
// 12 Lancer moves.
func TestPerftInitial(t *testing.T) {
	var p = InitialPosition()
	var nodes = Perft(&p, 1)
	if nodes != 57 {
		t.Errorf("perft(1) = %v, want 57", nodes)
	}
}

func TestPerftDivideConsistent(t *testing.T) {
	var tests = []struct {
		fen   string
		depth int
	}{
		{InitialPositionFen, 2},
		{"s8/9/1M7/9/4S4/9/9/9/9 w - - 0 1", 3},
		{"9/9/9/9/3IS4/9/9/9/4s4 w B - 0 1", 2},
	}
	for i, test := range tests {
		var p, err = NewPositionFromFEN(test.fen)
		if err != nil {
			t.Fatal(i, err)
		}
		var total = Perft(&p, test.depth)
		var sum int64
		for _, entry := range PerftDivide(&p, test.depth) {
			sum += entry.Nodes
		}
		if sum != total {
			t.Error(i, test.fen, sum, total)
		}
		// The walk must leave the position untouched.
		if p.String() != test.fen {
			t.Error(i, "position changed:", p.String())
		}
	}
}

func TestPerftLeavesHistoryBalanced(t *testing.T) {
	var p = InitialPosition()
	var before = p.HistoryLen()
	Perft(&p, 3)
	if p.HistoryLen() != before {
		t.Errorf("history length %v, want %v", p.HistoryLen(), before)
	}
}
