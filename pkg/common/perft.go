package common

import "time"

// Perft counts leaf nodes of the full action tree to the given depth. It
// exercises generation and make/unmake symmetry.
func Perft(p *Position, depth int) int64 {
	if depth <= 0 {
		return 1
	}

	var buffer [MaxMoves]Move
	var ml = p.GenerateMoves(buffer[:])
	if len(ml) == 0 {
		return 0
	}
	if depth == 1 {
		return int64(len(ml))
	}

	var nodes int64
	var u Undo
	for _, move := range ml {
		p.MakeMove(move, &u)
		nodes += Perft(p, depth-1)
		p.UnmakeMove(&u)
	}
	return nodes
}

type PerftDivideEntry struct {
	Move  Move
	Nodes int64
}

func PerftDivide(p *Position, depth int) []PerftDivideEntry {
	if depth <= 0 {
		return nil
	}

	var buffer [MaxMoves]Move
	var ml = p.GenerateMoves(buffer[:])
	var result = make([]PerftDivideEntry, 0, len(ml))

	var u Undo
	for _, move := range ml {
		p.MakeMove(move, &u)
		var nodes = Perft(p, depth-1)
		p.UnmakeMove(&u)
		result = append(result, PerftDivideEntry{Move: move, Nodes: nodes})
	}
	return result
}

type PerftStats struct {
	Nodes   int64
	Seconds float64
	NPS     float64
}

func PerftTimed(p *Position, depth int) PerftStats {
	var start = time.Now()
	var nodes = Perft(p, depth)
	var seconds = time.Since(start).Seconds()

	var st = PerftStats{Nodes: nodes, Seconds: seconds}
	if seconds > 0 {
		st.NPS = float64(nodes) / seconds
	}
	return st
}
