package engine

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

const qsMaxDepth = 4

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

// Mate scores are stored relative to the node so they stay consistent when
// probed at a different height.
func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}
	if v <= valueLoss {
		return v - height
	}
	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}
	if v <= valueLoss {
		return v + height
	}
	return v
}

func newUciScore(v int) UciScore {
	if v >= valueWin {
		return UciScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return UciScore{Mate: (-valueMate - v) / 2}
	} else {
		return UciScore{Centipawns: v}
	}
}

// For move ordering. The Sovereign capture must dominate everything.
var pieceValuesOrder = [...]int{0, 100, 550, 350, 400, 450, 100000}

func isQuietMove(p *Position, m Move) bool {
	return m.Type() == MoveNormal && p.RawAt(m.To()) == 0
}

func nonSovereignPieceCount(p *Position, color int) int {
	return p.PieceCount(color, Mason) + p.PieceCount(color, Catapult) +
		p.PieceCount(color, Lancer) + p.PieceCount(color, Pegasus) +
		p.PieceCount(color, Minister)
}

// moveHeuristic is the cheap ordering score: captures by victim value, then
// ranged demolish, then wall construction, quiet last.
func moveHeuristic(p *Position, m Move) int {
	var sc = 0

	switch m.Type() {
	case MoveNormal, MoveCatapultMove, MoveMasonCommand:
		var dstV = p.RawAt(m.To())
		if dstV != 0 {
			var a = dstV
			if a < 0 {
				a = -a
			}
			if int(a) <= Sovereign {
				sc += 10_000 + pieceValuesOrder[a]
			}
		}
	case MoveCatapultRangedDemolish:
		sc += 8_000
	case MoveMasonConstruct:
		sc += 6_000
	}

	if (m.Type() == MoveCatapultMove || m.Type() == MoveMasonCommand) && m.Aux1() != SquareNone {
		sc += 1_000
	}

	return sc
}
