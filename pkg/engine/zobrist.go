package engine

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

// The transposition table uses its own Zobrist family, independent of the
// Position's repetition-detection hash, so the two never share collision
// risk. Square keys are indexed by content channel:
// 0..5 white pieces, 6..7 white walls (hp1/hp2), 8..13 black pieces,
// 14..15 black walls.
var ttKeys struct {
	sq            [SquareCount][16]uint64
	turn          uint64
	bastion       [2]uint64
	wallBuiltLast [2]uint64
}

func init() {
	var seed uint64 = 0xC1ADEC1
	for sq := 0; sq < SquareCount; sq++ {
		for ch := 0; ch < 16; ch++ {
			ttKeys.sq[sq][ch] = SplitMix64(&seed)
		}
	}
	ttKeys.turn = SplitMix64(&seed)
	ttKeys.bastion[White] = SplitMix64(&seed)
	ttKeys.bastion[Black] = SplitMix64(&seed)
	ttKeys.wallBuiltLast[White] = SplitMix64(&seed)
	ttKeys.wallBuiltLast[Black] = SplitMix64(&seed)
}

func ttChannel(v int8) int {
	var base = 0
	var a = int(v)
	if v < 0 {
		base = 8
		a = -a
	}
	if a <= Sovereign {
		return base + a - Mason
	}
	return base + 6 + (a - WallHP1)
}

func hashPosition(p *Position) uint64 {
	var h uint64
	for sq := 0; sq < SquareCount; sq++ {
		var v = p.RawAt(sq)
		if v == 0 {
			continue
		}
		h ^= ttKeys.sq[sq][ttChannel(v)]
	}
	if p.Turn == Black {
		h ^= ttKeys.turn
	}
	if p.BastionRight(White) {
		h ^= ttKeys.bastion[White]
	}
	if p.BastionRight(Black) {
		h ^= ttKeys.bastion[Black]
	}
	if p.WallBuiltLast(White) {
		h ^= ttKeys.wallBuiltLast[White]
	}
	if p.WallBuiltLast(Black) {
		h ^= ttKeys.wallBuiltLast[Black]
	}
	return h
}

// hashAfterMake advances a TT key incrementally from the Undo record.
// p must be the position after MakeMove.
func hashAfterMake(h uint64, p *Position, u *Undo) uint64 {
	for i := 0; i < u.SquareCount; i++ {
		var sq = u.Squares[i]
		var oldV = u.PrevValues[i]
		var newV = p.RawAt(sq)
		if oldV != 0 {
			h ^= ttKeys.sq[sq][ttChannel(oldV)]
		}
		if newV != 0 {
			h ^= ttKeys.sq[sq][ttChannel(newV)]
		}
	}

	if u.PrevTurn != p.Turn {
		h ^= ttKeys.turn
	}
	if u.PrevBastionRight[White] != p.BastionRight(White) {
		h ^= ttKeys.bastion[White]
	}
	if u.PrevBastionRight[Black] != p.BastionRight(Black) {
		h ^= ttKeys.bastion[Black]
	}
	if u.PrevWallBuiltLast[White] != p.WallBuiltLast(White) {
		h ^= ttKeys.wallBuiltLast[White]
	}
	if u.PrevWallBuiltLast[Black] != p.WallBuiltLast(Black) {
		h ^= ttKeys.wallBuiltLast[Black]
	}

	return h
}
