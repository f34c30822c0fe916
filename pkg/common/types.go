package common

import "time"

const (
	White = 0
	Black = 1
)

func OtherColor(color int) int {
	return color ^ 1
}

// Square contents. Pieces are 1..6, walls 7..8; the raw board stores them
// signed, positive for White and negative for Black.
const (
	Empty int = iota
	Mason
	Catapult
	Lancer
	Pegasus
	Minister
	Sovereign
	WallHP1
	WallHP2
)

const (
	MoveNormal = iota
	MoveMasonConstruct
	MoveMasonCommand
	MoveCatapultMove
	MoveCatapultRangedDemolish
	MoveBastion
)

const MoveTypeCount = MoveBastion + 1

const (
	WinNone = iota
	WinRegicide
	WinEntombment
)

const MaxMoves = 4096

type Move int32

const MoveEmpty Move = 0

const squareMaskNone = 0x7f

// Moves pack type and up to four squares into an int32:
// from, to, aux1, aux2 take 7 bits each (0x7f = no square), type 3 bits.
func makeMove(moveType, from, to, aux1, aux2 int) Move {
	return Move(packSquare(from) |
		packSquare(to)<<7 |
		packSquare(aux1)<<14 |
		packSquare(aux2)<<21 |
		moveType<<28)
}

func packSquare(sq int) int {
	if sq == SquareNone {
		return squareMaskNone
	}
	return sq
}

func unpackSquare(v int) int {
	if v == squareMaskNone {
		return SquareNone
	}
	return v
}

func MakeNormalMove(from, to int) Move {
	return makeMove(MoveNormal, from, to, SquareNone, SquareNone)
}

func MakeConstructMove(mason, wallSq int) Move {
	return makeMove(MoveMasonConstruct, mason, wallSq, SquareNone, SquareNone)
}

func MakeCommandMove(mason, dest, wallSq int) Move {
	return makeMove(MoveMasonCommand, mason, dest, wallSq, SquareNone)
}

func MakeCatapultMove(from, to, demoSq int) Move {
	return makeMove(MoveCatapultMove, from, to, demoSq, SquareNone)
}

func MakeRangedDemolishMove(from, wallSq int) Move {
	return makeMove(MoveCatapultRangedDemolish, from, wallSq, SquareNone, SquareNone)
}

func MakeBastionMove(sovereign, minister, wall1, wall2 int) Move {
	return makeMove(MoveBastion, sovereign, minister, wall1, wall2)
}

func (m Move) Type() int {
	return int(m) >> 28 & 7
}

func (m Move) From() int {
	return unpackSquare(int(m) & squareMaskNone)
}

func (m Move) To() int {
	return unpackSquare(int(m) >> 7 & squareMaskNone)
}

func (m Move) Aux1() int {
	return unpackSquare(int(m) >> 14 & squareMaskNone)
}

func (m Move) Aux2() int {
	return unpackSquare(int(m) >> 21 & squareMaskNone)
}

type OrderedMove struct {
	Move Move
	Key  int
}

type LimitsType struct {
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	Depth          int
	Nodes          int
}

type SearchParams struct {
	Position *Position
	Limits   LimitsType
	Progress func(si SearchInfo)
}

type SearchInfo struct {
	Score    UciScore
	Depth    int
	Seldepth int
	Nodes    int64
	Time     time.Duration
	MainLine []Move
}

type UciScore struct {
	Centipawns int
	Mate       int
}
