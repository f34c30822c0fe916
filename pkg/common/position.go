package common

// Position is the full game state. The raw board is the source of truth;
// bitboards, wall tokens, sovereign squares and the Zobrist key are derived
// and kept in sync incrementally. Every board write goes through
// setSquareRaw, which flips the bitboards and XORs the hash atomically, so
// Key always equals a from-scratch rebuild.
type Position struct {
	board         [SquareCount]int8
	pieceBB       [2][Sovereign + 1]Bitboard
	colorBB       [2]Bitboard
	wallBB        [2]Bitboard
	reinforcedBB  [2]Bitboard
	bastionRight  [2]bool
	wallBuiltLast [2]bool
	sovereignSq   [2]int
	wallTokens    [2]int
	winner        int
	winReason     int
	history       []uint64

	Turn     int
	Halfmove int
	Fullmove int
	Key      uint64
}

// Undo holds everything MakeMove changed: globals restored wholesale plus the
// rewritten squares with their previous values (at most 6 per action).
type Undo struct {
	PrevTurn          int
	PrevBastionRight  [2]bool
	PrevWallBuiltLast [2]bool
	prevSovereignSq   [2]int
	prevWallTokens    [2]int
	prevHalfmove      int
	prevFullmove      int
	prevWinner        int
	prevWinReason     int

	Squares     [6]int
	PrevValues  [6]int8
	SquareCount int
}

type NullUndo struct {
	PrevTurn     int
	prevFullmove int
}

func NewPosition() Position {
	var p = Position{
		Turn:     White,
		Fullmove: 1,
		winner:   SquareNone,
	}
	p.bastionRight[White] = true
	p.bastionRight[Black] = true
	p.sovereignSq[White] = SquareNone
	p.sovereignSq[Black] = SquareNone
	p.rebuildDerived()
	return p
}

var initialBackRank = [BoardWidth]int{
	Catapult, Lancer, Pegasus, Minister, Sovereign, Minister, Pegasus, Lancer, Catapult,
}

func InitialPosition() Position {
	var p = NewPosition()
	for col := 0; col < BoardWidth; col++ {
		p.board[MakeSquare(0, col)] = makePieceValue(Black, initialBackRank[col])
		p.board[MakeSquare(1, col)] = makePieceValue(Black, Mason)
		p.board[MakeSquare(7, col)] = makePieceValue(White, Mason)
		p.board[MakeSquare(8, col)] = makePieceValue(White, initialBackRank[col])
	}
	p.rebuildDerived()
	return p
}

// Clone copies the position including its private hash history.
func (p *Position) Clone() Position {
	var result = *p
	result.history = make([]uint64, len(p.history))
	copy(result.history, p.history)
	return result
}

func (p *Position) RawAt(sq int) int8 {
	return p.board[sq]
}

func (p *Position) BastionRight(color int) bool {
	return p.bastionRight[color]
}

// WallBuiltLast reports whether color built a wall on their previous turn,
// which blocks building on this one.
func (p *Position) WallBuiltLast(color int) bool {
	return p.wallBuiltLast[color]
}

// WallTokens is the HP sum over all walls of color (reinforced counts as 2).
func (p *Position) WallTokens(color int) int {
	return p.wallTokens[color]
}

func (p *Position) SovereignSquare(color int) int {
	return p.sovereignSq[color]
}

func (p *Position) PieceCount(color, piece int) int {
	return p.pieceBB[color][piece].PopCount()
}

func (p *Position) PiecesByColor(color int) Bitboard {
	return p.colorBB[color]
}

func (p *Position) PieceSquares(color, piece int) Bitboard {
	return p.pieceBB[color][piece]
}

func (p *Position) Walls(color int) Bitboard {
	return p.wallBB[color]
}

func (p *Position) GameOver() bool {
	return p.winner != SquareNone
}

// Winner returns the winning color, or SquareNone while the game runs.
func (p *Position) Winner() int {
	return p.winner
}

func (p *Position) WinReason() int {
	return p.winReason
}

func (p *Position) HistoryLen() int {
	return len(p.history)
}

// HasDominance reports whether color's Sovereign stands on a Keep square.
func (p *Position) HasDominance(color int) bool {
	return IsKeepSquare(p.sovereignSq[color])
}

func (p *Position) masonMoveRange(masonSq, color int) int {
	if p.HasDominance(color) && IsKeepSquare(masonSq) {
		return 2
	}
	return 1
}

func (p *Position) ministerMoveRange(ministerSq, color int) int {
	if p.HasDominance(color) && IsKeepSquare(ministerSq) {
		return 3
	}
	return 2
}

// Siege Attrition: more than 15 wall HP immobilizes the Sovereign.
func (p *Position) sovereignMoveRange(sovSq, color int) int {
	if p.wallTokens[color] > 15 {
		return 0
	}
	if p.HasDominance(color) && IsKeepSquare(sovSq) {
		return 2
	}
	return 1
}

// IsEntombed reports whether every in-bounds 8-neighbor of the victim's
// Sovereign is a wall of either color. Board edges count as blocked.
func (p *Position) IsEntombed(victim int) bool {
	var sovSq = p.sovereignSq[victim]
	if sovSq == SquareNone {
		return false
	}
	for _, adj := range kingTargets[sovSq] {
		if !isWallValue(p.board[adj]) {
			return false
		}
	}
	return true
}

// IsRepetition reports threefold repetition: the current key already appears
// twice in the hash history.
func (p *Position) IsRepetition() bool {
	var count = 0
	for _, h := range p.history {
		if h == p.Key {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func (p *Position) rebuildDerived() {
	for color := 0; color < 2; color++ {
		p.colorBB[color] = Bitboard{}
		p.wallBB[color] = Bitboard{}
		p.reinforcedBB[color] = Bitboard{}
		for piece := Mason; piece <= Sovereign; piece++ {
			p.pieceBB[color][piece] = Bitboard{}
		}
		p.wallTokens[color] = 0
		p.sovereignSq[color] = SquareNone
	}

	p.Key = 0
	if p.Turn == Black {
		p.Key ^= turnKey
	}
	for color := 0; color < 2; color++ {
		if p.bastionRight[color] {
			p.Key ^= bastionKeys[color]
		}
		if p.wallBuiltLast[color] {
			p.Key ^= wallBuiltLastKeys[color]
		}
	}

	for sq := 0; sq < SquareCount; sq++ {
		var v = p.board[sq]
		if v == 0 {
			continue
		}
		var color = colorOf(v)
		if isPieceValue(v) {
			var piece = pieceOf(v)
			p.pieceBB[color][piece].Set(sq)
			p.colorBB[color].Set(sq)
			if piece == Sovereign {
				p.sovereignSq[color] = sq
			}
			p.Key ^= pieceKeys[color][piece-Mason][sq]
		} else {
			var hp = wallHP(v)
			p.wallBB[color].Set(sq)
			p.wallTokens[color] += hp
			if hp == 2 {
				p.reinforcedBB[color].Set(sq)
			}
			p.Key ^= wallKeys[color][hp-1][sq]
		}
	}
}

// setSquareRaw is the single write primitive: it XORs the old content's key
// out, the new content's key in, and keeps every bitboard consistent.
func (p *Position) setSquareRaw(sq int, v int8) {
	var old = p.board[sq]
	if old == v {
		return
	}

	if old != 0 {
		var color = colorOf(old)
		if isPieceValue(old) {
			var piece = pieceOf(old)
			p.pieceBB[color][piece].Reset(sq)
			p.colorBB[color].Reset(sq)
			p.Key ^= pieceKeys[color][piece-Mason][sq]
		} else {
			var hp = wallHP(old)
			p.wallBB[color].Reset(sq)
			if hp == 2 {
				p.reinforcedBB[color].Reset(sq)
			}
			p.Key ^= wallKeys[color][hp-1][sq]
		}
	}

	p.board[sq] = v

	if v != 0 {
		var color = colorOf(v)
		if isPieceValue(v) {
			var piece = pieceOf(v)
			p.pieceBB[color][piece].Set(sq)
			p.colorBB[color].Set(sq)
			p.Key ^= pieceKeys[color][piece-Mason][sq]
		} else {
			var hp = wallHP(v)
			p.wallBB[color].Set(sq)
			if hp == 2 {
				p.reinforcedBB[color].Set(sq)
			}
			p.Key ^= wallKeys[color][hp-1][sq]
		}
	}
}

func (u *Undo) saveSquare(p *Position, sq int) {
	for i := 0; i < u.SquareCount; i++ {
		if u.Squares[i] == sq {
			return
		}
	}
	u.Squares[u.SquareCount] = sq
	u.PrevValues[u.SquareCount] = p.board[sq]
	u.SquareCount++
}

// hitWall reduces HP2 -> HP1 and HP1 -> empty.
func (p *Position) hitWall(wallSq int) {
	var v = p.board[wallSq]
	if !isWallValue(v) {
		return
	}
	var owner = colorOf(v)
	if wallHP(v) == 2 {
		p.setSquareRaw(wallSq, makeWallValue(owner, 1))
	} else {
		p.setSquareRaw(wallSq, 0)
	}
	p.wallTokens[owner]--
}

func (p *Position) setWallBuiltLast(color int, v bool) {
	if p.wallBuiltLast[color] == v {
		return
	}
	p.Key ^= wallBuiltLastKeys[color]
	p.wallBuiltLast[color] = v
}

func (p *Position) loseBastionRight(color int) {
	if p.bastionRight[color] {
		p.Key ^= bastionKeys[color]
		p.bastionRight[color] = false
	}
}

// finalizeTurn runs the turn-end sequence: Entombment check for the enemy,
// then the side-to-move flip. Regicide is handled before this is called.
func (p *Position) finalizeTurn() {
	if p.winner != SquareNone {
		return
	}

	var enemy = OtherColor(p.Turn)
	if p.IsEntombed(enemy) {
		p.winner = p.Turn
		p.winReason = WinEntombment
		p.Halfmove = 0
		return
	}

	p.Key ^= turnKey
	var prev = p.Turn
	p.Turn = enemy
	if prev == Black {
		p.Fullmove++
	}
}

func (p *Position) captureSovereign(u *Undo, from, to int, srcV int8) {
	var us = p.Turn
	var them = OtherColor(us)

	u.saveSquare(p, to)
	u.saveSquare(p, from)
	p.setSquareRaw(to, srcV)
	p.setSquareRaw(from, 0)

	if pieceOf(srcV) == Sovereign {
		p.sovereignSq[us] = to
		p.loseBastionRight(us)
	}

	p.sovereignSq[them] = SquareNone
	p.winner = us
	p.winReason = WinRegicide
	p.Halfmove = 0
	p.setWallBuiltLast(us, false)
}

// MakeMove applies an action produced by the generator. Legality is the
// generator's contract; applying a move it did not emit is a caller bug.
func (p *Position) MakeMove(m Move, u *Undo) {
	p.history = append(p.history, p.Key)

	u.PrevTurn = p.Turn
	u.PrevBastionRight = p.bastionRight
	u.PrevWallBuiltLast = p.wallBuiltLast
	u.prevSovereignSq = p.sovereignSq
	u.prevWallTokens = p.wallTokens
	u.prevHalfmove = p.Halfmove
	u.prevFullmove = p.Fullmove
	u.prevWinner = p.winner
	u.prevWinReason = p.winReason
	u.SquareCount = 0

	if p.GameOver() {
		return
	}

	var us = p.Turn
	var them = OtherColor(us)
	var from = m.From()
	var to = m.To()

	switch m.Type() {
	case MoveNormal:
		var srcV = p.board[from]
		var dstV = p.board[to]
		var isCapture = isPieceValue(dstV) && colorOf(dstV) == them
		if isCapture && pieceOf(dstV) == Sovereign {
			p.captureSovereign(u, from, to, srcV)
			return
		}

		u.saveSquare(p, from)
		u.saveSquare(p, to)
		p.setSquareRaw(to, srcV)
		p.setSquareRaw(from, 0)

		if pieceOf(srcV) == Sovereign {
			p.sovereignSq[us] = to
			p.loseBastionRight(us)
		}

		if isCapture {
			p.Halfmove = 0
		} else {
			p.Halfmove++
		}
		p.setWallBuiltLast(us, false)
		p.finalizeTurn()

	case MoveMasonConstruct:
		var hp = 1
		if IsKeepSquare(from) {
			hp = 2
		}
		u.saveSquare(p, to)
		p.setSquareRaw(to, makeWallValue(us, hp))
		p.wallTokens[us] += hp

		p.Halfmove = 0
		p.setWallBuiltLast(us, true)
		p.finalizeTurn()

	case MoveMasonCommand:
		var srcV = p.board[from]
		var dstV = p.board[to]
		var isCapture = isPieceValue(dstV) && colorOf(dstV) == them
		if isCapture && pieceOf(dstV) == Sovereign {
			// Capturing the Sovereign ends the action immediately, no build.
			p.captureSovereign(u, from, to, srcV)
			return
		}

		u.saveSquare(p, from)
		u.saveSquare(p, to)
		p.setSquareRaw(to, srcV)
		p.setSquareRaw(from, 0)

		var didBuild = false
		if wallSq := m.Aux1(); wallSq != SquareNone {
			var hp = 1
			if IsKeepSquare(to) {
				hp = 2
			}
			u.saveSquare(p, wallSq)
			p.setSquareRaw(wallSq, makeWallValue(us, hp))
			p.wallTokens[us] += hp
			didBuild = true
		}

		if isCapture || didBuild {
			p.Halfmove = 0
		} else {
			p.Halfmove++
		}
		p.setWallBuiltLast(us, didBuild)
		p.finalizeTurn()

	case MoveCatapultRangedDemolish:
		u.saveSquare(p, to)
		p.hitWall(to)
		p.Halfmove = 0
		p.setWallBuiltLast(us, false)
		p.finalizeTurn()

	case MoveCatapultMove:
		var srcV = p.board[from]
		var dstV = p.board[to]
		var isCapture = isPieceValue(dstV) && colorOf(dstV) == them
		if isCapture && pieceOf(dstV) == Sovereign {
			p.captureSovereign(u, from, to, srcV)
			return
		}

		u.saveSquare(p, from)
		u.saveSquare(p, to)
		p.setSquareRaw(to, srcV)
		p.setSquareRaw(from, 0)

		var didDemolish = false
		if demoSq := m.Aux1(); demoSq != SquareNone {
			u.saveSquare(p, demoSq)
			p.hitWall(demoSq)
			didDemolish = true
		}

		if isCapture || didDemolish {
			p.Halfmove = 0
		} else {
			p.Halfmove++
		}
		p.setWallBuiltLast(us, false)
		p.finalizeTurn()

	case MoveBastion:
		// Swap Sovereign and Minister, then place two HP1 walls around the
		// Sovereign's new square.
		var sovV = p.board[from]
		var minV = p.board[to]

		u.saveSquare(p, from)
		u.saveSquare(p, to)
		p.setSquareRaw(to, sovV)
		p.setSquareRaw(from, minV)

		p.sovereignSq[us] = to
		p.loseBastionRight(us)

		u.saveSquare(p, m.Aux1())
		p.setSquareRaw(m.Aux1(), makeWallValue(us, 1))
		p.wallTokens[us]++

		u.saveSquare(p, m.Aux2())
		p.setSquareRaw(m.Aux2(), makeWallValue(us, 1))
		p.wallTokens[us]++

		p.Halfmove = 0
		p.setWallBuiltLast(us, true)
		p.finalizeTurn()
	}
}

// UnmakeMove restores the position byte for byte. The popped history entry is
// the authoritative post-undo hash.
func (p *Position) UnmakeMove(u *Undo) {
	for i := 0; i < u.SquareCount; i++ {
		p.setSquareRaw(u.Squares[i], u.PrevValues[i])
	}

	p.Turn = u.PrevTurn
	p.bastionRight = u.PrevBastionRight
	p.wallBuiltLast = u.PrevWallBuiltLast
	p.sovereignSq = u.prevSovereignSq
	p.wallTokens = u.prevWallTokens
	p.Halfmove = u.prevHalfmove
	p.Fullmove = u.prevFullmove
	p.winner = u.prevWinner
	p.winReason = u.prevWinReason

	if n := len(p.history); n > 0 {
		p.Key = p.history[n-1]
		p.history = p.history[:n-1]
	}
}

// MakeNullMove flips the side to move (advancing the fullmove counter after
// Black) and leaves the board untouched. Must not be called when the game is
// over.
func (p *Position) MakeNullMove(u *NullUndo) {
	u.PrevTurn = p.Turn
	u.prevFullmove = p.Fullmove
	if p.GameOver() {
		return
	}
	p.Key ^= turnKey
	var prev = p.Turn
	p.Turn = OtherColor(p.Turn)
	if prev == Black {
		p.Fullmove++
	}
}

func (p *Position) UnmakeNullMove(u *NullUndo) {
	if u.PrevTurn != p.Turn {
		p.Key ^= turnKey
	}
	p.Turn = u.PrevTurn
	p.Fullmove = u.prevFullmove
}
