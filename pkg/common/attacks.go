package common

// forwardDir is the row delta toward the enemy back rank.
func forwardDir(color int) int {
	if color == White {
		return -1
	}
	return 1
}

// IsSquareAttackedBy reports whether any piece of attacker attacks square.
// Walls are never attacked; attack generation mirrors the movement rules,
// including Lancer tunneling through friendly Masons.
func (p *Position) IsSquareAttackedBy(attacker, square int) bool {
	if square == SquareNone {
		return false
	}
	if isWallValue(p.board[square]) {
		return false
	}

	var row = Row(square)
	var col = Col(square)

	// Mason attacks come from the row behind the target (forward diagonals).
	{
		var masonRow = row - forwardDir(attacker)
		if masonRow >= 0 && masonRow < BoardWidth {
			for _, dc := range [2]int{-1, 1} {
				if !InBounds(masonRow, col+dc) {
					continue
				}
				var v = p.board[MakeSquare(masonRow, col+dc)]
				if isPieceValue(v) && colorOf(v) == attacker && pieceOf(v) == Mason {
					return true
				}
			}
		}
	}

	for _, from := range knightTargets[square] {
		var v = p.board[from]
		if isPieceValue(v) && colorOf(v) == attacker && pieceOf(v) == Pegasus {
			return true
		}
	}

	// Catapult rook rays; walls block.
	for dir := 0; dir < 4; dir++ {
		for _, sq := range rays[square][dir] {
			var v = p.board[sq]
			if isWallValue(v) {
				break
			}
			if isPieceValue(v) {
				if colorOf(v) == attacker && pieceOf(v) == Catapult {
					return true
				}
				break
			}
		}
	}

	// Lancer bishop rays; walls block, friendly Masons are transparent.
	for dir := 4; dir < 8; dir++ {
		for _, sq := range rays[square][dir] {
			var v = p.board[sq]
			if isWallValue(v) {
				break
			}
			if isPieceValue(v) {
				if colorOf(v) == attacker {
					if pieceOf(v) == Lancer {
						return true
					}
					if pieceOf(v) == Mason {
						continue
					}
				}
				break
			}
		}
	}

	// Minister and Sovereign, bounded by their current move ranges.
	for dir := 0; dir < 8; dir++ {
		var ray = rays[square][dir]
		var maxSteps = Min(len(ray), 3)
		for step := 0; step < maxSteps; step++ {
			var sq = ray[step]
			var v = p.board[sq]
			if isWallValue(v) {
				break
			}
			if isPieceValue(v) {
				if colorOf(v) == attacker {
					var dist = step + 1
					switch pieceOf(v) {
					case Minister:
						if dist <= p.ministerMoveRange(sq, attacker) {
							return true
						}
					case Sovereign:
						if dist <= p.sovereignMoveRange(sq, attacker) {
							return true
						}
					}
				}
				break
			}
		}
	}

	return false
}

// ComputeAttacks returns the set of squares attacked by attacker.
func (p *Position) ComputeAttacks(attacker int) Bitboard {
	var attacked Bitboard
	var dom = p.HasDominance(attacker)

	{
		var bb = p.pieceBB[attacker][Mason]
		var f = forwardDir(attacker)
		for bb.Any() {
			var sq = bb.PopLsb()
			var row = Row(sq)
			var col = Col(sq)
			for _, dc := range [2]int{-1, 1} {
				if !InBounds(row+f, col+dc) {
					continue
				}
				var target = MakeSquare(row+f, col+dc)
				if isWallValue(p.board[target]) {
					continue
				}
				attacked.Set(target)
			}
		}
	}

	{
		var bb = p.pieceBB[attacker][Pegasus]
		for bb.Any() {
			var sq = bb.PopLsb()
			for _, target := range knightTargets[sq] {
				if isWallValue(p.board[target]) {
					continue
				}
				attacked.Set(target)
			}
		}
	}

	{
		var bb = p.pieceBB[attacker][Catapult]
		for bb.Any() {
			var sq = bb.PopLsb()
			for dir := 0; dir < 4; dir++ {
				for _, target := range rays[sq][dir] {
					var v = p.board[target]
					if isWallValue(v) {
						break
					}
					attacked.Set(target)
					if isPieceValue(v) {
						break
					}
				}
			}
		}
	}

	{
		var bb = p.pieceBB[attacker][Lancer]
		for bb.Any() {
			var sq = bb.PopLsb()
			for dir := 4; dir < 8; dir++ {
				for _, target := range rays[sq][dir] {
					var v = p.board[target]
					if isWallValue(v) {
						break
					}
					attacked.Set(target)
					if isPieceValue(v) {
						if colorOf(v) == attacker && pieceOf(v) == Mason {
							continue
						}
						break
					}
				}
			}
		}
	}

	{
		var bb = p.pieceBB[attacker][Minister]
		for bb.Any() {
			var sq = bb.PopLsb()
			var max = 2
			if dom && IsKeepSquare(sq) {
				max = 3
			}
			for dir := 0; dir < 8; dir++ {
				var ray = rays[sq][dir]
				for step := 0; step < max && step < len(ray); step++ {
					var v = p.board[ray[step]]
					if isWallValue(v) {
						break
					}
					attacked.Set(ray[step])
					if isPieceValue(v) {
						break
					}
				}
			}
		}
	}

	if p.wallTokens[attacker] <= 15 {
		var bb = p.pieceBB[attacker][Sovereign]
		for bb.Any() {
			var sq = bb.PopLsb()
			var max = 1
			if dom && IsKeepSquare(sq) {
				max = 2
			}
			for dir := 0; dir < 8; dir++ {
				var ray = rays[sq][dir]
				for step := 0; step < max && step < len(ray); step++ {
					var v = p.board[ray[step]]
					if isWallValue(v) {
						break
					}
					attacked.Set(ray[step])
					if isPieceValue(v) {
						break
					}
				}
			}
		}
	}

	return attacked
}
