package common

// GenerateMoves appends every legal action for the side to move to ml and
// returns the filled slice. The enumeration is deterministic: pieces are
// visited in bitboard order per type, targets in table order.
func (p *Position) GenerateMoves(ml []Move) []Move {
	ml = ml[:0]
	if p.GameOver() {
		return ml
	}

	var us = p.Turn
	var them = OtherColor(us)
	var enemyAttacks = p.ComputeAttacks(them)

	{
		var bb = p.pieceBB[us][Mason]
		for bb.Any() {
			var sq = bb.PopLsb()
			ml = p.genNormalMoves(ml, sq, Mason, us)
			ml = p.genMasonExtras(ml, sq, us, enemyAttacks)
		}
	}
	{
		var bb = p.pieceBB[us][Pegasus]
		for bb.Any() {
			ml = p.genNormalMoves(ml, bb.PopLsb(), Pegasus, us)
		}
	}
	{
		var bb = p.pieceBB[us][Lancer]
		for bb.Any() {
			ml = p.genNormalMoves(ml, bb.PopLsb(), Lancer, us)
		}
	}
	{
		var bb = p.pieceBB[us][Catapult]
		for bb.Any() {
			ml = p.genCatapultMoves(ml, bb.PopLsb(), us)
		}
	}
	{
		var bb = p.pieceBB[us][Minister]
		for bb.Any() {
			ml = p.genNormalMoves(ml, bb.PopLsb(), Minister, us)
		}
	}
	{
		var bb = p.pieceBB[us][Sovereign]
		for bb.Any() {
			var sq = bb.PopLsb()
			ml = p.genNormalMoves(ml, sq, Sovereign, us)
			ml = p.genBastion(ml, sq, us)
		}
	}

	return ml
}

func (p *Position) genNormalMoves(ml []Move, from, piece, us int) []Move {
	var them = OtherColor(us)

	switch piece {
	case Mason:
		var f = forwardDir(us)
		var max = p.masonMoveRange(from, us)
		var row = Row(from)
		var col = Col(from)

		// Forward and sideways onto empties only.
		for _, d := range [3]delta{{f, 0}, {0, -1}, {0, 1}} {
			for step := 1; step <= max; step++ {
				var r = row + d.row*step
				var c = col + d.col*step
				if !InBounds(r, c) {
					break
				}
				var to = MakeSquare(r, c)
				if p.board[to] != 0 {
					break
				}
				ml = append(ml, MakeNormalMove(from, to))
			}
		}

		// Diagonal captures, always range 1, never onto walls.
		for _, dc := range [2]int{-1, 1} {
			if !InBounds(row+f, col+dc) {
				continue
			}
			var to = MakeSquare(row+f, col+dc)
			var v = p.board[to]
			if isPieceValue(v) && colorOf(v) == them {
				ml = append(ml, MakeNormalMove(from, to))
			}
		}

	case Pegasus:
		for _, to := range knightTargets[from] {
			var v = p.board[to]
			if isWallValue(v) {
				continue
			}
			if isPieceValue(v) && colorOf(v) == us {
				continue
			}
			ml = append(ml, MakeNormalMove(from, to))
		}

	case Lancer:
		for dir := 4; dir < 8; dir++ {
			for _, to := range rays[from][dir] {
				var v = p.board[to]
				if isWallValue(v) {
					break
				}
				if isPieceValue(v) {
					if colorOf(v) == us && pieceOf(v) == Mason {
						continue
					}
					if colorOf(v) == them {
						ml = append(ml, MakeNormalMove(from, to))
					}
					break
				}
				ml = append(ml, MakeNormalMove(from, to))
			}
		}

	case Minister, Sovereign:
		var max int
		if piece == Minister {
			max = p.ministerMoveRange(from, us)
		} else {
			max = p.sovereignMoveRange(from, us)
		}
		if max <= 0 {
			break
		}
		for dir := 0; dir < 8; dir++ {
			var ray = rays[from][dir]
			for step := 0; step < max && step < len(ray); step++ {
				var to = ray[step]
				var v = p.board[to]
				if isWallValue(v) {
					break
				}
				if isPieceValue(v) {
					if colorOf(v) == them {
						ml = append(ml, MakeNormalMove(from, to))
					}
					break
				}
				ml = append(ml, MakeNormalMove(from, to))
			}
		}
	}

	return ml
}

// genMasonExtras emits Construct and Command actions for a Mason.
func (p *Position) genMasonExtras(ml []Move, masonSq, us int, enemyAttacks Bitboard) []Move {
	var them = OtherColor(us)
	var row = Row(masonSq)
	var col = Col(masonSq)
	var canBuild = !p.wallBuiltLast[us]

	// Construct requires the Mason to be unthreatened.
	if canBuild && !enemyAttacks.Test(masonSq) {
		for _, d := range dirs4 {
			if !InBounds(row+d.row, col+d.col) {
				continue
			}
			var to = MakeSquare(row+d.row, col+d.col)
			if p.board[to] == 0 {
				ml = append(ml, MakeConstructMove(masonSq, to))
			}
		}
	}

	// Command requires an adjacent friendly Minister.
	var eligible = false
	for _, adj := range kingTargets[masonSq] {
		var v = p.board[adj]
		if isPieceValue(v) && colorOf(v) == us && pieceOf(v) == Minister {
			eligible = true
			break
		}
	}
	if !eligible {
		return ml
	}

	var f = forwardDir(us)

	var considerDest = func(dest int) {
		var dstV = p.board[dest]

		if isPieceValue(dstV) && colorOf(dstV) == them && pieceOf(dstV) == Sovereign {
			// Sovereign capture ends the command immediately, no build variants.
			ml = append(ml, MakeCommandMove(masonSq, dest, SquareNone))
			return
		}

		var fromV = p.board[masonSq]

		// Apply the step temporarily to evaluate threats and build squares at
		// the destination. setSquareRaw keeps key/bitboards exact both ways.
		p.setSquareRaw(dest, fromV)
		p.setSquareRaw(masonSq, 0)

		ml = append(ml, MakeCommandMove(masonSq, dest, SquareNone))

		if canBuild && !p.IsSquareAttackedBy(them, dest) {
			var dr = Row(dest)
			var dc = Col(dest)
			for _, d := range dirs4 {
				if !InBounds(dr+d.row, dc+d.col) {
					continue
				}
				var wallSq = MakeSquare(dr+d.row, dc+d.col)
				if p.board[wallSq] == 0 {
					ml = append(ml, MakeCommandMove(masonSq, dest, wallSq))
				}
			}
		}

		p.setSquareRaw(masonSq, fromV)
		p.setSquareRaw(dest, dstV)
	}

	for _, d := range [3]delta{{f, 0}, {0, -1}, {0, 1}} {
		if !InBounds(row+d.row, col+d.col) {
			continue
		}
		var to = MakeSquare(row+d.row, col+d.col)
		if p.board[to] == 0 {
			considerDest(to)
		}
	}
	for _, dc := range [2]int{-1, 1} {
		if !InBounds(row+f, col+dc) {
			continue
		}
		var to = MakeSquare(row+f, col+dc)
		var v = p.board[to]
		if isPieceValue(v) && colorOf(v) == them {
			considerDest(to)
		}
	}

	return ml
}

// genCatapultMoves emits ranged demolish plus rook moves with the optional
// adjacent demolish variants.
func (p *Position) genCatapultMoves(ml []Move, catSq, us int) []Move {
	// Ranged demolish: the first wall along an orthogonal ray, pieces block.
	for dir := 0; dir < 4; dir++ {
		for _, sq := range rays[catSq][dir] {
			var v = p.board[sq]
			if isPieceValue(v) {
				break
			}
			if isWallValue(v) {
				ml = append(ml, MakeRangedDemolishMove(catSq, sq))
				break
			}
		}
	}

	for dir := 0; dir < 4; dir++ {
		for _, to := range rays[catSq][dir] {
			var dstV = p.board[to]
			if isWallValue(dstV) {
				break
			}

			if isPieceValue(dstV) {
				if colorOf(dstV) != us {
					if pieceOf(dstV) == Sovereign {
						ml = append(ml, MakeCatapultMove(catSq, to, SquareNone))
					} else {
						ml = append(ml, MakeCatapultMove(catSq, to, SquareNone))
						for _, adj := range kingTargets[to] {
							if isWallValue(p.board[adj]) {
								ml = append(ml, MakeCatapultMove(catSq, to, adj))
							}
						}
					}
				}
				break
			}

			ml = append(ml, MakeCatapultMove(catSq, to, SquareNone))
			for _, adj := range kingTargets[to] {
				if isWallValue(p.board[adj]) {
					ml = append(ml, MakeCatapultMove(catSq, to, adj))
				}
			}
		}
	}

	return ml
}

// genBastion emits every unordered pair of wall squares for each adjacent
// friendly Minister.
func (p *Position) genBastion(ml []Move, sovSq, us int) []Move {
	if p.wallBuiltLast[us] || !p.bastionRight[us] {
		return ml
	}
	if p.wallTokens[us] > 15 {
		// Siege Attrition disables Bastion along with Sovereign movement.
		return ml
	}

	for _, ministerSq := range kingTargets[sovSq] {
		var v = p.board[ministerSq]
		if !isPieceValue(v) || colorOf(v) != us || pieceOf(v) != Minister {
			continue
		}

		// The Sovereign lands on ministerSq; wall candidates are its empty
		// neighbors, excluding the vacated Sovereign square.
		var empties [8]int
		var count = 0
		for _, adj := range kingTargets[ministerSq] {
			if adj == sovSq {
				continue
			}
			if p.board[adj] == 0 {
				empties[count] = adj
				count++
			}
		}
		if count < 2 {
			continue
		}

		for a := 0; a < count; a++ {
			for b := a + 1; b < count; b++ {
				ml = append(ml, MakeBastionMove(sovSq, ministerSq, empties[a], empties[b]))
			}
		}
	}

	return ml
}

// GenerateNoisyMoves emits the quiescence move set: captures, ranged
// demolish, wall construction adjacent to the enemy Sovereign, Sovereign
// moves touching the Keep, and Catapult moves coupled with a demolish.
func (p *Position) GenerateNoisyMoves(ml []Move) []Move {
	ml = ml[:0]
	if p.GameOver() {
		return ml
	}

	var us = p.Turn
	var them = OtherColor(us)
	var dom = p.HasDominance(us)

	var adjEnemySov Bitboard
	var enemySov = p.sovereignSq[them]
	if enemySov != SquareNone {
		for _, adj := range kingTargets[enemySov] {
			adjEnemySov.Set(adj)
		}
	}

	// Computed lazily; only Construct needs the threat test.
	var haveEnemyAttacks = false
	var enemyAttacks Bitboard

	var isEnemyPiece = func(v int8) bool {
		return isPieceValue(v) && colorOf(v) == them
	}

	for from := 0; from < SquareCount; from++ {
		var srcV = p.board[from]
		if !isPieceValue(srcV) || colorOf(srcV) != us {
			continue
		}

		var row = Row(from)
		var col = Col(from)

		switch pieceOf(srcV) {
		case Mason:
			var f = forwardDir(us)
			for _, dc := range [2]int{-1, 1} {
				if !InBounds(row+f, col+dc) {
					continue
				}
				var to = MakeSquare(row+f, col+dc)
				if isEnemyPiece(p.board[to]) {
					ml = append(ml, MakeNormalMove(from, to))
				}
			}

			if enemySov != SquareNone {
				for _, d := range dirs4 {
					if !InBounds(row+d.row, col+d.col) {
						continue
					}
					var to = MakeSquare(row+d.row, col+d.col)
					if !adjEnemySov.Test(to) || p.board[to] != 0 {
						continue
					}
					if p.wallBuiltLast[us] {
						continue
					}
					if !haveEnemyAttacks {
						enemyAttacks = p.ComputeAttacks(them)
						haveEnemyAttacks = true
					}
					if !enemyAttacks.Test(from) {
						ml = append(ml, MakeConstructMove(from, to))
					}
				}
			}

		case Pegasus:
			for _, to := range knightTargets[from] {
				if isEnemyPiece(p.board[to]) {
					ml = append(ml, MakeNormalMove(from, to))
				}
			}

		case Lancer:
			for dir := 4; dir < 8; dir++ {
				for _, to := range rays[from][dir] {
					var v = p.board[to]
					if isWallValue(v) {
						break
					}
					if isPieceValue(v) {
						if colorOf(v) == us && pieceOf(v) == Mason {
							continue
						}
						if colorOf(v) == them {
							ml = append(ml, MakeNormalMove(from, to))
						}
						break
					}
				}
			}

		case Minister:
			var max = 2
			if dom && IsKeepSquare(from) {
				max = 3
			}
			for dir := 0; dir < 8; dir++ {
				var ray = rays[from][dir]
				for step := 0; step < max && step < len(ray); step++ {
					var v = p.board[ray[step]]
					if isWallValue(v) {
						break
					}
					if isPieceValue(v) {
						if colorOf(v) == them {
							ml = append(ml, MakeNormalMove(from, ray[step]))
						}
						break
					}
				}
			}

		case Sovereign:
			var max = p.sovereignMoveRange(from, us)
			if max <= 0 {
				break
			}
			for dir := 0; dir < 8; dir++ {
				var ray = rays[from][dir]
				for step := 0; step < max && step < len(ray); step++ {
					var to = ray[step]
					var v = p.board[to]
					if isWallValue(v) {
						break
					}
					if isPieceValue(v) {
						if colorOf(v) == them {
							ml = append(ml, MakeNormalMove(from, to))
						}
						break
					}
					// Quiet Sovereign moves count as noisy only around the Keep.
					if IsKeepSquare(from) || IsKeepSquare(to) {
						ml = append(ml, MakeNormalMove(from, to))
					}
				}
			}

		case Catapult:
			for dir := 0; dir < 4; dir++ {
				for _, to := range rays[from][dir] {
					var v = p.board[to]
					if isPieceValue(v) {
						break
					}
					if isWallValue(v) {
						ml = append(ml, MakeRangedDemolishMove(from, to))
						break
					}
				}
			}

			for dir := 0; dir < 4; dir++ {
				for _, to := range rays[from][dir] {
					var dstV = p.board[to]
					if isWallValue(dstV) {
						break
					}

					if isPieceValue(dstV) {
						if colorOf(dstV) == them {
							ml = append(ml, MakeCatapultMove(from, to, SquareNone))
							for _, adj := range kingTargets[to] {
								if isWallValue(p.board[adj]) {
									ml = append(ml, MakeCatapultMove(from, to, adj))
								}
							}
						}
						break
					}

					// Empty-square moves are noisy only with a demolish attached.
					for _, adj := range kingTargets[to] {
						if isWallValue(p.board[adj]) {
							ml = append(ml, MakeCatapultMove(from, to, adj))
						}
					}
				}
			}
		}
	}

	return ml
}
