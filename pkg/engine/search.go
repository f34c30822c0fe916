package engine

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

// aspirationWindow wraps an iteration in a window around the previous score.
// On a fail the failing side opens to infinity and the window width doubles
// around the returned score on the other side, until the score fits.
func (t *thread) aspirationWindow(depth, prevScore int) int {
	t.rootDepth = depth

	if depth == 1 {
		return t.searchRoot(-valueInfinity, valueInfinity, depth)
	}

	var window = 90
	if depth <= 2 {
		window = 140
	}
	var alpha = prevScore - window
	var beta = prevScore + window

	for {
		var score = t.searchRoot(alpha, beta, depth)
		if score <= alpha {
			alpha = -valueInfinity
			window *= 2
			beta = score + window
			continue
		}
		if score >= beta {
			beta = valueInfinity
			window *= 2
			alpha = score - window
			continue
		}
		return score
	}
}

func (t *thread) searchRoot(alpha, beta, depth int) int {
	const height = 0
	var p = &t.position
	t.evaluator.Init(p)
	t.keys[height] = hashPosition(p)
	t.stack[height].pv.clear()

	var ml = t.orderedMoves(height)

	var alpha0 = alpha
	var best = -valueInfinity
	var bestMove = ml[0].Move

	for i := range ml {
		pickBestMove(ml, i)
		var move = ml[i].Move
		var quiet = isQuietMove(p, move)

		t.makeMove(move, height)

		var score int
		if p.GameOver() {
			score = winIn(height + 1)
		} else if i == 0 {
			score = -t.alphaBeta(-beta, -alpha, depth-1, height+1, true)
		} else {
			score = -t.alphaBeta(-(alpha + 1), -alpha, depth-1, height+1, false)
			if score > alpha && score < beta {
				score = -t.alphaBeta(-beta, -alpha, depth-1, height+1, true)
			}
		}

		t.unmakeMove(height)

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				// An aspiration fail-high can cut off at the root too.
				if quiet {
					t.recordQuietCutoff(move, height, depth)
				}
				break
			}
		}
	}

	if t.engine.UseTT {
		var bound = boundExact
		if best <= alpha0 {
			bound = boundUpper
		} else if best >= beta {
			bound = boundLower
		}
		t.engine.transTable.Update(t.keys[height], depth, valueToTT(best, height), bound, bestMove)
	}

	// Guarantee a line even when every move failed low.
	if t.stack[height].pv.size == 0 {
		t.stack[height].pv.size = 1
		t.stack[height].pv.items[0] = bestMove
	}

	return best
}

func (t *thread) alphaBeta(alpha, beta, depth, height int, pvNode bool) int {
	var p = &t.position

	// Threefold repetition is a claimable draw, never a forced one: the side
	// to move can secure 0 but may decline and play on.
	var canClaimDraw = height > 0 && p.IsRepetition()

	if depth <= 0 {
		var q = t.quiescence(alpha, beta, height, qsMaxDepth)
		if canClaimDraw {
			return Max(valueDraw, q)
		}
		return q
	}

	t.incNodes()
	if height > t.seldepth {
		t.seldepth = height
	}
	t.stack[height].pv.clear()

	if p.GameOver() {
		return winIn(height)
	}
	if height >= maxHeight {
		return t.evaluator.Evaluate(p)
	}

	var alphaOrig = alpha
	var best = -valueInfinity
	if canClaimDraw {
		best = valueDraw
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			return best
		}
	}

	// Mate-distance pruning.
	alpha = Max(alpha, lossIn(height))
	beta = Min(beta, winIn(height)-1)
	if alpha >= beta {
		return alpha
	}

	var key = t.keys[height]
	var ttMove = MoveEmpty
	var useTT = t.engine.UseTT
	if useTT {
		var ttDepth, ttValue, ttBound, ttBest, ttHit = t.engine.transTable.Read(key)
		if ttHit {
			ttMove = ttBest
			if ttDepth >= depth {
				ttValue = valueFromTT(ttValue, height)
				if canClaimDraw && ttValue < valueDraw {
					ttValue = valueDraw
				}
				switch ttBound {
				case boundExact:
					// An Exact 0 can be history-dependent when a draw claim is
					// on the table; don't let it hide a winning continuation.
					if !canClaimDraw || ttValue != valueDraw {
						return ttValue
					}
				case boundLower:
					if ttValue >= beta {
						return ttValue
					}
				case boundUpper:
					if ttValue <= alpha {
						return ttValue
					}
				}
			}
		}
	}

	var staticEval = 0
	var haveStaticEval = false
	var getStaticEval = func() int {
		if !haveStaticEval {
			staticEval = t.evaluator.Evaluate(p)
			haveStaticEval = true
		}
		return staticEval
	}

	// Razoring: far below alpha at shallow depth, drop into quiescence.
	if !pvNode && depth <= 2 && !t.conservative {
		var razorMargin = 220 + (depth-1)*180
		if getStaticEval()+razorMargin <= alpha {
			return t.quiescence(alpha, beta, height, qsMaxDepth)
		}
	}

	// Reverse futility pruning.
	if !pvNode && depth <= 2 && !t.conservative {
		var margin = 160 + depth*120
		if getStaticEval()-margin >= beta {
			return getStaticEval()
		}
	}

	// Null-move pruning, gated on material to limit zugzwang risk.
	var nullMinDepth = 3
	var nullMinMaterial = 3
	if t.conservative {
		nullMinDepth = 4
		nullMinMaterial = 4
	}
	if !pvNode && depth >= nullMinDepth && height > 0 &&
		nonSovereignPieceCount(p, p.Turn) >= nullMinMaterial {
		var reduction int
		if t.conservative {
			reduction = 1
			if depth >= 7 {
				reduction++
			}
		} else {
			reduction = 2
			if depth >= 6 {
				reduction++
			}
		}
		t.makeNullMove(height)
		var score = -t.alphaBeta(-beta, -(beta - 1), depth-1-reduction, height+1, false)
		t.unmakeNullMove(height)
		if score >= beta {
			return beta
		}
	}

	var ml = t.generateOrdered(height, ttMove)
	if len(ml) == 0 {
		return getStaticEval()
	}

	var bestMove = ml[0].Move

	for i := range ml {
		pickBestMove(ml, i)
		var move = ml[i].Move
		var quiet = isQuietMove(p, move)

		// Futility: at depth 1, skip late quiet moves that cannot raise alpha.
		if !pvNode && depth == 1 && quiet && i > 0 {
			var margin = 220
			if t.conservative {
				margin = 340
			}
			if getStaticEval()+margin <= alpha {
				continue
			}
		}

		// Late-move pruning at depth 2; speeds up locked wall endgames.
		if !pvNode && depth == 2 && quiet {
			var moveCount = 20
			var margin = 140
			if t.conservative {
				moveCount = 32
				margin = 200
			}
			if i >= moveCount && getStaticEval()+margin <= alpha {
				continue
			}
		}

		t.makeMove(move, height)

		var score int
		if p.GameOver() {
			score = winIn(height + 1)
		} else {
			var newDepth = depth - 1

			if pvNode && i == 0 {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, true)
			} else {
				// PVS null window, with LMR for late quiet moves.
				var searchDepth = newDepth
				var doLMR = !pvNode && quiet && depth >= 3 && i >= 4
				if doLMR {
					var r = 1
					if i >= 8 {
						r++
					}
					if depth >= 6 {
						r++
					}
					searchDepth = Max(1, newDepth-r)
				}

				score = -t.alphaBeta(-(alpha + 1), -alpha, searchDepth, height+1, false)
				if score > alpha {
					if doLMR && searchDepth != newDepth {
						score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1, false)
					}
					if score > alpha && score < beta {
						score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, true)
					}
				}
			}
		}

		t.unmakeMove(height)

		if score > best {
			best = score
			bestMove = move
		}
		if best > alpha {
			alpha = best
			t.assignPV(height, move)
		}
		if alpha >= beta {
			if quiet {
				t.recordQuietCutoff(move, height, depth)
			}
			break
		}
	}

	if useTT {
		var bound = boundExact
		if best <= alphaOrig {
			bound = boundUpper
		} else if best >= beta {
			bound = boundLower
		}
		t.engine.transTable.Update(key, depth, valueToTT(best, height), bound, bestMove)
	}

	return best
}

func (t *thread) quiescence(alpha, beta, height, qDepth int) int {
	t.incNodes()
	if height > t.seldepth {
		t.seldepth = height
	}
	t.stack[height].pv.clear()

	var p = &t.position
	if p.GameOver() {
		return winIn(height)
	}
	if height >= maxHeight {
		return t.evaluator.Evaluate(p)
	}

	// A claimable draw is one of the available actions here too.
	if height > 0 && p.IsRepetition() {
		if valueDraw > alpha {
			alpha = valueDraw
		}
		if alpha >= beta {
			return alpha
		}
	}

	var standPat = t.evaluator.Evaluate(p)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qDepth <= 0 {
		return alpha
	}

	var stack = &t.stack[height]
	var noisy = p.GenerateNoisyMoves(stack.moveBuffer[:])
	if len(noisy) == 0 {
		return alpha
	}
	var ml = stack.moveList[:len(noisy)]
	for i, move := range noisy {
		ml[i] = OrderedMove{Move: move, Key: moveHeuristic(p, move)}
	}

	for i := range ml {
		pickBestMove(ml, i)
		var move = ml[i].Move

		t.makeMove(move, height)

		var score int
		if p.GameOver() {
			score = winIn(height + 1)
		} else {
			score = -t.quiescence(-beta, -alpha, height+1, qDepth-1)
		}

		t.unmakeMove(height)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
		}
	}

	return alpha
}

// orderedMoves builds the root move list with full ordering.
func (t *thread) orderedMoves(height int) []OrderedMove {
	var ttMove = MoveEmpty
	if t.engine.UseTT {
		_, _, _, ttMove, _ = t.engine.transTable.Read(t.keys[height])
	}
	return t.generateOrdered(height, ttMove)
}

func (t *thread) generateOrdered(height int, ttMove Move) []OrderedMove {
	var p = &t.position
	var stack = &t.stack[height]

	var moves = p.GenerateMoves(stack.moveBuffer[:])
	var ml = stack.moveList[:len(moves)]
	for i, move := range moves {
		ml[i] = OrderedMove{Move: move, Key: t.orderScore(move, ttMove, height)}
	}
	return ml
}

func (t *thread) orderScore(move, ttMove Move, height int) int {
	if ttMove != MoveEmpty && move == ttMove {
		return 1 << 30
	}

	var p = &t.position
	var sc = moveHeuristic(p, move)
	if isQuietMove(p, move) {
		if move == t.stack[height].killer1 {
			sc += 900_000
		} else if move == t.stack[height].killer2 {
			sc += 800_000
		}
		sc += t.history.Read(move)
	}
	return sc
}

// pickBestMove selection-sorts the best remaining move into slot i.
func pickBestMove(ml []OrderedMove, i int) {
	var bestIndex = i
	var bestKey = ml[i].Key
	for j := i + 1; j < len(ml); j++ {
		if ml[j].Key > bestKey {
			bestKey = ml[j].Key
			bestIndex = j
		}
	}
	if bestIndex != i {
		ml[i], ml[bestIndex] = ml[bestIndex], ml[i]
	}
}

func (t *thread) recordQuietCutoff(move Move, height, depth int) {
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
	t.history.Update(move, depth)
}

func (t *thread) assignPV(height int, move Move) {
	t.stack[height].pv.assign(move, &t.stack[height+1].pv)
}

func (t *thread) makeMove(move Move, height int) {
	var p = &t.position
	p.MakeMove(move, &t.undos[height])
	t.evaluator.MakeMove(p, &t.undos[height])
	t.keys[height+1] = hashAfterMake(t.keys[height], p, &t.undos[height])
}

func (t *thread) unmakeMove(height int) {
	t.evaluator.UnmakeMove()
	t.position.UnmakeMove(&t.undos[height])
}

func (t *thread) makeNullMove(height int) {
	var p = &t.position
	p.MakeNullMove(&t.nullUndos[height])
	t.evaluator.MakeNullMove(p)
	t.keys[height+1] = t.keys[height] ^ ttKeys.turn
}

func (t *thread) unmakeNullMove(height int) {
	t.evaluator.UnmakeNullMove()
	t.position.UnmakeNullMove(&t.nullUndos[height])
}
