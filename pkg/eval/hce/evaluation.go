package hce

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

const (
	dominanceBonus       = 25
	wallValuePerHP       = 2
	wallAdjSovereign     = 15
	wallChokeBonus       = 6
	masonMinisterSynergy = 20
	entombPressureWeight = 18
	siegeAttritionPen    = 200

	wallsManyStart       = 12
	wallsManyFull        = 25
	noCatDrawishScaleMax = 256
	catapultEdgeBonusMax = 150
	catapultMonopoly     = 200

	maxNonSovereignPieces = 34
	bastionOpeningBonus   = 80
	kingWanderPen         = 45
	kingKeepEarlyPen      = 140
	kingAttackedPen       = 700
	kingRingAttackPen     = 55
	wallTokenOpeningPen   = 3
	mobilityWeight        = 2
	tempoBonus            = 20
)

// Indexed by piece constant; Sovereign material is 0, it is priceless.
var pieceValues = [...]int{0, 100, 550, 350, 400, 450, 0}

// Endgame material targets for the wall-locked blend.
var pieceValuesLocked = [...]int{0, 225, 600, 350, 500, 450, 0}

// Proximity pressure weights toward the enemy Sovereign.
var pressureWeights = [...]int{0, 10, 6, 6, 10, 3, 0}

var pst [Sovereign + 1][SquareCount]int

func init() {
	for sq := 0; sq < SquareCount; sq++ {
		var row = Row(sq)
		var col = Col(sq)
		// Centrality 0..4, Chebyshev from the center square.
		var cent = 4 - Max(AbsDelta(row, 4), AbsDelta(col, 4))
		var keep = 0
		if IsKeep(row, col) {
			keep = 1
		}

		pst[Mason][sq] = cent*4 + keep*6
		pst[Catapult][sq] = cent*3 + keep*4
		pst[Lancer][sq] = cent*4 + keep*6
		pst[Pegasus][sq] = cent*4 + keep*6
		pst[Minister][sq] = cent*5 + keep*8
		// The Sovereign table is much steeper: strong gravity toward the Keep.
		pst[Sovereign][sq] = cent*20 + keep*40
	}
}

// The 5x5 boundary ring around the Keep; the typical entry chokepoints.
func isKeepBoundaryRing(row, col int) bool {
	if row < 2 || row > 6 || col < 2 || col > 6 {
		return false
	}
	if IsKeep(row, col) {
		return false
	}
	return row == 2 || row == 6 || col == 2 || col == 6
}

type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

func (e *EvaluationService) Init(p *Position) {}

func (e *EvaluationService) MakeMove(p *Position, u *Undo) {}

func (e *EvaluationService) UnmakeMove() {}

func (e *EvaluationService) MakeNullMove(p *Position) {}

func (e *EvaluationService) UnmakeNullMove() {}

// Evaluate returns the score from the side-to-move perspective.
func (e *EvaluationService) Evaluate(p *Position) int {
	var diff = evaluateWhite(p)
	if p.Turn == Black {
		return -diff
	}
	return diff
}

func clamp256(x int) int {
	if x < 0 {
		return 0
	}
	if x > 256 {
		return 256
	}
	return x
}

func contentOf(v int8) (color, piece int, isWall bool) {
	color = White
	var a = int(v)
	if v < 0 {
		color = Black
		a = -a
	}
	if a <= Sovereign {
		return color, a, false
	}
	return color, a, true
}

// The Sovereign's defenders divide the attackers' proximity pressure:
// adjacent friendly pieces add 2 each, up to three friendly walls 1 each.
// More walls than that is entombment risk, not safety.
func safetyDenominator(p *Position, color int) int {
	var sovSq = p.SovereignSquare(color)
	if sovSq == SquareNone {
		return 100
	}

	var safety = 1
	var wallCount = 0
	for _, adj := range KingTargets(sovSq) {
		var v = p.RawAt(adj)
		if v == 0 {
			continue
		}
		var c, _, isWall = contentOf(v)
		if c != color {
			continue
		}
		if !isWall {
			safety += 2
		} else if wallCount < 3 {
			safety++
			wallCount++
		}
	}
	return safety
}

func evaluateWhite(p *Position) int {
	var score [2]int

	// Phase: 0 at the initial position, 256 in a bare endgame.
	var nonSovPieces = 0
	for sq := 0; sq < SquareCount; sq++ {
		var v = p.RawAt(sq)
		if v == 0 {
			continue
		}
		var _, piece, isWall = contentOf(v)
		if !isWall && piece != Sovereign {
			nonSovPieces++
		}
	}
	var missing = Max(0, maxNonSovereignPieces-nonSovPieces)
	var phase = (missing*256 + maxNonSovereignPieces/2) / maxNonSovereignPieces
	var opening = 256 - phase

	var wallsW = p.WallTokens(White)
	var wallsB = p.WallTokens(Black)
	var totalWalls = wallsW + wallsB

	var wallMany = clamp256((totalWalls - wallsManyStart) * 256 / (wallsManyFull - wallsManyStart))
	var wallEndgame = wallMany * phase / 256

	var safety = [2]int{safetyDenominator(p, White), safetyDenominator(p, Black)}
	var pressureOn [2]int

	var sovSq = [2]int{p.SovereignSquare(White), p.SovereignSquare(Black)}

	var dynPieceValue = func(piece int) int {
		var base = pieceValues[piece]
		return base + (pieceValuesLocked[piece]-base)*wallEndgame/256
	}

	for sq := 0; sq < SquareCount; sq++ {
		var v = p.RawAt(sq)
		if v == 0 {
			continue
		}
		var color, piece, isWall = contentOf(v)

		if !isWall {
			score[color] += dynPieceValue(piece)
			if piece == Sovereign {
				score[color] += pst[piece][sq] * phase / 256
			} else {
				score[color] += pst[piece][sq]
			}

			// Proximity pressure on the enemy Sovereign, Chebyshev <= 4.
			var targetSov = sovSq[OtherColor(color)]
			if targetSov != SquareNone {
				var dist = SquareDistance(sq, targetSov)
				if dist <= 4 {
					pressureOn[OtherColor(color)] += pressureWeights[piece] * (5 - dist)
				}
			}

			if piece == Mason {
				for _, adj := range KingTargets(sq) {
					var v2 = p.RawAt(adj)
					if v2 == 0 {
						continue
					}
					var c2, piece2, wall2 = contentOf(v2)
					if !wall2 && piece2 == Minister && c2 == color {
						score[color] += masonMinisterSynergy
						break
					}
				}
			}
		} else {
			var hp = int(v)
			if hp < 0 {
				hp = -hp
			}
			hp -= WallHP1 - 1
			score[color] += wallValuePerHP * hp
			if isKeepBoundaryRing(Row(sq), Col(sq)) {
				score[color] += wallChokeBonus * phase / 256
			}
		}
	}

	// Pressure scaled into centipawn range and divided by the defense.
	score[White] += pressureOn[Black] * 4 / safety[Black]
	score[Black] += pressureOn[White] * 4 / safety[White]

	for color := White; color <= Black; color++ {
		if p.HasDominance(color) {
			score[color] += dominanceBonus * phase / 256
		}
		if p.BastionRight(color) {
			score[color] += bastionOpeningBonus * opening / 256
		}

		// Walls adjacent to the own Sovereign are protection.
		if sovSq[color] != SquareNone {
			for _, adj := range KingTargets(sovSq[color]) {
				var v = p.RawAt(adj)
				if v == 0 {
					continue
				}
				var c, _, isWall = contentOf(v)
				if isWall && c == color {
					score[color] += wallAdjSovereign
				}
			}
		}

		if p.WallTokens(color) > 15 {
			score[color] -= siegeAttritionPen
		}
		score[color] -= p.WallTokens(color) * wallTokenOpeningPen * opening / 256
	}

	var attacks = [2]Bitboard{p.ComputeAttacks(White), p.ComputeAttacks(Black)}
	var mob = [2]int{attacks[White].PopCount(), attacks[Black].PopCount()}
	score[White] += mobilityWeight * mob[White]
	score[Black] += mobilityWeight * mob[Black]

	for color := White; color <= Black; color++ {
		score[color] -= kingSafetyPenalty(p, color, attacks[OtherColor(color)], opening)
		score[color] += entombPressureWeight * entombPressure(p, color)
	}

	// Tempo is added before the drawish scaling below, so it is damped in
	// locked positions and cannot make a dead draw oscillate.
	score[p.Turn] += tempoBonus

	var diff = score[White] - score[Black]

	var catW = p.PieceCount(White, Catapult)
	var catB = p.PieceCount(Black, Catapult)

	if catW == 0 && catB == 0 {
		// Walls are permanent without Catapults; scale toward a draw.
		var drawish = clamp256((60 - mob[White] - mob[Black]) * 256 / 40)

		var masons = p.PieceCount(White, Mason) + p.PieceCount(Black, Mason)
		if masons > 0 {
			// Masons keep building: very high draw probability.
			var masonFactor = 200
			if totalWalls >= 4 {
				masonFactor = 245
			}
			drawish = Max(drawish, masonFactor)
		} else {
			drawish = Max(drawish, Min(256, totalWalls*20))
		}

		var scale = 256 - drawish*noCatDrawishScaleMax/256
		diff = diff * scale / 256
	} else {
		// A Catapult monopoly converts: huge strategic edge.
		if catW > 0 && catB == 0 {
			diff += catapultMonopoly
		} else if catB > 0 && catW == 0 {
			diff -= catapultMonopoly
		}
		if catW != catB {
			var edge = 1
			if catB > catW {
				edge = -1
			}
			diff += edge * catapultEdgeBonusMax * wallEndgame / 256
		}
	}

	return diff
}

func kingSafetyPenalty(p *Position, color int, enemyAttacks Bitboard, opening int) int {
	var sovSq = p.SovereignSquare(color)
	if sovSq == SquareNone {
		return 0
	}

	var pen = 0
	var home = MakeSquare(8, 4)
	if color == Black {
		home = MakeSquare(0, 4)
	}
	pen += kingWanderPen * SquareDistance(sovSq, home) * opening / 256
	if IsKeepSquare(sovSq) {
		pen += kingKeepEarlyPen * opening / 256
	}
	if enemyAttacks.Test(sovSq) {
		pen += kingAttackedPen
	}

	var ringAttacked = 0
	for _, adj := range KingTargets(sovSq) {
		if enemyAttacks.Test(adj) {
			ringAttacked++
		}
	}
	pen += kingRingAttackPen * ringAttacked

	return pen
}

// entombPressure counts blocked or off-board neighbors around the enemy
// Sovereign.
func entombPressure(p *Position, attacker int) int {
	var victimSov = p.SovereignSquare(OtherColor(attacker))
	if victimSov == SquareNone {
		return 0
	}

	var blocked = 8 - len(KingTargets(victimSov))
	for _, adj := range KingTargets(victimSov) {
		var v = p.RawAt(adj)
		if v == 0 {
			continue
		}
		if _, _, isWall := contentOf(v); isWall {
			blocked++
		}
	}
	return blocked
}
