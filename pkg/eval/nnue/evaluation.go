package nnue

import (
	. "github.com/OscarLo11212821/citadel/pkg/common"
)

// A small quantized evaluator: a sparse feature transform summed into a
// 256-unit accumulator, then an int8 MLP head. The accumulator is carried
// through the search incrementally, one copy + delta per ply.
const (
	BoardChannels  = 16
	GlobalFeatures = 3
	InputSize      = BoardChannels*SquareCount + GlobalFeatures
	Hidden1        = 256
	Hidden2        = 32
	ActMax         = 127
	Version        = 1
)

// Global feature indices.
const (
	featStmWhite     = BoardChannels * SquareCount
	featBastionWhite = BoardChannels*SquareCount + 1
	featBastionBlack = BoardChannels*SquareCount + 2
)

const maxHeight = 144

type Weights struct {
	FtWeights  []int16 // InputSize * Hidden1, feature-major
	FtBiases   [Hidden1]int32
	L2Weights  []int8 // Hidden2 * Hidden1
	L2Biases   [Hidden2]int32
	OutWeights [Hidden2]int8
	OutBias    int32
	Shift2     uint32
	Shift3     uint32
}

type EvaluationService struct {
	*Weights
	accumulators [maxHeight][Hidden1]int32
	current      int
}

func NewEvaluationService(weights *Weights) *EvaluationService {
	return &EvaluationService{Weights: weights}
}

// NNUE static scores prune less aggressively in search.
func (e *EvaluationService) ConservativePruning() bool {
	return true
}

// featureIndex maps a square's raw content to its input feature, or -1 for
// an empty square. Channels: 0..5 white pieces, 6..7 white walls, 8..13
// black pieces, 14..15 black walls.
func featureIndex(sq int, raw int8) int {
	if raw == 0 {
		return -1
	}
	var base = 0
	var a = int(raw)
	if raw < 0 {
		base = 8
		a = -a
	}
	var ch int
	if a <= Sovereign {
		ch = base + a - Mason
	} else {
		ch = base + 6 + (a - WallHP1)
	}
	return sq*BoardChannels + ch
}

func (e *EvaluationService) addFeature(acc *[Hidden1]int32, feature int) {
	var w = e.FtWeights[feature*Hidden1 : feature*Hidden1+Hidden1]
	for j := 0; j < Hidden1; j++ {
		acc[j] += int32(w[j])
	}
}

func (e *EvaluationService) subFeature(acc *[Hidden1]int32, feature int) {
	var w = e.FtWeights[feature*Hidden1 : feature*Hidden1+Hidden1]
	for j := 0; j < Hidden1; j++ {
		acc[j] -= int32(w[j])
	}
}

// Init rebuilds the accumulator from scratch for the root position.
func (e *EvaluationService) Init(p *Position) {
	e.current = 0
	var acc = &e.accumulators[0]
	for j := 0; j < Hidden1; j++ {
		acc[j] = e.FtBiases[j]
	}

	for sq := 0; sq < SquareCount; sq++ {
		if f := featureIndex(sq, p.RawAt(sq)); f >= 0 {
			e.addFeature(acc, f)
		}
	}

	if p.Turn == White {
		e.addFeature(acc, featStmWhite)
	}
	if p.BastionRight(White) {
		e.addFeature(acc, featBastionWhite)
	}
	if p.BastionRight(Black) {
		e.addFeature(acc, featBastionBlack)
	}
}

// MakeMove pushes a fresh accumulator updated by the move's square deltas
// and global-bit flips. p must already reflect the move.
func (e *EvaluationService) MakeMove(p *Position, u *Undo) {
	var prev = &e.accumulators[e.current]
	e.current++
	var acc = &e.accumulators[e.current]
	*acc = *prev

	for i := 0; i < u.SquareCount; i++ {
		var sq = u.Squares[i]
		if f := featureIndex(sq, u.PrevValues[i]); f >= 0 {
			e.subFeature(acc, f)
		}
		if f := featureIndex(sq, p.RawAt(sq)); f >= 0 {
			e.addFeature(acc, f)
		}
	}

	var prevStmWhite = u.PrevTurn == White
	var newStmWhite = p.Turn == White
	if prevStmWhite != newStmWhite {
		if newStmWhite {
			e.addFeature(acc, featStmWhite)
		} else {
			e.subFeature(acc, featStmWhite)
		}
	}

	if u.PrevBastionRight[White] != p.BastionRight(White) {
		if p.BastionRight(White) {
			e.addFeature(acc, featBastionWhite)
		} else {
			e.subFeature(acc, featBastionWhite)
		}
	}
	if u.PrevBastionRight[Black] != p.BastionRight(Black) {
		if p.BastionRight(Black) {
			e.addFeature(acc, featBastionBlack)
		} else {
			e.subFeature(acc, featBastionBlack)
		}
	}
}

func (e *EvaluationService) UnmakeMove() {
	e.current--
}

// MakeNullMove toggles only the side-to-move column.
func (e *EvaluationService) MakeNullMove(p *Position) {
	var prev = &e.accumulators[e.current]
	e.current++
	var acc = &e.accumulators[e.current]
	*acc = *prev

	if p.Turn == White {
		e.addFeature(acc, featStmWhite)
	} else {
		e.subFeature(acc, featStmWhite)
	}
}

func (e *EvaluationService) UnmakeNullMove() {
	e.current--
}

// arshift floors toward negative infinity, so negative sums shift the same
// way the trainer's integer model does.
func arshift(x int, s uint32) int {
	if s == 0 {
		return x
	}
	if x >= 0 {
		return x >> s
	}
	var neg = -x
	var add = (1 << s) - 1
	return -((neg + add) >> s)
}

func clippedReLU(x int) int {
	if x < 0 {
		return 0
	}
	if x > ActMax {
		return ActMax
	}
	return x
}

func (e *EvaluationService) evaluateWhite() int {
	var acc = &e.accumulators[e.current]

	var h1 [Hidden1]int32
	for j := 0; j < Hidden1; j++ {
		h1[j] = int32(clippedReLU(int(acc[j])))
	}

	var h2 [Hidden2]int32
	for k := 0; k < Hidden2; k++ {
		var sum = e.L2Biases[k]
		var w = e.L2Weights[k*Hidden1 : k*Hidden1+Hidden1]
		for j := 0; j < Hidden1; j++ {
			sum += int32(w[j]) * h1[j]
		}
		h2[k] = int32(clippedReLU(arshift(int(sum), e.Shift2)))
	}

	var out = e.OutBias
	for k := 0; k < Hidden2; k++ {
		out += int32(e.OutWeights[k]) * h2[k]
	}

	return arshift(int(out), e.Shift3)
}

// Evaluate returns the side-to-move score from the current accumulator.
func (e *EvaluationService) Evaluate(p *Position) int {
	var scoreWhite = e.evaluateWhite()
	if p.Turn == Black {
		return -scoreWhite
	}
	return scoreWhite
}
