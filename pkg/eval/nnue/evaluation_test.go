package nnue

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/OscarLo11212821/citadel/pkg/common"
)

// Deterministic pseudo-random weights in the quantized ranges.
func testWeights(seed uint64) *Weights {
	var w = &Weights{
		FtWeights: make([]int16, InputSize*Hidden1),
		L2Weights: make([]int8, Hidden2*Hidden1),
		Shift2:    12,
		Shift3:    8,
	}
	for i := range w.FtWeights {
		w.FtWeights[i] = int16(SplitMix64(&seed)%512) - 256
	}
	for i := range w.FtBiases {
		w.FtBiases[i] = int32(SplitMix64(&seed)%2048) - 1024
	}
	for i := range w.L2Weights {
		w.L2Weights[i] = int8(SplitMix64(&seed) % 256)
	}
	for i := range w.L2Biases {
		w.L2Biases[i] = int32(SplitMix64(&seed)%100000) - 50000
	}
	for i := range w.OutWeights {
		w.OutWeights[i] = int8(SplitMix64(&seed) % 256)
	}
	w.OutBias = int32(SplitMix64(&seed)%100000) - 50000
	return w
}

func TestArshiftFloors(t *testing.T) {
	var tests = []struct {
		x    int
		s    uint32
		want int
	}{
		{5, 1, 2},
		{-5, 1, -3},
		{-8, 2, -2},
		{-9, 2, -3},
		{7, 0, 7},
		{-7, 0, -7},
		{-1, 4, -1},
	}
	for _, test := range tests {
		if got := arshift(test.x, test.s); got != test.want {
			t.Errorf("arshift(%v, %v) = %v, want %v", test.x, test.s, got, test.want)
		}
	}
}

func TestFeatureIndexChannels(t *testing.T) {
	// White Mason on square 0 is feature 0; channel layout is
	// white pieces, white walls, black pieces, black walls.
	require.Equal(t, 0, featureIndex(0, 1))
	require.Equal(t, 5, featureIndex(0, 6))
	require.Equal(t, 6, featureIndex(0, 7))
	require.Equal(t, 7, featureIndex(0, 8))
	require.Equal(t, 8, featureIndex(0, -1))
	require.Equal(t, 15, featureIndex(0, -8))
	require.Equal(t, -1, featureIndex(0, 0))
	require.Equal(t, 80*BoardChannels, featureIndex(80, 1))
	require.Equal(t, 1299, InputSize)
	require.Equal(t, InputSize-1, featBastionBlack)
}

// After any sequence of incremental updates the accumulator must equal a
// from-scratch rebuild of the current position.
func TestAccumulatorIncrementalMatchesInit(t *testing.T) {
	var weights = testWeights(1)
	var service = NewEvaluationService(weights)
	var fresh = NewEvaluationService(weights)

	var seed uint64 = 17
	var p = InitialPosition()
	service.Init(&p)

	var buffer [MaxMoves]Move
	var u Undo
	for ply := 0; ply < 60 && !p.GameOver(); ply++ {
		var ml = p.GenerateMoves(buffer[:])
		if len(ml) == 0 {
			break
		}
		p.MakeMove(ml[SplitMix64(&seed)%uint64(len(ml))], &u)
		service.MakeMove(&p, &u)

		fresh.Init(&p)
		require.Equal(t, fresh.accumulators[0], service.accumulators[service.current],
			"ply %v, fen %v", ply, p.String())
		require.Equal(t, fresh.Evaluate(&p), service.Evaluate(&p))
	}
}

func TestAccumulatorUnmakeRestores(t *testing.T) {
	var service = NewEvaluationService(testWeights(2))
	var p = InitialPosition()
	service.Init(&p)
	var before = service.accumulators[0]

	var buffer [MaxMoves]Move
	var ml = p.GenerateMoves(buffer[:])
	for _, move := range ml[:10] {
		var u Undo
		p.MakeMove(move, &u)
		service.MakeMove(&p, &u)
		service.UnmakeMove()
		p.UnmakeMove(&u)
		require.Equal(t, 0, service.current)
		require.Equal(t, before, service.accumulators[0], "move %v", move)
	}
}

func TestNullMoveTogglesSideToMove(t *testing.T) {
	var weights = testWeights(3)
	var service = NewEvaluationService(weights)
	var fresh = NewEvaluationService(weights)

	var p = InitialPosition()
	service.Init(&p)

	var u NullUndo
	p.MakeNullMove(&u)
	service.MakeNullMove(&p)

	fresh.Init(&p)
	require.Equal(t, fresh.accumulators[0], service.accumulators[1])

	service.UnmakeNullMove()
	p.UnmakeNullMove(&u)
	fresh.Init(&p)
	require.Equal(t, fresh.accumulators[0], service.accumulators[0])
}

func TestEvaluateSideToMovePerspective(t *testing.T) {
	var service = NewEvaluationService(testWeights(4))

	var p, err = NewPositionFromFEN("clpisiplc/mmmmmmmmm/9/9/9/9/9/MMMMMMMMM/CLPISIPLC b Bb - 0 1")
	require.NoError(t, err)
	service.Init(&p)
	require.Equal(t, -service.evaluateWhite(), service.Evaluate(&p))
}
