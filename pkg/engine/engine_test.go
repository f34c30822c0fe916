package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OscarLo11212821/citadel/pkg/common"
	"github.com/OscarLo11212821/citadel/pkg/eval/hce"
)

func newTestEngine() *Engine {
	var e = NewEngine(func() Evaluator { return hce.NewEvaluationService() })
	e.Hash = 4
	return e
}

func searchFEN(t *testing.T, e *Engine, fen string, depth int) common.SearchInfo {
	t.Helper()
	var p, err = common.NewPositionFromFEN(fen)
	require.NoError(t, err)
	return e.Search(context.Background(), common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: depth},
	})
}

func TestSearchFindsRegicide(t *testing.T) {
	// Open file, undefended Sovereign: mate in one.
	var si = searchFEN(t, newTestEngine(), "C8/9/9/9/4S4/9/9/9/s8 w - - 0 1", 3)
	require.NotEmpty(t, si.MainLine)
	require.Equal(t,
		common.MakeCatapultMove(common.ParseSquare("A9"), common.ParseSquare("A1"), common.SquareNone),
		si.MainLine[0])
	require.NotZero(t, si.Score.Mate)
	require.Greater(t, si.Score.Mate, 0)
}

func TestSearchReturnsLegalRootMove(t *testing.T) {
	var fens = []string{
		common.InitialPositionFen,
		"9/9/9/9/3IS4/9/9/9/4s4 w B - 0 1",
		"9/2R6/9/9/4C1r2/9/9/4S4/4s4 b - - 0 1",
	}
	for _, fen := range fens {
		var e = newTestEngine()
		var p, err = common.NewPositionFromFEN(fen)
		require.NoError(t, err)
		var si = e.Search(context.Background(), common.SearchParams{
			Position: &p,
			Limits:   common.LimitsType{Depth: 3},
		})
		require.Equal(t, 3, si.Depth)
		require.NotEmpty(t, si.MainLine)

		var buffer [common.MaxMoves]common.Move
		require.Contains(t, p.GenerateMoves(buffer[:]), si.MainLine[0], "fen %v", fen)
	}
}

func TestSearchDoesNotMutateCallerPosition(t *testing.T) {
	var p = common.InitialPosition()
	var fen = p.String()
	var key = p.Key
	newTestEngine().Search(context.Background(), common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: 4},
	})
	require.Equal(t, fen, p.String())
	require.Equal(t, key, p.Key)
}

func TestSearchDeterministicWithoutTT(t *testing.T) {
	var run = func() common.SearchInfo {
		var e = newTestEngine()
		e.UseTT = false
		return searchFEN(t, e, common.InitialPositionFen, 4)
	}
	var a = run()
	var b = run()
	require.Equal(t, a.Score, b.Score)
	require.Equal(t, a.MainLine[0], b.MainLine[0])
	require.Equal(t, a.Nodes, b.Nodes)
}

func TestSearchNodeLimitAborts(t *testing.T) {
	var e = newTestEngine()
	var p = common.InitialPosition()
	var si = e.Search(context.Background(), common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: 30, Nodes: 20000},
	})
	require.GreaterOrEqual(t, si.Depth, 1, "a completed depth must survive the abort")
	require.NotEmpty(t, si.MainLine)
	require.Less(t, si.Nodes, int64(20000+4096), "limit is polled every ~2k nodes")
}

func TestSearchStopViaContext(t *testing.T) {
	var e = newTestEngine()
	var p = common.InitialPosition()
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	var si = e.Search(ctx, common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: 30},
	})
	// Cooperative stop before the first iteration: no depth completes and
	// the fallback move carries a real stand-alone eval, not a placeholder.
	require.Equal(t, 0, si.Depth)
	require.NotEmpty(t, si.MainLine)
	var buffer [common.MaxMoves]common.Move
	require.Contains(t, p.GenerateMoves(buffer[:]), si.MainLine[0])
	require.Equal(t, newUciScore(e.Evaluate(&p)), si.Score)
}

func TestSearchStoppedFallsBackToTTRootEntry(t *testing.T) {
	var e = newTestEngine()
	var p = common.InitialPosition()

	// A completed search leaves a root entry in the table.
	var si = e.Search(context.Background(), common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: 3},
	})
	require.Equal(t, 3, si.Depth)

	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	var stopped = e.Search(ctx, common.SearchParams{
		Position: &p,
		Limits:   common.LimitsType{Depth: 30},
	})
	require.Equal(t, 0, stopped.Depth)
	require.NotEmpty(t, stopped.MainLine)
	require.Equal(t, si.MainLine[0], stopped.MainLine[0], "the stored root move survives the abort")
	require.Equal(t, si.Score, stopped.Score)
}

func TestSiegeAttritionStillFindsMoves(t *testing.T) {
	var si = searchFEN(t, newTestEngine(), "RRRRRRRR1/9/9/9/3IS4/9/4M4/9/4s4 w B - 0 1", 3)
	require.NotEmpty(t, si.MainLine)
	require.NotEqual(t, common.ParseSquare("E5"), si.MainLine[0].From(),
		"the immobilized Sovereign cannot be the moving piece")
}

// The side to move can always claim a threefold repetition, so the searched
// value has a floor of zero even in a lost position.
func TestRepetitionClaimFloor(t *testing.T) {
	// White is missing both Catapults against a full Black army.
	var p, err = common.NewPositionFromFEN("clpisiplc/mmmmmmmmm/9/9/9/9/9/MMMMMMMMM/1LPISIPL1 w Bb - 0 1")
	require.NoError(t, err)

	var cycle = []common.Move{
		common.MakeNormalMove(common.ParseSquare("C1"), common.ParseSquare("B3")),
		common.MakeNormalMove(common.ParseSquare("C9"), common.ParseSquare("B7")),
		common.MakeNormalMove(common.ParseSquare("B3"), common.ParseSquare("C1")),
		common.MakeNormalMove(common.ParseSquare("B7"), common.ParseSquare("C9")),
	}
	var u common.Undo
	for i := 0; i < 2; i++ {
		for _, m := range cycle {
			p.MakeMove(m, &u)
		}
	}
	require.True(t, p.IsRepetition())

	var e = newTestEngine()
	e.UseTT = false
	e.Prepare()
	var tr = &e.thread
	tr.position = p.Clone()
	tr.evaluator.Init(&tr.position)
	tr.keys[1] = hashPosition(&tr.position)

	var score = tr.alphaBeta(-valueInfinity, valueInfinity, 2, 1, true)
	require.GreaterOrEqual(t, score, valueDraw)

	// Without the claim the static picture is clearly lost for White.
	require.Less(t, tr.evaluator.Evaluate(&tr.position), -200)
}

func TestMateScoreNormalization(t *testing.T) {
	var tests = []struct {
		value  int
		height int
	}{
		{winIn(3), 5},
		{lossIn(7), 2},
		{150, 9},
		{0, 0},
	}
	for _, test := range tests {
		var stored = valueToTT(test.value, test.height)
		if got := valueFromTT(stored, test.height); got != test.value {
			t.Errorf("round trip %v@%v -> %v", test.value, test.height, got)
		}
	}
}

func TestUciScoreMate(t *testing.T) {
	require.Equal(t, common.UciScore{Mate: 1}, newUciScore(winIn(1)))
	require.Equal(t, common.UciScore{Mate: 2}, newUciScore(winIn(3)))
	require.Equal(t, common.UciScore{Mate: -1}, newUciScore(lossIn(2)))
	require.Equal(t, common.UciScore{Centipawns: 33}, newUciScore(33))
}

func TestTransTableReplacement(t *testing.T) {
	var tt = newTransTable(1)

	tt.Update(100, 5, 42, boundExact, common.MakeNormalMove(0, 1))
	var depth, score, bound, move, ok = tt.Read(100)
	require.True(t, ok)
	require.Equal(t, 5, depth)
	require.Equal(t, 42, score)
	require.Equal(t, boundExact, bound)
	require.Equal(t, common.MakeNormalMove(0, 1), move)

	// A shallower entry for the same key still replaces.
	tt.Update(100, 3, 7, boundLower, common.MakeNormalMove(1, 2))
	depth, score, _, _, ok = tt.Read(100)
	require.True(t, ok)
	require.Equal(t, 3, depth)

	_, _, _, _, ok = tt.Read(101)
	require.False(t, ok)

	tt.Clear()
	_, _, _, _, ok = tt.Read(100)
	require.False(t, ok)
}

func TestHashAfterMakeMatchesFromScratch(t *testing.T) {
	var seed uint64 = 99
	var p = common.InitialPosition()
	var key = hashPosition(&p)
	var buffer [common.MaxMoves]common.Move
	var u common.Undo
	for ply := 0; ply < 80 && !p.GameOver(); ply++ {
		var ml = p.GenerateMoves(buffer[:])
		if len(ml) == 0 {
			break
		}
		p.MakeMove(ml[common.SplitMix64(&seed)%uint64(len(ml))], &u)
		key = hashAfterMake(key, &p, &u)
		require.Equal(t, hashPosition(&p), key, "ply %v, fen %v", ply, p.String())
	}
}

func TestHistoryTable(t *testing.T) {
	var h historyTable
	h.Clear()
	var m = common.MakeNormalMove(10, 20)
	require.Equal(t, 0, h.Read(m))
	h.Update(m, 4)
	require.Equal(t, 16, h.Read(m))
	for i := 0; i < 100000; i++ {
		h.Update(m, 10)
	}
	require.Equal(t, 1_000_000, h.Read(m), "history is capped")
}
