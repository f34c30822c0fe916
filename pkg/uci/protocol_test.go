package uci

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OscarLo11212821/citadel/pkg/common"
)

func TestParseLimits(t *testing.T) {
	var limits = parseLimits([]string{"wtime", "60000", "btime", "55000", "winc", "1000", "binc", "900", "depth", "8"})
	require.Equal(t, 60000, limits.WhiteTime)
	require.Equal(t, 55000, limits.BlackTime)
	require.Equal(t, 1000, limits.WhiteIncrement)
	require.Equal(t, 900, limits.BlackIncrement)
	require.Equal(t, 8, limits.Depth)
	require.False(t, limits.Infinite)

	limits = parseLimits([]string{"infinite"})
	require.True(t, limits.Infinite)

	limits = parseLimits([]string{"movetime", "2500", "nodes", "100000"})
	require.Equal(t, 2500, limits.MoveTime)
	require.Equal(t, 100000, limits.Nodes)
}

func TestSearchInfoToUci(t *testing.T) {
	var si = common.SearchInfo{
		Depth:    7,
		Seldepth: 12,
		Score:    common.UciScore{Centipawns: 36},
		Nodes:    1000,
		Time:     time.Second,
		MainLine: []common.Move{
			common.MakeNormalMove(common.ParseSquare("E2"), common.ParseSquare("E3")),
			common.MakeConstructMove(common.ParseSquare("E8"), common.ParseSquare("E7")),
		},
	}
	require.Equal(t,
		"info depth 7 seldepth 12 score cp 36 nodes 1000 time 1000 nps 999 pv e2e3 cone8@e7",
		searchInfoToUci(si))

	si.Score = common.UciScore{Mate: 3}
	si.Seldepth = 0
	si.MainLine = nil
	require.Equal(t, "info depth 7 score mate 3 nodes 1000 time 1000 nps 999", searchInfoToUci(si))
}

func TestOptions(t *testing.T) {
	var hash = 16
	var intOpt = &IntOption{Name: "Hash", Min: 1, Max: 1024, Value: &hash}
	require.Equal(t, "option name Hash type spin default 16 min 1 max 1024", intOpt.UciString())
	require.NoError(t, intOpt.Set("64"))
	require.Equal(t, 64, hash)
	require.Error(t, intOpt.Set("4096"))
	require.Error(t, intOpt.Set("x"))

	var backend = "HCE"
	var changed = 0
	var combo = &ComboOption{
		Name:     "Eval",
		Vars:     []string{"HCE", "NNUE"},
		Value:    &backend,
		OnChange: func() error { changed++; return nil },
	}
	require.Equal(t, "option name Eval type combo default HCE var HCE var NNUE", combo.UciString())
	require.NoError(t, combo.Set("nnue"))
	require.Equal(t, "NNUE", backend)
	require.Equal(t, 1, changed)
	require.Error(t, combo.Set("material"))

	var path = ""
	var strOpt = &StringOption{Name: "NnueFile", Value: &path, OnChange: func() error { changed++; return nil }}
	require.Equal(t, "option name NnueFile type string default ", strOpt.UciString())
	require.NoError(t, strOpt.Set("model.cnue"))
	require.Equal(t, "model.cnue", path)
	require.Equal(t, 2, changed)
}

func TestPositionCommand(t *testing.T) {
	var uci = &Protocol{position: common.InitialPosition()}

	require.NoError(t, uci.positionCommand([]string{"startpos", "moves", "e2e3", "e8e7"}))
	require.Equal(t, common.White, uci.position.Turn)
	require.Equal(t, 2, uci.position.Fullmove)

	require.NoError(t, uci.positionCommand([]string{"fen", "9/9/9/9/3IS4/9/9/9/4s4", "w", "B", "-", "0", "1"}))
	require.Equal(t, "9/9/9/9/3IS4/9/9/9/4s4 w B - 0 1", uci.position.String())

	require.Error(t, uci.positionCommand([]string{"startpos", "moves", "e2e9"}))
	require.Error(t, uci.positionCommand([]string{"fen", "garbage"}))
	require.Error(t, uci.positionCommand([]string{"bogus"}))
}
