package hce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/OscarLo11212821/citadel/pkg/common"
)

// mirrorFEN flips ranks and swaps colors, turn, rights and wall flags. The
// evaluation is symmetric under this transform from the side-to-move view.
func mirrorFEN(t *testing.T, fen string) string {
	t.Helper()
	var fields = strings.Fields(fen)
	require.Len(t, fields, 6)

	var swapCase = func(s string) string {
		var sb strings.Builder
		for _, ch := range s {
			switch {
			case ch >= 'a' && ch <= 'z':
				sb.WriteRune(ch - 'a' + 'A')
			case ch >= 'A' && ch <= 'Z':
				sb.WriteRune(ch - 'A' + 'a')
			default:
				sb.WriteRune(ch)
			}
		}
		return sb.String()
	}

	var ranks = strings.Split(fields[0], "/")
	require.Len(t, ranks, 9)
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	var board = swapCase(strings.Join(ranks, "/"))

	var turn = "w"
	if fields[1] == "w" {
		turn = "b"
	}

	var swapSides = func(s string) string {
		if s == "-" {
			return s
		}
		return swapCase(s)
	}

	// Wall flags are case-insensitive letters: 'w' and 'b' trade places.
	var swapWallFlags = func(s string) string {
		if s == "-" {
			return s
		}
		var out = ""
		if strings.Contains(s, "b") {
			out += "w"
		}
		if strings.Contains(s, "w") {
			out += "b"
		}
		return out
	}

	return strings.Join([]string{
		board, turn, swapSides(fields[2]), swapWallFlags(fields[3]), fields[4], fields[5],
	}, " ")
}

func TestEvaluateMirrorSymmetry(t *testing.T) {
	var e = NewEvaluationService()
	var tests = []string{
		InitialPositionFen,
		"clpisiplc/mmmmmmmmm/9/9/4M4/9/9/MMMMMMMM1/CLPISIPLC b Bb w 3 12",
		"9/2R6/9/9/4C1r2/9/9/4S4/4s4 w B - 0 1",
		"9/9/9/3ms4/3MS4/9/9/9/9 w Bb - 0 1",
		"sW7/W8/1M7/9/9/9/9/9/4S4 w - - 0 1",
	}
	for i, fen := range tests {
		var p, err = NewPositionFromFEN(fen)
		require.NoError(t, err, "%v", i)
		var m, merr = NewPositionFromFEN(mirrorFEN(t, fen))
		require.NoError(t, merr, "%v", i)
		require.Equal(t, e.Evaluate(&p), e.Evaluate(&m), "fen %v mirrors to %v", fen, m.String())
	}
}

func TestEvaluateInitialIsBalanced(t *testing.T) {
	var e = NewEvaluationService()
	var p = InitialPosition()
	var score = e.Evaluate(&p)
	require.Less(t, score, 150)
	require.Greater(t, score, -150)
}

func TestSiegeAttritionPenalty(t *testing.T) {
	var e = NewEvaluationService()

	// 16 white wall HP trips the attrition penalty, 14 does not; the extra
	// wall is worth far less than the penalty. Both sides keep a Catapult so
	// the no-catapult draw scaling stays out of the picture.
	var over, err = NewPositionFromFEN("RRRRRRRR1/9/2c6/9/4S4/9/2C6/9/4s4 w - - 0 1")
	require.NoError(t, err)
	require.Equal(t, 16, over.WallTokens(White))

	var under, uerr = NewPositionFromFEN("RRRRRRR2/9/2c6/9/4S4/9/2C6/9/4s4 w - - 0 1")
	require.NoError(t, uerr)
	require.Equal(t, 14, under.WallTokens(White))

	require.Less(t, e.Evaluate(&over), e.Evaluate(&under))
}

func TestCatapultMonopolyBonus(t *testing.T) {
	var e = NewEvaluationService()

	var withCat, err = NewPositionFromFEN("4s4/9/9/9/9/9/9/9/C3S4 w - - 0 1")
	require.NoError(t, err)
	var withoutCat, werr = NewPositionFromFEN("4s4/9/9/9/9/9/9/9/L3S4 w - - 0 1")
	require.NoError(t, werr)

	// Catapult vs Lancer: more than the raw material gap, the monopoly
	// should show.
	var gap = e.Evaluate(&withCat) - e.Evaluate(&withoutCat)
	require.Greater(t, gap, 200)
}

func TestEntombmentPressureSignal(t *testing.T) {
	var e = NewEvaluationService()

	// Two walls around the cornered black Sovereign versus none. The white
	// Catapult sits on rays that touch neither the corner nor the walls, so
	// the only differences are the wall terms, the entombment pressure and
	// the black Sovereign's smaller attack set.
	var pressured, err = NewPositionFromFEN("sW7/W8/9/9/9/9/9/4C4/4S4 w - - 0 1")
	require.NoError(t, err)
	var free, ferr = NewPositionFromFEN("s8/9/9/9/9/9/9/4C4/4S4 w - - 0 1")
	require.NoError(t, ferr)

	require.Greater(t, e.Evaluate(&pressured), e.Evaluate(&free))
}
