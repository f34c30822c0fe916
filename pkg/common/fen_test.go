package common

import (
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	var tests = []string{
		InitialPositionFen,
		"clpisiplc/mmmmmmmmm/9/9/4M4/9/9/MMMMMMMM1/CLPISIPLC b Bb w 3 12",
		"9/9/9/9/3IS4/9/9/9/4s4 w B - 0 1",
		"sW7/W8/1M7/9/9/9/9/9/4S4 w - - 0 1",
		"9/2R6/9/9/4C1r2/9/9/4S4/4s4 b b b 17 42",
		"9/9/9/9/9/9/9/9/Ss7 w - wb 0 1",
	}
	for i, fen := range tests {
		var p, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(i, err)
		}
		if got := p.String(); got != fen {
			t.Errorf("%v: round trip %v -> %v", i, fen, got)
		}
	}
}

func TestFENShortForms(t *testing.T) {
	// Missing wall-seq and clocks infer defaults.
	var p, err = NewPositionFromFEN("9/9/9/9/3IS4/9/9/9/4s4 w B")
	if err != nil {
		t.Fatal(err)
	}
	if p.WallBuiltLast(White) || p.WallBuiltLast(Black) {
		t.Error("wall seq should default to none")
	}
	if p.Halfmove != 0 || p.Fullmove != 1 {
		t.Error("clocks should default to 0 1")
	}
	if p.BastionRight(White) != true || p.BastionRight(Black) != false {
		t.Error("rights should parse from the third field")
	}

	// Rights missing entirely: both sides keep the Bastion.
	p, err = NewPositionFromFEN("9/9/9/9/3IS4/9/9/9/4s4 b")
	if err != nil {
		t.Fatal(err)
	}
	if !p.BastionRight(White) || !p.BastionRight(Black) {
		t.Error("rights should default to Bb")
	}

	// Short form with numeric third trailing field: rights then halfmove.
	p, err = NewPositionFromFEN("9/9/9/9/3IS4/9/9/9/4s4 w Bb 14 9")
	if err != nil {
		t.Fatal(err)
	}
	if p.Halfmove != 14 || p.Fullmove != 9 {
		t.Errorf("clocks = %v %v, want 14 9", p.Halfmove, p.Fullmove)
	}
}

func TestFENErrors(t *testing.T) {
	var tests = []string{
		"",
		"9/9/9/9/9/9/9/9/9",
		"9/9/9/9/9/9/9/9/9 x",
		"8/9/9/9/9/9/9/9/9 w",
		"9/9/9/9/9/9/9/9 w",
		"9/9/9/9/9/9/9/9/9/9 w",
		"X8/9/9/9/9/9/9/9/9 w",
		"99/9/9/9/9/9/9/9/9 w",
	}
	for i, fen := range tests {
		if _, err := NewPositionFromFEN(fen); err == nil {
			t.Errorf("%v: expected error for %q", i, fen)
		}
	}
}

func TestInitialPositionMatchesFEN(t *testing.T) {
	var fromSetup = InitialPosition()
	var fromFen, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	if fromSetup.String() != fromFen.String() {
		t.Error(fromSetup.String(), fromFen.String())
	}
	if fromSetup.Key != fromFen.Key {
		t.Error("keys differ")
	}
}
