package common

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const InitialPositionFen = "clpisiplc/mmmmmmmmm/9/9/9/9/9/MMMMMMMMM/CLPISIPLC w Bb - 0 1"

const pieceChars = "MCLPIS"

func contentToChar(v int8) byte {
	var ch byte
	if isPieceValue(v) {
		ch = pieceChars[pieceOf(v)-Mason]
	} else if wallHP(v) == 2 {
		ch = 'R'
	} else {
		ch = 'W'
	}
	if v < 0 {
		ch += 'a' - 'A'
	}
	return ch
}

func parseContent(ch rune) (int8, error) {
	var color = White
	if unicode.IsLower(ch) {
		color = Black
	}
	switch unicode.ToUpper(ch) {
	case 'M':
		return makePieceValue(color, Mason), nil
	case 'C':
		return makePieceValue(color, Catapult), nil
	case 'L':
		return makePieceValue(color, Lancer), nil
	case 'P':
		return makePieceValue(color, Pegasus), nil
	case 'I':
		return makePieceValue(color, Minister), nil
	case 'S':
		return makePieceValue(color, Sovereign), nil
	case 'W':
		return makeWallValue(color, 1), nil
	case 'R':
		return makeWallValue(color, 2), nil
	}
	return 0, fmt.Errorf("unknown piece %q", ch)
}

// String renders the position in the FEN-like format: 9 rank rows top to
// bottom, side to move, bastion rights, wall-built-last flags, halfmove,
// fullmove.
func (p *Position) String() string {
	var sb bytes.Buffer

	for row := 0; row < BoardWidth; row++ {
		var empty = 0
		for col := 0; col < BoardWidth; col++ {
			var v = p.board[MakeSquare(row, col)]
			if v == 0 {
				empty++
				continue
			}
			if empty != 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(contentToChar(v))
		}
		if empty != 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row != BoardWidth-1 {
			sb.WriteString("/")
		}
	}

	sb.WriteString(" ")
	if p.Turn == White {
		sb.WriteString("w")
	} else {
		sb.WriteString("b")
	}

	sb.WriteString(" ")
	var rights = ""
	if p.bastionRight[White] {
		rights += "B"
	}
	if p.bastionRight[Black] {
		rights += "b"
	}
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)

	sb.WriteString(" ")
	var wallSeq = ""
	if p.wallBuiltLast[White] {
		wallSeq += "w"
	}
	if p.wallBuiltLast[Black] {
		wallSeq += "b"
	}
	if wallSeq == "" {
		wallSeq = "-"
	}
	sb.WriteString(wallSeq)

	fmt.Fprintf(&sb, " %v %v", p.Halfmove, p.Fullmove)
	return sb.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// NewPositionFromFEN parses the FEN-like format. Shorter forms missing the
// wall-built-last field or the clocks are accepted with defaults.
func NewPositionFromFEN(fen string) (Position, error) {
	var tokens = strings.Fields(fen)
	if len(tokens) < 2 {
		return Position{}, fmt.Errorf("parse fen failed %v: expected board and turn", fen)
	}

	var rightsStr = "Bb"
	var wallStr = "-"
	var halfmove = 0
	var fullmove = 1

	if len(tokens) > 2 {
		rightsStr = tokens[2]
	}
	if len(tokens) > 3 {
		if isDigits(tokens[3]) {
			halfmove, _ = strconv.Atoi(tokens[3])
			if len(tokens) > 4 {
				fullmove, _ = strconv.Atoi(tokens[4])
			}
		} else {
			wallStr = tokens[3]
			if len(tokens) > 4 {
				halfmove, _ = strconv.Atoi(tokens[4])
			}
			if len(tokens) > 5 {
				fullmove, _ = strconv.Atoi(tokens[5])
			}
		}
	}

	var p = NewPosition()

	switch strings.ToLower(tokens[1]) {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return Position{}, fmt.Errorf("parse fen failed %v: turn must be 'w' or 'b'", fen)
	}

	p.bastionRight[White] = strings.Contains(rightsStr, "B")
	p.bastionRight[Black] = strings.Contains(rightsStr, "b")

	p.wallBuiltLast[White] = false
	p.wallBuiltLast[Black] = false
	if wallStr != "-" {
		var lower = strings.ToLower(wallStr)
		p.wallBuiltLast[White] = strings.Contains(lower, "w")
		p.wallBuiltLast[Black] = strings.Contains(lower, "b")
	}

	p.Halfmove = halfmove
	p.Fullmove = fullmove

	var row, col = 0, 0
	for _, ch := range tokens[0] {
		if ch == '/' {
			if col != BoardWidth {
				return Position{}, fmt.Errorf("parse fen failed %v: rank does not have 9 files", fen)
			}
			row++
			col = 0
			continue
		}
		if row >= BoardWidth {
			return Position{}, fmt.Errorf("parse fen failed %v: too many ranks", fen)
		}
		if ch >= '1' && ch <= '9' {
			col += int(ch - '0')
			if col > BoardWidth {
				return Position{}, fmt.Errorf("parse fen failed %v: file overflow", fen)
			}
			continue
		}
		if col >= BoardWidth {
			return Position{}, fmt.Errorf("parse fen failed %v: too many files in rank", fen)
		}
		var v, err = parseContent(ch)
		if err != nil {
			return Position{}, fmt.Errorf("parse fen failed %v: %v", fen, err)
		}
		p.board[MakeSquare(row, col)] = v
		col++
	}
	if row != BoardWidth-1 || col != BoardWidth {
		return Position{}, fmt.Errorf("parse fen failed %v: board must be 9 ranks of 9 files", fen)
	}

	p.rebuildDerived()
	return p, nil
}

// Pretty renders a human-readable board for console play and debugging.
func (p *Position) Pretty() string {
	var sb bytes.Buffer

	fmt.Fprintf(&sb, "Turn: %v  Bastion rights: ", colorName(p.Turn))
	if p.bastionRight[White] {
		sb.WriteString("W")
	} else {
		sb.WriteString("-")
	}
	if p.bastionRight[Black] {
		sb.WriteString("b")
	} else {
		sb.WriteString("-")
	}
	fmt.Fprintf(&sb, "  Walls: W=%v B=%v\n", p.wallTokens[White], p.wallTokens[Black])

	if p.winner != SquareNone {
		var reason = "Regicide"
		if p.winReason == WinEntombment {
			reason = "Entombment"
		}
		fmt.Fprintf(&sb, "Winner: %v (%v)\n", colorName(p.winner), reason)
	}

	sb.WriteString("   A B C D E F G H I\n")
	for row := 0; row < BoardWidth; row++ {
		fmt.Fprintf(&sb, "%v  ", BoardWidth-row)
		for col := 0; col < BoardWidth; col++ {
			var v = p.board[MakeSquare(row, col)]
			if v == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(contentToChar(v))
			}
			if col != BoardWidth-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func colorName(color int) string {
	if color == White {
		return "White"
	}
	return "Black"
}
