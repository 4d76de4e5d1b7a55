package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mark is the content of a single board cell. X always moves first.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

const BoardSize = 3

var ErrInvalidMark = errors.New("invalid mark")

// WinLines lists every line that wins the game, in the order CheckWinner scans them:
// rows top to bottom, columns left to right, then the main and anti diagonals.
var WinLines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

func ParseMark(s string) (Mark, error) {
	switch s {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case " ", ".", "":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, s)
	}
}

// String renders an empty cell as a single space.
func (that Mark) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

func (that Mark) Opponent() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

// Board is the 3x3 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Mark

// Move addresses a cell by zero-based row and column.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

func (that Move) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

// Line is three cells forming a row, a column or a diagonal.
type Line [3]Move

// MarshalJSON encodes the line as [[row, col], ...].
func (that Line) MarshalJSON() ([]byte, error) {
	var pairs [3][2]int
	for i, move := range that {
		pairs[i] = [2]int{move.Row, move.Col}
	}

	return json.Marshal(pairs)
}

func (that *Line) UnmarshalJSON(data []byte) error {
	var pairs [3][2]int
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("failed to unmarshal line: %w", err)
	}

	for i, pair := range pairs {
		that[i] = Move{Row: pair[0], Col: pair[1]}
	}

	return nil
}

// LegalMoves returns every empty cell in row-major order.
func LegalMoves(board Board) []Move {
	moves := make([]Move, 0, BoardSize*BoardSize)
	for row := range board {
		for col, cell := range board[row] {
			if cell == Empty {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}

	return moves
}

func IsFull(board Board) bool {
	for row := range board {
		for _, cell := range board[row] {
			if cell == Empty {
				return false
			}
		}
	}

	return true
}

// CheckWinner reports the first line in WinLines held entirely by one mark.
func CheckWinner(board Board) (Mark, Line, bool) {
	for _, line := range WinLines {
		a := board[line[0].Row][line[0].Col]
		b := board[line[1].Row][line[1].Col]
		c := board[line[2].Row][line[2].Col]

		if a != Empty && a == b && b == c {
			return a, line, true
		}
	}

	return Empty, Line{}, false
}
