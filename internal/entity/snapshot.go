package entity

import (
	"encoding/json"
	"fmt"
)

// Winner is the outcome of a game. Draw is its own value even though the wire
// format shares the empty-cell marker with it.
type Winner uint8

const (
	NoWinner Winner = iota
	WinnerX
	WinnerO
	Draw
)

func WinnerOf(mark Mark) Winner {
	switch mark {
	case X:
		return WinnerX
	case O:
		return WinnerO
	default:
		return NoWinner
	}
}

// Mark returns the winning mark. It is Empty for a draw or an unfinished game.
func (that Winner) Mark() Mark {
	switch that {
	case WinnerX:
		return X
	case WinnerO:
		return O
	default:
		return Empty
	}
}

// MarshalJSON writes null while the game runs, "X" or "O" for a win and " " for a draw.
func (that Winner) MarshalJSON() ([]byte, error) {
	switch that {
	case WinnerX, WinnerO:
		return json.Marshal(that.Mark().String())
	case Draw:
		return json.Marshal(Empty.String())
	default:
		return []byte("null"), nil
	}
}

func (that *Winner) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = NoWinner
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("failed to unmarshal winner: %w", err)
	}

	mark, err := ParseMark(text)
	if err != nil {
		return err
	}

	if mark == Empty {
		*that = Draw
		return nil
	}

	*that = WinnerOf(mark)

	return nil
}

// Snapshot is a read-only copy of a game as seen by callers. Sequence is assigned by
// the match controller and grows with every state change, across games.
type Snapshot struct {
	GameID        string `json:"game_id"`
	Sequence      uint64 `json:"sequence"`
	Board         Board  `json:"board"`
	CurrentPlayer Mark   `json:"current_player"`
	Winner        Winner `json:"winner"`
	WinnerLine    *Line  `json:"winner_line"`
	GameOver      bool   `json:"game_over"`
	Status        string `json:"status"`
	PlayerXType   string `json:"player_x_type"`
	PlayerOType   string `json:"player_o_type"`
	HumanPlayer   *Mark  `json:"human_player_symbol,omitempty"`
}

// MarksPlaced counts the occupied cells.
func (that Snapshot) MarksPlaced() int {
	return BoardSize*BoardSize - len(LegalMoves(that.Board))
}
