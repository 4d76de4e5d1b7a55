package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Strategy chooses a move for the seat it is bound to. It returns false when it has
// no move to offer, either because the board is full or because the seat is played
// by a human whose moves arrive from outside.
type Strategy interface {
	SelectMove(board Board) (Move, bool)
}

// Binding ties a seat to the registered strategy name it was started with.
type Binding struct {
	Name     string
	Strategy Strategy
}

// Game is the state machine of one match. Once over it never changes again.
type Game struct {
	id        string
	board     Board
	turn      Mark
	over      bool
	winner    Winner
	line      *Line
	bindings  [2]Binding
	humanSeat Mark
}

// NewGame starts an empty board with X to move. humanSeat is Empty when no seat is
// played by a human.
func NewGame(id string, playerX, playerO Binding, humanSeat Mark) *Game {
	return &Game{
		id:        id,
		turn:      X,
		bindings:  [2]Binding{playerX, playerO},
		humanSeat: humanSeat,
	}
}

// Apply places the mark of the player to move. A rejected move leaves the game untouched.
func (that *Game) Apply(move Move) error {
	if that.over {
		return apperror.ErrGameFinished
	}

	if !move.InBounds() {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, move)
	}

	if that.board[move.Row][move.Col] != Empty {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, move)
	}

	that.board[move.Row][move.Col] = that.turn

	that.updateGameState()
	if !that.over {
		that.turn = that.turn.Opponent()
	}

	return nil
}

func (that *Game) updateGameState() {
	if mark, line, ok := CheckWinner(that.board); ok {
		that.winner = WinnerOf(mark)
		that.line = &line
		that.over = true

		return
	}

	// the game continues until every cell is taken
	if IsFull(that.board) {
		that.winner = Draw
		that.over = true
	}
}

func (that *Game) AvailableMoves() []Move {
	return LegalMoves(that.board)
}

// CurrentStrategy returns the strategy of the player to move, or nil when that seat is
// the human seat or has no strategy bound.
func (that *Game) CurrentStrategy() Strategy {
	if that.IsHumanTurn() {
		return nil
	}

	binding, ok := that.binding(that.turn)
	if !ok {
		return nil
	}

	return binding.Strategy
}

func (that *Game) binding(seat Mark) (Binding, bool) {
	switch seat {
	case X:
		return that.bindings[0], true
	case O:
		return that.bindings[1], true
	default:
		return Binding{}, false
	}
}

func (that *Game) ID() string {
	return that.id
}

func (that *Game) Board() Board {
	return that.board
}

// Turn is the player to move. After the game is over it keeps the last mover.
func (that *Game) Turn() Mark {
	return that.turn
}

func (that *Game) IsOver() bool {
	return that.over
}

func (that *Game) Winner() Winner {
	return that.winner
}

func (that *Game) HumanSeat() Mark {
	return that.humanSeat
}

// IsHumanTurn reports whether the player to move is the designated human seat.
func (that *Game) IsHumanTurn() bool {
	return that.humanSeat != Empty && that.turn == that.humanSeat
}

func (that *Game) Status() string {
	if that.over {
		return StatusFinished
	}

	return StatusOngoing
}

// Snapshot copies the observable state. The copy shares nothing with the game.
func (that *Game) Snapshot() Snapshot {
	snapshot := Snapshot{
		GameID:        that.id,
		Board:         that.board,
		CurrentPlayer: that.turn,
		Winner:        that.winner,
		GameOver:      that.over,
		Status:        that.Status(),
		PlayerXType:   that.bindings[0].Name,
		PlayerOType:   that.bindings[1].Name,
	}

	if that.line != nil {
		line := *that.line
		snapshot.WinnerLine = &line
	}

	if seat := that.HumanSeat(); seat != Empty {
		snapshot.HumanPlayer = &seat
	}

	return snapshot
}
