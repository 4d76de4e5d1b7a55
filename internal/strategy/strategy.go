// Package strategy holds the move-selection strategies a seat can be bound to and
// the registry that builds them by display name.
package strategy

import (
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Random picks uniformly among the legal moves.
type Random struct {
	seat entity.Mark
	intn func(n int) int
}

func NewRandom(seat entity.Mark) *Random {
	return &Random{
		seat: seat,
		intn: rand.Intn, //nolint: gosec // it's ok
	}
}

func (that *Random) Seat() entity.Mark {
	return that.seat
}

func (that *Random) SelectMove(board entity.Board) (entity.Move, bool) {
	moves := entity.LegalMoves(board)
	if len(moves) == 0 {
		return entity.Move{}, false
	}

	return moves[that.intn(len(moves))], true
}

// Human never offers a move; the seat's moves come in through the human move entry point.
type Human struct {
	seat entity.Mark
}

func NewHuman(seat entity.Mark) *Human {
	return &Human{seat: seat}
}

func (that *Human) Seat() entity.Mark {
	return that.seat
}

func (that *Human) SelectMove(entity.Board) (entity.Move, bool) {
	return entity.Move{}, false
}
