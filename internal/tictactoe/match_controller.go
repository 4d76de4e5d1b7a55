package tictactoe

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-arena/internal/strategy"
)

// MatchController owns the single live game. Every operation runs under one lock, so a
// read-mutate-read sequence is atomic with respect to concurrent callers.
type MatchController struct {
	logger   *slog.Logger
	registry *strategy.Registry
	newID    func() string

	mu       sync.Mutex
	game     *entity.Game
	sequence uint64
}

func NewMatchController(logger *slog.Logger, registry *strategy.Registry) *MatchController {
	return &MatchController{
		logger:   logger.With("component", "match"),
		registry: registry,
		newID:    pkg.GenerateGameID,
	}
}

// AvailableStrategyNames needs no lock: the registry never changes.
func (that *MatchController) AvailableStrategyNames() []string {
	return that.registry.Names()
}

// StartGame replaces the live game and lets automatic seats move until a human seat is
// to move or the game ends. An unknown strategy name leaves the previous game in place.
func (that *MatchController) StartGame(playerX, playerO string, humanSeat entity.Mark) (entity.Snapshot, error) {
	bindingX, err := that.registry.New(playerX, entity.X)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to bind player X: %w", err)
	}

	bindingO, err := that.registry.New(playerO, entity.O)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to bind player O: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.game = entity.NewGame(that.newID(), bindingX, bindingO, humanSeat)
	that.logger.Info("game started",
		"gameID", that.game.ID(), "playerX", playerX, "playerO", playerO, "humanSeat", humanSeat.String())

	that.autoPlay()
	that.sequence++

	return that.snapshot(), nil
}

// ApplyHumanMove plays the move for the seat to move. It never triggers automatic seats;
// callers do that with TriggerAutoPlay so the human move can be observed first.
func (that *MatchController) ApplyHumanMove(move entity.Move) (entity.Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return entity.Snapshot{}, apperror.ErrGameIsNotStarted
	}

	if err := that.game.Apply(move); err != nil {
		return entity.Snapshot{}, fmt.Errorf("invalid turn: %w", err)
	}
	that.sequence++

	return that.snapshot(), nil
}

func (that *MatchController) TriggerAutoPlay() (entity.Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return entity.Snapshot{}, apperror.ErrGameIsNotStarted
	}

	if that.autoPlay() > 0 {
		that.sequence++
	}

	return that.snapshot(), nil
}

func (that *MatchController) CurrentSnapshot() (entity.Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return entity.Snapshot{}, apperror.ErrGameIsNotStarted
	}

	return that.snapshot(), nil
}

// snapshot must be called with the lock held.
func (that *MatchController) snapshot() entity.Snapshot {
	snapshot := that.game.Snapshot()
	snapshot.Sequence = that.sequence

	return snapshot
}

// autoPlay must be called with the lock held and returns the number of moves played.
// It never fails: a strategy that returns an illegal move is logged and the loop stops,
// the game itself rejects the move.
func (that *MatchController) autoPlay() int {
	log := that.logger.With("method", "autoPlay", "gameID", that.game.ID())

	played := 0

	for !that.game.IsOver() && !that.game.IsHumanTurn() {
		player := that.game.Turn()

		current := that.game.CurrentStrategy()
		if current == nil {
			log.Debug("no strategy bound", "player", player.String())
			return played
		}

		move, ok := current.SelectMove(that.game.Board())
		if !ok {
			log.Debug("strategy returned no move", "player", player.String())
			return played
		}

		if err := that.game.Apply(move); err != nil {
			log.Error("strategy made an invalid move", "player", player.String(), "move", move.String(), "error", err)
			return played
		}

		played++
		log.Info("strategy chose move", "player", player.String(), "move", move.String())
	}

	return played
}
