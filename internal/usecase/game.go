package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type matchController interface {
	AvailableStrategyNames() []string
	StartGame(playerX, playerO string, humanSeat entity.Mark) (entity.Snapshot, error)
	ApplyHumanMove(move entity.Move) (entity.Snapshot, error)
	TriggerAutoPlay() (entity.Snapshot, error)
	CurrentSnapshot() (entity.Snapshot, error)
}

type snapshotRepo interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
}

// GameUseCase is the entry point for transports. It drives the match controller and
// hands every resulting state to the spectator feed, outside the controller's lock.
// Publishing is ordered by snapshot sequence: a snapshot older than the last one
// published is dropped, so the feed never goes back in time.
type GameUseCase struct {
	logger *slog.Logger

	match     matchController
	snapshots snapshotRepo

	publishMu     sync.Mutex
	lastPublished uint64
}

// NewGameUseCase - snapshots may be nil when no spectator feed is configured.
func NewGameUseCase(logger *slog.Logger, match matchController, snapshots snapshotRepo) *GameUseCase {
	return &GameUseCase{
		logger:    logger.With("component", "usecase"),
		match:     match,
		snapshots: snapshots,
	}
}

func (that *GameUseCase) Strategies() []string {
	return that.match.AvailableStrategyNames()
}

func (that *GameUseCase) StartGame(ctx context.Context, playerX, playerO string, humanSeat entity.Mark) (entity.Snapshot, error) {
	snapshot, err := that.match.StartGame(playerX, playerO, humanSeat)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to start game: %w", err)
	}

	that.publish(ctx, snapshot)

	return snapshot, nil
}

// MakeMove plays the human move, publishes it, then lets automatic seats answer.
func (that *GameUseCase) MakeMove(ctx context.Context, move entity.Move) (entity.Snapshot, error) {
	snapshot, err := that.match.ApplyHumanMove(move)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to make move: %w", err)
	}

	that.publish(ctx, snapshot)

	return that.autoPlay(ctx, snapshot)
}

// AutoPlay lets automatic seats move without a preceding human move.
func (that *GameUseCase) AutoPlay(ctx context.Context) (entity.Snapshot, error) {
	before, err := that.match.CurrentSnapshot()
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get game state: %w", err)
	}

	return that.autoPlay(ctx, before)
}

func (that *GameUseCase) autoPlay(ctx context.Context, before entity.Snapshot) (entity.Snapshot, error) {
	snapshot, err := that.match.TriggerAutoPlay()
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to run auto-play: %w", err)
	}

	// publish only when the state changed since before
	if snapshot.Sequence != before.Sequence {
		that.publish(ctx, snapshot)
	}

	return snapshot, nil
}

func (that *GameUseCase) GameState(_ context.Context) (entity.Snapshot, error) {
	snapshot, err := that.match.CurrentSnapshot()
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get game state: %w", err)
	}

	return snapshot, nil
}

func (that *GameUseCase) publish(ctx context.Context, snapshot entity.Snapshot) {
	if that.snapshots == nil {
		return
	}

	that.publishMu.Lock()
	defer that.publishMu.Unlock()

	if snapshot.Sequence <= that.lastPublished {
		that.logger.Debug("skipping stale snapshot",
			"gameID", snapshot.GameID, "sequence", snapshot.Sequence, "lastPublished", that.lastPublished)
		return
	}

	// a failed save still advances the cursor, retrying an old state could overwrite a newer one
	that.lastPublished = snapshot.Sequence

	if err := that.snapshots.Save(ctx, snapshot); err != nil {
		that.logger.Error("failed to publish snapshot", "gameID", snapshot.GameID, "error", err)
	}
}
