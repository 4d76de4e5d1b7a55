package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const latestSnapshotKey = "match:current"

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is the spectator read model of the live game. It is written after
// every state change and never read back into the game itself.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	GetLatest(ctx context.Context) (*entity.Snapshot, error)
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

type dbSnapshot struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
}

func NewSnapshotRepository(client *redis.Client, channel string, ttl time.Duration) SnapshotRepository {
	return &dbSnapshot{
		client:  client,
		channel: channel,
		ttl:     ttl,
	}
}

// Save stores the snapshot as the latest one and publishes it in a single transaction.
func (that *dbSnapshot) Save(ctx context.Context, snapshot entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, latestSnapshotKey, snapshotJSON, that.ttl)
		pipe.Publish(ctx, that.channel, snapshotJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) GetLatest(ctx context.Context) (*entity.Snapshot, error) {
	response, err := that.client.Get(ctx, latestSnapshotKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// Subscribe streams published snapshots as raw JSON until ctx is done.
func (that *dbSnapshot) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := that.client.Subscribe(ctx, that.channel)

	// wait for the subscription to be confirmed, so nothing published after return is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", that.channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
