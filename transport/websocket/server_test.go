package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
)

type fakeFeed struct {
	latest  *entity.Snapshot
	updates chan []byte
}

func (that *fakeFeed) GetLatest(_ context.Context) (*entity.Snapshot, error) {
	if that.latest == nil {
		return nil, repository.ErrSnapshotNotFound
	}

	return that.latest, nil
}

func (that *fakeFeed) Subscribe(_ context.Context) (<-chan []byte, error) {
	return that.updates, nil
}

func dial(t *testing.T, feed *fakeFeed) *websocket.Conn {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(logger, feed).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestServer_SendsLatestThenForwards(t *testing.T) {
	// Given: a game with X in the center is the latest snapshot
	latest := entity.Snapshot{GameID: "game-1", CurrentPlayer: entity.O, Status: entity.StatusOngoing}
	latest.Board[1][1] = entity.X
	feed := &fakeFeed{latest: &latest, updates: make(chan []byte)}

	conn := dial(t, feed)

	// When: the spectator connects
	msg := readMessage(t, conn)

	// Then: it receives the latest snapshot first
	assert.Equal(t, actionGameState, msg.Action)

	var snapshot entity.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snapshot))
	assert.Equal(t, "game-1", snapshot.GameID)
	assert.Equal(t, entity.X, snapshot.Board[1][1])

	// When: a new snapshot is published
	feed.updates <- []byte(`{"game_id":"game-2"}`)

	// Then: it is forwarded unchanged
	msg = readMessage(t, conn)
	assert.Equal(t, actionGameState, msg.Action)
	assert.JSONEq(t, `{"game_id":"game-2"}`, string(msg.Payload))
}

func TestServer_NoLatestSnapshot(t *testing.T) {
	// Given: nothing was published yet
	feed := &fakeFeed{updates: make(chan []byte)}

	conn := dial(t, feed)

	// When: the first snapshot is published
	feed.updates <- []byte(`{"game_id":"game-1"}`)

	// Then: it is the first message the spectator sees
	msg := readMessage(t, conn)
	assert.Equal(t, actionGameState, msg.Action)
	assert.JSONEq(t, `{"game_id":"game-1"}`, string(msg.Payload))
}

func TestServer_ClosedFeedClosesConnection(t *testing.T) {
	feed := &fakeFeed{updates: make(chan []byte)}
	conn := dial(t, feed)

	close(feed.updates)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestServer_Routes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(logger, &fakeFeed{updates: make(chan []byte)}).Handler()

	t.Run("Plain request on /ws is refused", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unknown path is not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/other", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Only GET upgrades", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ws", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}
