package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
)

const shutdownTimeout = 5 * time.Second

type snapshotFeed interface {
	GetLatest(ctx context.Context) (*entity.Snapshot, error)
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// Server streams every published snapshot of the live game to spectators.
type Server struct {
	logger   *slog.Logger
	feed     snapshotFeed
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, feed snapshotFeed) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		feed:   feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", that.serveSpectator)

	return r
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveSpectator(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveSpectator")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// spectators never send anything we act on, reading only detects the disconnect
	go func() {
		defer cancel()

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	updates, err := that.feed.Subscribe(ctx)
	if err != nil {
		log.Error("failed to subscribe to snapshots", "error", err)
		return
	}

	log.Info("spectator connected")

	if err = that.sendLatest(ctx, conn); err != nil {
		log.Error("failed to send latest snapshot", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("spectator disconnected")
			return
		case snapshotJSON, ok := <-updates:
			if !ok {
				return
			}

			if err = sendState(conn, snapshotJSON); err != nil {
				log.Error("failed to forward snapshot", "error", err)
				return
			}
		}
	}
}

func (that *Server) sendLatest(ctx context.Context, conn *websocket.Conn) error {
	snapshot, err := that.feed.GetLatest(ctx)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return sendState(conn, snapshotJSON)
}
