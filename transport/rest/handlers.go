package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

var errMissingCoordinates = errors.New("row and col are required")

type gameUseCase interface {
	Strategies() []string
	StartGame(ctx context.Context, playerX, playerO string, humanSeat entity.Mark) (entity.Snapshot, error)
	MakeMove(ctx context.Context, move entity.Move) (entity.Snapshot, error)
	AutoPlay(ctx context.Context) (entity.Snapshot, error)
	GameState(ctx context.Context) (entity.Snapshot, error)
}

type startGameRequest struct {
	HumanPlayerSymbol entity.Mark `json:"human_player_symbol"`
	PlayerXType       string      `json:"player_x_type"`
	PlayerOType       string      `json:"player_o_type"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type availableAgentsResponse struct {
	Agents []string `json:"agents"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

func newHandlers(logger *slog.Logger, game gameUseCase) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

func (that *handlers) availableAgents(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, availableAgentsResponse{Agents: that.game.Strategies()})
}

func (that *handlers) startGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, "startGame", http.StatusBadRequest, err)
		return
	}

	snapshot, err := that.game.StartGame(r.Context(), req.PlayerXType, req.PlayerOType, req.HumanPlayerSymbol)
	if err != nil {
		that.writeError(w, "startGame", statusFromError(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) gameStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.GameState(r.Context())
	if err != nil {
		that.writeError(w, "gameStatus", statusFromError(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, "makeMove", http.StatusBadRequest, err)
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeError(w, "makeMove", http.StatusBadRequest, errMissingCoordinates)
		return
	}

	snapshot, err := that.game.MakeMove(r.Context(), entity.Move{Row: *req.Row, Col: *req.Col})
	if err != nil {
		that.writeError(w, "makeMove", statusFromError(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) autoPlay(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.AutoPlay(r.Context())
	if err != nil {
		that.writeError(w, "autoPlay", statusFromError(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnknownStrategy),
		errors.Is(err, apperror.ErrOutOfBounds),
		errors.Is(err, apperror.ErrCellOccupied):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, method string, status int, err error) {
	log := that.logger.With("method", method)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Info("request rejected", "status", status, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
