package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/game"
	"github.com/rocketscienceinc/knucklebones-backend/internal/usecase"
)

const maxBodySize = 1 << 20

type Handlers interface {
	SignUp(w http.ResponseWriter, r *http.Request)
	SetName(w http.ResponseWriter, r *http.Request)
	SubmitGame(w http.ResponseWriter, r *http.Request)
	OpenQueue(w http.ResponseWriter, r *http.Request)
	LeaderBoard(w http.ResponseWriter, r *http.Request)
}

type playerUseCase interface {
	SignUp(ctx context.Context) (*entity.Credentials, error)
	SetName(ctx context.Context, update *entity.UserUpdate) (*entity.Player, error)
}

type matchUseCase interface {
	Submit(ctx context.Context, body *entity.GameBody) (*game.BoardData, error)
}

type queueOpener interface {
	OpenQueue() uuid.UUID
}

type leaderBoardUseCase interface {
	Top(ctx context.Context, limit int) (*entity.LeaderBoard, error)
}

type handlers struct {
	logger  *slog.Logger
	players playerUseCase
	matches matchUseCase
	queues  queueOpener
	board   leaderBoardUseCase
}

func NewHandlers(
	logger *slog.Logger,
	players playerUseCase,
	matches matchUseCase,
	queues queueOpener,
	board leaderBoardUseCase,
) Handlers {
	return &handlers{
		logger:  logger,
		players: players,
		matches: matches,
		queues:  queues,
		board:   board,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type queueResponse struct {
	Queue uuid.UUID `json:"queue"`
}

func (that *handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	credentials, err := that.players.SignUp(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, credentials)
}

func (that *handlers) SetName(w http.ResponseWriter, r *http.Request) {
	var update entity.UserUpdate
	if err := decodeBody(w, r, &update); err != nil {
		that.writeError(w, r, err)
		return
	}

	player, err := that.players.SetName(r.Context(), &update)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *handlers) SubmitGame(w http.ResponseWriter, r *http.Request) {
	var body entity.GameBody
	if err := decodeBody(w, r, &body); err != nil {
		that.writeError(w, r, err)
		return
	}

	board, err := that.matches.Submit(r.Context(), &body)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, board)
}

func (that *handlers) OpenQueue(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, queueResponse{Queue: that.queues.OpenQueue()})
}

// LeaderBoard - the top players, ?limit= caps the number of entries.
func (that *handlers) LeaderBoard(w http.ResponseWriter, r *http.Request) {
	limit := usecase.DefaultLeaderBoardSize

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			that.writeError(w, r, fmt.Errorf("%w: limit: %w", apperror.ErrBadRequest, err))
			return
		}

		limit = parsed
	}

	board, err := that.board.Top(r.Context(), limit)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, board)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrBadRequest, err)
	}

	return nil
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: apperror.Kind(err), Message: err.Error()})
}
