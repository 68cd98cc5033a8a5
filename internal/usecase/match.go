package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/game"
	"github.com/rocketscienceinc/knucklebones-backend/internal/matchmaking"
	"github.com/rocketscienceinc/knucklebones-backend/internal/pkg"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository"
)

type matchRepo interface {
	SaveStarted(ctx context.Context, match *entity.StartedMatch) error
	GetStarted(ctx context.Context, seed, time uint64) (*entity.StartedMatch, error)
	SaveResult(ctx context.Context, result *entity.MatchResult) error
}

type playerResolver interface {
	Resolve(ctx context.Context, publicKey string) (uuid.UUID, error)
}

type ticketVerifier interface {
	Verify(ticket matchmaking.Ticket, signature string) bool
}

type MatchManager struct {
	logger    *slog.Logger
	matchRepo matchRepo
	players   playerResolver
	tickets   ticketVerifier
	deckSize  game.DeckSize
	now       func() time.Time
}

func NewMatchManager(
	logger *slog.Logger,
	matchRepo matchRepo,
	players playerResolver,
	tickets ticketVerifier,
	deckSize game.DeckSize,
) *MatchManager {
	return &MatchManager{
		logger:    logger,
		matchRepo: matchRepo,
		players:   players,
		tickets:   tickets,
		deckSize:  deckSize,
		now:       time.Now,
	}
}

// Submit - replays a finished match, scores it and stores the result. Returns
// the final board from the submitter's side.
func (that *MatchManager) Submit(ctx context.Context, body *entity.GameBody) (*game.BoardData, error) {
	log := that.logger.With("method", "Submit")

	if body.YourKey == body.OpponentKey {
		return nil, apperror.ErrSelfPlay
	}

	yourKey, err := pkg.ParsePublicKey(body.YourKey)
	if err != nil {
		return nil, fmt.Errorf("%w: your_key: %w", apperror.ErrBadRequest, err)
	}

	opponentKey, err := pkg.ParsePublicKey(body.OpponentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: opponent_key: %w", apperror.ErrBadRequest, err)
	}

	ticket := matchmaking.Ticket{Seed: body.Seed, Time: body.Time, InitiatorKey: body.OpponentKey, OtherKey: body.YourKey}
	if body.Starting {
		ticket.InitiatorKey, ticket.OtherKey = body.YourKey, body.OpponentKey
	}

	if !that.tickets.Verify(ticket, body.Signature) {
		return nil, fmt.Errorf("%w: ticket", apperror.ErrInvalidSignature)
	}

	you, err := that.players.Resolve(ctx, body.YourKey)
	if err != nil {
		return nil, err
	}

	opponent, err := that.players.Resolve(ctx, body.OpponentKey)
	if err != nil {
		return nil, err
	}

	started, err := that.matchRepo.GetStarted(ctx, body.Seed, body.Time)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return nil, fmt.Errorf("%w: match was never started", apperror.ErrBadRequest)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get started match: %w", err)
	}

	if !started.Between(you, opponent) {
		return nil, fmt.Errorf("%w: players did not start this match", apperror.ErrBadRequest)
	}

	board, moves, err := game.ValidateEntireGame(
		yourKey, opponentKey, that.deckSize,
		game.ServerGameInfo{Seed: body.Seed, Starting: body.Starting},
		body.Moves,
	)
	if err != nil {
		log.Info("rejected match", "match_id", started.ID, "error", err)
		return nil, err
	}

	if !board.IsCompleted {
		return nil, fmt.Errorf("%w: match is not finished", apperror.ErrBadRequest)
	}

	result := buildResult(started, you, opponent, board, moves)
	result.CompletedAt = that.now().UTC()

	if err = that.matchRepo.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	log.Info("match stored", "match_id", result.MatchID, "result", result.Result)

	return &board, nil
}

func buildResult(
	started *entity.StartedMatch,
	you, opponent uuid.UUID,
	board game.BoardData,
	moves []game.TrustedMove,
) *entity.MatchResult {
	result := &entity.MatchResult{
		MatchID:   started.ID,
		Seed:      started.Seed,
		Time:      started.Time,
		Player1:   you,
		Player2:   opponent,
		PointsP1:  game.Total(board.Points.Me),
		PointsP2:  game.Total(board.Points.Other),
		StartedAt: started.CreatedAt,
		Moves:     make([]entity.Move, 0, len(moves)),
	}

	switch end := board.Winner; {
	case end.WinByForfeit:
		result.Result = entity.ResultForfeit
	case end.WinByTie:
		result.Result = entity.ResultTie
	default:
		result.Result = entity.ResultWin
	}

	if !board.Winner.WinByTie {
		result.Winner = opponent
		if board.Winner.Winner {
			result.Winner = you
		}
	}

	for _, move := range moves {
		player := opponent
		if move.Side == game.Me {
			player = you
		}

		result.Moves = append(result.Moves, entity.Move{
			PlayerID:  player,
			Number:    move.Number,
			Column:    move.Column,
			Seq:       move.Seq,
			Timestamp: move.Timestamp,
		})
	}

	return result
}
