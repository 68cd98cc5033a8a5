package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

const (
	DefaultLeaderBoardSize = 100
	MaxLeaderBoardSize     = 1000
)

type standingsRepo interface {
	LeaderBoard(ctx context.Context, limit int) ([]entity.Standing, error)
}

type playerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Player, error)
}

type LeaderBoardManager struct {
	logger    *slog.Logger
	standings standingsRepo
	players   playerLookup
}

func NewLeaderBoardManager(logger *slog.Logger, standings standingsRepo, players playerLookup) *LeaderBoardManager {
	return &LeaderBoardManager{
		logger:    logger,
		standings: standings,
		players:   players,
	}
}

// Top - the best players by points, wins and games, with their current names.
// Players that have no finished match are not listed.
func (that *LeaderBoardManager) Top(ctx context.Context, limit int) (*entity.LeaderBoard, error) {
	log := that.logger.With("method", "Top")

	if limit <= 0 || limit > MaxLeaderBoardSize {
		return nil, fmt.Errorf("%w: limit must be within 1..%d", apperror.ErrBadRequest, MaxLeaderBoardSize)
	}

	standings, err := that.standings.LeaderBoard(ctx, limit)
	if err != nil {
		log.Error("failed to read standings", "error", err)
		return nil, fmt.Errorf("%w: failed to read standings", apperror.ErrInternal)
	}

	entries := make([]entity.LeaderBoardEntry, 0, len(standings))

	for _, standing := range standings {
		name := entity.DefaultPlayerName

		player, err := that.players.GetByID(ctx, standing.PlayerID)
		switch {
		case err == nil:
			name = player.Name
		case errors.Is(err, apperror.ErrNotFound):
			log.Warn("standing of unknown player", "player_id", standing.PlayerID)
		default:
			log.Error("failed to get player", "player_id", standing.PlayerID, "error", err)
			return nil, fmt.Errorf("%w: failed to get player", apperror.ErrInternal)
		}

		entries = append(entries, entity.LeaderBoardEntry{
			Name:        name,
			TotalPoints: standing.TotalPoints,
			TotalGames:  standing.TotalGames,
			TotalWins:   standing.TotalWins,
		})
	}

	slices.SortStableFunc(entries, func(a, b entity.LeaderBoardEntry) int {
		return cmp.Or(
			cmp.Compare(b.TotalPoints, a.TotalPoints),
			cmp.Compare(b.TotalWins, a.TotalWins),
			cmp.Compare(b.TotalGames, a.TotalGames),
			cmp.Compare(a.Name, b.Name),
		)
	})

	return &entity.LeaderBoard{Total: len(entries), Entries: entries}, nil
}
