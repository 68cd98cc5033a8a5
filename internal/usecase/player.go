package usecase

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/pkg"
)

const maxNameLength = 32

type playerRepo interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByPublicKey(ctx context.Context, publicKey string) (*entity.Player, error)
	UpdateName(ctx context.Context, publicKey, name string) (*entity.Player, error)
}

type PlayerManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
}

func NewPlayerManager(logger *slog.Logger, playerRepo playerRepo) *PlayerManager {
	return &PlayerManager{
		logger:     logger,
		playerRepo: playerRepo,
	}
}

// SignUp - generates a key pair and registers a player for it.
func (that *PlayerManager) SignUp(ctx context.Context) (*entity.Credentials, error) {
	log := that.logger.With("method", "SignUp")

	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}

	player := &entity.Player{
		ID:        id,
		PublicKey: pkg.Encode(public),
		Name:      entity.DefaultPlayerName,
		CreatedAt: time.Now().UTC(),
	}

	if err = that.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Info("player signed up", "player_id", player.ID)

	return &entity.Credentials{
		PublicKey:  player.PublicKey,
		PrivateKey: pkg.EncodePrivateKey(private),
	}, nil
}

// SetName - renames a player after checking the signature over the new name.
func (that *PlayerManager) SetName(ctx context.Context, update *entity.UserUpdate) (*entity.Player, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be 1 to %d characters", apperror.ErrBadRequest, maxNameLength)
	}

	ok, err := pkg.VerifyString(update.PubKey, update.Name, update.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrBadRequest, err)
	}

	if !ok {
		return nil, apperror.ErrInvalidSignature
	}

	player, err := that.playerRepo.UpdateName(ctx, update.PubKey, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update name: %w", err)
	}

	return player, nil
}

// Resolve - returns the player id owning publicKey.
func (that *PlayerManager) Resolve(ctx context.Context, publicKey string) (uuid.UUID, error) {
	player, err := that.playerRepo.GetByPublicKey(ctx, publicKey)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get player by key: %w", err)
	}

	return player.ID, nil
}
