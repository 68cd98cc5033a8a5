package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var (
	ErrPlayerNotFound      = fmt.Errorf("player %w", apperror.ErrNotFound)
	ErrPlayerAlreadyExists = fmt.Errorf("player %w", apperror.ErrAlreadyExists)
)

const (
	playerPrefix    = "player:"
	publicKeyPrefix = "player:key:"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Player, error)
	GetByPublicKey(ctx context.Context, publicKey string) (*entity.Player, error)
	UpdateName(ctx context.Context, publicKey, name string) (*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// Create - stores a new player. Public keys are unique.
func (that *dbPlayer) Create(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	created, err := that.client.SetNX(ctx, publicKeyPrefix+player.PublicKey, player.ID.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to index player key: %w", err)
	}

	if !created {
		return ErrPlayerAlreadyExists
	}

	if err = that.client.Set(ctx, playerPrefix+player.ID.String(), playerJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id uuid.UUID) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerPrefix+id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) GetByPublicKey(ctx context.Context, publicKey string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, publicKeyPrefix+publicKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by key: %w", err)
	}

	id, err := uuid.Parse(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse player id: %w", err)
	}

	return that.GetByID(ctx, id)
}

// UpdateName - renames the player owning publicKey.
func (that *dbPlayer) UpdateName(ctx context.Context, publicKey, name string) (*entity.Player, error) {
	player, err := that.GetByPublicKey(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	player.Name = name

	playerJSON, err := json.Marshal(player)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}

	if err = that.client.Set(ctx, playerPrefix+player.ID.String(), playerJSON, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to set player: %w", err)
	}

	return player, nil
}
