package usecase

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/pkg"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository"
	"github.com/rocketscienceinc/knucklebones-backend/testing/suite"
)

var errRedisDown = errors.New("redis down")

type testIdentity struct {
	public  string
	private ed25519.PrivateKey
}

func newIdentity(b byte) testIdentity {
	private := ed25519.NewKeyFromSeed([]byte(strings.Repeat(string(rune('a'+b)), ed25519.SeedSize)))
	public, _ := private.Public().(ed25519.PublicKey)

	return testIdentity{public: pkg.Encode(public), private: private}
}

func (that testIdentity) sign(message string) string {
	return pkg.Encode(ed25519.Sign(that.private, []byte(message)))
}

func TestPlayerManager_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("Generates a key pair and stores the player", func(t *testing.T) {
		// Given: A player repository accepting the new player
		repo := newMockPlayerRepo(t)
		manager := NewPlayerManager(suite.NewLogger(), repo)

		var stored *entity.Player
		repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Player")).
			Run(func(args mock.Arguments) { stored, _ = args.Get(1).(*entity.Player) }).
			Return(nil).
			Once()

		// When: Signing up
		credentials, err := manager.SignUp(ctx)

		// Then: The returned private key matches the stored public key
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, entity.DefaultPlayerName, stored.Name)
		assert.Equal(t, uuid.Version(7), stored.ID.Version())
		assert.Equal(t, stored.PublicKey, credentials.PublicKey)

		private, err := pkg.ParsePrivateKey(credentials.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, credentials.PublicKey, pkg.Encode(private.Public().(ed25519.PublicKey)))
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		// Given: A failing player repository
		repo := newMockPlayerRepo(t)
		manager := NewPlayerManager(suite.NewLogger(), repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		// When: Signing up
		credentials, err := manager.SignUp(ctx)

		// Then: The storage error is returned
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, credentials)
	})
}

func TestPlayerManager_SetName(t *testing.T) {
	ctx := context.Background()
	alice := newIdentity(0)

	t.Run("Renames with a valid signature", func(t *testing.T) {
		// Given: A signed rename request
		repo := newMockPlayerRepo(t)
		manager := NewPlayerManager(suite.NewLogger(), repo)

		renamed := &entity.Player{ID: uuid.New(), PublicKey: alice.public, Name: "alice"}
		repo.On("UpdateName", mock.Anything, alice.public, "alice").Return(renamed, nil).Once()

		// When: Setting the name
		player, err := manager.SetName(ctx, &entity.UserUpdate{PubKey: alice.public, Name: "alice", Signature: alice.sign("alice")})

		// Then: The updated player is returned
		require.NoError(t, err)
		assert.Equal(t, renamed, player)
	})

	t.Run("Rejects a signature over another name", func(t *testing.T) {
		// Given: A signature over a different name
		manager := NewPlayerManager(suite.NewLogger(), newMockPlayerRepo(t))

		// When: Setting the name
		_, err := manager.SetName(ctx, &entity.UserUpdate{PubKey: alice.public, Name: "mallory", Signature: alice.sign("alice")})

		// Then: The request is rejected as an invalid signature
		require.ErrorIs(t, err, apperror.ErrInvalidSignature)
	})

	t.Run("Rejects an empty name", func(t *testing.T) {
		// Given: A blank name
		manager := NewPlayerManager(suite.NewLogger(), newMockPlayerRepo(t))

		// When: Setting the name
		_, err := manager.SetName(ctx, &entity.UserUpdate{PubKey: alice.public, Name: "  ", Signature: alice.sign("  ")})

		// Then: The request is a bad request
		require.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("Rejects a malformed key", func(t *testing.T) {
		// Given: A key that is not base64
		manager := NewPlayerManager(suite.NewLogger(), newMockPlayerRepo(t))

		// When: Setting the name
		_, err := manager.SetName(ctx, &entity.UserUpdate{PubKey: "!!", Name: "alice", Signature: alice.sign("alice")})

		// Then: The request is a bad request
		require.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}

func TestPlayerManager_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the player id", func(t *testing.T) {
		// Given: A stored player
		repo := newMockPlayerRepo(t)
		manager := NewPlayerManager(suite.NewLogger(), repo)

		id := uuid.New()
		repo.On("GetByPublicKey", mock.Anything, "key").Return(&entity.Player{ID: id}, nil).Once()

		// When: Resolving the key
		got, err := manager.Resolve(ctx, "key")

		// Then: The id is returned
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("Keeps the not found kind", func(t *testing.T) {
		// Given: An unknown key
		repo := newMockPlayerRepo(t)
		manager := NewPlayerManager(suite.NewLogger(), repo)

		repo.On("GetByPublicKey", mock.Anything, "key").Return(nil, repository.ErrPlayerNotFound).Once()

		// When: Resolving the key
		_, err := manager.Resolve(ctx, "key")

		// Then: The error is of the not found kind
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
