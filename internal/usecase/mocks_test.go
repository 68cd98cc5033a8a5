package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/matchmaking"
)

type mockPlayerRepo struct {
	mock.Mock
}

func newMockPlayerRepo(t *testing.T) *mockPlayerRepo {
	m := &mockPlayerRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockPlayerRepo) Create(ctx context.Context, player *entity.Player) error {
	return m.Called(ctx, player).Error(0)
}

func (m *mockPlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Player, error) {
	args := m.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)

	return player, args.Error(1)
}

func (m *mockPlayerRepo) GetByPublicKey(ctx context.Context, publicKey string) (*entity.Player, error) {
	args := m.Called(ctx, publicKey)
	player, _ := args.Get(0).(*entity.Player)

	return player, args.Error(1)
}

func (m *mockPlayerRepo) UpdateName(ctx context.Context, publicKey, name string) (*entity.Player, error) {
	args := m.Called(ctx, publicKey, name)
	player, _ := args.Get(0).(*entity.Player)

	return player, args.Error(1)
}

type mockMatchRepo struct {
	mock.Mock
}

func newMockMatchRepo(t *testing.T) *mockMatchRepo {
	m := &mockMatchRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockMatchRepo) SaveStarted(ctx context.Context, match *entity.StartedMatch) error {
	return m.Called(ctx, match).Error(0)
}

func (m *mockMatchRepo) GetStarted(ctx context.Context, seed, time uint64) (*entity.StartedMatch, error) {
	args := m.Called(ctx, seed, time)
	match, _ := args.Get(0).(*entity.StartedMatch)

	return match, args.Error(1)
}

func (m *mockMatchRepo) SaveResult(ctx context.Context, result *entity.MatchResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockMatchRepo) LeaderBoard(ctx context.Context, limit int) ([]entity.Standing, error) {
	args := m.Called(ctx, limit)
	standings, _ := args.Get(0).([]entity.Standing)

	return standings, args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func newMockResolver(t *testing.T) *mockResolver {
	m := &mockResolver{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockResolver) Resolve(ctx context.Context, publicKey string) (uuid.UUID, error) {
	args := m.Called(ctx, publicKey)
	id, _ := args.Get(0).(uuid.UUID)

	return id, args.Error(1)
}

type mockICE struct {
	mock.Mock
}

func newMockICE(t *testing.T) *mockICE {
	m := &mockICE{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockICE) Servers(ctx context.Context) (entity.ICEServers, error) {
	args := m.Called(ctx)
	servers, _ := args.Get(0).(entity.ICEServers)

	return servers, args.Error(1)
}

var _ ticketSigner = (*matchmaking.TicketSigner)(nil)
