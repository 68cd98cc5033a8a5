package usecase

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/matchmaking"
	"github.com/rocketscienceinc/knucklebones-backend/internal/pkg"
)

type ticketSigner interface {
	Sign(ticket matchmaking.Ticket) string
}

type iceProvider interface {
	Servers(ctx context.Context) (entity.ICEServers, error)
}

type startedMatchRepo interface {
	SaveStarted(ctx context.Context, match *entity.StartedMatch) error
}

// Matchmaker - authenticates socket connections, pairs them through the
// queues and relays negotiation messages between partners.
type Matchmaker struct {
	logger    *slog.Logger
	registry  *matchmaking.Registry
	queues    *matchmaking.Queues
	signer    ticketSigner
	ice       iceProvider
	players   playerResolver
	matchRepo startedMatchRepo

	now  func() time.Time
	seed func() (uint32, error)
}

func NewMatchmaker(
	logger *slog.Logger,
	registry *matchmaking.Registry,
	queues *matchmaking.Queues,
	signer ticketSigner,
	ice iceProvider,
	players playerResolver,
	matchRepo startedMatchRepo,
) *Matchmaker {
	return &Matchmaker{
		logger:    logger,
		registry:  registry,
		queues:    queues,
		signer:    signer,
		ice:       ice,
		players:   players,
		matchRepo: matchRepo,
		now:       time.Now,
		seed:      randomSeed,
	}
}

// Connect - registers a fresh session and sends it the challenge to sign.
func (that *Matchmaker) Connect(ctx context.Context, session *matchmaking.Session) error {
	session.Challenge = strconv.FormatInt(that.now().Unix(), 10)
	that.registry.Register(session)

	that.logger.Debug("connection registered", "method", "Connect", "conn_id", session.ID)

	return that.send(ctx, *session, entity.Verify{Type: entity.TypeVerify, VerifyTime: session.Challenge})
}

// OpenQueue - creates a private queue and returns its id.
func (that *Matchmaker) OpenQueue() uuid.UUID {
	id := uuid.New()
	that.queues.Open(id)

	return id
}

// SweepQueues - closes idle private queues older than ttl until ctx is done.
func (that *Matchmaker) SweepQueues(ctx context.Context, ttl time.Duration) error {
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if closed := that.queues.Sweep(time.Now().Add(-ttl)); closed > 0 {
				that.logger.Debug("closed idle private queues", "method", "SweepQueues", "count", closed)
			}
		}
	}
}

// Join - proves key ownership of the connection and pairs it with a waiting
// connection of the requested queue, or leaves it waiting there. A connection
// whose pairing ended may join again.
func (that *Matchmaker) Join(ctx context.Context, connID uuid.UUID, join entity.Join) error {
	log := that.logger.With("method", "Join", "conn_id", connID)

	session, ok := that.registry.Get(connID)
	if !ok {
		return fmt.Errorf("%w: %w", apperror.ErrInternal, matchmaking.ErrSessionNotFound)
	}

	if session.Queued || session.HasPartner() {
		return apperror.ErrAlreadyJoined
	}

	valid, err := pkg.VerifyString(join.PubKey, session.Challenge, join.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrBadRequest, err)
	}

	if !valid {
		return apperror.ErrInvalidSignature
	}

	playerID, err := that.players.Resolve(ctx, join.PubKey)
	if err != nil {
		return err
	}

	queueID, err := that.queueOf(join)
	if err != nil {
		return err
	}

	err = that.registry.Update(connID, func(session *matchmaking.Session) error {
		if session.Queued || session.HasPartner() {
			return apperror.ErrAlreadyJoined
		}

		session.PublicKey = join.PubKey
		session.PlayerID = playerID
		session.QueueID = queueID
		session.Queued = true

		return nil
	})
	if errors.Is(err, apperror.ErrAlreadyJoined) {
		return err
	}

	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInternal, err)
	}

	partnerID, paired, err := that.queues.PopOrPush(queueID, connID, func(candidate uuid.UUID) bool {
		return that.registry.Claim(candidate, connID) && that.link(connID, candidate) == nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrQueueNotFound, err)
	}

	if !paired {
		log.Info("connection is waiting", "queue_id", queueID)
		return nil
	}

	return that.pair(ctx, connID, partnerID)
}

// Relay - forwards a negotiation message verbatim to the partner, if any.
func (that *Matchmaker) Relay(ctx context.Context, connID uuid.UUID, message []byte) error {
	log := that.logger.With("method", "Relay", "conn_id", connID)

	session, ok := that.registry.Get(connID)
	if !ok || !session.HasPartner() {
		log.Debug("dropped message without partner")
		return nil
	}

	partner, ok := that.registry.Get(session.PartnerID)
	if !ok {
		return nil
	}

	if err := partner.Send(ctx, message); err != nil {
		log.Warn("failed to relay message", "partner_id", partner.ID, "error", err)
	}

	return nil
}

// Disconnect - tears the session down: dequeues it, deregisters it and tells
// the partner it left.
func (that *Matchmaker) Disconnect(ctx context.Context, connID uuid.UUID) {
	log := that.logger.With("method", "Disconnect", "conn_id", connID)

	err := that.registry.Update(connID, func(session *matchmaking.Session) error {
		session.Closing = true
		return nil
	})
	if err != nil {
		return
	}

	if session, ok := that.registry.Get(connID); ok && session.Authenticated() {
		that.queues.Remove(session.QueueID, connID)
	}

	session, ok := that.registry.Remove(connID)
	if !ok || !session.HasPartner() {
		log.Debug("connection closed")
		return
	}

	var linked bool

	_ = that.registry.Update(session.PartnerID, func(partner *matchmaking.Session) error {
		if partner.PartnerID == connID {
			partner.PartnerID = uuid.Nil
			linked = true
		}

		return nil
	})

	partner, ok := that.registry.Get(session.PartnerID)
	if !linked || !ok {
		return
	}

	if err = that.send(ctx, partner, entity.PartnerLeft{Type: entity.TypePartnerLeft}); err != nil {
		log.Warn("failed to notify partner", "partner_id", partner.ID, "error", err)
	}

	log.Info("connection closed", "partner_id", partner.ID)
}

// Fail - sends the connection a disconnected message naming the error kind.
func (that *Matchmaker) Fail(ctx context.Context, connID uuid.UUID, cause error) {
	session, ok := that.registry.Get(connID)
	if !ok {
		return
	}

	message := entity.Disconnected{
		Type:   entity.TypeDisconnected,
		Reason: cause.Error(),
		Name:   apperror.Kind(cause),
	}

	if err := that.send(ctx, session, message); err != nil && !errors.Is(err, matchmaking.ErrSessionClosed) {
		that.logger.Warn("failed to send disconnect reason", "method", "Fail", "conn_id", connID, "error", err)
	}
}

func (that *Matchmaker) queueOf(join entity.Join) (uuid.UUID, error) {
	if join.Queue == nil || *join.Queue == "" {
		return matchmaking.PublicQueue, nil
	}

	id, err := uuid.Parse(*join.Queue)
	if err != nil || !that.queues.Exists(id) {
		return uuid.Nil, apperror.ErrQueueNotFound
	}

	return id, nil
}

// link - records partner on the joining session. Runs inside the queue lock,
// right after the partner was claimed.
func (that *Matchmaker) link(connID, partnerID uuid.UUID) error {
	return that.registry.Update(connID, func(session *matchmaking.Session) error {
		session.PartnerID = partnerID
		session.Queued = false

		return nil
	})
}

// pair - mints the ticket for a fresh pairing and sends it to both sides. The
// joining connection is the initiator and starts the game.
func (that *Matchmaker) pair(ctx context.Context, connID, partnerID uuid.UUID) error {
	log := that.logger.With("method", "pair", "conn_id", connID, "partner_id", partnerID)

	self, ok := that.registry.Get(connID)
	if !ok {
		return fmt.Errorf("%w: %w", apperror.ErrInternal, matchmaking.ErrSessionNotFound)
	}

	partner, ok := that.registry.Get(partnerID)
	if !ok {
		return fmt.Errorf("%w: partner: %w", apperror.ErrInternal, matchmaking.ErrSessionNotFound)
	}

	seed, err := that.seed()
	if err != nil {
		return fmt.Errorf("%w: failed to draw seed: %w", apperror.ErrInternal, err)
	}

	now := that.now()
	ticket := matchmaking.Ticket{
		Seed:         uint64(seed),
		Time:         uint64(now.Unix()),
		InitiatorKey: self.PublicKey,
		OtherKey:     partner.PublicKey,
	}

	servers, err := that.ice.Servers(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get ice servers: %w", apperror.ErrInternal, err)
	}

	matchID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("%w: failed to generate match id: %w", apperror.ErrInternal, err)
	}

	started := &entity.StartedMatch{
		ID:        matchID,
		Seed:      ticket.Seed,
		Time:      ticket.Time,
		Initiator: self.PlayerID,
		Other:     partner.PlayerID,
		CreatedAt: now.UTC(),
	}

	if err = that.matchRepo.SaveStarted(ctx, started); err != nil {
		return fmt.Errorf("%w: failed to save started match: %w", apperror.ErrInternal, err)
	}

	signature := that.signer.Sign(ticket)

	paired := entity.Paired{
		Type:       entity.TypePaired,
		PublicKey:  partner.PublicKey,
		PartnerKey: self.PublicKey,
		Initiator:  false,
		Seed:       seed,
		Signature:  signature,
		Time:       ticket.Time,
		ICEServers: servers,
	}

	if err = that.send(ctx, partner, paired); err != nil {
		log.Warn("failed to notify partner", "error", err)
	}

	paired.PublicKey, paired.PartnerKey, paired.Initiator = self.PublicKey, partner.PublicKey, true
	if err = that.send(ctx, self, paired); err != nil {
		return fmt.Errorf("failed to send paired: %w", err)
	}

	log.Info("connections paired", "match_id", started.ID)

	return nil
}

func (that *Matchmaker) send(ctx context.Context, session matchmaking.Session, message any) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return session.Send(ctx, raw)
}

func randomSeed() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}
