package matchmaking

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

const shardCount = 32

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
)

// Session - registry entry of one socket connection. Copies returned by the
// registry share the outbound channel with the live entry.
type Session struct {
	ID        uuid.UUID
	PartnerID uuid.UUID
	PublicKey string
	PlayerID  uuid.UUID
	Challenge string

	QueueID uuid.UUID
	Queued  bool
	Closing bool

	outbound chan<- []byte
	done     <-chan struct{}
}

func NewSession(id uuid.UUID, outbound chan<- []byte, done <-chan struct{}) *Session {
	return &Session{
		ID:       id,
		outbound: outbound,
		done:     done,
	}
}

func (that Session) HasPartner() bool {
	return that.PartnerID != uuid.Nil
}

func (that Session) Authenticated() bool {
	return that.PublicKey != ""
}

// Send - queues message for the connection's writer. Fails once the
// connection is torn down.
func (that Session) Send(ctx context.Context, message []byte) error {
	select {
	case <-that.done:
		return ErrSessionClosed
	default:
	}

	select {
	case that.outbound <- message:
		return nil
	case <-that.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// Registry - sessions by connection id. Every operation locks a single shard.
type Registry struct {
	shards [shardCount]sessionShard
}

func NewRegistry() *Registry {
	registry := &Registry{}
	for i := range registry.shards {
		registry.shards[i].sessions = make(map[uuid.UUID]*Session)
	}

	return registry
}

func (that *Registry) shard(id uuid.UUID) *sessionShard {
	return &that.shards[id[len(id)-1]%shardCount]
}

func (that *Registry) Register(session *Session) {
	shard := that.shard(session.ID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.sessions[session.ID] = session
}

// Get - returns a copy of the session.
func (that *Registry) Get(id uuid.UUID) (Session, bool) {
	shard := that.shard(id)

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	session, ok := shard.sessions[id]
	if !ok {
		return Session{}, false
	}

	return *session, true
}

// Update - runs fn on the live session under its shard lock. fn must not call
// back into the registry or the queues.
func (that *Registry) Update(id uuid.UUID, fn func(session *Session) error) error {
	shard := that.shard(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	session, ok := shard.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	return fn(session)
}

// Remove - deletes the session and returns its last state.
func (that *Registry) Remove(id uuid.UUID) (Session, bool) {
	shard := that.shard(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	session, ok := shard.sessions[id]
	if !ok {
		return Session{}, false
	}

	delete(shard.sessions, id)

	return *session, true
}

// Claim - links candidate to partner if candidate is a live, authenticated,
// unpaired session other than partner.
func (that *Registry) Claim(candidate, partner uuid.UUID) bool {
	if candidate == partner {
		return false
	}

	err := that.Update(candidate, func(session *Session) error {
		if session.Closing || !session.Authenticated() || session.HasPartner() {
			return ErrSessionNotFound
		}

		session.PartnerID = partner
		session.Queued = false

		return nil
	})

	return err == nil
}

func (that *Registry) Len() int {
	var n int
	for i := range that.shards {
		shard := &that.shards[i]

		shard.mu.RLock()
		n += len(shard.sessions)
		shard.mu.RUnlock()
	}

	return n
}
