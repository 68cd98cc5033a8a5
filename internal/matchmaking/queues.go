package matchmaking

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PublicQueue is the queue joined when no queue id is given.
var PublicQueue = uuid.Nil

var ErrQueueNotFound = errors.New("queue not found")

type queue struct {
	waiting  []uuid.UUID
	openedAt time.Time
}

type queueShard struct {
	mu     sync.Mutex
	queues map[uuid.UUID]*queue
}

// Queues - waiting connection ids by queue id. Each queue is a stack.
//
// Lock order: a queue shard may be held while a registry shard is taken (see
// PopOrPush), never the other way round.
type Queues struct {
	shards [shardCount]queueShard
	now    func() time.Time
}

func NewQueues() *Queues {
	queues := &Queues{now: time.Now}
	for i := range queues.shards {
		queues.shards[i].queues = make(map[uuid.UUID]*queue)
	}

	queues.Open(PublicQueue)

	return queues
}

func (that *Queues) shard(id uuid.UUID) *queueShard {
	return &that.shards[id[len(id)-1]%shardCount]
}

// Open - creates an empty queue unless it already exists.
func (that *Queues) Open(id uuid.UUID) {
	shard := that.shard(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.queues[id]; !ok {
		shard.queues[id] = &queue{waiting: []uuid.UUID{}, openedAt: that.now()}
	}
}

func (that *Queues) Exists(id uuid.UUID) bool {
	shard := that.shard(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	_, ok := shard.queues[id]

	return ok
}

// PopOrPush - pops waiting ids until claim accepts one and returns it. When the
// stack runs empty connID is pushed instead. Both happen under one lock, so a
// waiting id is handed to at most one caller. A private queue left empty by a
// pairing is closed.
func (that *Queues) PopOrPush(queueID, connID uuid.UUID, claim func(candidate uuid.UUID) bool) (uuid.UUID, bool, error) {
	shard := that.shard(queueID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, ok := shard.queues[queueID]
	if !ok {
		return uuid.Nil, false, ErrQueueNotFound
	}

	for len(current.waiting) > 0 {
		candidate := current.waiting[len(current.waiting)-1]
		current.waiting = current.waiting[:len(current.waiting)-1]

		if claim(candidate) {
			if queueID != PublicQueue && len(current.waiting) == 0 {
				delete(shard.queues, queueID)
			}

			return candidate, true, nil
		}
	}

	current.waiting = append(current.waiting, connID)

	return uuid.Nil, false, nil
}

// Remove - drops connID from the queue if it is still waiting there.
func (that *Queues) Remove(queueID, connID uuid.UUID) {
	shard := that.shard(queueID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, ok := shard.queues[queueID]
	if !ok {
		return
	}

	current.waiting = slices.DeleteFunc(current.waiting, func(id uuid.UUID) bool {
		return id == connID
	})
}

// Sweep - closes private queues opened before cutoff that nobody waits in.
// Returns how many were closed.
func (that *Queues) Sweep(cutoff time.Time) int {
	var closed int

	for i := range that.shards {
		shard := &that.shards[i]

		shard.mu.Lock()
		for id, current := range shard.queues {
			if id != PublicQueue && len(current.waiting) == 0 && current.openedAt.Before(cutoff) {
				delete(shard.queues, id)
				closed++
			}
		}
		shard.mu.Unlock()
	}

	return closed
}

func (that *Queues) Len(queueID uuid.UUID) int {
	shard := that.shard(queueID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, ok := shard.queues[queueID]
	if !ok {
		return 0
	}

	return len(current.waiting)
}
