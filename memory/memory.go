// Package memory implements [chatgate.SessionStore] as an in-process map
// with sliding-window TTL expiry.
//
// The map is guarded by a read-write mutex used only to look up, insert and
// remove entries. Each entry carries its own mutex, so refreshes and appends
// for one session are serialized while distinct sessions proceed in
// parallel. Locks are always taken map first, entry second, and the map lock
// is never requested while an entry lock is held.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ chatgate.SessionStore = (*Store)(nil)

// Store is an in-memory session store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	generation atomic.Uint64
}

type entry struct {
	mu      sync.Mutex
	conv    chatgate.Conversation
	evicted bool
}

// Option configures a [Store].
type Option func(*Store)

// WithClock sets the time source. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for eviction events. Default is a
// disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store whose sessions expire after ttl of inactivity.
// A non-positive ttl falls back to [chatgate.DefaultSessionTTL].
func New(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = chatgate.DefaultSessionTTL
	}
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetOrCreate returns a snapshot of the live conversation for id, creating
// an empty one when none exists or the previous one has expired. The
// session's expiry is pushed to now + TTL.
func (s *Store) GetOrCreate(id string) chatgate.Conversation {
	for {
		e := s.lookupOrInsert(id)

		e.mu.Lock()
		if e.evicted {
			// Lost a race with an eviction; the map now holds a newer entry
			// or none at all.
			e.mu.Unlock()
			continue
		}
		now := s.now()
		if e.conv.Expired(now) {
			e.evicted = true
			e.mu.Unlock()
			s.remove(id, e)
			s.logger.Debug().Str("session_id", id).Msg("session expired on access")
			continue
		}
		e.conv.LastAccessedAt = now
		e.conv.ExpiresAt = now.Add(s.ttl)
		snap := snapshot(e.conv)
		e.mu.Unlock()
		return snap
	}
}

// Append atomically appends turns to the conversation for id. It is a no-op
// returning false when the session no longer exists, has expired, or has
// been re-created since generation was observed. A successful append also
// refreshes the session's expiry.
func (s *Store) Append(id string, generation uint64, turns ...chatgate.Turn) bool {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if e.evicted || e.conv.Generation != generation || e.conv.Expired(now) {
		s.logger.Debug().
			Str("session_id", id).
			Uint64("generation", generation).
			Msg("dropping append to stale session")
		return false
	}
	e.conv.History = append(e.conv.History, turns...)
	e.conv.LastAccessedAt = now
	e.conv.ExpiresAt = now.Add(s.ttl)
	return true
}

// Get returns a snapshot of the conversation for id without refreshing its
// expiry. It reports false when the session is absent or expired.
func (s *Store) Get(id string) (chatgate.Conversation, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return chatgate.Conversation{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted || e.conv.Expired(s.now()) {
		return chatgate.Conversation{}, false
	}
	return snapshot(e.conv), true
}

// Delete removes the session for id. It reports whether a live session was
// removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	live := !e.evicted && !e.conv.Expired(s.now())
	e.evicted = true
	return live
}

// Len returns the number of entries held, including expired entries that
// have not been swept yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes all expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		if e.evicted || e.conv.Expired(now) {
			e.evicted = true
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done. It always
// returns nil so it can run inside an errgroup alongside the server.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Int("remaining", s.Len()).Msg("swept expired sessions")
			}
		}
	}
}

// lookupOrInsert returns the entry for id, inserting a fresh one if absent.
func (s *Store) lookupOrInsert(id string) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e
	}
	now := s.now()
	e = &entry{conv: chatgate.Conversation{
		SessionID:      id,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(s.ttl),
		Generation:     s.generation.Add(1),
	}}
	s.entries[id] = e
	s.logger.Debug().Str("session_id", id).Msg("session created")
	return e
}

// remove deletes id from the map if it still maps to e.
func (s *Store) remove(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[id] == e {
		delete(s.entries, id)
	}
}

func snapshot(c chatgate.Conversation) chatgate.Conversation {
	c.History = append([]chatgate.Turn(nil), c.History...)
	return c
}
