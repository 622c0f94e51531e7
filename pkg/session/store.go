package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Default store limits.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions caps the number of live sessions.
	DefaultMaxSessions = 64
)

// Options configures a Store.
type Options struct {
	TTL         time.Duration
	MaxSessions int
}

// Store holds live sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

// Create builds a session from g. A zero container size selects the
// default layout size. Validation errors from the graph model are returned
// unchanged. When the store is full the least recently used
// session is evicted.
func (st *Store) Create(ctx context.Context, g graph.Graph, cfg Config) (*Session, error) {
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width, cfg.Height = force.DefaultWidth, force.DefaultHeight
	}
	if err := errors.ValidateDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	sess, err := newSession(g, cfg, st.now())
	if err != nil {
		return nil, err
	}
	sess.now = st.now

	var evicted []*Session
	st.mu.Lock()
	for len(st.sessions) >= st.opts.MaxSessions {
		victim := st.oldestLocked()
		if victim == nil {
			break
		}
		delete(st.sessions, victim.ID)
		evicted = append(evicted, victim)
	}
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	for _, v := range evicted {
		st.closeSession(ctx, v)
	}
	observability.Session().OnSessionOpen(ctx, sess.ID, len(g.Nodes))
	return sess, nil
}

// Get returns the session with the given id.
func (st *Store) Get(_ context.Context, id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

// Delete halts and removes a session.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	st.closeSession(ctx, sess)
	return nil
}

// List returns the ids of all live sessions, oldest first.
func (st *Store) List() []string {
	st.mu.RLock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how
// many were removed.
func (st *Store) Cleanup(ctx context.Context) int {
	cutoff := st.now().Add(-st.opts.TTL)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		st.closeSession(ctx, s)
	}
	return len(expired)
}

// Close halts and removes every session.
func (st *Store) Close(ctx context.Context) {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
	for _, s := range all {
		st.closeSession(ctx, s)
	}
}

// Run calls Cleanup every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = st.opts.TTL / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Cleanup(ctx)
		}
	}
}

func (st *Store) oldestLocked() *Session {
	var oldest *Session
	var oldestUse time.Time
	for _, s := range st.sessions {
		used := s.idleSince()
		if oldest == nil || used.Before(oldestUse) {
			oldest, oldestUse = s, used
		}
	}
	return oldest
}

func (st *Store) closeSession(ctx context.Context, s *Session) {
	if s.close() {
		observability.Session().OnSessionClose(ctx, s.ID, st.now().Sub(s.CreatedAt))
	}
}
