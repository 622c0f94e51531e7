// Package session keeps live simulations for interactive hosts.
//
// A [Session] bundles one simulator with the interaction controller that
// drives it and the container it is shown in. Sessions live in memory only
// and are keyed by random UUIDs; nothing survives a restart.
//
// # Concurrency
//
// The layout core is single-threaded. A Session serializes every access to
// its simulator and controller behind one mutex, so HTTP handlers and
// stream loops may share a session freely. The [Store] guards its map with
// its own lock and never holds it while a session is locked.
//
// # Usage
//
//	store := session.NewStore(session.Options{TTL: 30 * time.Minute})
//	sess, err := store.Create(ctx, g, session.Config{Width: 800, Height: 600})
//	if err != nil {
//	    return err // duplicate node ids
//	}
//	view := sess.Tick(ctx, 10)
//	store.Delete(ctx, sess.ID)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Config describes a new session.
type Config struct {
	Width       float64
	Height      float64
	Params      force.Params
	Interaction interaction.Options
	Seeds       map[string]force.Point
}

// View is a consistent read of a session's state.
type View struct {
	ID        string                 `json:"id"`
	Tick      int                    `json:"tick"`
	Alpha     float64                `json:"alpha"`
	Phase     force.Phase            `json:"phase"`
	Active    bool                   `json:"active"`
	Positions map[string]force.Point `json:"positions"`
	Transform viewport.Transform     `json:"transform"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
	Dragging  string                 `json:"dragging,omitempty"`
	Dropped   int                    `json:"dropped_edges"`
	Stats     force.Stats            `json:"stats"`
}

// Session is one live simulation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	graph    graph.Graph
	sim      *force.Simulator
	ctrl     *interaction.Controller
	lastUsed time.Time
	closed   bool
	done     chan struct{}
	subs     map[chan struct{}]struct{}
	now      func() time.Time
}

func newSession(g graph.Graph, cfg Config, now time.Time) (*Session, error) {
	params := cfg.Params
	params.Width, params.Height = cfg.Width, cfg.Height

	var opts []force.BuildOption
	if len(cfg.Seeds) > 0 {
		opts = append(opts, force.WithPositions(cfg.Seeds))
	}
	state, err := force.FromGraph(g, params, opts...)
	if err != nil {
		return nil, err
	}
	sim := force.NewSimulator(state)
	ctrl := interaction.New(sim, cfg.Interaction)

	p := state.Params
	ctrl.Mount(p.Width, p.Height, viewport.ContentBox{Width: p.Width, Height: p.Height})

	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		graph:     g.Clone(),
		sim:       sim,
		ctrl:      ctrl,
		lastUsed:  now,
		done:      make(chan struct{}),
		subs:      make(map[chan struct{}]struct{}),
		now:       time.Now,
	}, nil
}

// Graph returns the dataset the session was built from.
func (s *Session) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	snap := s.sim.Snapshot()
	p := s.sim.State().Params
	v := View{
		ID:        s.ID,
		Tick:      snap.Tick,
		Alpha:     snap.Alpha,
		Phase:     snap.Phase,
		Active:    s.sim.Active(),
		Positions: snap.Positions,
		Transform: s.ctrl.Transform(),
		Width:     p.Width,
		Height:    p.Height,
		Dropped:   len(s.sim.State().Dropped),
		Stats:     s.sim.Stats(),
	}
	if id, ok := s.ctrl.Dragging(); ok {
		v.Dragging = id
	}
	return v
}

// Tick advances the simulation by up to n ticks and returns the resulting
// view.
func (s *Session) Tick(ctx context.Context, n int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	ran := 0
	if !s.closed {
		for ran < n && s.sim.Active() {
			if ctx.Err() != nil {
				break
			}
			s.sim.Tick()
			ran++
		}
		s.touchLocked()
	}
	v := s.viewLocked()
	observability.Session().OnTicks(ctx, s.ID, ran, v.Active)
	return v
}

// Handle applies an input event. It reports whether anything changed.
func (s *Session) Handle(ctx context.Context, e interaction.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	wasActive := s.sim.Active()
	changed, err := s.ctrl.Handle(e)
	if err != nil {
		return false, err
	}
	s.touchLocked()
	if !wasActive && s.sim.Active() {
		s.notify()
	}
	observability.Session().OnEvent(ctx, s.ID, string(e.Type))
	return changed, nil
}

// Resize changes the container dimensions.
func (s *Session) Resize(width, height float64) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.ctrl.Fitter().SetContent(viewport.ContentBox{Width: width, Height: height})
		s.ctrl.Resize(width, height)
		s.touchLocked()
	}
	return s.viewLocked()
}

// Subscribe returns a channel that receives a value whenever an event
// resumes a stopped simulation. Each stream loop subscribes on its own and
// waits on the channel instead of polling; cancel releases it.
func (s *Session) Subscribe() (wake <-chan struct{}, cancel func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// Done returns a channel that is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Closed reports whether the session has been halted.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// close halts the simulation and tears the controller down. It is
// idempotent.
func (s *Session) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.ctrl.Teardown()
	s.sim.Halt()
	close(s.done)
	return true
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touchLocked() { s.lastUsed = s.now() }

// notify signals every subscriber without blocking. Callers hold s.mu.
func (s *Session) notify() {
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
