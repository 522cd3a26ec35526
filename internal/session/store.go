package session

import (
	"context"
	"sync"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/logging"
	"notedeck/internal/types"
)

// Persister is the durable side of the store. store.SessionStore satisfies it.
type Persister interface {
	Load(ctx context.Context) (*types.SessionSnapshot, error)
	Save(ctx context.Context, snapshot *types.SessionSnapshot) error
	Clear(ctx context.Context) error
}

type Listener func(State)

// Store serializes dispatches and persists identity changes. It is handed
// to every consumer explicitly; there is no package-level instance.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	logger    logging.Logger
	listeners []Listener
	now       func() time.Time
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{logger: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch with the new state.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Dispatch applies action and, when the identity changed, persists it.
// Persistence errors are logged; the in-memory state is authoritative.
func (s *Store) Dispatch(ctx context.Context, action Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	listeners := append([]Listener{}, s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("session action",
		logging.F("flow", action.Flow.String()),
		logging.F("phase", action.Phase.String()),
	)
	if action.Phase == PhaseSuccess && action.Flow != FlowRestore {
		s.persist(ctx, next)
	}
	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Restore loads the persisted snapshot. An expired JWT is discarded along
// with its user.
func (s *Store) Restore(ctx context.Context) (State, error) {
	if s.persister == nil {
		return s.State(), nil
	}
	snapshot, err := s.persister.Load(ctx)
	if err != nil {
		return s.State(), err
	}
	if snapshot.Empty() || snapshot.User == nil {
		return s.State(), nil
	}
	if auth.TokenExpired(snapshot.Token, s.now()) {
		s.logger.Info("persisted session expired")
		if err := s.persister.Clear(ctx); err != nil {
			s.logger.Warn("clear expired session failed", logging.Err(err))
		}
		return s.State(), nil
	}
	return s.Dispatch(ctx, Restore(snapshot.User, snapshot.Token)), nil
}

func (s *Store) persist(ctx context.Context, state State) {
	if s.persister == nil {
		return
	}
	var err error
	if state.CurrentUser == nil {
		err = s.persister.Clear(ctx)
	} else {
		err = s.persister.Save(ctx, &types.SessionSnapshot{User: state.CurrentUser, Token: state.Token})
	}
	if err != nil {
		s.logger.Warn("persist session failed", logging.Err(err))
	}
}
