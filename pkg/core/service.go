package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Service is the single point of contact with the backend. It owns the
// session state and the event bus, and is passed explicitly to whoever
// needs it.
//
// Lifecycle: NewService, Start, operations, Close.
type Service struct {
	id        string
	transport Transport
	sessions  SessionStore
	bus       *Bus
	logger    *slog.Logger

	mu            sync.RWMutex
	started       bool
	closed        bool
	authenticated bool
	user          *User
}

// Config wires the collaborators of a Service. Only Transport is required.
type Config struct {
	Transport Transport
	Sessions  SessionStore
	Bus       *Bus
	Logger    *slog.Logger
}

// NewService creates a new Service. It does not touch the network; call
// Start to resolve the session.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = &MemorySessionStore{}
	}
	bus := cfg.Bus
	if bus == nil {
		bus = NewBus(logger)
	}

	id := uuid.NewString()
	return &Service{
		id:        id,
		transport: cfg.Transport,
		sessions:  sessions,
		bus:       bus,
		logger:    logger.With("component", "service", "instance", id),
	}
}

// Start reads the persisted hint as a fast first guess of the session state
// and then asks the server, which is authoritative.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	hint, err := s.sessions.LoadHint()
	if err != nil {
		s.logger.Warn("failed to read session hint", "error", err)
	}
	s.authenticated = hint
	s.started = true
	s.mu.Unlock()

	s.logger.Debug("service started", "hint", hint)
	s.CheckAuth(ctx)
	return nil
}

// Close tears the service down: the bus is cleared and the hint flushed.
// It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.bus.Clear()
	return s.sessions.SaveHint(s.authenticated)
}

// Bus returns the event bus owned by the service.
func (s *Service) Bus() *Bus {
	return s.bus
}

// Authenticated reports the current session state.
func (s *Service) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the signed-in user, or nil.
func (s *Service) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Request sends params to path through the transport.
func (s *Service) Request(ctx context.Context, path string, params any, out any) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.logger.Debug("request", "path", path)
	return s.transport.Request(ctx, path, params, out)
}

func (s *Service) usable() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// setSession records a new session state, persists the hint, and emits
// AuthChanged when the state actually changed.
func (s *Service) setSession(authenticated bool, user *User) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := s.authenticated != authenticated || !sameUser(s.user, user)
	s.authenticated = authenticated
	s.user = user
	if err := s.sessions.SaveHint(authenticated); err != nil {
		s.logger.Warn("failed to persist session hint", "error", err)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.logger.Info("authentication state changed", "authenticated", authenticated)

	var payload *User
	if user != nil {
		u := *user
		payload = &u
	}
	s.bus.Emit(AuthChanged{Authenticated: authenticated, User: payload})
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
