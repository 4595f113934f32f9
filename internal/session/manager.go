package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/auth"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Config holds session tunables.
type Config struct {
	// IdleTimeout is how long an unused session stays in memory.
	IdleTimeout time.Duration
	// SweepInterval is how often idle sessions are evicted.
	SweepInterval time.Duration
	// ResolveTimeout bounds loading a persisted identity.
	ResolveTimeout time.Duration
	// WishlistTimeout bounds each wishlist call.
	WishlistTimeout time.Duration
	// RedirectTo is where the guard sends signed-out visitors.
	RedirectTo string
}

// DefaultConfig returns sensible defaults for sessions.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:     30 * time.Minute,
		SweepInterval:   time.Minute,
		ResolveTimeout:  5 * time.Second,
		WishlistTimeout: 10 * time.Second,
		RedirectTo:      "/login",
	}
}

// toucher is implemented by stores that can extend a persisted identity.
type toucher interface {
	Touch(ctx context.Context, sessionID string) error
}

// Manager owns the live sessions of this process. A session evicted from
// memory, or held by another process before a restart, is rebuilt on its
// next request from the persisted identity.
type Manager struct {
	api    API
	store  auth.Store
	events Events
	signer *HandleSigner
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	// ended maps destroyed session ids to the expiry of their handles.
	ended map[string]time.Time
}

// NewManager creates a session manager. store and events may be nil.
func NewManager(api API, store auth.Store, events Events, signer *HandleSigner, cfg Config, logger *slog.Logger) *Manager {
	if events == nil {
		events = noopEvents{}
	}
	return &Manager{
		api:      api,
		store:    store,
		events:   events,
		signer:   signer,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
		ended:    make(map[string]time.Time),
	}
}

// Create starts a new signed-out session and returns it with its handle.
func (m *Manager) Create(ctx context.Context) (*Session, string, error) {
	id := uuid.NewString()
	handle, err := m.signer.Sign(id)
	if err != nil {
		return nil, "", err
	}

	// A fresh session resolves to signed out.
	s := newSession(id, m.api, m.store, m.events, m.cfg, m.logger)
	if err := s.Auth.Resolve(ctx); err != nil {
		m.logger.WarnContext(ctx, "resolve new session", slog.String("error", err.Error()))
	}

	m.mu.Lock()
	m.sessions[id] = s
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session created", slog.String("session_id", id))
	return s, handle, nil
}

// ValidateHandle returns the session id named by a signed handle. The
// handle of a destroyed session is rejected until it would have expired.
// Destroyed ids are remembered by this process only.
func (m *Manager) ValidateHandle(handle string) (string, error) {
	id, err := m.signer.Parse(handle)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	until, ended := m.ended[id]
	m.mu.Unlock()
	if ended && time.Now().Before(until) {
		return "", apperrors.Unauthenticated("session has ended")
	}
	return id, nil
}

// Get returns the live session for id, rebuilding it when it is not in
// memory. A rebuilt session is resolving until its persisted identity has
// been loaded in the background.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, m.api, m.store, m.events, m.cfg, m.logger)
		m.sessions[id] = s
		activeSessions.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	s.touch()
	if !ok {
		m.logger.DebugContext(ctx, "session rebuilt", slog.String("session_id", id))
		go m.resolve(context.WithoutCancel(ctx), s)
	}
	return s
}

func (m *Manager) resolve(ctx context.Context, s *Session) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ResolveTimeout)
	defer cancel()

	if err := s.Auth.Resolve(ctx); err != nil {
		m.logger.WarnContext(ctx, "failed to resolve session identity",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if t, ok := m.store.(toucher); ok {
		if _, signedIn := s.Auth.Identity(); signedIn {
			if err := t.Touch(ctx, s.ID); err != nil {
				m.logger.WarnContext(ctx, "failed to extend session identity", slog.String("error", err.Error()))
			}
		}
	}
}

// Lookup returns the live session for id without rebuilding it.
func (m *Manager) Lookup(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	return s, nil
}

// Destroy signs the session out and forgets it. Its handle stops being
// accepted by ValidateHandle.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.ended[id] = time.Now().Add(m.signer.ttl)
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !ok {
		// Not in memory: still drop any persisted identity.
		if m.store != nil {
			if err := m.store.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete session identity: %w", err)
			}
		}
		return nil
	}

	s.Logout(ctx)
	s.Close()
	m.logger.InfoContext(ctx, "session destroyed", slog.String("session_id", id))
	return nil
}

// Len returns the number of sessions in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now minus IdleTimeout. Their
// persisted identity is kept, so a returning client gets them back.
// Destroyed ids whose handles have expired are forgotten.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTimeout)

	var idle []*Session
	m.mu.Lock()
	for id, until := range m.ended {
		if !now.Before(until) {
			delete(m.ended, id)
		}
	}
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle sessions", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Shutdown closes every session held in memory.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	activeSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
