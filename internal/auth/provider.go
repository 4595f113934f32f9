// Package auth holds the signed-in identity of one storefront session and
// tells dependents when it changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Listener is notified after every identity transition. Calls are made
// outside the provider's lock, one transition at a time, in order.
type Listener interface {
	OnLogin(ctx context.Context, id domain.Identity)
	OnLogout(ctx context.Context)
}

// Store persists the identity of a session so that it survives restarts.
type Store interface {
	Load(ctx context.Context, sessionID string) (domain.Identity, error)
	Save(ctx context.Context, sessionID string, id domain.Identity) error
	Delete(ctx context.Context, sessionID string) error
}

// Provider owns {identity | absent, resolving} for one session.
type Provider struct {
	sessionID string
	store     Store
	logger    *slog.Logger

	// transitionMu serializes Login, Logout and Resolve including their
	// listener notifications.
	transitionMu sync.Mutex

	mu        sync.RWMutex
	identity  *domain.Identity
	resolving bool
	listeners []Listener
}

// NewProvider creates a provider for sessionID. With a store the provider
// starts out resolving until Resolve is called; without one it starts
// signed out.
func NewProvider(sessionID string, store Store, logger *slog.Logger) *Provider {
	return &Provider{
		sessionID: sessionID,
		store:     store,
		logger:    logger,
		resolving: store != nil,
	}
}

// State returns a copy of the current identity, or nil, and whether the
// identity is still being resolved.
func (p *Provider) State() (*domain.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return nil, p.resolving
	}
	id := *p.identity
	return &id, p.resolving
}

// Identity returns the current identity and whether one is present.
func (p *Provider) Identity() (domain.Identity, bool) {
	id, _ := p.State()
	if id == nil {
		return domain.Identity{}, false
	}
	return *id, true
}

// Subscribe registers l for future transitions.
func (p *Provider) Subscribe(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Login records id, authorized by token, as the session's identity.
func (p *Provider) Login(ctx context.Context, token string, id domain.Identity) error {
	if token == "" {
		return apperrors.InvalidInput("login requires a token")
	}
	id.Token = token

	p.transitionMu.Lock()
	defer p.transitionMu.Unlock()

	if p.store != nil {
		if err := p.store.Save(ctx, p.sessionID, id); err != nil {
			return fmt.Errorf("persist identity: %w", err)
		}
	}

	listeners := p.set(&id)
	p.logger.InfoContext(ctx, "session signed in",
		slog.String("session_id", p.sessionID),
		slog.Int("user_id", id.ID),
	)
	for _, l := range listeners {
		l.OnLogin(ctx, id)
	}
	return nil
}

// Logout clears the identity. It is a no-op for a session that is already
// signed out.
func (p *Provider) Logout(ctx context.Context) {
	p.transitionMu.Lock()
	defer p.transitionMu.Unlock()

	if p.store != nil {
		if err := p.store.Delete(ctx, p.sessionID); err != nil {
			p.logger.WarnContext(ctx, "failed to delete persisted identity",
				slog.String("session_id", p.sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	p.mu.RLock()
	wasSignedIn := p.identity != nil || p.resolving
	p.mu.RUnlock()

	listeners := p.set(nil)
	if !wasSignedIn {
		return
	}
	p.logger.InfoContext(ctx, "session signed out", slog.String("session_id", p.sessionID))
	for _, l := range listeners {
		l.OnLogout(ctx)
	}
}

// Resolve loads the persisted identity, ending the resolving phase. A
// missing identity leaves the session signed out; a store failure does the
// same and is returned.
func (p *Provider) Resolve(ctx context.Context) error {
	p.transitionMu.Lock()
	defer p.transitionMu.Unlock()

	p.mu.RLock()
	resolving := p.resolving
	p.mu.RUnlock()
	if !resolving {
		return nil
	}

	id, err := p.store.Load(ctx, p.sessionID)
	if err != nil {
		p.set(nil)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolve identity: %w", err)
	}

	listeners := p.set(&id)
	for _, l := range listeners {
		l.OnLogin(ctx, id)
	}
	return nil
}

// set replaces the identity, ends resolving and returns the listeners to
// notify.
func (p *Provider) set(id *domain.Identity) []Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = id
	p.resolving = false
	return append([]Listener(nil), p.listeners...)
}
