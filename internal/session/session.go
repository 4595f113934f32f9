// Package session composes the per-client stores into a session and keeps
// the set of live sessions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utafrali/storefront/internal/apiclient"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/guard"
	"github.com/utafrali/storefront/internal/wishlist"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// API is the part of the remote API a session drives directly.
type API interface {
	wishlist.API
	Login(ctx context.Context, username, password string) (domain.Identity, error)
	Register(ctx context.Context, reg domain.Registration) (domain.Identity, error)
	Logout(ctx context.Context) error
	ClearServerCart(ctx context.Context) error
	AddToServerCart(ctx context.Context, id domain.ProductID, quantity int) error
	CreateOrder(ctx context.Context, shippingAddress string) (domain.Order, error)
}

// Events receives session activity. Publishing is best effort: a failure
// is logged and never fails the operation that caused it.
type Events interface {
	PublishLoggedIn(ctx context.Context, sessionID string, id domain.Identity) error
	PublishLoggedOut(ctx context.Context, sessionID string, id domain.Identity) error
	PublishWishlistAdded(ctx context.Context, id domain.Identity, productID domain.ProductID) error
	PublishWishlistRemoved(ctx context.Context, id domain.Identity, productID domain.ProductID) error
	PublishOrderPlaced(ctx context.Context, sessionID string, id domain.Identity, order domain.Order, cart domain.CartSnapshot) error
}

// Session is one client's storefront state.
type Session struct {
	ID        string
	CreatedAt time.Time

	Auth     *auth.Provider
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Guard    *guard.Guard

	api    API
	events Events
	logger *slog.Logger

	checkoutMu sync.Mutex
	lastSeen   atomic.Int64
	closeOnce  sync.Once
}

func newSession(id string, api API, store auth.Store, events Events, cfg Config, logger *slog.Logger) *Session {
	logger = logger.With(slog.String("session_id", id))

	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Auth:      auth.NewProvider(id, store, logger),
		Cart:      cart.NewStore(),
		Wishlist:  wishlist.NewStore(api, cfg.WishlistTimeout, logger),
		api:       api,
		events:    events,
		logger:    logger,
	}
	s.Guard = guard.New(cfg.RedirectTo, func(to string) {
		redirectsTotal.Inc()
		logger.Info("redirecting signed-out visitor", slog.String("to", to))
	})
	s.Auth.Subscribe(s.Wishlist)
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Evaluate runs the route guard against the current auth state.
func (s *Session) Evaluate() guard.Decision {
	return s.Guard.Evaluate(s.Auth.State())
}

// Login signs the session in with username and password.
func (s *Session) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	id, err := s.api.Login(ctx, username, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return id, s.signIn(ctx, id)
}

// Register creates an account and signs the session in with it.
func (s *Session) Register(ctx context.Context, reg domain.Registration) (domain.Identity, error) {
	id, err := s.api.Register(ctx, reg)
	if err != nil {
		return domain.Identity{}, err
	}
	return id, s.signIn(ctx, id)
}

func (s *Session) signIn(ctx context.Context, id domain.Identity) error {
	if err := s.Auth.Login(ctx, id.Token, id); err != nil {
		return err
	}
	s.publish(ctx, "logged_in", s.events.PublishLoggedIn(ctx, s.ID, id))
	return nil
}

// Logout revokes the remote token, best effort, and signs the session out.
// The cart is kept.
func (s *Session) Logout(ctx context.Context) {
	id, ok := s.Auth.Identity()
	if ok {
		if err := s.api.Logout(apiclient.WithToken(ctx, id.Token)); err != nil {
			s.logger.WarnContext(ctx, "remote logout failed", slog.String("error", err.Error()))
		}
	}
	s.Auth.Logout(ctx)
	if ok {
		s.publish(ctx, "logged_out", s.events.PublishLoggedOut(ctx, s.ID, id))
	}
}

// AuthContext returns ctx carrying the session's token, or an
// unauthenticated error when the session is signed out.
func (s *Session) AuthContext(ctx context.Context) (context.Context, domain.Identity, error) {
	id, ok := s.Auth.Identity()
	if !ok {
		return ctx, domain.Identity{}, apperrors.Unauthenticated("sign in required")
	}
	return apiclient.WithToken(ctx, id.Token), id, nil
}

// AddToWishlist waits for the wishlist to finish loading and saves p.
func (s *Session) AddToWishlist(ctx context.Context, p domain.Product) error {
	if err := s.Wishlist.Wait(ctx); err != nil {
		return apperrors.Remote("wait for wishlist", err)
	}
	already := s.Wishlist.IsWishlisted(p.ID)
	if err := s.Wishlist.Add(ctx, p); err != nil {
		return err
	}
	if id, ok := s.Auth.Identity(); ok && !already {
		s.publish(ctx, "wishlist_added", s.events.PublishWishlistAdded(ctx, id, p.ID))
	}
	return nil
}

// RemoveFromWishlist waits for the wishlist to finish loading and removes
// the entry for productID.
func (s *Session) RemoveFromWishlist(ctx context.Context, productID domain.ProductID) error {
	if err := s.Wishlist.Wait(ctx); err != nil {
		return apperrors.Remote("wait for wishlist", err)
	}
	if err := s.Wishlist.Remove(ctx, productID); err != nil {
		return err
	}
	if id, ok := s.Auth.Identity(); ok {
		s.publish(ctx, "wishlist_removed", s.events.PublishWishlistRemoved(ctx, id, productID))
	}
	return nil
}

func (s *Session) publish(ctx context.Context, what string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", what),
			slog.String("error", err.Error()),
		)
	}
}

// Close abandons in-flight work. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.Wishlist.Close)
}

type noopEvents struct{}

func (noopEvents) PublishLoggedIn(context.Context, string, domain.Identity) error  { return nil }
func (noopEvents) PublishLoggedOut(context.Context, string, domain.Identity) error { return nil }
func (noopEvents) PublishWishlistAdded(context.Context, domain.Identity, domain.ProductID) error {
	return nil
}
func (noopEvents) PublishWishlistRemoved(context.Context, domain.Identity, domain.ProductID) error {
	return nil
}
func (noopEvents) PublishOrderPlaced(context.Context, string, domain.Identity, domain.Order, domain.CartSnapshot) error {
	return nil
}
