// Package wishlist mirrors the signed-in user's remote wishlist. Every
// mutation is a round trip to the API whose result is reconciled into
// local state; local state changes only when the round trip succeeds.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/apiclient"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// State is the position of the store in its identity lifecycle.
type State int

const (
	LoggedOut State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// API is the part of the remote API the store needs. The token travels in
// the context, see apiclient.WithToken.
type API interface {
	Wishlist(ctx context.Context) ([]domain.WishlistEntry, error)
	AddToWishlist(ctx context.Context, id domain.ProductID) (domain.WishlistEntry, error)
	RemoveFromWishlist(ctx context.Context, entryID int) error
}

// DefaultRequestTimeout bounds each remote call made by the store.
const DefaultRequestTimeout = 10 * time.Second

// Store is the wishlist of one session. It implements auth.Listener.
type Store struct {
	api     API
	timeout time.Duration
	logger  *slog.Logger
	adds    singleflight.Group

	mu       sync.Mutex
	state    State
	identity *domain.Identity
	// generation increases on every identity transition. A completion whose
	// generation no longer matches belongs to a previous identity and is
	// dropped.
	generation uint64
	// identityCtx is canceled when the identity it was created for goes away.
	identityCtx    context.Context
	cancelIdentity context.CancelFunc
	// loaded is closed when the current Loading phase ends.
	loaded  chan struct{}
	entries []domain.WishlistEntry
	lastErr error
}

// NewStore creates a signed-out store. A timeout of zero selects
// DefaultRequestTimeout.
func NewStore(api API, timeout time.Duration, logger *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Store{
		api:     api,
		timeout: timeout,
		logger:  logger,
		state:   LoggedOut,
	}
}

// OnLogin enters Loading and fetches the collection for id in the
// background.
func (s *Store) OnLogin(ctx context.Context, id domain.Identity) {
	s.mu.Lock()
	s.resetLocked()
	s.generation++
	gen := s.generation
	s.identity = &id
	s.identityCtx, s.cancelIdentity = context.WithCancel(context.WithoutCancel(ctx))
	s.state = Loading
	s.loaded = make(chan struct{})
	identityCtx := s.identityCtx
	s.mu.Unlock()

	observe("load", "started")
	go s.load(identityCtx, gen, id.Token)
}

// OnLogout drops the collection and abandons in-flight requests.
func (s *Store) OnLogout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.generation++
	s.logger.DebugContext(ctx, "wishlist cleared on logout")
}

// Close abandons in-flight requests at session teardown.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.generation++
}

// resetLocked returns the store to LoggedOut. Callers hold s.mu.
func (s *Store) resetLocked() {
	if s.cancelIdentity != nil {
		s.cancelIdentity()
		s.cancelIdentity = nil
	}
	s.identityCtx = nil
	s.identity = nil
	s.entries = nil
	s.lastErr = nil
	s.state = LoggedOut
	s.finishLoadingLocked()
}

func (s *Store) finishLoadingLocked() {
	if s.loaded != nil {
		close(s.loaded)
		s.loaded = nil
	}
}

func (s *Store) load(identityCtx context.Context, gen uint64, token string) {
	ctx, cancel := context.WithTimeout(apiclient.WithToken(identityCtx, token), s.timeout)
	defer cancel()

	entries, err := s.api.Wishlist(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		observe("load", "stale")
		return
	}

	if err != nil {
		s.lastErr = classify("load wishlist", err)
		s.entries = nil
		s.logger.WarnContext(ctx, "wishlist load failed", slog.String("error", err.Error()))
		observe("load", "failed")
	} else {
		s.entries = dedupe(entries)
		s.lastErr = nil
		observe("load", "ok")
	}
	s.state = Ready
	s.finishLoadingLocked()
}

// Wait blocks until the store is not Loading or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		ch := s.loaded
		s.mu.Unlock()
		if ch == nil {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error recorded by the last load or refresh, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Entries returns a copy of the current entries.
func (s *Store) Entries() []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistEntry{}, s.entries...)
}

// IsWishlisted reports whether id is in the collection. It is false in
// every state but Ready.
func (s *Store) IsWishlisted(id domain.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Ready && s.indexOf(id) >= 0
}

// Add saves p to the wishlist. A product already present is a no-op.
// Concurrent adds of the same product share one remote call.
func (s *Store) Add(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	if s.state != Ready || s.identity == nil {
		s.mu.Unlock()
		observe("add", "unauthenticated")
		return apperrors.Unauthenticated("sign in to use the wishlist")
	}
	if s.indexOf(p.ID) >= 0 {
		s.mu.Unlock()
		observe("add", "noop")
		return nil
	}
	gen, token, identityCtx := s.generation, s.identity.Token, s.identityCtx
	s.mu.Unlock()

	key := strconv.FormatUint(gen, 10) + ":" + strconv.Itoa(int(p.ID))
	ch := s.adds.DoChan(key, func() (any, error) {
		return nil, s.add(ctx, identityCtx, gen, token, p.ID)
	})

	select {
	case res := <-ch:
		if res.Shared {
			observe("add", "coalesced")
		}
		return res.Err
	case <-ctx.Done():
		return apperrors.Remote("add to wishlist", ctx.Err())
	}
}

func (s *Store) add(parent, identityCtx context.Context, gen uint64, token string, id domain.ProductID) error {
	ctx, cancel := s.callContext(parent, identityCtx, token)
	defer cancel()

	entry, err := s.api.AddToWishlist(ctx, id)
	if err != nil && (errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrConflict)) {
		// The backend rejects a second entry for the same product. If it
		// already holds one, adopt it.
		if existing, ok := s.findRemote(ctx, id); ok {
			entry, err = existing, nil
			observe("add", "reconciled")
		}
	}
	if err != nil {
		observe("add", "failed")
		return classify("add to wishlist", err)
	}
	if entry.Product.ID != id {
		observe("add", "failed")
		return apperrors.Remote("add to wishlist",
			fmt.Errorf("server returned entry for product %d, want %d", entry.Product.ID, id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		observe("add", "stale")
		return apperrors.Unauthenticated("signed out while adding to wishlist")
	}
	if s.indexOf(id) < 0 {
		s.entries = append(s.entries, entry)
	}
	observe("add", "ok")
	return nil
}

func (s *Store) findRemote(ctx context.Context, id domain.ProductID) (domain.WishlistEntry, bool) {
	entries, err := s.api.Wishlist(ctx)
	if err != nil {
		return domain.WishlistEntry{}, false
	}
	for _, e := range entries {
		if e.Product.ID == id {
			return e, true
		}
	}
	return domain.WishlistEntry{}, false
}

// Remove deletes the entry for id. An id with no local entry fails with
// ErrNotFound and makes no remote call. A remote 404 is not surfaced: the
// entry is already gone upstream, so it is dropped locally and Remove
// succeeds.
func (s *Store) Remove(ctx context.Context, id domain.ProductID) error {
	s.mu.Lock()
	if s.state != Ready || s.identity == nil {
		s.mu.Unlock()
		observe("remove", "unauthenticated")
		return apperrors.Unauthenticated("sign in to use the wishlist")
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		observe("remove", "not_found")
		return apperrors.NotFound("wishlist entry for product", strconv.Itoa(int(id)))
	}
	entryID := s.entries[i].EntryID
	gen, token, identityCtx := s.generation, s.identity.Token, s.identityCtx
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx, identityCtx, token)
	defer cancel()

	// A 404 means the entry is already gone remotely.
	if err := s.api.RemoveFromWishlist(callCtx, entryID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		observe("remove", "failed")
		return classify("remove from wishlist", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		observe("remove", "stale")
		return apperrors.Unauthenticated("signed out while removing from wishlist")
	}
	for j := range s.entries {
		if s.entries[j].EntryID == entryID {
			s.entries = append(s.entries[:j], s.entries[j+1:]...)
			break
		}
	}
	observe("remove", "ok")
	return nil
}

// Refresh reloads the collection while Ready. On failure the current
// entries are kept and the error is recorded and returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Ready || s.identity == nil {
		s.mu.Unlock()
		return apperrors.Unauthenticated("sign in to use the wishlist")
	}
	gen, token, identityCtx := s.generation, s.identity.Token, s.identityCtx
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx, identityCtx, token)
	defer cancel()
	entries, err := s.api.Wishlist(callCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		observe("refresh", "stale")
		return apperrors.Unauthenticated("signed out while refreshing wishlist")
	}
	if err != nil {
		s.lastErr = classify("refresh wishlist", err)
		observe("refresh", "failed")
		return s.lastErr
	}
	s.entries = dedupe(entries)
	s.lastErr = nil
	observe("refresh", "ok")
	return nil
}

// callContext derives a context for one remote call. It keeps the values of
// parent, expires after the store timeout and is canceled when the identity
// goes away. Cancellation of parent itself does not abort the call, since a
// coalesced add may serve several callers.
func (s *Store) callContext(parent, identityCtx context.Context, token string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	stop := context.AfterFunc(identityCtx, cancel)
	return apiclient.WithToken(ctx, token), func() {
		stop()
		cancel()
	}
}

func (s *Store) indexOf(id domain.ProductID) int {
	for i := range s.entries {
		if s.entries[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// classify maps a remote failure onto the store's error conditions: a
// remote 401 stays unauthenticated, anything else is a remote failure.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated), errors.Is(err, apperrors.ErrRemote):
		return err
	default:
		return apperrors.Remote(op, err)
	}
}

// dedupe keeps the first entry per product.
func dedupe(entries []domain.WishlistEntry) []domain.WishlistEntry {
	seen := make(map[domain.ProductID]struct{}, len(entries))
	out := make([]domain.WishlistEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Product.ID]; ok {
			continue
		}
		seen[e.Product.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
