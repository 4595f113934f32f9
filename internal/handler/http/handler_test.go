package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/apiclient"
	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ============================================================================
// Fake backend
// ============================================================================

// fakeBackend stands in for the remote API. It serves both the session
// operations and the catalog reads.
type fakeBackend struct {
	mu       sync.Mutex
	products map[domain.ProductID]domain.Product
	wishlist []domain.WishlistEntry
	orders   []domain.Order
	cart     []string
	nextID   int
	tokens   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[domain.ProductID]domain.Product{
			7: {ID: 7, Name: "Mug", Price: decimal.RequireFromString("9.99"), Stock: 5, IsActive: true, IsInStock: true},
			8: {ID: 8, Name: "Kettle", Price: decimal.RequireFromString("30.00"), IsActive: true},
		},
		nextID: 100,
	}
}

func (f *fakeBackend) seen(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, apiclient.TokenFromContext(ctx))
}

func (f *fakeBackend) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	if password != "correct-horse" {
		return domain.Identity{}, apperrors.InvalidInput("catalog api: Unable to log in with provided credentials.")
	}
	return domain.Identity{ID: 5, Username: username, Token: "tok-" + username}, nil
}

func (f *fakeBackend) Register(_ context.Context, reg domain.Registration) (domain.Identity, error) {
	return domain.Identity{ID: 6, Username: reg.Username, Email: reg.Email, Token: "tok-" + reg.Username}, nil
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) ClearServerCart(ctx context.Context) error {
	f.seen(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = nil
	return nil
}

func (f *fakeBackend) AddToServerCart(_ context.Context, id domain.ProductID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = append(f.cart, fmt.Sprintf("%d:%d", id, quantity))
	return nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, addr string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cart) == 0 {
		return domain.Order{}, apperrors.InvalidInput("catalog api: Cart is empty")
	}
	f.nextID++
	o := domain.Order{ID: f.nextID, Status: "pending", ShippingAddress: addr, TotalAmount: decimal.RequireFromString("19.98")}
	f.orders = append(f.orders, o)
	f.cart = nil
	return o, nil
}

func (f *fakeBackend) Wishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	f.seen(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.WishlistEntry(nil), f.wishlist...), nil
}

func (f *fakeBackend) AddToWishlist(_ context.Context, id domain.ProductID) (domain.WishlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := domain.WishlistEntry{EntryID: f.nextID, Product: f.products[id]}
	f.wishlist = append(f.wishlist, e)
	return e, nil
}

func (f *fakeBackend) RemoveFromWishlist(_ context.Context, entryID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.wishlist {
		if e.EntryID == entryID {
			f.wishlist = append(f.wishlist[:i], f.wishlist[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("catalog api resource", "Not found.")
}

func (f *fakeBackend) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Kitchen"}}, nil
}

func (f *fakeBackend) Category(_ context.Context, id int) (domain.Category, error) {
	if id != 1 {
		return domain.Category{}, apperrors.NotFound("catalog api resource", "Not found.")
	}
	return domain.Category{ID: 1, Name: "Kitchen"}, nil
}

func (f *fakeBackend) Products(_ context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	next := "http://api.test/api/products/?page=2"
	return pagination.Page[domain.Product]{
		Count:   2,
		Next:    &next,
		Results: []domain.Product{{ID: 7, Name: "Mug " + filter.Search}},
	}, nil
}

func (f *fakeBackend) Product(_ context.Context, id domain.ProductID) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("catalog api resource", "Not found.")
	}
	return p, nil
}

func (f *fakeBackend) Reviews(_ context.Context, id domain.ProductID) ([]domain.Review, error) {
	return nil, nil
}

func (f *fakeBackend) CreateReview(ctx context.Context, id domain.ProductID, rating int, comment string) (domain.Review, error) {
	f.seen(ctx)
	return domain.Review{ID: 1, ProductID: id, Rating: rating, Comment: comment}, nil
}

func (f *fakeBackend) DashboardStats(context.Context) (domain.DashboardStats, error) {
	return domain.DashboardStats{TotalProducts: 2, TotalCategories: 1}, nil
}

func (f *fakeBackend) Orders(context.Context, int) (pagination.Page[domain.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pagination.Page[domain.Order]{Count: len(f.orders), Results: append([]domain.Order(nil), f.orders...)}, nil
}

func (f *fakeBackend) Order(_ context.Context, id int) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, apperrors.NotFound("catalog api resource", "Not found.")
}

func (f *fakeBackend) Profile(ctx context.Context) (domain.Profile, error) {
	f.seen(ctx)
	return domain.Profile{ID: 1, User: domain.User{ID: 5, Username: "ada"}, City: "London"}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, upd domain.ProfileUpdate) (domain.Profile, error) {
	return domain.Profile{ID: 1, City: upd.City}, nil
}

// blockingStore holds identity loads until released.
type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Load(ctx context.Context, _ string) (domain.Identity, error) {
	select {
	case <-s.release:
		return domain.Identity{}, apperrors.NotFound("session identity", "x")
	case <-ctx.Done():
		return domain.Identity{}, ctx.Err()
	}
}

func (s *blockingStore) Save(context.Context, string, domain.Identity) error { return nil }
func (s *blockingStore) Delete(context.Context, string) error                { return nil }

// ============================================================================
// Test helpers
// ============================================================================

const testSecret = "0123456789abcdef0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	backend *fakeBackend
	manager *session.Manager
	signer  *session.HandleSigner
	router  http.Handler
}

func newTestServer(t *testing.T, store *blockingStore) *testServer {
	t.Helper()
	backend := newFakeBackend()
	signer := session.NewHandleSigner(testSecret, time.Hour)

	var manager *session.Manager
	if store != nil {
		manager = session.NewManager(backend, store, nil, signer, session.DefaultConfig(), testLogger())
	} else {
		manager = session.NewManager(backend, nil, nil, signer, session.DefaultConfig(), testLogger())
	}
	t.Cleanup(manager.Shutdown)

	h := NewHandler(manager, backend, testLogger())
	router := NewRouter(h, health.NewHandler(), middleware.DefaultCORSConfig(), testLogger(), nil)
	return &testServer{backend: backend, manager: manager, signer: signer, router: router}
}

func (ts *testServer) do(t *testing.T, method, path, handle string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if handle != "" {
		req.Header.Set(middleware.SessionHeader, handle)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) newSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	handle := rec.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, handle)
	return handle
}

func (ts *testServer) signedIn(t *testing.T) string {
	t.Helper()
	handle := ts.newSession(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", handle, LoginRequest{Username: "ada", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return handle
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data
}

// ============================================================================
// Sessions and guard
// ============================================================================

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", "", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData[sessionResponse](t, rec)
	assert.Equal(t, rec.Header().Get(middleware.SessionHeader), data.Handle)
	assert.Equal(t, "denied", data.Status)
	assert.Equal(t, 1, ts.manager.Len())
}

func TestSessionHeaderRequired(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_SESSION", decodeResponse(t, rec).Error.Code)
}

func TestSessionHandleTampered(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart", handle+"x", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_SESSION", decodeResponse(t, rec).Error.Code)
}

func TestGuard_DeniedRedirectsOnce(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	handle := rec.Header().Get(middleware.SessionHeader)
	// Session creation already evaluated the guard once.

	first := ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil)
	assert.Equal(t, http.StatusUnauthorized, first.Code)
	resp := decodeResponse(t, first)
	assert.Equal(t, "UNAUTHENTICATED", resp.Error.Code)
	assert.Equal(t, "/login", resp.Error.RedirectTo)
	assert.Empty(t, first.Header().Get("Location"))
}

func TestGuard_LocationOnFirstDenial(t *testing.T) {
	ts := newTestServer(t, nil)
	handle, err := ts.signer.Sign("sess-fresh")
	require.NoError(t, err)

	first := ts.do(t, http.MethodGet, "/api/v1/wishlist", handle, nil)
	second := ts.do(t, http.MethodGet, "/api/v1/wishlist", handle, nil)

	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, "/login", first.Header().Get("Location"))
	assert.Equal(t, http.StatusUnauthorized, second.Code)
	assert.Empty(t, second.Header().Get("Location"))
}

func TestGuard_PendingWhileResolving(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	ts := newTestServer(t, store)
	t.Cleanup(func() { close(store.release) })
	handle, err := ts.signer.Sign("sess-restored")
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "PENDING", decodeResponse(t, rec).Error.Code)
}

func TestDestroySession(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodDelete, "/api/v1/sessions", handle, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, ts.manager.Len())

	rec = ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_SESSION", decodeResponse(t, rec).Error.Code)
	assert.Equal(t, 0, ts.manager.Len())
}

// ============================================================================
// Auth
// ============================================================================

func TestLogin_ThenMe(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", handle, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData[MeResponse](t, rec)
	assert.Equal(t, "ready", me.Status)
	require.NotNil(t, me.User)
	assert.Equal(t, "ada", me.User.Username)
	assert.NotContains(t, rec.Body.String(), "tok-ada")
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", handle, LoginRequest{Username: "ada", Password: "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeResponse(t, rec).Error.Code)
}

func TestLogin_ValidationError(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", handle, map[string]string{"username": "ada"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "password")
}

func TestLogin_RejectsNonJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("username=ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.SessionHeader, handle)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", handle, domain.Registration{
		Username: "grace", Email: "grace@example.com", Password: "long-enough", PasswordConfirm: "different",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Fields, "password_confirm")
}

func TestRegister_SignsIn(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", handle, domain.Registration{
		Username: "grace", Email: "grace@example.com", Password: "long-enough", PasswordConfirm: "long-enough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cart := ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil)
	assert.Equal(t, http.StatusOK, cart.Code)
}

func TestLogout_KeepsCart(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: 1}).Code)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/logout", handle, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil).Code)

	ts.do(t, http.MethodPost, "/api/v1/auth/login", handle, LoginRequest{Username: "ada", Password: "correct-horse"})
	cart := decodeData[domain.CartSnapshot](t, ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil))
	assert.Equal(t, 1, cart.ItemCount)
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_AddUpdateRemove(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeData[domain.CartSnapshot](t, rec)
	assert.True(t, decimal.RequireFromString("19.98").Equal(cart.Total))
	assert.Equal(t, "Mug", cart.Lines[0].Name)

	rec = ts.do(t, http.MethodPut, "/api/v1/cart/items/7", handle, UpdateQuantityRequest{Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeData[domain.CartSnapshot](t, rec)
	assert.True(t, decimal.RequireFromString("9.99").Equal(cart.Total))

	rec = ts.do(t, http.MethodDelete, "/api/v1/cart/items/7", handle, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeData[domain.CartSnapshot](t, rec)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Total.IsZero())
}

func TestCart_ZeroQuantityClampsToOne(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeData[domain.CartSnapshot](t, rec).ItemCount)
}

func TestCart_QuantityAboveCapRejected(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: cart.MaxQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, rec).Error.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: cart.MaxQuantity})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: cart.MaxQuantity})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cart.MaxQuantity, decodeData[domain.CartSnapshot](t, rec).ItemCount)

	rec = ts.do(t, http.MethodPut, "/api/v1/cart/items/7", handle, UpdateQuantityRequest{Quantity: cart.MaxQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, rec).Error.Code)
}

func TestCart_UnavailableProduct(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 8, Quantity: 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_UnknownProduct(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 99, Quantity: 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_InvalidProductID(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodDelete, "/api/v1/cart/items/abc", handle, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeResponse(t, rec).Error.Code)
}

func TestCart_Clear(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)
	ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: 3})

	rec := ts.do(t, http.MethodDelete, "/api/v1/cart", handle, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cart := decodeData[domain.CartSnapshot](t, ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil))
	assert.Zero(t, cart.ItemCount)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

// ============================================================================
// Wishlist
// ============================================================================

func TestWishlist_AddStatusRemove(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/wishlist/7", handle, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	status := decodeData[wishlistStatus](t, ts.do(t, http.MethodGet, "/api/v1/wishlist/7", handle, nil))
	assert.True(t, status.Wishlisted)

	entries := decodeData[[]domain.WishlistEntry](t, ts.do(t, http.MethodGet, "/api/v1/wishlist", handle, nil))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ProductID(7), entries[0].Product.ID)

	rec = ts.do(t, http.MethodDelete, "/api/v1/wishlist/7", handle, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	status = decodeData[wishlistStatus](t, ts.do(t, http.MethodGet, "/api/v1/wishlist/7", handle, nil))
	assert.False(t, status.Wishlisted)
}

func TestWishlist_RemoveMissing(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodDelete, "/api/v1/wishlist/7", handle, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlist_EmptyListIsArray(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/wishlist", handle, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

// ============================================================================
// Checkout and orders
// ============================================================================

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/checkout", handle, CheckoutRequest{ShippingAddress: "1 Loop St"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_CART", decodeResponse(t, rec).Error.Code)
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)
	ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: 2})

	rec := ts.do(t, http.MethodPost, "/api/v1/checkout", handle, CheckoutRequest{ShippingAddress: "1 Loop St"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeData[domain.Order](t, rec)
	assert.Equal(t, "1 Loop St", order.ShippingAddress)

	cart := decodeData[domain.CartSnapshot](t, ts.do(t, http.MethodGet, "/api/v1/cart", handle, nil))
	assert.Empty(t, cart.Lines)

	got := decodeData[domain.Order](t, ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), handle, nil))
	assert.Equal(t, order.ID, got.ID)

	rec = ts.do(t, http.MethodGet, "/api/v1/orders", handle, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list pagination.Result[domain.Order]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 1, list.TotalCount)
}

// ============================================================================
// Catalog, dashboard, profile, reviews
// ============================================================================

func TestCatalog_PublicWithoutSession(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/catalog/products?search=blue&page=1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	var list pagination.Result[domain.Product]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.True(t, list.HasNext)
	assert.Equal(t, "Mug blue", list.Data[0].Name)
}

func TestCatalog_InvalidCategoryFilter(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/catalog/products?category=x", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog_CategoryNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/catalog/categories/9", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog_ReviewsEmptyArray(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/catalog/products/7/reviews", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestCreateReview_RequiresIdentity(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/catalog/products/7/reviews", handle, CreateReviewRequest{Rating: 4})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReview_RatingRange(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/catalog/products/7/reviews", handle, CreateReviewRequest{Rating: 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/catalog/products/7/reviews", handle, CreateReviewRequest{Rating: 5, Comment: "Solid"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "tok-ada", ts.backend.lastToken())
}

func TestDashboard_MergesSessionCounts(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)
	ts.do(t, http.MethodPost, "/api/v1/cart/items", handle, AddItemRequest{ProductID: 7, Quantity: 3})

	stats := decodeData[domain.DashboardStats](t, ts.do(t, http.MethodGet, "/api/v1/dashboard", handle, nil))

	assert.Equal(t, 2, stats.TotalProducts)
	require.NotNil(t, stats.CartItems)
	assert.Equal(t, 3, *stats.CartItems)
	require.NotNil(t, stats.WishlistItems)
	assert.Zero(t, *stats.WishlistItems)
}

func TestDashboard_SignedOut(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.newSession(t)

	stats := decodeData[domain.DashboardStats](t, ts.do(t, http.MethodGet, "/api/v1/dashboard", handle, nil))

	assert.Equal(t, 1, stats.TotalCategories)
	assert.Nil(t, stats.CartItems)
}

func TestProfile_GetAndUpdate(t *testing.T) {
	ts := newTestServer(t, nil)
	handle := ts.signedIn(t)

	profile := decodeData[domain.Profile](t, ts.do(t, http.MethodGet, "/api/v1/profile", handle, nil))
	assert.Equal(t, "London", profile.City)

	rec := ts.do(t, http.MethodPut, "/api/v1/profile", handle, domain.ProfileUpdate{City: "Paris"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paris", decodeData[domain.Profile](t, rec).City)

	rec = ts.do(t, http.MethodPut, "/api/v1/profile", handle, domain.ProfileUpdate{PostalCode: strings.Repeat("9", 21)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthLive(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health/live", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
