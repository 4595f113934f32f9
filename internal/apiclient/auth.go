package apiclient

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
)

// Login exchanges credentials for an identity carrying its access token.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	w, err := fetchOne[wireLogin](ctx, c, call{
		op:     "login",
		method: http.MethodPost,
		path:   "auth/login/",
		body:   map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		ID:       w.UserID,
		Username: w.Username,
		Email:    w.Email,
		Token:    w.Token,
	}, nil
}

// Register creates an account and returns the signed-in identity.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.Identity, error) {
	w, err := fetchOne[wireRegistration](ctx, c, call{
		op:     "register",
		method: http.MethodPost,
		path:   "auth/register/",
		body:   reg,
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		ID:       w.User.ID,
		Username: w.User.Username,
		Email:    w.User.Email,
		Token:    w.Token,
	}, nil
}

// Logout revokes the token carried by ctx.
func (c *Client) Logout(ctx context.Context) error {
	var msg wireMessage
	return c.do(ctx, call{op: "logout", method: http.MethodPost, path: "auth/logout/"}, &msg)
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	w, err := fetchOne[wireProfile](ctx, c, call{op: "profile", method: http.MethodGet, path: "profile/"})
	if err != nil {
		return domain.Profile{}, err
	}
	return w.toDomain(), nil
}

// UpdateProfile replaces the caller's editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Profile, error) {
	w, err := fetchOne[wireProfile](ctx, c, call{
		op:     "update_profile",
		method: http.MethodPut,
		path:   "profile/",
		body:   upd,
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return w.toDomain(), nil
}
