package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const handleIssuer = "storefront-session"

// HandleClaims are the claims of a signed session handle. The subject is
// the session id.
type HandleClaims struct {
	jwt.RegisteredClaims
}

// HandleSigner issues and checks the signed handles clients present in the
// X-Session-ID header.
type HandleSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewHandleSigner creates a signer using HMAC-SHA256 with secret.
func NewHandleSigner(secret string, ttl time.Duration) *HandleSigner {
	return &HandleSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a handle for sessionID.
func (s *HandleSigner) Sign(sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := &HandleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    handleIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session handle: %w", err)
	}
	return signed, nil
}

// Parse validates handle and returns the session id it names.
func (s *HandleSigner) Parse(handle string) (string, error) {
	token, err := jwt.ParseWithClaims(handle, &HandleClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(handleIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parse session handle: %w", err)
	}

	claims, ok := token.Claims.(*HandleClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid session handle claims")
	}
	if claims.Subject == "" {
		return "", errors.New("session handle has no subject")
	}
	return claims.Subject, nil
}
