// Package guard decides whether an identity-requiring view may be served.
package guard

import (
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// DefaultRedirect is where an unauthenticated visitor is sent.
const DefaultRedirect = "/login"

// Status is the outcome of a guard evaluation.
type Status int

const (
	// Pending means identity resolution has not finished.
	Pending Status = iota
	// Ready means an identity is present.
	Ready
	// Denied means resolution finished without an identity.
	Denied
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is what the guard reports for one evaluation.
type Decision struct {
	Status   Status
	Identity *domain.Identity
	// Redirect is the fallback destination for Denied decisions.
	Redirect string
	// Redirected is true on the evaluation that issued the redirect.
	Redirected bool
}

// Redirector performs the redirect to the fallback destination.
type Redirector func(to string)

// Guard remembers whether it has already redirected so that repeated
// evaluations while signed out redirect only once.
type Guard struct {
	fallback string
	redirect Redirector

	mu         sync.Mutex
	redirected bool
}

// New creates a guard that sends signed-out visitors to fallback, or to
// DefaultRedirect when fallback is empty. redirect may be nil.
func New(fallback string, redirect Redirector) *Guard {
	if fallback == "" {
		fallback = DefaultRedirect
	}
	return &Guard{fallback: fallback, redirect: redirect}
}

// Evaluate derives a decision from the auth provider's state.
func (g *Guard) Evaluate(identity *domain.Identity, resolving bool) Decision {
	if resolving {
		return Decision{Status: Pending}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if identity != nil {
		// A later sign-out should redirect again.
		g.redirected = false
		id := *identity
		return Decision{Status: Ready, Identity: &id}
	}

	d := Decision{Status: Denied, Redirect: g.fallback}
	if !g.redirected {
		g.redirected = true
		d.Redirected = true
		if g.redirect != nil {
			g.redirect(g.fallback)
		}
	}
	return d
}
