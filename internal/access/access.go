// Package access resolves caller privilege and passes it down through context.
package access

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Privilege decides whether a caller may see real occupancy.
type Privilege int

const (
	Public Privilege = iota
	Admin
)

func (p Privilege) String() string {
	if p == Admin {
		return "admin"
	}
	return "public"
}

// IsPrivileged reports whether real occupancy may be shown.
func (p Privilege) IsPrivileged() bool {
	return p == Admin
}

type ctxKey struct{}

// WithPrivilege returns a copy of ctx carrying p.
func WithPrivilege(ctx context.Context, p Privilege) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the privilege in ctx, Public if none.
func FromContext(ctx context.Context) Privilege {
	if p, ok := ctx.Value(ctxKey{}).(Privilege); ok {
		return p
	}
	return Public
}

// TokenChecker maps admin tokens to the Admin privilege.
type TokenChecker struct {
	tokens []string
	logger zerolog.Logger
}

// NewTokenChecker creates a checker; empty tokens are ignored.
func NewTokenChecker(tokens []string, logger zerolog.Logger) *TokenChecker {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return &TokenChecker{
		tokens: kept,
		logger: logger.With().Str("component", "access").Logger(),
	}
}

// Check returns the privilege granted by token.
func (c *TokenChecker) Check(token string) Privilege {
	if token == "" {
		return Public
	}
	for _, t := range c.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return Admin
		}
	}
	return Public
}

// FromRequest reads X-Admin-Token or an Authorization bearer token.
func (c *TokenChecker) FromRequest(r *http.Request) Privilege {
	token := r.Header.Get("X-Admin-Token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	p := c.Check(token)
	if token != "" && p == Public {
		c.logger.Warn().Str("remote", r.RemoteAddr).Msg("rejected admin token")
	}
	return p
}

// Middleware attaches the request privilege to its context.
func (c *TokenChecker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithPrivilege(r.Context(), c.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests without the Admin privilege.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).IsPrivileged() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"admin privilege required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
