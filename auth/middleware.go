package auth

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/httputil"
	"vidtube/models"
)

type contextKey string

const userIDKey contextKey = "user_id"

// CookieName is the cookie login sets for browser clients. The
// Authorization header wins when both are present.
const CookieName = "accessToken"

// UserLookup confirms the token's subject still has an account.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Middleware resolves bearer tokens into the request context.
type Middleware struct {
	Issuer *Issuer
	Users  UserLookup
}

// WithUserID stores the acting user id in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the acting user id from ctx, if any.
func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

// ExtractUserID returns the user ID from the request context, if present.
func ExtractUserID(r *http.Request) (string, bool) { return UserID(r.Context()) }

func (m *Middleware) authenticate(r *http.Request) (string, error) {
	tok, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			return "", apperr.Unauthorized("Unauthorized request")
		}
		tok = c.Value
	}
	id, err := m.Issuer.Resolve(tok)
	if err != nil {
		return "", err
	}
	if m.Users != nil {
		if _, err := m.Users.GetUser(r.Context(), id); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return "", apperr.Unauthorized("Invalid access token")
			}
			return "", err
		}
	}
	return id, nil
}

// Require rejects requests without a valid token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authenticate(r)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// Optional resolves a token when one is present but lets anonymous requests
// through. An invalid token is treated as anonymous.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := m.authenticate(r); err == nil {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
