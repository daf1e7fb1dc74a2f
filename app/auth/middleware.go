package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

const (
	msgNoCredentials = "Authentication credentials were not provided."
	msgInvalidToken  = "Invalid token."
)

type TokenResolver interface {
	UserForToken(key string) (*models.User, error)
}

type ctxKey struct{}

// UserFrom returns the account attached by Require.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok
}

type Authenticator struct {
	repo TokenResolver
	log  *zap.Logger
}

func NewAuthenticator(r TokenResolver, log *zap.Logger) *Authenticator {
	return &Authenticator{repo: r, log: log}
}

// Require rejects requests without a valid "Token <key>" or "Bearer <key>"
// Authorization header before next runs.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			api.WriteJSON(w, http.StatusUnauthorized, api.DetailBody{Detail: msgNoCredentials})
			return
		}

		user, err := a.repo.UserForToken(key)
		if errors.Is(err, models.ErrNotFound) {
			api.WriteJSON(w, http.StatusUnauthorized, api.DetailBody{Detail: msgInvalidToken})
			return
		}
		if err != nil {
			api.WriteError(w, a.log, err, "Token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

// RequireFunc is Require for a HandlerFunc.
func (a *Authenticator) RequireFunc(next http.HandlerFunc) http.Handler {
	return a.Require(next)
}

func tokenFromHeader(header string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}
