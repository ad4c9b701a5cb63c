package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/service"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type identityKey struct{}

const userIDClaim = "user_id"

func (h *Handler) InitAuth(secret string, ttl time.Duration) {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)
	h.tokenTTL = ttl
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	now := time.Now()
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		userIDClaim: user.ID,
		"username":  user.Username,
		"iat":       now.Unix(),
		"exp":       now.Add(h.tokenTTL).Unix(),
	})
	return tokenString, err
}

// Identify resolves the bearer token left in the context by jwtauth.Verifier
// into a user. Requests without a usable token continue anonymously.
func (h *Handler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}
		if exp := token.Expiration(); !exp.IsZero() && time.Now().After(exp) {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := claimInt64(claims[userIDClaim])
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.users.GetUser(r.Context(), userID)
		if err != nil {
			if service.KindOf(err) != service.NotFound {
				log.WithError(err).Warn("unable to resolve token identity")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity(r) == nil {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identity returns the signed in user, or nil.
func identity(r *http.Request) *models.User {
	user, _ := r.Context().Value(identityKey{}).(*models.User)
	return user
}

func claimInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n > 0
	case int64:
		return n, n > 0
	case int:
		return int64(n), n > 0
	case json.Number:
		id, err := n.Int64()
		return id, err == nil && id > 0
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}
