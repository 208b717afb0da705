package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/libratrack/backend/internal/domain"
	"github.com/libratrack/backend/internal/token"
)

type contextKey string

const userKey contextKey = "currentUser"

// AuthMiddleware is the per-request gate. It runs on every route; paths on
// the public allow-list pass through unverified, everything else must carry
// a valid bearer access token.
type AuthMiddleware struct {
	codec       *token.Codec
	userRepo    domain.UserRepository
	publicPaths []string
}

func NewAuthMiddleware(codec *token.Codec, userRepo domain.UserRepository, publicPaths []string) *AuthMiddleware {
	return &AuthMiddleware{
		codec:       codec,
		userRepo:    userRepo,
		publicPaths: publicPaths,
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Gate verifies the access token and attaches the authenticated user to the
// request context. The 401 body distinguishes "Token expired" from "Token
// invalid" so clients know whether a silent refresh is worth attempting, but
// forged and malformed tokens get the same generic message.
func (m *AuthMiddleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, "Authorization required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeAuthError(w, http.StatusUnauthorized, "Token invalid")
			return
		}

		claims, err := m.codec.Verify(parts[1])
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				writeAuthError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Token invalid")
			return
		}

		// One identity read to pick up role flags. Independent of token
		// trust, which the signature already established.
		user, err := m.userRepo.GetByUsername(claims.Subject)
		if err != nil {
			writeAuthError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "Token invalid")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireModerator must run after Gate. Admins pass as well.
func (m *AuthMiddleware) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authorization required")
			return
		}
		if !user.CanModerate() {
			writeAuthError(w, http.StatusForbidden, "Moderator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin must run after Gate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authorization required")
			return
		}
		if !user.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) isPublic(path string) bool {
	for _, prefix := range m.publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// GetUser returns the authenticated user attached by Gate.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}
