package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libratrack/backend/internal/domain"
	"github.com/libratrack/backend/internal/token"
)

type stubUserRepo struct {
	byUsername map[string]*domain.User
}

func (r *stubUserRepo) Create(*domain.User) error { return nil }
func (r *stubUserRepo) GetByID(uuid.UUID) (*domain.User, error) {
	return nil, nil
}
func (r *stubUserRepo) GetByUsername(username string) (*domain.User, error) {
	return r.byUsername[username], nil
}
func (r *stubUserRepo) GetByEmail(string) (*domain.User, error) { return nil, nil }
func (r *stubUserRepo) Update(*domain.User) error               { return nil }
func (r *stubUserRepo) Delete(uuid.UUID) error                  { return nil }

func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func newGate(t *testing.T, users ...*domain.User) (*AuthMiddleware, *token.Codec) {
	t.Helper()

	repo := &stubUserRepo{byUsername: make(map[string]*domain.User)}
	for _, u := range users {
		repo.byUsername[u.Username] = u
	}
	codec := token.NewCodec("gate-secret", 30*time.Minute)
	return NewAuthMiddleware(codec, repo, []string{"/health", "/api/v1/auth/", "/api/v1/public/"}), codec
}

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := GetUser(r.Context()); ok {
			w.Write([]byte("hello " + user.Username))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestGate_PublicPathSkipsVerification(t *testing.T) {
	gate, _ := newGate(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestGate_MissingHeader(t *testing.T) {
	gate, _ := newGate(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization required", errorBody(t, rec))
}

func TestGate_ValidToken(t *testing.T) {
	alice := &domain.User{ID: uuid.New(), Username: "alice"}
	gate, codec := newGate(t, alice)

	signed, _, err := codec.Mint("alice")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello alice", rec.Body.String())
}

func TestGate_ExpiredToken(t *testing.T) {
	alice := &domain.User{ID: uuid.New(), Username: "alice"}
	gate, codec := newGate(t, alice)

	past := time.Now().Add(-31 * time.Minute)
	signed, _, err := codec.WithClock(func() time.Time { return past }).Mint("alice")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

	// Distinguishable body so the client knows to attempt a refresh.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", errorBody(t, rec))
}

func TestGate_ForgedAndMalformedTokensIndistinguishable(t *testing.T) {
	alice := &domain.User{ID: uuid.New(), Username: "alice"}
	gate, _ := newGate(t, alice)

	forged, _, err := token.NewCodec("other-secret", 30*time.Minute).Mint("alice")
	require.NoError(t, err)

	for _, tok := range []string{forged, "garbage", "a.b.c"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token invalid", errorBody(t, rec), "token %q", tok)
	}
}

func TestGate_UnknownSubject(t *testing.T) {
	gate, codec := newGate(t)

	signed, _, err := codec.Mint("ghost")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token invalid", errorBody(t, rec))
}

func TestGate_BadHeaderFormat(t *testing.T) {
	gate, _ := newGate(t)

	for _, header := range []string{"Basic abc", "Bearer", "bearer token"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.Header.Set("Authorization", header)
		gate.Gate(protectedHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireModerator(t *testing.T) {
	gate, _ := newGate(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		user *domain.User
		want int
	}{
		{"plain user", &domain.User{Username: "u"}, http.StatusForbidden},
		{"moderator", &domain.User{Username: "m", IsModerator: true}, http.StatusOK},
		{"admin implies moderator", &domain.User{Username: "a", IsAdmin: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/proposals", nil)
			req = req.WithContext(withUser(req.Context(), tt.user))
			gate.RequireModerator(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gate, _ := newGate(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		user *domain.User
		want int
	}{
		{"plain user", &domain.User{Username: "u"}, http.StatusForbidden},
		{"moderator is not admin", &domain.User{Username: "m", IsModerator: true}, http.StatusForbidden},
		{"admin", &domain.User{Username: "a", IsAdmin: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/types", nil)
			req = req.WithContext(withUser(req.Context(), tt.user))
			gate.RequireAdmin(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
