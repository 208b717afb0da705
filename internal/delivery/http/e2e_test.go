package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libratrack/backend/internal/config"
	"github.com/libratrack/backend/internal/domain"
	"github.com/libratrack/backend/internal/middleware"
	"github.com/libratrack/backend/internal/token"
	"github.com/libratrack/backend/internal/usecase"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func (r *fakeTokenRepo) Create(t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[t.Token]; exists {
		return domain.ErrDuplicateToken
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	clone := *t
	r.tokens[t.Token] = &clone
	return nil
}

func (r *fakeTokenRepo) GetByToken(value string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[value]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) DeleteByToken(value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, value)
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for value, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, value)
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteIfExpired(value string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.ExpiresAt.After(now) {
		return false, nil
	}
	delete(r.tokens, value)
	return true, nil
}

func (r *fakeTokenRepo) DeleteExpiredBefore(instant time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for value, t := range r.tokens {
		if t.ExpiresAt.Before(instant) {
			delete(r.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *token.Codec) {
	t.Helper()

	cfg := &config.JWTConfig{
		Secret:        "e2e-secret",
		AccessExpiry:  30 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}
	userRepo := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	tokenRepo := &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
	codec := token.NewCodec(cfg.Secret, cfg.AccessExpiry)

	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, codec, cfg)
	handler := NewHandler(authUsecase, nil, nil, nil, nil)
	gate := middleware.NewAuthMiddleware(codec, userRepo, []string{"/health", "/api/v1/auth/", "/api/v1/public/"})
	router := NewRouter(handler, gate, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, codec
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func getWithToken(t *testing.T, url, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// Full session lifecycle: login, authenticated request, access-token expiry,
// silent refresh, request with the new token, logout, rejected rotation.
func TestSessionLifecycle(t *testing.T) {
	srv, codec := newTestServer(t)

	// Register and login.
	resp := postJSON(t, srv.URL+"/api/v1/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody(t, resp)
	accessToken := login["accessToken"].(string)
	refreshToken := login["refreshToken"].(string)
	assert.Equal(t, "Bearer", login["tokenType"])
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	// Authenticated request succeeds.
	resp = getWithToken(t, srv.URL+"/api/v1/users/me", accessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody(t, resp)
	assert.Equal(t, "alice", me["username"])

	// An access token minted past its TTL: the client is told it expired.
	past := time.Now().Add(-31 * time.Minute)
	expiredToken, _, err := codec.WithClock(func() time.Time { return past }).Mint("alice")
	require.NoError(t, err)

	resp = getWithToken(t, srv.URL+"/api/v1/users/me", expiredToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token expired", decodeBody(t, resp)["error"])

	// Silent refresh: new access token, same refresh token.
	resp = postJSON(t, srv.URL+"/api/v1/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeBody(t, resp)
	newAccess := rotated["accessToken"].(string)
	assert.Equal(t, refreshToken, rotated["refreshToken"])
	require.NotEmpty(t, newAccess)

	resp = getWithToken(t, srv.URL+"/api/v1/users/me", newAccess)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Logout is idempotent and always succeeds.
	for i := 0; i < 2; i++ {
		resp = postJSON(t, srv.URL+"/api/v1/auth/logout", map[string]string{
			"refreshToken": refreshToken,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// The revoked refresh token can no longer rotate: full re-login needed.
	resp = postJSON(t, srv.URL+"/api/v1/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin_GenericFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Unknown user and wrong password produce identical responses.
	respUnknown := postJSON(t, srv.URL+"/api/v1/auth/login", map[string]string{
		"username": "nobody", "password": "pw",
	})
	respWrong := postJSON(t, srv.URL+"/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "bad",
	})
	assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, decodeBody(t, respUnknown)["error"], decodeBody(t, respWrong)["error"])
}

func TestRefresh_MissingAndUnknown(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/auth/refresh", map[string]string{
		"refreshToken": "never-issued",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoute_NoToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := getWithToken(t, srv.URL+"/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestHealth_Public(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
