package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/libratrack/backend/internal/middleware"
	"github.com/libratrack/backend/internal/usecase"
)

type Handler struct {
	authUsecase     *usecase.AuthUsecase
	titleUsecase    *usecase.TitleUsecase
	catalogUsecase  *usecase.CatalogUsecase
	reviewUsecase   *usecase.ReviewUsecase
	proposalUsecase *usecase.ProposalUsecase
}

func NewHandler(auth *usecase.AuthUsecase, title *usecase.TitleUsecase, catalog *usecase.CatalogUsecase, review *usecase.ReviewUsecase, proposal *usecase.ProposalUsecase) *Handler {
	return &Handler{
		authUsecase:     auth,
		titleUsecase:    title,
		catalogUsecase:  catalog,
		reviewUsecase:   review,
		proposalUsecase: proposal,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Auth handlers

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	user, err := h.authUsecase.Register(req.Username, req.Email, req.Password)
	if errors.Is(err, usecase.ErrUserExists) {
		writeError(w, http.StatusConflict, "Username or email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	_, pair, err := h.authUsecase.Login(req.Username, req.Password)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a live refresh token for a new access token. 403 (not
// 401) on an unknown or expired refresh token: the client must re-login
// rather than retry.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	pair, err := h.authUsecase.Rotate(req.RefreshToken)
	if errors.Is(err, usecase.ErrRefreshTokenUnknown) {
		writeError(w, http.StatusForbidden, "Refresh token not found")
		return
	}
	if errors.Is(err, usecase.ErrRefreshTokenExpired) {
		writeError(w, http.StatusForbidden, "Refresh token expired, please log in again")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	// Result is the same whether or not the token existed.
	if err := h.authUsecase.Logout(req.RefreshToken); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	if err := h.authUsecase.LogoutAll(user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All sessions revoked"})
}

// User handlers

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.authUsecase.UpdateProfile(user.ID, req.Email, req.AvatarURL)
	if errors.Is(err, usecase.ErrUserExists) {
		writeError(w, http.StatusConflict, "Email already in use")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}

	err := h.authUsecase.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}
