package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/libratrack/backend/internal/domain"
	"github.com/libratrack/backend/internal/middleware"
	"github.com/libratrack/backend/internal/usecase"
)

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, usecase.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, usecase.ErrForbidden):
		writeError(w, http.StatusForbidden, "Operation not allowed")
	case errors.Is(err, usecase.ErrAlreadyExists), errors.Is(err, domain.ErrDuplicate):
		writeError(w, http.StatusConflict, "Resource already exists")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// Public catalog handlers

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.titleUsecase.ListTypes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.titleUsecase.ListGenres()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list genres")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *Handler) BrowseTitles(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	titles, total, err := h.titleUsecase.BrowseTitles(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list titles")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: titles, Total: total})
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	title, err := h.titleUsecase.GetTitle(id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get title")
		return
	}
	writeJSON(w, http.StatusOK, title)
}

func (h *Handler) ListTitleReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	limit, offset := pagination(r)
	reviews, total, err := h.reviewUsecase.ListByTitle(id, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: reviews, Total: total})
}

// Personal catalog handlers

type catalogSaveRequest struct {
	TitleID  uuid.UUID `json:"title_id"`
	Status   string    `json:"status"`
	Progress int       `json:"progress"`
	Score    int       `json:"score"`
}

func (h *Handler) SaveCatalogEntry(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var req catalogSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.catalogUsecase.Save(user.ID, req.TitleID, req.Status, req.Progress, req.Score)
	if err != nil {
		writeUsecaseError(w, err, "Failed to save catalog entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	limit, offset := pagination(r)
	entries, total, err := h.catalogUsecase.List(user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list catalog")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: entries, Total: total})
}

type catalogPatchRequest struct {
	Status   *string `json:"status"`
	Progress *int    `json:"progress"`
	Score    *int    `json:"score"`
}

// UpdateCatalogEntry changes only the fields present in the request body.
func (h *Handler) UpdateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	titleID, err := pathID(r, "titleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	var req catalogPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.catalogUsecase.Get(user.ID, titleID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update catalog entry")
		return
	}

	status, progress, score := existing.Status, existing.Progress, existing.Score
	if req.Status != nil {
		status = *req.Status
	}
	if req.Progress != nil {
		progress = *req.Progress
	}
	if req.Score != nil {
		score = *req.Score
	}

	entry, err := h.catalogUsecase.Save(user.ID, titleID, status, progress, score)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update catalog entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) RemoveCatalogEntry(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	titleID, err := pathID(r, "titleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	if err := h.catalogUsecase.Remove(user.ID, titleID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove catalog entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from catalog"})
}

// Review handlers

type reviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	titleID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.reviewUsecase.Create(user.ID, titleID, req.Rating, req.Body)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	reviewID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.reviewUsecase.Update(user, reviewID, req.Rating, req.Body)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update review")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	reviewID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.reviewUsecase.Delete(user, reviewID); err != nil {
		writeUsecaseError(w, err, "Failed to delete review")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}

// Proposal handlers

type proposalRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TypeID      uuid.UUID `json:"type_id"`
}

func (h *Handler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	proposal, err := h.proposalUsecase.Submit(user.ID, req.Name, req.Description, req.TypeID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to submit proposal")
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func (h *Handler) ListOwnProposals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	limit, offset := pagination(r)
	proposals, total, err := h.proposalUsecase.ListOwn(user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list proposals")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: proposals, Total: total})
}

// Moderation handlers

func (h *Handler) ModerationQueue(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	proposals, total, err := h.proposalUsecase.PendingQueue(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending proposals")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: proposals, Total: total})
}

type moderationRequest struct {
	Note string `json:"note"`
}

func (h *Handler) ApproveProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	var req moderationRequest
	json.NewDecoder(r.Body).Decode(&req)

	title, err := h.proposalUsecase.Approve(proposalID, req.Note)
	if err != nil {
		writeUsecaseError(w, err, "Failed to approve proposal")
		return
	}
	writeJSON(w, http.StatusOK, title)
}

func (h *Handler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	var req moderationRequest
	json.NewDecoder(r.Body).Decode(&req)

	if err := h.proposalUsecase.Reject(proposalID, req.Note); err != nil {
		writeUsecaseError(w, err, "Failed to reject proposal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Proposal rejected"})
}

// Admin handlers

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.titleUsecase.CreateType(req.Name)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create type")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type id")
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.titleUsecase.UpdateType(id, req.Name); err != nil {
		writeUsecaseError(w, err, "Failed to update type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Type updated"})
}

func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type id")
		return
	}

	if err := h.titleUsecase.DeleteType(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Type deleted"})
}

func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.titleUsecase.CreateGenre(req.Name)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create genre")
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.titleUsecase.UpdateGenre(id, req.Name); err != nil {
		writeUsecaseError(w, err, "Failed to update genre")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Genre updated"})
}

func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	if err := h.titleUsecase.DeleteGenre(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete genre")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Genre deleted"})
}

type titleRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TypeID      uuid.UUID   `json:"type_id"`
	ReleaseYear int         `json:"release_year"`
	CoverURL    string      `json:"cover_url"`
	GenreIDs    []uuid.UUID `json:"genre_ids"`
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := &domain.Title{
		Name:        req.Name,
		Description: req.Description,
		TypeID:      req.TypeID,
		ReleaseYear: req.ReleaseYear,
		CoverURL:    req.CoverURL,
	}
	if err := h.titleUsecase.CreateTitle(title, req.GenreIDs); err != nil {
		writeUsecaseError(w, err, "Failed to create title")
		return
	}
	writeJSON(w, http.StatusCreated, title)
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := &domain.Title{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		TypeID:      req.TypeID,
		ReleaseYear: req.ReleaseYear,
		CoverURL:    req.CoverURL,
		State:       domain.ContentApproved,
	}
	if err := h.titleUsecase.UpdateTitle(title, req.GenreIDs); err != nil {
		writeUsecaseError(w, err, "Failed to update title")
		return
	}
	writeJSON(w, http.StatusOK, title)
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title id")
		return
	}

	if err := h.titleUsecase.DeleteTitle(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete title")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Title deleted"})
}
