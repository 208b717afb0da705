package usecase

import (
	"github.com/google/uuid"

	"github.com/libratrack/backend/internal/domain"
)

// CatalogUsecase manages a user's personal tracking catalog.
type CatalogUsecase struct {
	catalogRepo domain.CatalogRepository
	titleRepo   domain.TitleRepository
}

func NewCatalogUsecase(catalogRepo domain.CatalogRepository, titleRepo domain.TitleRepository) *CatalogUsecase {
	return &CatalogUsecase{
		catalogRepo: catalogRepo,
		titleRepo:   titleRepo,
	}
}

func (u *CatalogUsecase) Save(userID, titleID uuid.UUID, status string, progress, score int) (*domain.CatalogEntry, error) {
	if !domain.ValidCatalogStatus(status) {
		return nil, ErrInvalidInput
	}
	if progress < 0 || score < 0 || score > 10 {
		return nil, ErrInvalidInput
	}

	title, err := u.titleRepo.GetByID(titleID)
	if err != nil {
		return nil, err
	}
	if title == nil || title.State != domain.ContentApproved {
		return nil, ErrNotFound
	}

	entry := &domain.CatalogEntry{
		UserID:   userID,
		TitleID:  titleID,
		Status:   status,
		Progress: progress,
		Score:    score,
	}
	if err := u.catalogRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (u *CatalogUsecase) List(userID uuid.UUID, limit, offset int) ([]*domain.CatalogEntry, int, error) {
	return u.catalogRepo.ListByUser(userID, limit, offset)
}

func (u *CatalogUsecase) Get(userID, titleID uuid.UUID) (*domain.CatalogEntry, error) {
	entry, err := u.catalogRepo.GetByUserAndTitle(userID, titleID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (u *CatalogUsecase) Remove(userID, titleID uuid.UUID) error {
	return u.catalogRepo.Delete(userID, titleID)
}
