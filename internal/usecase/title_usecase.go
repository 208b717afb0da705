package usecase

import (
	"errors"

	"github.com/google/uuid"

	"github.com/libratrack/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// TitleUsecase covers public browsing of the shared catalog plus the
// admin-managed lookup tables (types and genres).
type TitleUsecase struct {
	titleRepo domain.TitleRepository
	typeRepo  domain.TitleTypeRepository
	genreRepo domain.GenreRepository
}

func NewTitleUsecase(titleRepo domain.TitleRepository, typeRepo domain.TitleTypeRepository, genreRepo domain.GenreRepository) *TitleUsecase {
	return &TitleUsecase{
		titleRepo: titleRepo,
		typeRepo:  typeRepo,
		genreRepo: genreRepo,
	}
}

func (u *TitleUsecase) ListTypes() ([]*domain.TitleType, error) {
	return u.typeRepo.List()
}

func (u *TitleUsecase) ListGenres() ([]*domain.Genre, error) {
	return u.genreRepo.List()
}

func (u *TitleUsecase) BrowseTitles(limit, offset int) ([]*domain.Title, int, error) {
	return u.titleRepo.ListApproved(limit, offset)
}

func (u *TitleUsecase) GetTitle(id uuid.UUID) (*domain.Title, error) {
	title, err := u.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrNotFound
	}
	return title, nil
}

// Admin operations.

func (u *TitleUsecase) CreateType(name string) (*domain.TitleType, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	t := &domain.TitleType{Name: name}
	if err := u.typeRepo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *TitleUsecase) UpdateType(id uuid.UUID, name string) error {
	if name == "" {
		return ErrInvalidInput
	}
	return u.typeRepo.Update(&domain.TitleType{ID: id, Name: name})
}

func (u *TitleUsecase) DeleteType(id uuid.UUID) error {
	return u.typeRepo.Delete(id)
}

func (u *TitleUsecase) CreateGenre(name string) (*domain.Genre, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	g := &domain.Genre{Name: name}
	if err := u.genreRepo.Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (u *TitleUsecase) UpdateGenre(id uuid.UUID, name string) error {
	if name == "" {
		return ErrInvalidInput
	}
	return u.genreRepo.Update(&domain.Genre{ID: id, Name: name})
}

func (u *TitleUsecase) DeleteGenre(id uuid.UUID) error {
	return u.genreRepo.Delete(id)
}

func (u *TitleUsecase) CreateTitle(title *domain.Title, genreIDs []uuid.UUID) error {
	if title.Name == "" || title.TypeID == uuid.Nil {
		return ErrInvalidInput
	}
	title.State = domain.ContentApproved
	return u.titleRepo.Create(title, genreIDs)
}

func (u *TitleUsecase) UpdateTitle(title *domain.Title, genreIDs []uuid.UUID) error {
	existing, err := u.titleRepo.GetByID(title.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return u.titleRepo.Update(title, genreIDs)
}

func (u *TitleUsecase) DeleteTitle(id uuid.UUID) error {
	return u.titleRepo.Delete(id)
}
