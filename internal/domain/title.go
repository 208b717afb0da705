package domain

import (
	"time"

	"github.com/google/uuid"
)

// Content states for a title in the public catalog.
const (
	ContentPending  = "pending"
	ContentApproved = "approved"
)

type TitleType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Genre struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Title struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TypeID      uuid.UUID `json:"type_id"`
	ReleaseYear int       `json:"release_year,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	State       string    `json:"state"`
	Genres      []Genre   `json:"genres,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TitleTypeRepository interface {
	Create(t *TitleType) error
	List() ([]*TitleType, error)
	Update(t *TitleType) error
	Delete(id uuid.UUID) error
}

type GenreRepository interface {
	Create(g *Genre) error
	List() ([]*Genre, error)
	Update(g *Genre) error
	Delete(id uuid.UUID) error
}

type TitleRepository interface {
	Create(title *Title, genreIDs []uuid.UUID) error
	GetByID(id uuid.UUID) (*Title, error)
	// ListApproved returns approved titles for public browsing, newest first.
	ListApproved(limit, offset int) ([]*Title, int, error)
	Update(title *Title, genreIDs []uuid.UUID) error
	Delete(id uuid.UUID) error
}
