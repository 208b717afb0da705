package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's public review of a title. One review per user per title.
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TitleID   uuid.UUID `json:"title_id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewRepository interface {
	Create(review *Review) error
	GetByID(id uuid.UUID) (*Review, error)
	ListByTitle(titleID uuid.UUID, limit, offset int) ([]*Review, int, error)
	Update(review *Review) error
	Delete(id uuid.UUID) error
}
