package domain

import (
	"time"

	"github.com/google/uuid"
)

// Personal tracking states for a catalog entry.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDropped    = "dropped"
)

func ValidCatalogStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// CatalogEntry links a user to a title they are tracking.
type CatalogEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TitleID   uuid.UUID `json:"title_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Score     int       `json:"score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CatalogRepository interface {
	Upsert(entry *CatalogEntry) error
	GetByUserAndTitle(userID, titleID uuid.UUID) (*CatalogEntry, error)
	ListByUser(userID uuid.UUID, limit, offset int) ([]*CatalogEntry, int, error)
	Delete(userID, titleID uuid.UUID) error
}
