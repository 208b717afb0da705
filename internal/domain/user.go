package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by repositories when an insert or update violates
// a uniqueness constraint (username, email, one review per user per title).
var ErrDuplicate = errors.New("duplicate row")

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsModerator  bool      `json:"is_moderator"`
	IsAdmin      bool      `json:"is_admin"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanModerate reports whether the user may act on the moderation queue.
// Admins are implicitly moderators.
func (u *User) CanModerate() bool {
	return u.IsAdmin || u.IsModerator
}

type UserRepository interface {
	Create(user *User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
	Delete(id uuid.UUID) error
}
