package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateToken is returned by RefreshTokenRepository.Create when the
// generated token value collides with an existing row. Callers retry with a
// fresh random value.
var ErrDuplicateToken = errors.New("refresh token value already exists")

// RefreshToken is the persisted half of a session. The token value itself is
// an opaque random string; the signed access token is never stored.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type RefreshTokenRepository interface {
	Create(token *RefreshToken) error
	// GetByToken returns (nil, nil) when no row matches, including rows that
	// are already expired: expiry is the caller's decision (lazy cleanup).
	GetByToken(token string) (*RefreshToken, error)
	// DeleteByToken is idempotent; deleting an absent token is not an error.
	DeleteByToken(token string) error
	DeleteByUserID(userID uuid.UUID) error
	// DeleteIfExpired removes the row only if it expired before now, in a
	// single statement, so concurrent rotation attempts cannot both observe
	// the row as live. Reports whether a row was deleted.
	DeleteIfExpired(token string, now time.Time) (bool, error)
	// DeleteExpiredBefore bulk-deletes rows with expires_at < instant and
	// returns the number of rows removed. Used by the reaper.
	DeleteExpiredBefore(instant time.Time) (int64, error)
}
