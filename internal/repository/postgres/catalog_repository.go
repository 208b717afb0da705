package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libratrack/backend/internal/domain"
)

type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = `id, user_id, title_id, status, progress, COALESCE(score, 0), created_at, updated_at`

func scanCatalogEntry(row pgx.Row) (*domain.CatalogEntry, error) {
	entry := &domain.CatalogEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.TitleID,
		&entry.Status,
		&entry.Progress,
		&entry.Score,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *CatalogRepository) Upsert(entry *domain.CatalogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `
		INSERT INTO catalog_entries (id, user_id, title_id, status, progress, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, title_id) DO UPDATE
		SET status = EXCLUDED.status, progress = EXCLUDED.progress, score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.TitleID,
		entry.Status,
		entry.Progress,
		entry.Score,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return err
}

func (r *CatalogRepository) GetByUserAndTitle(userID, titleID uuid.UUID) (*domain.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE user_id = $1 AND title_id = $2`
	return scanCatalogEntry(r.db.QueryRow(ctx, query, userID, titleID))
}

func (r *CatalogRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]*domain.CatalogEntry, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM catalog_entries WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*domain.CatalogEntry
	for rows.Next() {
		entry := &domain.CatalogEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.TitleID,
			&entry.Status,
			&entry.Progress,
			&entry.Score,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}

func (r *CatalogRepository) Delete(userID, titleID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM catalog_entries WHERE user_id = $1 AND title_id = $2`
	_, err := r.db.Exec(ctx, query, userID, titleID)
	return err
}
