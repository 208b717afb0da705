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

type ReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, user_id, title_id, rating, COALESCE(body, ''), created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	review := &domain.Review{}
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.TitleID,
		&review.Rating,
		&review.Body,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (r *ReviewRepository) Create(review *domain.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	query := `
		INSERT INTO reviews (id, user_id, title_id, rating, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.TitleID,
		review.Rating,
		review.Body,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *ReviewRepository) GetByID(id uuid.UUID) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return scanReview(r.db.QueryRow(ctx, query, id))
}

func (r *ReviewRepository) ListByTitle(titleID uuid.UUID, limit, offset int) ([]*domain.Review, int, error) {
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
		`SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE title_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review := &domain.Review{}
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.TitleID,
			&review.Rating,
			&review.Body,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}

	return reviews, total, rows.Err()
}

func (r *ReviewRepository) Update(review *domain.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review.UpdatedAt = time.Now()

	query := `UPDATE reviews SET rating = $2, body = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, review.ID, review.Rating, review.Body, review.UpdatedAt)
	return err
}

func (r *ReviewRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM reviews WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
