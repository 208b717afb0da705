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

type TitleRepository struct {
	db *pgxpool.Pool
}

func NewTitleRepository(db *pgxpool.Pool) *TitleRepository {
	return &TitleRepository{db: db}
}

const titleColumns = `id, name, COALESCE(description, ''), type_id, COALESCE(release_year, 0), COALESCE(cover_url, ''), state, created_at, updated_at`

func scanTitle(row pgx.Row) (*domain.Title, error) {
	title := &domain.Title{}
	err := row.Scan(
		&title.ID,
		&title.Name,
		&title.Description,
		&title.TypeID,
		&title.ReleaseYear,
		&title.CoverURL,
		&title.State,
		&title.CreatedAt,
		&title.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return title, nil
}

func (r *TitleRepository) Create(title *domain.Title, genreIDs []uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if title.ID == uuid.Nil {
		title.ID = uuid.New()
	}
	now := time.Now()
	title.CreatedAt = now
	title.UpdatedAt = now
	if title.State == "" {
		title.State = domain.ContentPending
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO titles (id, name, description, type_id, release_year, cover_url, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Description,
		title.TypeID,
		title.ReleaseYear,
		title.CoverURL,
		title.State,
		title.CreatedAt,
		title.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, genreID := range genreIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)`,
			title.ID, genreID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TitleRepository) GetByID(id uuid.UUID) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + titleColumns + ` FROM titles WHERE id = $1`
	title, err := scanTitle(r.db.QueryRow(ctx, query, id))
	if err != nil || title == nil {
		return title, err
	}

	genres, err := r.genresFor(ctx, title.ID)
	if err != nil {
		return nil, err
	}
	title.Genres = genres
	return title, nil
}

func (r *TitleRepository) ListApproved(limit, offset int) ([]*domain.Title, int, error) {
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
		`SELECT COUNT(*) FROM titles WHERE state = $1`, domain.ContentApproved,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + titleColumns + ` FROM titles WHERE state = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, domain.ContentApproved, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var titles []*domain.Title
	for rows.Next() {
		title := &domain.Title{}
		if err := rows.Scan(
			&title.ID,
			&title.Name,
			&title.Description,
			&title.TypeID,
			&title.ReleaseYear,
			&title.CoverURL,
			&title.State,
			&title.CreatedAt,
			&title.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, title := range titles {
		genres, err := r.genresFor(ctx, title.ID)
		if err != nil {
			return nil, 0, err
		}
		title.Genres = genres
	}

	return titles, total, nil
}

func (r *TitleRepository) Update(title *domain.Title, genreIDs []uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	title.UpdatedAt = time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE titles SET name = $2, description = $3, type_id = $4, release_year = $5, cover_url = $6, state = $7, updated_at = $8
		WHERE id = $1
	`
	_, err = tx.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Description,
		title.TypeID,
		title.ReleaseYear,
		title.CoverURL,
		title.State,
		title.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if genreIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM title_genres WHERE title_id = $1`, title.ID); err != nil {
			return err
		}
		for _, genreID := range genreIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)`,
				title.ID, genreID,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *TitleRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	return err
}

func (r *TitleRepository) genresFor(ctx context.Context, titleID uuid.UUID) ([]domain.Genre, error) {
	query := `
		SELECT g.id, g.name FROM genres g
		JOIN title_genres tg ON tg.genre_id = g.id
		WHERE tg.title_id = $1 ORDER BY g.name
	`
	rows, err := r.db.Query(ctx, query, titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
