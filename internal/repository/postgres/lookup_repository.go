package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libratrack/backend/internal/domain"
)

// TitleTypeRepository and GenreRepository manage the two lookup tables
// (media types and genres). Same shape, separate tables.

type TitleTypeRepository struct {
	db *pgxpool.Pool
}

func NewTitleTypeRepository(db *pgxpool.Pool) *TitleTypeRepository {
	return &TitleTypeRepository{db: db}
}

func (r *TitleTypeRepository) Create(t *domain.TitleType) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, `INSERT INTO title_types (id, name) VALUES ($1, $2)`, t.ID, t.Name)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *TitleTypeRepository) List() ([]*domain.TitleType, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM title_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*domain.TitleType
	for rows.Next() {
		t := &domain.TitleType{}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *TitleTypeRepository) Update(t *domain.TitleType) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE title_types SET name = $2 WHERE id = $1`, t.ID, t.Name)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *TitleTypeRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM title_types WHERE id = $1`, id)
	return err
}

type GenreRepository struct {
	db *pgxpool.Pool
}

func NewGenreRepository(db *pgxpool.Pool) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, `INSERT INTO genres (id, name) VALUES ($1, $2)`, g.ID, g.Name)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *GenreRepository) List() ([]*domain.Genre, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g := &domain.Genre{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *GenreRepository) Update(g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE genres SET name = $2 WHERE id = $1`, g.ID, g.Name)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *GenreRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	return err
}
