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

type ProposalRepository struct {
	db *pgxpool.Pool
}

func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, proposer_id, name, COALESCE(description, ''), type_id, status, COALESCE(mod_note, ''), created_at, reviewed_at`

func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	proposal := &domain.Proposal{}
	err := row.Scan(
		&proposal.ID,
		&proposal.ProposerID,
		&proposal.Name,
		&proposal.Description,
		&proposal.TypeID,
		&proposal.Status,
		&proposal.ModNote,
		&proposal.CreatedAt,
		&proposal.ReviewedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

func (r *ProposalRepository) Create(proposal *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	proposal.CreatedAt = time.Now()
	if proposal.Status == "" {
		proposal.Status = domain.ProposalPending
	}

	query := `
		INSERT INTO proposals (id, proposer_id, name, description, type_id, status, mod_note, created_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		proposal.ID,
		proposal.ProposerID,
		proposal.Name,
		proposal.Description,
		proposal.TypeID,
		proposal.Status,
		proposal.ModNote,
		proposal.CreatedAt,
		proposal.ReviewedAt,
	)
	return err
}

func (r *ProposalRepository) GetByID(id uuid.UUID) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	return scanProposal(r.db.QueryRow(ctx, query, id))
}

func (r *ProposalRepository) ListByProposer(proposerID uuid.UUID, limit, offset int) ([]*domain.Proposal, int, error) {
	return r.list(`proposer_id = $1`, proposerID, limit, offset)
}

func (r *ProposalRepository) ListByStatus(status string, limit, offset int) ([]*domain.Proposal, int, error) {
	return r.list(`status = $1`, status, limit, offset)
}

func (r *ProposalRepository) list(where string, arg interface{}, limit, offset int) ([]*domain.Proposal, int, error) {
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
		`SELECT COUNT(*) FROM proposals WHERE `+where, arg,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE ` + where + ` ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var proposals []*domain.Proposal
	for rows.Next() {
		proposal := &domain.Proposal{}
		if err := rows.Scan(
			&proposal.ID,
			&proposal.ProposerID,
			&proposal.Name,
			&proposal.Description,
			&proposal.TypeID,
			&proposal.Status,
			&proposal.ModNote,
			&proposal.CreatedAt,
			&proposal.ReviewedAt,
		); err != nil {
			return nil, 0, err
		}
		proposals = append(proposals, proposal)
	}

	return proposals, total, rows.Err()
}

func (r *ProposalRepository) Update(proposal *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE proposals SET name = $2, description = $3, type_id = $4, status = $5, mod_note = $6, reviewed_at = $7
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		proposal.ID,
		proposal.Name,
		proposal.Description,
		proposal.TypeID,
		proposal.Status,
		proposal.ModNote,
		proposal.ReviewedAt,
	)
	return err
}
