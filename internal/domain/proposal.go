package domain

import (
	"time"

	"github.com/google/uuid"
)

// Moderation states for a community-submitted title proposal.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

type Proposal struct {
	ID          uuid.UUID  `json:"id"`
	ProposerID  uuid.UUID  `json:"proposer_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TypeID      uuid.UUID  `json:"type_id"`
	Status      string     `json:"status"`
	ModNote     string     `json:"mod_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

type ProposalRepository interface {
	Create(proposal *Proposal) error
	GetByID(id uuid.UUID) (*Proposal, error)
	ListByProposer(proposerID uuid.UUID, limit, offset int) ([]*Proposal, int, error)
	ListByStatus(status string, limit, offset int) ([]*Proposal, int, error)
	Update(proposal *Proposal) error
}
