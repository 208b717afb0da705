package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/libratrack/backend/internal/domain"
)

// ProposalUsecase handles community-submitted titles and their moderation.
type ProposalUsecase struct {
	proposalRepo domain.ProposalRepository
	titleRepo    domain.TitleRepository
}

func NewProposalUsecase(proposalRepo domain.ProposalRepository, titleRepo domain.TitleRepository) *ProposalUsecase {
	return &ProposalUsecase{
		proposalRepo: proposalRepo,
		titleRepo:    titleRepo,
	}
}

func (u *ProposalUsecase) Submit(proposerID uuid.UUID, name, description string, typeID uuid.UUID) (*domain.Proposal, error) {
	if name == "" || typeID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	proposal := &domain.Proposal{
		ProposerID:  proposerID,
		Name:        name,
		Description: description,
		TypeID:      typeID,
		Status:      domain.ProposalPending,
	}
	if err := u.proposalRepo.Create(proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

func (u *ProposalUsecase) ListOwn(proposerID uuid.UUID, limit, offset int) ([]*domain.Proposal, int, error) {
	return u.proposalRepo.ListByProposer(proposerID, limit, offset)
}

func (u *ProposalUsecase) PendingQueue(limit, offset int) ([]*domain.Proposal, int, error) {
	return u.proposalRepo.ListByStatus(domain.ProposalPending, limit, offset)
}

// Approve turns a pending proposal into an approved catalog title.
func (u *ProposalUsecase) Approve(proposalID uuid.UUID, note string) (*domain.Title, error) {
	proposal, err := u.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}
	if proposal.Status != domain.ProposalPending {
		return nil, ErrInvalidInput
	}

	title := &domain.Title{
		Name:        proposal.Name,
		Description: proposal.Description,
		TypeID:      proposal.TypeID,
		State:       domain.ContentApproved,
	}
	if err := u.titleRepo.Create(title, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	proposal.Status = domain.ProposalApproved
	proposal.ModNote = note
	proposal.ReviewedAt = &now
	if err := u.proposalRepo.Update(proposal); err != nil {
		return nil, err
	}
	return title, nil
}

func (u *ProposalUsecase) Reject(proposalID uuid.UUID, note string) error {
	proposal, err := u.proposalRepo.GetByID(proposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return ErrNotFound
	}
	if proposal.Status != domain.ProposalPending {
		return ErrInvalidInput
	}

	now := time.Now()
	proposal.Status = domain.ProposalRejected
	proposal.ModNote = note
	proposal.ReviewedAt = &now
	return u.proposalRepo.Update(proposal)
}
