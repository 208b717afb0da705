package usecase

import (
	"errors"

	"github.com/google/uuid"

	"github.com/libratrack/backend/internal/domain"
)

var (
	ErrForbidden     = errors.New("operation not allowed")
	ErrAlreadyExists = errors.New("resource already exists")
)

type ReviewUsecase struct {
	reviewRepo domain.ReviewRepository
	titleRepo  domain.TitleRepository
}

func NewReviewUsecase(reviewRepo domain.ReviewRepository, titleRepo domain.TitleRepository) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func (u *ReviewUsecase) Create(userID, titleID uuid.UUID, rating int, body string) (*domain.Review, error) {
	if rating < 1 || rating > 10 {
		return nil, ErrInvalidInput
	}

	title, err := u.titleRepo.GetByID(titleID)
	if err != nil {
		return nil, err
	}
	if title == nil || title.State != domain.ContentApproved {
		return nil, ErrNotFound
	}

	review := &domain.Review{
		UserID:  userID,
		TitleID: titleID,
		Rating:  rating,
		Body:    body,
	}
	if err := u.reviewRepo.Create(review); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return review, nil
}

func (u *ReviewUsecase) ListByTitle(titleID uuid.UUID, limit, offset int) ([]*domain.Review, int, error) {
	return u.reviewRepo.ListByTitle(titleID, limit, offset)
}

// Update edits a review. Only the author may edit.
func (u *ReviewUsecase) Update(actor *domain.User, reviewID uuid.UUID, rating int, body string) (*domain.Review, error) {
	if rating < 1 || rating > 10 {
		return nil, ErrInvalidInput
	}

	review, err := u.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.UserID != actor.ID {
		return nil, ErrForbidden
	}

	review.Rating = rating
	review.Body = body
	if err := u.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review. The author or a moderator may delete.
func (u *ReviewUsecase) Delete(actor *domain.User, reviewID uuid.UUID) error {
	review, err := u.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	if review.UserID != actor.ID && !actor.CanModerate() {
		return ErrForbidden
	}
	return u.reviewRepo.Delete(reviewID)
}
