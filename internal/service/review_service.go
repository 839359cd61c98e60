package service

import (
	"context"
	"errors"
	"strings"

	"groombot/internal/domain"
	"groombot/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidRating оценка вне диапазона 1..5
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type ReviewService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReviewService(repo domain.Repository, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		logger: logger,
	}
}

// AddReview validates and stores a review. Reviews start unapproved and show
// up in listings only after an admin approves them.
func (s *ReviewService) AddReview(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}
	review.Text = strings.TrimSpace(review.Text)
	if len(review.Photos) > models.MaxReviewPhotos {
		review.Photos = review.Photos[:models.MaxReviewPhotos]
	}
	review.Approved = false

	if err := s.repo.CreateReview(ctx, review); err != nil {
		s.logger.Error().Err(err).Int64("telegram_id", review.TelegramID).Msg("create review error")
		return err
	}
	return nil
}

func (s *ReviewService) GetApprovedReviews(ctx context.Context, limit int) ([]*models.Review, error) {
	return s.repo.ListApprovedReviews(ctx, limit)
}

func (s *ReviewService) ApproveReview(ctx context.Context, id int64) error {
	return s.repo.ApproveReview(ctx, id)
}
