package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groombot/internal/database"
	"groombot/internal/models"
)

func TestReviewService(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewReviewService(db, &logger)
	ctx := context.Background()

	t.Run("InvalidRating", func(t *testing.T) {
		err := svc.AddReview(ctx, &models.Review{TelegramID: 1, Rating: 0, Text: "плохо"})
		assert.ErrorIs(t, err, ErrInvalidRating)

		err = svc.AddReview(ctx, &models.Review{TelegramID: 1, Rating: 6, Text: "слишком хорошо"})
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("NewReviewIsUnapproved", func(t *testing.T) {
		review := &models.Review{
			TelegramID: 10,
			UserName:   "Анна",
			Rating:     5,
			Text:       "  Барни выглядит прекрасно!  ",
			Approved:   true, // клиент не может сам себя опубликовать
		}
		require.NoError(t, svc.AddReview(ctx, review))
		assert.False(t, review.Approved)
		assert.Equal(t, "Барни выглядит прекрасно!", review.Text)

		reviews, err := svc.GetApprovedReviews(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})

	t.Run("ApproveMakesVisible", func(t *testing.T) {
		review := &models.Review{TelegramID: 11, UserName: "Олег", Rating: 4, Text: "Хороший салон"}
		require.NoError(t, svc.AddReview(ctx, review))
		require.NoError(t, svc.ApproveReview(ctx, review.ID))

		reviews, err := svc.GetApprovedReviews(ctx, 10)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, "Хороший салон", reviews[0].Text)
	})

	t.Run("PhotosTruncated", func(t *testing.T) {
		review := &models.Review{
			TelegramID: 12,
			Rating:     5,
			Text:       "С фото",
			Photos:     []string{"a", "b", "c", "d", "e"},
		}
		require.NoError(t, svc.AddReview(ctx, review))
		assert.Len(t, review.Photos, models.MaxReviewPhotos)
	})
}
