package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"groombot/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO reviews (telegram_id, user_name, rating, text, photos, approved, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.TelegramID, review.UserName, review.Rating, review.Text,
		strings.Join(review.Photos, ","), review.Approved, now)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("review last insert id: %w", err)
	}
	review.ID = id
	review.CreatedAt = now
	return nil
}

// ListApprovedReviews returns published reviews, newest first.
func (db *DB) ListApprovedReviews(ctx context.Context, limit int) ([]*models.Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, telegram_id, user_name, rating, text, photos, approved, created_at
         FROM reviews WHERE approved = 1 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list approved reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var r models.Review
		var photos string
		if err := rows.Scan(&r.ID, &r.TelegramID, &r.UserName, &r.Rating, &r.Text, &photos, &r.Approved, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if photos != "" {
			r.Photos = strings.Split(photos, ",")
		}
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}

// ApproveReview publishes a review.
func (db *DB) ApproveReview(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `UPDATE reviews SET approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("approve review: %w", err)
	}
	return nil
}
