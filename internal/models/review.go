package models

import "time"

// Review is a client review of the salon. Photos keeps Telegram file IDs.
type Review struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	UserName   string    `json:"user_name"`
	Rating     int       `json:"rating"` // 1..5
	Text       string    `json:"text"`
	Photos     []string  `json:"photos"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}
