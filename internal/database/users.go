package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"groombot/internal/models"
)

// CreateOrUpdateUser создает или обновляет пользователя по telegram_id
func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO users (telegram_id, username, first_name, last_name, phone, last_activity, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(telegram_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE phone END,
            last_activity = excluded.last_activity,
            updated_at = excluded.updated_at`,
		user.TelegramID, user.Username, user.FirstName, user.LastName,
		user.Phone, time.Now(), time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("create or update user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	row := db.QueryRowContext(ctx, `
        SELECT id, telegram_id, username, first_name, last_name, phone, last_activity, created_at, updated_at
        FROM users WHERE telegram_id = ?`, telegramID)

	var user models.User
	err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
		&user.LastName, &user.Phone, &user.LastActivity, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (db *DB) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_activity = ?, updated_at = ? WHERE telegram_id = ?`,
		time.Now(), time.Now(), telegramID)
	return err
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, telegram_id, username, first_name, last_name, phone, last_activity, created_at, updated_at
        FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
			&user.LastName, &user.Phone, &user.LastActivity, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
