package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"groombot/internal/models"
)

const dayFormat = "2006-01-02"

const slotColumns = `id, date, start_time, end_time, is_booked, appointment_id, created_by, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(r rowScanner) (*models.Slot, error) {
	var s models.Slot
	var dateStr string
	var appointmentID sql.NullInt64
	err := r.Scan(&s.ID, &dateStr, &s.StartTime, &s.EndTime, &s.IsBooked, &appointmentID, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Date, err = time.ParseInLocation(dayFormat, dateStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse slot date %q: %w", dateStr, err)
	}
	if appointmentID.Valid {
		s.AppointmentID = appointmentID.Int64
	}
	return &s, nil
}

// GetSlot returns a slot by id.
func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	row := db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// ListAvailableSlots returns free slots with start_time inside (from, to],
// ordered by start_time ascending.
func (db *DB) ListAvailableSlots(ctx context.Context, from, to time.Time) ([]*models.Slot, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+slotColumns+` FROM slots
        WHERE is_booked = 0 AND start_time > ? AND start_time <= ?
        ORDER BY start_time ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListAvailableSlotsForDate returns free future slots of one calendar day.
func (db *DB) ListAvailableSlotsForDate(ctx context.Context, date time.Time) ([]*models.Slot, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+slotColumns+` FROM slots
        WHERE is_booked = 0 AND date = ? AND start_time > ?
        ORDER BY start_time ASC`, date.Format(dayFormat), time.Now())
	if err != nil {
		return nil, fmt.Errorf("list slots for date: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListAvailableDates returns the calendar days within the horizon that still
// have at least one free future slot, with the free-slot count per day.
func (db *DB) ListAvailableDates(ctx context.Context, horizonDays int) ([]*models.DayAvailability, error) {
	now := time.Now()
	horizon := now.AddDate(0, 0, horizonDays)

	rows, err := db.QueryContext(ctx, `SELECT date, COUNT(*) FROM slots
        WHERE is_booked = 0 AND start_time > ? AND start_time <= ?
        GROUP BY date ORDER BY date ASC`, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("list available dates: %w", err)
	}
	defer rows.Close()

	var days []*models.DayAvailability
	for rows.Next() {
		var dateStr string
		var count int64
		if err := rows.Scan(&dateStr, &count); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		date, err := time.ParseInLocation(dayFormat, dateStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		days = append(days, &models.DayAvailability{Date: date, FreeSlots: count})
	}
	return days, rows.Err()
}

// ClaimSlot atomically books a free slot for an appointment. The conditional
// UPDATE is the single double-booking guard: of two concurrent claims exactly
// one sees is_booked = 0.
func (db *DB) ClaimSlot(ctx context.Context, slotID, appointmentID int64) (*models.Slot, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE slots SET is_booked = 1, appointment_id = ? WHERE id = ? AND is_booked = 0`,
		appointmentID, slotID)
	if err != nil {
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim slot rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Отличаем занятый слот от несуществующего
		if _, getErr := db.GetSlot(ctx, slotID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrSlotUnavailable
	}

	return db.GetSlot(ctx, slotID)
}

// ReleaseSlot frees a slot. Releasing an already-free slot is a no-op so
// cancellation can be retried safely; an unknown id is an error.
func (db *DB) ReleaseSlot(ctx context.Context, slotID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE slots SET is_booked = 0, appointment_id = NULL WHERE id = ?`, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release slot rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// CreateSlots inserts a generated batch in one transaction.
func (db *DB) CreateSlots(ctx context.Context, slots []*models.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, s := range slots {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO slots (date, start_time, end_time, is_booked, created_by, created_at)
             VALUES (?, ?, ?, 0, ?, ?)`,
			s.Date.Format(dayFormat), s.StartTime, s.EndTime, s.CreatedBy, now)
		if err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("slot last insert id: %w", err)
		}
		s.ID = id
		s.CreatedAt = now
	}

	return tx.Commit()
}

// CountSlotsOnDate returns how many slots (booked or not) already exist on a day.
// The admin wizard uses it to warn before adding to a non-empty day.
func (db *DB) CountSlotsOnDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots WHERE date = ?`, date.Format(dayFormat)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count slots on date: %w", err)
	}
	return count, nil
}
