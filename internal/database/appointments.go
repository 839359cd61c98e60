package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"groombot/internal/models"
)

const appointmentColumns = `id, telegram_id, client_name, phone, pet_name, pet_breed, pet_size, pet_notes,
       service_ids, service_names, slot_id, status, total_price, reminder_sent, created_at, updated_at`

func scanAppointment(r rowScanner) (*models.Appointment, error) {
	var a models.Appointment
	var serviceIDs string
	err := r.Scan(
		&a.ID, &a.TelegramID, &a.ClientName, &a.Phone,
		&a.PetName, &a.PetBreed, &a.PetSize, &a.PetNotes,
		&serviceIDs, &a.ServiceNames, &a.SlotID, &a.Status,
		&a.TotalPrice, &a.ReminderSent, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ServiceIDs = models.SplitIDs(serviceIDs)
	return &a, nil
}

// CreateAppointmentWithSlot claims the slot and inserts the appointment in one
// transaction. The claim runs first as a conditional UPDATE on is_booked, so a
// missing or taken slot is reported by sentinel (ErrSlotNotFound or
// ErrSlotUnavailable) before any row is written; a lost race rolls back
// without an insert. The slot is bound to the appointment id after the insert
// assigns it.
func (db *DB) CreateAppointmentWithSlot(ctx context.Context, a *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claim, err := tx.ExecContext(ctx,
		`UPDATE slots SET is_booked = 1 WHERE id = ? AND is_booked = 0`, a.SlotID)
	if err != nil {
		return fmt.Errorf("claim slot in tx: %w", err)
	}
	claimed, err := claim.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim rows affected: %w", err)
	}
	if claimed == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE id = ?`, a.SlotID).Scan(&exists); err != nil {
			return fmt.Errorf("check slot existence: %w", err)
		}
		if exists == 0 {
			return ErrSlotNotFound
		}
		return ErrSlotUnavailable
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (telegram_id, client_name, phone, pet_name, pet_breed, pet_size, pet_notes,
             service_ids, service_names, slot_id, status, total_price, reminder_sent, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		a.TelegramID, a.ClientName, a.Phone, a.PetName, a.PetBreed, a.PetSize, a.PetNotes,
		models.JoinIDs(a.ServiceIDs), a.ServiceNames, a.SlotID, a.Status, a.TotalPrice, now, now)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("appointment last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE slots SET appointment_id = ? WHERE id = ?`, id, a.SlotID); err != nil {
		return fmt.Errorf("bind slot to appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit appointment: %w", err)
	}

	a.ID = id
	a.ReminderSent = false
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// GetAppointment returns an appointment by id.
func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// UpdateAppointmentStatusGuarded moves the appointment to a new status only if
// its current status is one of from. RowsAffected distinguishes a bad
// transition from a missing appointment.
func (db *DB) UpdateAppointmentStatusGuarded(ctx context.Context, id int64, to string, from ...string) error {
	if len(from) == 0 {
		return ErrInvalidTransition
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(from)), ", ")
	args := make([]interface{}, 0, len(from)+3)
	args = append(args, to, time.Now(), id)
	for _, s := range from {
		args = append(args, s)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ? WHERE id = ? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("status rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := db.GetAppointment(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInvalidTransition
	}
	return nil
}

// MarkReminderSent flips reminder_sent once. The guard on reminder_sent and
// status makes concurrent scheduler ticks harmless; a second call is a no-op.
func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = 1, updated_at = ?
         WHERE id = ? AND reminder_sent = 0 AND status = ?`,
		time.Now(), id, models.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("reminder rows affected: %w", err)
	}
	return nil
}

// ListDueReminders returns confirmed, unreminded appointments whose slot
// starts inside (from, to].
func (db *DB) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.AppointmentWithSlot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.telegram_id, a.client_name, a.phone, a.pet_name, a.pet_breed, a.pet_size, a.pet_notes,
                a.service_ids, a.service_names, a.slot_id, a.status, a.total_price, a.reminder_sent,
                a.created_at, a.updated_at, s.start_time, s.end_time
         FROM appointments a
         JOIN slots s ON s.id = a.slot_id
         WHERE a.status = ? AND a.reminder_sent = 0 AND s.start_time > ? AND s.start_time <= ?
         ORDER BY s.start_time ASC`,
		models.StatusConfirmed, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	return scanAppointmentsWithSlot(rows)
}

// ListAppointmentsByDateRange returns appointments whose slot day falls in
// [start, end], ordered by slot start time.
func (db *DB) ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.AppointmentWithSlot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.telegram_id, a.client_name, a.phone, a.pet_name, a.pet_breed, a.pet_size, a.pet_notes,
                a.service_ids, a.service_names, a.slot_id, a.status, a.total_price, a.reminder_sent,
                a.created_at, a.updated_at, s.start_time, s.end_time
         FROM appointments a
         JOIN slots s ON s.id = a.slot_id
         WHERE s.date >= ? AND s.date <= ?
         ORDER BY s.start_time ASC`,
		start.Format(dayFormat), end.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("list appointments by date range: %w", err)
	}
	defer rows.Close()

	return scanAppointmentsWithSlot(rows)
}

// ListUserAppointments returns a client's appointments from the last two weeks
// and onward, newest first.
func (db *DB) ListUserAppointments(ctx context.Context, telegramID int64) ([]*models.AppointmentWithSlot, error) {
	twoWeeksAgo := time.Now().AddDate(0, 0, -14)
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.telegram_id, a.client_name, a.phone, a.pet_name, a.pet_breed, a.pet_size, a.pet_notes,
                a.service_ids, a.service_names, a.slot_id, a.status, a.total_price, a.reminder_sent,
                a.created_at, a.updated_at, s.start_time, s.end_time
         FROM appointments a
         JOIN slots s ON s.id = a.slot_id
         WHERE a.telegram_id = ? AND s.start_time >= ?
         ORDER BY s.start_time DESC`,
		telegramID, twoWeeksAgo)
	if err != nil {
		return nil, fmt.Errorf("list user appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointmentsWithSlot(rows)
}

// ListAppointmentsByStatus returns appointments in a given status, oldest first.
func (db *DB) ListAppointmentsByStatus(ctx context.Context, status string) ([]*models.AppointmentWithSlot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.telegram_id, a.client_name, a.phone, a.pet_name, a.pet_breed, a.pet_size, a.pet_notes,
                a.service_ids, a.service_names, a.slot_id, a.status, a.total_price, a.reminder_sent,
                a.created_at, a.updated_at, s.start_time, s.end_time
         FROM appointments a
         JOIN slots s ON s.id = a.slot_id
         WHERE a.status = ?
         ORDER BY s.start_time ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by status: %w", err)
	}
	defer rows.Close()

	return scanAppointmentsWithSlot(rows)
}

func scanAppointmentsWithSlot(rows *sql.Rows) ([]*models.AppointmentWithSlot, error) {
	var result []*models.AppointmentWithSlot
	for rows.Next() {
		var a models.AppointmentWithSlot
		var serviceIDs string
		err := rows.Scan(
			&a.ID, &a.TelegramID, &a.ClientName, &a.Phone,
			&a.PetName, &a.PetBreed, &a.PetSize, &a.PetNotes,
			&serviceIDs, &a.ServiceNames, &a.SlotID, &a.Status,
			&a.TotalPrice, &a.ReminderSent, &a.CreatedAt, &a.UpdatedAt,
			&a.SlotStart, &a.SlotEnd,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment with slot: %w", err)
		}
		a.ServiceIDs = models.SplitIDs(serviceIDs)
		result = append(result, &a)
	}
	return result, rows.Err()
}
