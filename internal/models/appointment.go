package models

import (
	"strconv"
	"strings"
	"time"
)

// Appointment represents one client booking of a slot.
type Appointment struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	ClientName   string    `json:"client_name"`
	Phone        string    `json:"phone"`
	PetName      string    `json:"pet_name"`
	PetBreed     string    `json:"pet_breed"`
	PetSize      string    `json:"pet_size"`
	PetNotes     string    `json:"pet_notes"`
	ServiceIDs   []int64   `json:"service_ids"`
	ServiceNames string    `json:"service_names"` // snapshot at creation time
	SlotID       int64     `json:"slot_id"`
	Status       string    `json:"status"` // pending, confirmed, cancelled, completed
	TotalPrice   int64     `json:"total_price"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTerminal reports whether the appointment can no longer change state.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted
}

// AppointmentWithSlot carries the appointment together with its time slot,
// as produced by joined queries.
type AppointmentWithSlot struct {
	Appointment
	SlotStart time.Time `json:"slot_start"`
	SlotEnd   time.Time `json:"slot_end"`
}

// JoinIDs кодирует список идентификаторов услуг для хранения в одной колонке.
func JoinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// SplitIDs разбирает строку, записанную JoinIDs. Мусорные элементы пропускаются.
func SplitIDs(s string) []int64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
