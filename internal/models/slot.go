package models

import "time"

// Slot is a discrete bookable time interval. A slot is claimed by exactly one
// appointment; releasing it on cancellation makes it bookable again.
type Slot struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	IsBooked      bool      `json:"is_booked"`
	AppointmentID int64     `json:"appointment_id,omitempty"` // 0 while the slot is free
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsAvailable reports whether the slot can still be claimed.
func (s *Slot) IsAvailable(now time.Time) bool {
	return !s.IsBooked && s.StartTime.After(now)
}
