package database

import "errors"

var (
	// ErrSlotUnavailable means the claim race was lost: the slot is already booked.
	ErrSlotUnavailable = errors.New("slot is already booked")

	// ErrSlotNotFound means the slot id does not exist.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAppointmentNotFound means the appointment id does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition means the requested status change is not allowed
	// from the appointment's current status.
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrInvalidWindow means a slot generation window is malformed
	// (end before start or non-positive duration).
	ErrInvalidWindow = errors.New("invalid slot window")

	// ErrPastDate means the requested date is in the past.
	ErrPastDate = errors.New("date is in the past")
)
