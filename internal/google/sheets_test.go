package google

import (
	"testing"
	"time"

	"groombot/internal/models"
)

func TestAppointmentRowValues(t *testing.T) {
	slotStart := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
	slotEnd := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 8, 21, 11, 0, 0, 0, time.UTC)

	a := &models.AppointmentWithSlot{
		Appointment: models.Appointment{
			ID:           123,
			TelegramID:   456,
			ClientName:   "Анна",
			Phone:        "+79991234567",
			PetName:      "Барсик",
			PetBreed:     "Шпиц",
			ServiceNames: "Стрижка, Мытьё",
			Status:       "confirmed",
			TotalPrice:   3500,
			CreatedAt:    createdAt,
			UpdatedAt:    updatedAt,
		},
		SlotStart: slotStart,
		SlotEnd:   slotEnd,
	}

	values := appointmentRowValues(a)

	expected := []interface{}{
		int64(123),
		int64(456),
		"Анна",
		"+79991234567",
		"Барсик",
		"Шпиц",
		"Стрижка, Мытьё",
		"2026-09-01 11:00",
		"2026-09-01 12:00",
		"confirmed",
		int64(3500),
		"2026-08-20 10:00:00",
		"2026-08-21 11:00:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	s.setCachedRow(100, 5)
	row, ok := s.getCachedRow(100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.setCachedRow(200, 10)
	s.ClearCache()
	_, ok = s.getCachedRow(200)
	if ok {
		t.Errorf("Expected cache to be cleared")
	}
}
