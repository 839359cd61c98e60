package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentClaim проверяет, что из N параллельных попыток захватить один
// слот ровно одна выигрывает.
func TestConcurrentClaim(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(appointmentID int64) {
			defer wg.Done()
			_, err := db.ClaimSlot(ctx, slot.ID, appointmentID)
			results <- err
		}(int64(i + 1))
	}

	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBooked)
}

// TestConcurrentCreateAppointment гоняет полный транзакционный путь: вставка
// записи плюс захват слота. Проигравшие записи не должны остаться в таблице.
func TestConcurrentCreateAppointment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			a := makeAppointment(slot.ID)
			a.TelegramID = userID
			results <- db.CreateAppointmentWithSlot(ctx, a)
		}(int64(1000 + i))
	}

	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, successes)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count))
	assert.Equal(t, 1, count, "проигравшие транзакции должны откатиться")
}
