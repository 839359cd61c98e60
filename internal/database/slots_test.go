package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groombot/internal/models"
)

func TestClaimSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	claimed, err := db.ClaimSlot(ctx, slot.ID, 7)
	require.NoError(t, err)
	assert.True(t, claimed.IsBooked)
	assert.Equal(t, int64(7), claimed.AppointmentID)

	// Повторный захват занятого слота
	_, err = db.ClaimSlot(ctx, slot.ID, 8)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestClaimSlot_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ClaimSlot(context.Background(), 12345, 1)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestReleaseSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	_, err := db.ClaimSlot(ctx, slot.ID, 7)
	require.NoError(t, err)

	require.NoError(t, db.ReleaseSlot(ctx, slot.ID))

	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBooked)
	assert.Zero(t, got.AppointmentID)

	// Повторное освобождение: идемпотентный no-op
	require.NoError(t, db.ReleaseSlot(ctx, slot.ID))

	assert.ErrorIs(t, db.ReleaseSlot(ctx, 12345), ErrSlotNotFound)
}

func TestReleasedSlotCanBeClaimedAgain(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	_, err := db.ClaimSlot(ctx, slot.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.ReleaseSlot(ctx, slot.ID))

	claimed, err := db.ClaimSlot(ctx, slot.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), claimed.AppointmentID)
}

func TestListAvailableSlots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	free := makeSlot(t, db, 2*time.Hour, time.Hour)
	booked := makeSlot(t, db, 3*time.Hour, time.Hour)
	makeSlot(t, db, 100*time.Hour, time.Hour) // за горизонтом запроса

	_, err := db.ClaimSlot(ctx, booked.ID, 1)
	require.NoError(t, err)

	now := time.Now()
	slots, err := db.ListAvailableSlots(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, free.ID, slots[0].ID)
}

func TestListAvailableDates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	makeSlot(t, db, 24*time.Hour, time.Hour)
	makeSlot(t, db, 25*time.Hour, time.Hour)
	makeSlot(t, db, 48*time.Hour, time.Hour)

	days, err := db.ListAvailableDates(ctx, models.BookingHorizonDays)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, int64(2), days[0].FreeSlots)
	assert.Equal(t, int64(1), days[1].FreeSlots)
	assert.True(t, days[0].Date.Before(days[1].Date))
}

func TestCreateSlots_AssignsIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour).Truncate(time.Minute)
	slots := []*models.Slot{
		{Date: start, StartTime: start, EndTime: start.Add(time.Hour), CreatedBy: 1},
		{Date: start, StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour), CreatedBy: 1},
	}
	require.NoError(t, db.CreateSlots(ctx, slots))
	assert.NotZero(t, slots[0].ID)
	assert.NotZero(t, slots[1].ID)
	assert.NotEqual(t, slots[0].ID, slots[1].ID)

	count, err := db.CountSlotsOnDate(ctx, start)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
