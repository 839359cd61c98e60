package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groombot/internal/models"
)

func makeAppointment(slotID int64) *models.Appointment {
	return &models.Appointment{
		TelegramID:   500,
		ClientName:   "Анна",
		Phone:        "+79990001122",
		PetName:      "Барсик",
		PetBreed:     "Шпиц",
		ServiceIDs:   []int64{1, 3},
		ServiceNames: "Стрижка, Мытьё",
		SlotID:       slotID,
		Status:       models.StatusPending,
		TotalPrice:   3500,
	}
}

func TestCreateAppointmentWithSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	a := makeAppointment(slot.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, a))
	require.NotZero(t, a.ID)

	got, err := db.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, []int64{1, 3}, got.ServiceIDs)
	assert.False(t, got.ReminderSent)

	// Слот привязан к созданной записи
	claimed, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, claimed.IsBooked)
	assert.Equal(t, a.ID, claimed.AppointmentID)
}

func TestCreateAppointmentWithSlot_SlotTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	require.NoError(t, db.CreateAppointmentWithSlot(ctx, makeAppointment(slot.ID)))

	err := db.CreateAppointmentWithSlot(ctx, makeAppointment(slot.ID))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Проигравшая запись откатилась: в таблице ровно одна
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateAppointmentWithSlot_SlotNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.CreateAppointmentWithSlot(ctx, makeAppointment(777))
	assert.ErrorIs(t, err, ErrSlotNotFound)

	// Несуществующий слот не оставляет следов в таблице записей
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count))
	assert.Zero(t, count)
}

func TestUpdateAppointmentStatusGuarded(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	a := makeAppointment(slot.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, a))

	// pending -> confirmed
	require.NoError(t, db.UpdateAppointmentStatusGuarded(ctx, a.ID, models.StatusConfirmed, models.StatusPending))

	// confirmed -> completed
	require.NoError(t, db.UpdateAppointmentStatusGuarded(ctx, a.ID, models.StatusCompleted, models.StatusConfirmed))

	// завершённую запись нельзя отменить
	err := db.UpdateAppointmentStatusGuarded(ctx, a.ID, models.StatusCancelled,
		models.StatusPending, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := db.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestUpdateAppointmentStatusGuarded_NotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateAppointmentStatusGuarded(context.Background(), 999, models.StatusConfirmed, models.StatusPending)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestMarkReminderSent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	slot := makeSlot(t, db, time.Hour, time.Hour)

	a := makeAppointment(slot.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, a))
	require.NoError(t, db.UpdateAppointmentStatusGuarded(ctx, a.ID, models.StatusConfirmed, models.StatusPending))

	require.NoError(t, db.MarkReminderSent(ctx, a.ID))

	got, err := db.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)

	// Повторная пометка безвредна
	require.NoError(t, db.MarkReminderSent(ctx, a.ID))
}

func TestListDueReminders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inWindow := makeSlot(t, db, 60*time.Minute, time.Hour)
	outside := makeSlot(t, db, 5*time.Hour, time.Hour)
	pendingSlot := makeSlot(t, db, 45*time.Minute, time.Hour)

	due := makeAppointment(inWindow.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, due))
	require.NoError(t, db.UpdateAppointmentStatusGuarded(ctx, due.ID, models.StatusConfirmed, models.StatusPending))

	far := makeAppointment(outside.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, far))
	require.NoError(t, db.UpdateAppointmentStatusGuarded(ctx, far.ID, models.StatusConfirmed, models.StatusPending))

	// Неподтверждённая запись в окне не напоминается
	stillPending := makeAppointment(pendingSlot.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, stillPending))

	now := time.Now()
	reminders, err := db.ListDueReminders(ctx, now, now.Add(models.ReminderWindowMinutes*time.Minute))
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, due.ID, reminders[0].ID)
	assert.Equal(t, inWindow.StartTime.Unix(), reminders[0].SlotStart.Unix())

	// После пометки запись выпадает из выборки
	require.NoError(t, db.MarkReminderSent(ctx, due.ID))
	reminders, err = db.ListDueReminders(ctx, now, now.Add(models.ReminderWindowMinutes*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestListUserAppointments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := makeSlot(t, db, 24*time.Hour, time.Hour)
	second := makeSlot(t, db, 48*time.Hour, time.Hour)

	a1 := makeAppointment(first.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, a1))

	a2 := makeAppointment(second.ID)
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, a2))

	other := makeAppointment(0)
	otherSlot := makeSlot(t, db, 24*time.Hour, time.Hour)
	other.SlotID = otherSlot.ID
	other.TelegramID = 999
	require.NoError(t, db.CreateAppointmentWithSlot(ctx, other))

	list, err := db.ListUserAppointments(ctx, 500)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Ближайшие в конце: сортировка по времени слота по убыванию
	assert.Equal(t, a2.ID, list[0].ID)
	assert.Equal(t, a1.ID, list[1].ID)
}

func TestReviews(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	review := &models.Review{
		TelegramID: 500,
		UserName:   "Анна",
		Rating:     5,
		Text:       "Барсик доволен!",
		Photos:     []string{"file1", "file2"},
	}
	require.NoError(t, db.CreateReview(ctx, review))
	require.NotZero(t, review.ID)

	approved, err := db.ListApprovedReviews(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, approved)

	require.NoError(t, db.ApproveReview(ctx, review.ID))

	approved, err = db.ListApprovedReviews(ctx, 10)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, []string{"file1", "file2"}, approved[0].Photos)
	assert.Equal(t, 5, approved[0].Rating)
}
