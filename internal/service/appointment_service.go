package service

import (
	"context"
	"errors"
	"time"

	"groombot/internal/database"
	"groombot/internal/domain"
	"groombot/internal/events"
	"groombot/internal/metrics"
	"groombot/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrNoServicesSelected запись без единой услуги не имеет смысла
	ErrNoServicesSelected = errors.New("no services selected")
	// ErrMissingContact запись без имени или телефона
	ErrMissingContact = errors.New("client name and phone are required")
)

// AppointmentService владеет жизненным циклом записи и привязкой слотов.
type AppointmentService struct {
	repo         domain.Repository
	catalog      domain.CatalogService
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewAppointmentService(repo domain.Repository, catalog domain.CatalogService, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:         repo,
		catalog:      catalog,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// CreateAppointment validates input, snapshots the price list and books the
// slot. The appointment starts as pending and waits for admin confirmation.
func (s *AppointmentService) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if len(a.ServiceIDs) == 0 {
		return ErrNoServicesSelected
	}
	if a.ClientName == "" || a.Phone == "" {
		return ErrMissingContact
	}

	slot, err := s.repo.GetSlot(ctx, a.SlotID)
	if err != nil {
		return err
	}
	if !slot.IsAvailable(time.Now()) {
		if !slot.StartTime.After(time.Now()) {
			return database.ErrPastDate
		}
		return database.ErrSlotUnavailable
	}

	// Снимок каталога: имена и цена фиксируются на момент записи
	a.ServiceNames = s.catalog.ServiceNames(a.ServiceIDs)
	a.TotalPrice = s.catalog.TotalPrice(a.ServiceIDs)
	a.Status = models.StatusPending

	if err := s.repo.CreateAppointmentWithSlot(ctx, a); err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			metrics.IncSlotClaimConflict()
		}
		return err
	}

	metrics.IncAppointmentCreated()
	s.publishEvent(events.EventAppointmentCreated, a, slot.StartTime, 0)
	s.enqueueSync(ctx, "append", a, slot)

	return nil
}

// ConfirmAppointment moves pending -> confirmed.
func (s *AppointmentService) ConfirmAppointment(ctx context.Context, appointmentID, adminID int64) error {
	err := s.repo.UpdateAppointmentStatusGuarded(ctx, appointmentID, models.StatusConfirmed, models.StatusPending)
	if err != nil {
		return err
	}

	s.afterStatusChange(ctx, appointmentID, events.EventAppointmentConfirmed, adminID)
	return nil
}

// CancelAppointment moves pending/confirmed -> cancelled and frees the slot so
// it can be booked again.
func (s *AppointmentService) CancelAppointment(ctx context.Context, appointmentID, actorID int64) error {
	err := s.repo.UpdateAppointmentStatusGuarded(ctx, appointmentID, models.StatusCancelled,
		models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return err
	}

	a, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := s.repo.ReleaseSlot(ctx, a.SlotID); err != nil {
		// Статус уже cancelled; слот оставляем занятым только при реальной ошибке
		s.logger.Error().Err(err).Int64("appointment_id", appointmentID).Int64("slot_id", a.SlotID).Msg("release slot after cancel failed")
		return err
	}

	s.afterStatusChange(ctx, appointmentID, events.EventAppointmentCancelled, actorID)
	return nil
}

// CompleteAppointment moves confirmed -> completed.
func (s *AppointmentService) CompleteAppointment(ctx context.Context, appointmentID, adminID int64) error {
	err := s.repo.UpdateAppointmentStatusGuarded(ctx, appointmentID, models.StatusCompleted, models.StatusConfirmed)
	if err != nil {
		return err
	}

	s.afterStatusChange(ctx, appointmentID, events.EventAppointmentCompleted, adminID)
	return nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *AppointmentService) GetUserAppointments(ctx context.Context, telegramID int64) ([]*models.AppointmentWithSlot, error) {
	return s.repo.ListUserAppointments(ctx, telegramID)
}

func (s *AppointmentService) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.AppointmentWithSlot, error) {
	return s.repo.ListAppointmentsByDateRange(ctx, start, end)
}

func (s *AppointmentService) GetPendingAppointments(ctx context.Context) ([]*models.AppointmentWithSlot, error) {
	return s.repo.ListAppointmentsByStatus(ctx, models.StatusPending)
}

// ListDueReminders returns confirmed appointments starting inside (from, to]
// that have not been reminded yet.
func (s *AppointmentService) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.AppointmentWithSlot, error) {
	return s.repo.ListDueReminders(ctx, from, to)
}

// MarkReminderSent помечает напоминание отправленным; повторный вызов не делает ничего.
func (s *AppointmentService) MarkReminderSent(ctx context.Context, appointmentID int64) error {
	if err := s.repo.MarkReminderSent(ctx, appointmentID); err != nil {
		return err
	}
	metrics.IncReminderSent()
	return nil
}

func (s *AppointmentService) afterStatusChange(ctx context.Context, appointmentID int64, eventType string, actorID int64) {
	a, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", appointmentID).Msg("reload appointment after status change")
		return
	}

	var slotStart time.Time
	slot, err := s.repo.GetSlot(ctx, a.SlotID)
	if err == nil {
		slotStart = slot.StartTime
	}

	s.publishEvent(eventType, a, slotStart, actorID)
	s.enqueueSync(ctx, "update_status", a, slot)
}

func (s *AppointmentService) publishEvent(eventType string, a *models.Appointment, slotStart time.Time, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: a.ID,
		TelegramID:    a.TelegramID,
		ClientName:    a.ClientName,
		PetBreed:      a.PetBreed,
		ServiceNames:  a.ServiceNames,
		SlotID:        a.SlotID,
		SlotStart:     slotStart,
		Status:        a.Status,
		ChangedBy:     actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", a.ID).Msg("publish event error")
	}
}

func (s *AppointmentService) enqueueSync(ctx context.Context, taskType string, a *models.Appointment, slot *models.Slot) {
	if s.sheetsWorker == nil {
		return
	}

	withSlot := &models.AppointmentWithSlot{Appointment: *a}
	if slot != nil {
		withSlot.SlotStart = slot.StartTime
		withSlot.SlotEnd = slot.EndTime
	}

	var status string
	if taskType == "update_status" {
		status = a.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, a.ID, withSlot, status); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", a.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
