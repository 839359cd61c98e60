package service

import (
	"context"
	"time"

	"groombot/internal/database"
	"groombot/internal/domain"
	"groombot/internal/events"
	"groombot/internal/models"

	"github.com/rs/zerolog"
)

// SlotService генерирует и отдает слоты расписания.
type SlotService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSlotService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *SlotService {
	return &SlotService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// PreviewSlots partitions the working window [dayStart, dayEnd) on date into
// consecutive slots of durationMinutes. A trailing remainder shorter than the
// duration is dropped. The window must fit at least one slot.
func (s *SlotService) PreviewSlots(date time.Time, dayStart, dayEnd time.Time, durationMinutes int) ([]*models.Slot, error) {
	if durationMinutes <= 0 {
		return nil, database.ErrInvalidWindow
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if day.Before(today) {
		return nil, database.ErrPastDate
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), dayStart.Hour(), dayStart.Minute(), 0, 0, time.Local)
	end := time.Date(day.Year(), day.Month(), day.Day(), dayEnd.Hour(), dayEnd.Minute(), 0, 0, time.Local)
	duration := time.Duration(durationMinutes) * time.Minute

	if !end.After(start) || end.Sub(start) < duration {
		return nil, database.ErrInvalidWindow
	}

	var slots []*models.Slot
	for cur := start; !cur.Add(duration).After(end); cur = cur.Add(duration) {
		slots = append(slots, &models.Slot{
			Date:      day,
			StartTime: cur,
			EndTime:   cur.Add(duration),
		})
	}
	return slots, nil
}

// GenerateSlots commits a previewed batch in one transaction.
func (s *SlotService) GenerateSlots(ctx context.Context, date time.Time, dayStart, dayEnd time.Time, durationMinutes int, createdBy int64) ([]*models.Slot, error) {
	slots, err := s.PreviewSlots(date, dayStart, dayEnd, durationMinutes)
	if err != nil {
		return nil, err
	}

	for _, slot := range slots {
		slot.CreatedBy = createdBy
	}

	if err := s.repo.CreateSlots(ctx, slots); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("date", date.Format("2006-01-02")).
		Int("count", len(slots)).
		Int64("created_by", createdBy).
		Msg("Слоты созданы")

	if s.eventBus != nil {
		payload := events.SlotsGeneratedPayload{Date: date, Count: len(slots), CreatedBy: createdBy}
		if err := s.eventBus.PublishJSON(events.EventSlotsGenerated, payload); err != nil {
			s.logger.Error().Err(err).Msg("publish slots_generated error")
		}
	}

	return slots, nil
}

func (s *SlotService) GetAvailableDates(ctx context.Context, horizonDays int) ([]*models.DayAvailability, error) {
	return s.repo.ListAvailableDates(ctx, horizonDays)
}

func (s *SlotService) GetAvailableSlotsForDate(ctx context.Context, date time.Time) ([]*models.Slot, error) {
	return s.repo.ListAvailableSlotsForDate(ctx, date)
}

func (s *SlotService) CountSlotsOnDate(ctx context.Context, date time.Time) (int, error) {
	return s.repo.CountSlotsOnDate(ctx, date)
}
