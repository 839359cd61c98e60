package bot

import (
	"context"
	"fmt"
	"time"

	"groombot/internal/events"
	"groombot/internal/models"
)

// StartReminders запускает периодическую отправку напоминаний. Каждый тик
// выбираются подтвержденные записи, начинающиеся в окне (now, now+window],
// которым напоминание еще не отправлялось.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tgService == nil {
		return
	}

	interval := time.Duration(b.config.Bot.ReminderIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = models.ReminderIntervalMinutes * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.sendDueReminders(ctx)
			}
		}
	}()
}

// sendDueReminders один проход: ошибка по одной записи не прерывает остальные.
// Неотправленные напоминания будут подхвачены следующим тиком, пока слот
// не выйдет из окна.
func (b *Bot) sendDueReminders(ctx context.Context) {
	window := time.Duration(b.config.Bot.ReminderWindowMinutes) * time.Minute
	if window <= 0 {
		window = models.ReminderWindowMinutes * time.Minute
	}

	now := time.Now()
	due, err := b.appointmentService.ListDueReminders(ctx, now, now.Add(window))
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: list due error")
		return
	}

	for _, a := range due {
		if err := b.sendReminder(ctx, a); err != nil {
			if b.metrics != nil {
				b.metrics.ReminderSendFailures.Inc()
			}
			b.logger.Error().Err(err).Int64("appointment_id", a.ID).Msg("reminder: send error")
			continue
		}

		// Помечаем только после успешной отправки: SQL-guard гарантирует
		// не больше одного напоминания даже при конкурентных тиках.
		if err := b.appointmentService.MarkReminderSent(ctx, a.ID); err != nil {
			b.logger.Error().Err(err).Int64("appointment_id", a.ID).Msg("reminder: mark sent error")
			continue
		}

		if err := b.eventBus.PublishJSON(events.EventReminderSent, events.AppointmentEventPayload{
			AppointmentID: a.ID,
			TelegramID:    a.TelegramID,
			ServiceNames:  a.ServiceNames,
			SlotID:        a.SlotID,
			SlotStart:     a.SlotStart,
			Status:        a.Status,
		}); err != nil {
			b.logger.Error().Err(err).Int64("appointment_id", a.ID).Msg("reminder: publish event error")
		}
	}
}

func (b *Bot) sendReminder(_ context.Context, a *models.AppointmentWithSlot) error {
	text := formatReminderMessage(a)
	_, err := b.tgService.SendMessage(a.TelegramID, text)
	return err
}

func formatReminderMessage(a *models.AppointmentWithSlot) string {
	return fmt.Sprintf("🔔 Напоминание: сегодня в %s у вас запись #%d (%s). Ждем вас и вашего питомца! 🐾",
		a.SlotStart.Format("15:04"), a.ID, a.ServiceNames)
}
