package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Мастер добавления слотов: дата -> начало -> конец -> длительность ->
// предпросмотр -> подтверждение. Слоты появляются в базе только после
// подтверждения.

func (b *Bot) startSlotWizard(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID

	b.setUserState(ctx, userID, models.StateSlotDate, nil)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(update.Message.Chat.ID,
		"➕ Добавление слотов.\n\nВведите дату в формате ДД.ММ.ГГГГ (например, 05.09.2026):", keyboard); err != nil {
		b.logger.Error().Err(err).Msg("start slot wizard error")
	}
}

// handleSlotWizardInput текстовые шаги мастера (дата, начало, конец)
func (b *Bot) handleSlotWizardInput(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	switch state.CurrentStep {
	case models.StateSlotDate:
		date, err := parseClientDate(text)
		if err != nil {
			b.sendMessage(chatID, "Неверный формат даты. Используйте ДД.ММ.ГГГГ (например, 05.09.2026)")
			return
		}

		today := time.Now()
		todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
		if date.Before(todayMidnight) {
			b.sendMessage(chatID, "Нельзя добавлять слоты на прошедшую дату.")
			return
		}

		state.TempData["slot_date"] = date.Format(bookingDateLayout)
		b.setUserState(ctx, userID, models.StateSlotStart, state.TempData)

		// Предупреждение о существующих слотах показываем сразу
		if count, err := b.slotService.CountSlotsOnDate(ctx, date); err == nil && count > 0 {
			b.sendMessage(chatID, fmt.Sprintf("⚠️ На %s уже есть %d слотов. Новые будут добавлены к существующим.",
				date.Format("02.01.2006"), count))
		}

		b.sendMessage(chatID, "Время начала рабочего окна (ЧЧ:ММ, например 10:00):")

	case models.StateSlotStart:
		hour, minute, err := parseClientTime(text)
		if err != nil {
			b.sendMessage(chatID, "Неверный формат времени. Используйте ЧЧ:ММ (например, 10:00)")
			return
		}

		state.TempData["start_hour"] = hour
		state.TempData["start_minute"] = minute
		b.setUserState(ctx, userID, models.StateSlotEnd, state.TempData)
		b.sendMessage(chatID, "Время конца рабочего окна (ЧЧ:ММ, например 19:00):")

	case models.StateSlotEnd:
		hour, minute, err := parseClientTime(text)
		if err != nil {
			b.sendMessage(chatID, "Неверный формат времени. Используйте ЧЧ:ММ (например, 19:00)")
			return
		}

		state.TempData["end_hour"] = hour
		state.TempData["end_minute"] = minute
		b.setUserState(ctx, userID, models.StateSlotDuration, state.TempData)

		var row []tgbotapi.InlineKeyboardButton
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, minutes := range models.SlotDurationChoices {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d мин", minutes), fmt.Sprintf("slotdur:%d", minutes)))
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}

		keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Длительность одного слота:", keyboard); err != nil {
			b.logger.Error().Err(err).Msg("send duration choices error")
		}
	}
}

// handleSlotDurationPick завершает сбор параметров и показывает предпросмотр
func (b *Bot) handleSlotDurationPick(ctx context.Context, update tgbotapi.Update, minutes int) {
	callback := update.CallbackQuery
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	state := b.ensureAdminState(ctx, userID, models.StateSlotDuration)
	if state == nil {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	valid := false
	for _, choice := range models.SlotDurationChoices {
		if choice == minutes {
			valid = true
			break
		}
	}
	if !valid {
		b.answerCallback(callback.ID, "Недопустимая длительность")
		return
	}

	date, dayStart, dayEnd, ok := slotWizardWindow(state)
	if !ok {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		b.clearUserState(ctx, userID)
		return
	}

	preview, err := b.slotService.PreviewSlots(date, dayStart, dayEnd, minutes)
	if err != nil {
		b.answerCallback(callback.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state.TempData["duration_minutes"] = minutes
	b.setUserState(ctx, userID, models.StateSlotConfirm, state.TempData)
	b.answerCallback(callback.ID, "")

	var message strings.Builder
	message.WriteString(fmt.Sprintf("📋 Будет создано %d слотов на %s:\n\n", len(preview), date.Format("02.01.2006")))
	for _, slot := range preview {
		message.WriteString(fmt.Sprintf("• %s–%s\n", slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04")))
	}

	if count, err := b.slotService.CountSlotsOnDate(ctx, date); err == nil && count > 0 {
		message.WriteString(fmt.Sprintf("\n⚠️ На этот день уже есть %d слотов. Добавить еще?", count))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Создать", "slots_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "slots_cancel"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Msg("send slot preview error")
	}
}

// handleSlotWizardConfirm записывает слоты в базу
func (b *Bot) handleSlotWizardConfirm(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	state := b.ensureAdminState(ctx, userID, models.StateSlotConfirm)
	if state == nil {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	date, dayStart, dayEnd, ok := slotWizardWindow(state)
	minutes := state.GetInt("duration_minutes")
	if !ok || minutes == 0 {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		b.clearUserState(ctx, userID)
		return
	}

	slots, err := b.slotService.GenerateSlots(ctx, date, dayStart, dayEnd, minutes, userID)
	if err != nil {
		b.answerCallback(callback.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Готово")
	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, fmt.Sprintf("✅ Создано %d слотов на %s (%s–%s, по %d мин).",
		len(slots), date.Format("02.01.2006"),
		dayStart.Format("15:04"), dayEnd.Format("15:04"), minutes))
}

// slotWizardWindow восстанавливает параметры окна из состояния мастера
func slotWizardWindow(state *models.UserState) (date, dayStart, dayEnd time.Time, ok bool) {
	dateStr := state.GetString("slot_date")
	if dateStr == "" {
		return time.Time{}, time.Time{}, time.Time{}, false
	}
	date, err := time.ParseInLocation(bookingDateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, false
	}

	dayStart = time.Date(date.Year(), date.Month(), date.Day(),
		state.GetInt("start_hour"), state.GetInt("start_minute"), 0, 0, time.Local)
	dayEnd = time.Date(date.Year(), date.Month(), date.Day(),
		state.GetInt("end_hour"), state.GetInt("end_minute"), 0, 0, time.Local)

	return date, dayStart, dayEnd, true
}
