package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// notifyAdminsAboutAppointment отправляет каждому администратору карточку
// новой заявки с кнопками подтверждения и отклонения.
func (b *Bot) notifyAdminsAboutAppointment(ctx context.Context, a *models.Appointment) {
	slotInfo := ""
	if withSlot, err := b.appointmentService.GetUserAppointments(ctx, a.TelegramID); err == nil {
		for _, ws := range withSlot {
			if ws.ID == a.ID {
				slotInfo = ws.SlotStart.Format("02.01.2006 15:04")
				break
			}
		}
	}

	message := fmt.Sprintf(`🆕 Новая заявка #%d:

💈 Услуги: %s
📅 Время: %s
👤 Клиент: %s
📱 Телефон: +%s
🐾 Питомец: %s %s
💰 Сумма: %d ₽`,
		a.ID, a.ServiceNames, slotInfo, a.ClientName, a.Phone,
		a.PetBreed, a.PetName, a.TotalPrice)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("approve_%d", a.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("reject_%d", a.ID)),
		),
	)

	for _, adminID := range b.config.Admins {
		if _, err := b.tgService.SendWithInlineKeyboard(adminID, message, keyboard); err != nil {
			b.logger.Error().Err(err).Int64("admin_id", adminID).Msg("notify admin error")
		}
	}
}

// notifyAdmins простое текстовое уведомление всем администраторам
func (b *Bot) notifyAdmins(_ context.Context, text string) {
	for _, adminID := range b.config.Admins {
		if _, err := b.tgService.SendMessage(adminID, text); err != nil {
			b.logger.Error().Err(err).Int64("admin_id", adminID).Msg("notify admin error")
		}
	}
}

// handleAdminConfirm pending -> confirmed, клиент получает уведомление
func (b *Bot) handleAdminConfirm(ctx context.Context, update tgbotapi.Update, appointmentID int64) {
	callback := update.CallbackQuery

	if err := b.appointmentService.ConfirmAppointment(ctx, appointmentID, callback.From.ID); err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Подтверждено")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("✅ Заявка #%d подтверждена.", appointmentID))

	// Уведомляем клиента best-effort
	a, err := b.appointmentService.GetAppointment(ctx, appointmentID)
	if err != nil {
		b.logger.Error().Err(err).Int64("appointment_id", appointmentID).Msg("load appointment after confirm error")
		return
	}
	b.sendMessage(a.TelegramID, fmt.Sprintf(
		"✅ Ваша запись #%d подтверждена! Ждем вас и вашего питомца. 🐾", appointmentID))
}

// handleAdminReject отклонение заявки: отмена + освобождение слота
func (b *Bot) handleAdminReject(ctx context.Context, update tgbotapi.Update, appointmentID int64) {
	callback := update.CallbackQuery

	a, err := b.appointmentService.GetAppointment(ctx, appointmentID)
	if err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	if err := b.appointmentService.CancelAppointment(ctx, appointmentID, callback.From.ID); err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Отклонено")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("❌ Заявка #%d отклонена, слот снова свободен.", appointmentID))
	b.sendMessage(a.TelegramID,
		"❌ К сожалению, вашу запись не удалось подтвердить. Попробуйте выбрать другое время или свяжитесь с салоном.")
}

// handleAdminComplete confirmed -> completed после визита
func (b *Bot) handleAdminComplete(ctx context.Context, update tgbotapi.Update, appointmentID int64) {
	callback := update.CallbackQuery

	if err := b.appointmentService.CompleteAppointment(ctx, appointmentID, callback.From.ID); err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Завершено")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("🏁 Запись #%d завершена.", appointmentID))

	a, err := b.appointmentService.GetAppointment(ctx, appointmentID)
	if err == nil {
		b.sendMessage(a.TelegramID,
			"🏁 Спасибо за визит! Будем рады видеть вас снова. Оставите отзыв? Нажмите «"+btnLeaveReview+"» в меню отзывов.")
	}
}

// handleAdminCommand текстовые команды администратора.
// Возвращает true, если команда распознана.
func (b *Bot) handleAdminCommand(ctx context.Context, update tgbotapi.Update, state *models.UserState) bool {
	text := update.Message.Text

	switch text {
	case btnAdminPending:
		b.showPendingAppointments(ctx, update)
		return true

	case btnAdminToday:
		b.showTodayAppointments(ctx, update)
		return true

	case btnAddSlots:
		b.startSlotWizard(ctx, update)
		return true

	case btnExportWeek:
		b.handleWeekExport(ctx, update)
		return true

	case btnAdminStats:
		b.showStats(ctx, update)
		return true

	case btnSheetsSync:
		b.handleSheetsSync(ctx, update)
		return true
	}

	return false
}

// showPendingAppointments заявки, ожидающие решения администратора
func (b *Bot) showPendingAppointments(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	pending, err := b.appointmentService.GetPendingAppointments(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("get pending appointments error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(pending) == 0 {
		b.sendMessage(chatID, "Необработанных заявок нет. 👍")
		return
	}

	for _, a := range pending {
		message := fmt.Sprintf(`⏳ Заявка #%d:

💈 %s
📅 %s
👤 %s, +%s
🐾 %s %s
💰 %d ₽`,
			a.ID, a.ServiceNames, a.SlotStart.Format("02.01.2006 15:04"),
			a.ClientName, a.Phone, a.PetBreed, a.PetName, a.TotalPrice)

		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("approve_%d", a.ID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("reject_%d", a.ID)),
			),
		)

		if _, err := b.tgService.SendWithInlineKeyboard(chatID, message, keyboard); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send pending appointment error")
		}
	}
}

// showTodayAppointments записи на сегодня с кнопкой завершения
func (b *Bot) showTodayAppointments(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := b.appointmentService.GetAppointmentsByDateRange(ctx, dayStart, dayEnd)
	if err != nil {
		b.logger.Error().Err(err).Msg("get today appointments error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(appointments) == 0 {
		b.sendMessage(chatID, "На сегодня записей нет.")
		return
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("📅 Записи на %s:\n\n", now.Format("02.01.2006")))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range appointments {
		message.WriteString(fmt.Sprintf("%s %s — #%d %s (%s, +%s)\n",
			statusEmoji(a.Status), a.SlotStart.Format("15:04"), a.ID, a.ServiceNames, a.ClientName, a.Phone))

		if a.Status == models.StatusConfirmed {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🏁 Завершить #%d (%s)", a.ID, a.SlotStart.Format("15:04")),
					fmt.Sprintf("complete_%d", a.ID),
				),
			))
		}
	}

	if len(rows) == 0 {
		b.sendMessage(chatID, message.String())
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send today appointments error")
	}
}

// showStats сводка по ближайшей неделе
func (b *Bot) showStats(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	now := time.Now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	weekEnd := weekStart.AddDate(0, 0, 7)

	appointments, err := b.appointmentService.GetAppointmentsByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		b.logger.Error().Err(err).Msg("get stats appointments error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	counts := make(map[string]int)
	var revenue int64
	for _, a := range appointments {
		counts[a.Status]++
		if a.Status == models.StatusConfirmed || a.Status == models.StatusCompleted {
			revenue += a.TotalPrice
		}
	}

	dates, err := b.slotService.GetAvailableDates(ctx, 7)
	var freeSlots int64
	if err == nil {
		for _, d := range dates {
			freeSlots += d.FreeSlots
		}
	}

	message := fmt.Sprintf(`📈 Статистика на неделю (%s – %s):

⏳ Ожидают: %d
✅ Подтверждены: %d
🏁 Завершены: %d
❌ Отменены: %d
🕳 Свободных слотов: %d
💰 Ожидаемая выручка: %d ₽`,
		weekStart.Format("02.01"), weekEnd.AddDate(0, 0, -1).Format("02.01"),
		counts[models.StatusPending], counts[models.StatusConfirmed],
		counts[models.StatusCompleted], counts[models.StatusCancelled],
		freeSlots, revenue)

	b.sendMessage(chatID, message)
}

// handleSheetsSync полная перезапись листа Google Sheets текущими записями
func (b *Bot) handleSheetsSync(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	if b.sheetsService == nil {
		b.sendMessage(chatID, "Интеграция с Google Sheets не настроена.")
		return
	}

	start := time.Now().AddDate(0, -1, 0)
	end := time.Now().AddDate(0, 1, 0)
	appointments, err := b.appointmentService.GetAppointmentsByDateRange(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Msg("load appointments for sheets sync error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if err := b.sheetsService.ReplaceAppointmentsSheetCtx(ctx, appointments); err != nil {
		b.logger.Error().Err(err).Msg("sheets sync error")
		b.sendMessage(chatID, "❌ Не удалось синхронизировать таблицу: "+err.Error())
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("🔄 Таблица обновлена: %d записей.", len(appointments)))
}
