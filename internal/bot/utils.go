package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню и диалогов
const (
	btnBook            = "🐾 Записаться"
	btnServices        = "💈 Услуги и цены"
	btnMyAppointments  = "📊 Мои записи"
	btnReviews         = "⭐ Отзывы"
	btnLeaveReview     = "✍️ Оставить отзыв"
	btnContacts        = "📞 Контакты"
	btnBack            = "⬅️ Назад"
	btnCancel          = "❌ Отмена"
	btnSkip            = "➡️ Пропустить"
	btnUseTelegramName = "👤 Использовать имя из Telegram"
	btnSendPhone       = "📱 Отправить номер телефона"
	btnConfirmBooking  = "✅ Подтвердить запись"
	btnPhotosDone      = "✅ Готово"

	// Кнопки администратора
	btnAdminPending = "👨‍💼 Заявки"
	btnAdminToday   = "📅 Записи на сегодня"
	btnAddSlots     = "➕ Добавить слоты"
	btnExportWeek   = "💾 Экспорт недели"
	btnAdminStats   = "📈 Статистика"
	btnSheetsSync   = "🔄 Синхронизировать таблицу"
)

const (
	statusSuccess = "✅"
	statusPending = "⏳"
	statusError   = "❌"
)

// Вспомогательные методы для работы с состояниями пользователей

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if tempData == nil {
		tempData = make(map[string]interface{})
	}
	if err := b.stateService.SetUserState(ctx, userID, step, tempData); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("set user state error")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("get user state error")
		return nil
	}
	return state
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("clear user state error")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.userService.IsAdmin(userID)
}

func (b *Bot) isBlacklisted(userID int64) bool {
	return b.userService.IsBlacklisted(userID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message error")
	}
}

// handleMainMenu главное меню
func (b *Bot) handleMainMenu(ctx context.Context, update tgbotapi.Update) {
	chatID, userID := chatAndUser(update)
	if userID == 0 {
		return
	}

	var rows [][]tgbotapi.KeyboardButton

	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnBook),
		tgbotapi.NewKeyboardButton(btnServices),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnMyAppointments),
		tgbotapi.NewKeyboardButton(btnReviews),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnContacts),
	))

	if b.isAdmin(userID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminPending),
			tgbotapi.NewKeyboardButton(btnAdminToday),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAddSlots),
			tgbotapi.NewKeyboardButton(btnExportWeek),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminStats),
			tgbotapi.NewKeyboardButton(btnSheetsSync),
		))
	}

	b.setUserState(ctx, userID, models.StateMainMenu, nil)

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	if _, err := b.tgService.SendWithKeyboard(chatID, "Добро пожаловать в салон «Пушистый друг»! 🐶\nВыберите действие:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send main menu error")
	}
}

// chatAndUser достает chat id и user id из сообщения или callback.
func chatAndUser(update tgbotapi.Update) (chatID, userID int64) {
	if update.Message != nil {
		return update.Message.Chat.ID, update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID, update.CallbackQuery.From.ID
	}
	if update.CallbackQuery != nil {
		return 0, update.CallbackQuery.From.ID
	}
	return 0, 0
}

// showContacts показывает контакты салона
func (b *Bot) showContacts(ctx context.Context, update tgbotapi.Update) {
	chatID, _ := chatAndUser(update)

	var message strings.Builder
	message.WriteString("📞 Контакты салона:\n\n")
	for _, contact := range b.config.AdminContacts {
		message.WriteString(fmt.Sprintf("🔹 %s\n", contact))
	}
	message.WriteString("\nБудем рады ответить на любые вопросы о груминге.")

	b.sendMessage(chatID, message.String())
}

// normalizePhone нормализует номер телефона
func (b *Bot) normalizePhone(phone string) string {
	// Удаляем все нецифровые символы
	cleaned := ""
	for _, char := range phone {
		if char >= '0' && char <= '9' {
			cleaned += string(char)
		}
	}

	// Обрабатываем разные форматы номеров
	if len(cleaned) == 11 {
		if cleaned[0] == '8' {
			return "7" + cleaned[1:] // 8XXXXXXXXXX -> 7XXXXXXXXXX
		} else if cleaned[0] == '7' {
			return cleaned
		}
	} else if len(cleaned) == 10 {
		return "7" + cleaned // XXXXXXXXXX -> 7XXXXXXXXXX
	}

	return "" // Неверный формат
}

// formatPhoneForDisplay форматирует номер для показа клиенту
func (b *Bot) formatPhoneForDisplay(phone string) string {
	if len(phone) == 11 {
		return fmt.Sprintf("+%s (%s) %s-%s-%s", phone[:1], phone[1:4], phone[4:7], phone[7:9], phone[9:])
	}
	if len(phone) == 10 {
		return fmt.Sprintf("(%s) %s-%s-%s", phone[:3], phone[3:6], phone[6:8], phone[8:])
	}
	return phone
}

// sanitizeInput убирает переносы строк и экранирует HTML в пользовательском вводе
func (b *Bot) sanitizeInput(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.TrimSpace(text)
	return html.EscapeString(text)
}

func statusEmoji(status string) string {
	switch status {
	case models.StatusConfirmed:
		return statusSuccess
	case models.StatusCancelled:
		return statusError
	case models.StatusCompleted:
		return "🏁"
	default:
		return statusPending
	}
}

func statusTitle(status string) string {
	switch status {
	case models.StatusPending:
		return "ожидает подтверждения"
	case models.StatusConfirmed:
		return "подтверждена"
	case models.StatusCancelled:
		return "отменена"
	case models.StatusCompleted:
		return "завершена"
	default:
		return status
	}
}

// formatAppointmentLine короткая строка о записи для списков
func formatAppointmentLine(a *models.AppointmentWithSlot) string {
	return fmt.Sprintf("%s Запись #%d\n   💈 %s\n   📅 %s\n   💰 %d ₽\n   📊 Статус: %s\n",
		statusEmoji(a.Status), a.ID, a.ServiceNames,
		a.SlotStart.Format("02.01.2006 15:04"), a.TotalPrice, statusTitle(a.Status))
}

// parseClientDate parses dates the way clients type them.
func parseClientDate(s string) (time.Time, error) {
	return time.ParseInLocation("02.01.2006", strings.TrimSpace(s), time.Local)
}

// parseClientTime разбирает время ЧЧ:ММ
func parseClientTime(s string) (hour, minute int, err error) {
	_, err = fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %s", s)
	}
	return hour, minute, nil
}
