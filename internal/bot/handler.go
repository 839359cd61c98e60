package bot

import (
	"context"
	"strings"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
		if strings.HasPrefix(text, "/") {
			b.metrics.CommandsProcessed.Inc()
		}
	}

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	state := b.getUserState(ctx, userID)

	// Отмена работает из любого шага
	if text == btnCancel || strings.EqualFold(text, "отмена") {
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)
		return
	}

	if b.isAdmin(userID) && b.handleAdminCommand(ctx, update, state) {
		return
	}

	if b.handleUserCommands(ctx, update, text) {
		return
	}

	if state != nil && b.handleUserStateSteps(ctx, update, text, state) {
		return
	}

	b.sendMessage(update.Message.Chat.ID, "Неизвестная команда. Используйте меню.")
	b.handleMainMenu(ctx, update)
}

// handleUserCommands обрабатывает основные команды клиента
func (b *Bot) handleUserCommands(ctx context.Context, update tgbotapi.Update, text string) bool {
	switch {
	case text == "/start" || strings.EqualFold(text, "сброс") || strings.EqualFold(text, "reset"):
		b.clearUserState(ctx, update.Message.From.ID)
		b.handleStartWithUserTracking(ctx, update)
		return true

	case text == btnBook:
		b.startBooking(ctx, update)
		return true

	case text == btnServices:
		b.showServiceCatalog(ctx, update)
		return true

	case text == btnMyAppointments:
		b.showMyAppointments(ctx, update)
		return true

	case text == btnReviews:
		b.showReviews(ctx, update)
		return true

	case text == btnLeaveReview:
		b.startReview(ctx, update)
		return true

	case text == btnContacts:
		b.showContacts(ctx, update)
		return true

	case text == btnBack:
		b.handleBackStep(ctx, update)
		return true
	}

	return false
}

// handleUserStateSteps обрабатывает ввод в зависимости от текущего шага диалога
func (b *Bot) handleUserStateSteps(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) bool {
	switch state.CurrentStep {
	case models.StateEnterName:
		b.handleNameInput(ctx, update, text, state)
		return true

	case models.StateEnterPhone:
		if update.Message.Contact != nil {
			b.handlePhoneInput(ctx, update, update.Message.Contact.PhoneNumber, state)
		} else {
			b.handlePhoneInput(ctx, update, text, state)
		}
		return true

	case models.StateEnterBreed:
		b.handleBreedInput(ctx, update, text, state)
		return true

	case models.StateEnterPetExtras:
		b.handlePetExtrasInput(ctx, update, text, state)
		return true

	case models.StateConfirmBooking:
		if text == btnConfirmBooking {
			b.finalizeBooking(ctx, update, state)
			return true
		}
		return false

	case models.StateReviewText:
		b.handleReviewText(ctx, update, text, state)
		return true

	case models.StateReviewPhotos:
		b.handleReviewPhotos(ctx, update, state)
		return true

	case models.StateSlotDate, models.StateSlotStart, models.StateSlotEnd:
		// Шаги мастера слотов доступны только администратору
		if b.isAdmin(update.Message.From.ID) {
			b.handleSlotWizardInput(ctx, update, text, state)
			return true
		}
		return false
	}

	return false
}

// handleBackStep возвращает пользователя на предыдущий шаг диалога записи
func (b *Bot) handleBackStep(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	state := b.getUserState(ctx, userID)
	if state == nil {
		b.handleMainMenu(ctx, update)
		return
	}

	switch state.CurrentStep {
	case models.StateSelectDate:
		b.startBooking(ctx, update)
	case models.StateSelectTime:
		b.showDateSelection(ctx, update.Message.Chat.ID, userID, state.TempData)
	case models.StateEnterName:
		b.showTimeSelection(ctx, update.Message.Chat.ID, userID, state)
	case models.StateEnterPhone:
		b.askName(ctx, update.Message.Chat.ID, userID, state.TempData)
	case models.StateEnterBreed:
		b.askPhone(ctx, update.Message.Chat.ID, userID, state.TempData)
	case models.StateEnterPetExtras:
		b.askBreed(ctx, update.Message.Chat.ID, userID, state.TempData)
	case models.StateConfirmBooking:
		b.askPetExtras(ctx, update.Message.Chat.ID, userID, state.TempData)
	default:
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)
	}
}

func (b *Bot) handleStartWithUserTracking(ctx context.Context, update tgbotapi.Update) {
	user := &models.User{
		TelegramID:   update.Message.From.ID,
		Username:     update.Message.From.UserName,
		FirstName:    update.Message.From.FirstName,
		LastName:     update.Message.From.LastName,
		LastActivity: time.Now(),
		CreatedAt:    time.Now(),
	}

	if err := b.userService.SaveUser(ctx, user); err != nil {
		b.logger.Error().Err(err).Int64("user_id", user.TelegramID).Msg("Error tracking user")
	}

	b.handleMainMenu(ctx, update)
}
