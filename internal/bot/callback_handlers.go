package bot

import (
	"context"
	"strconv"
	"strings"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	userID := callback.From.ID

	if b.metrics != nil {
		b.metrics.CallbacksProcessed.Inc()
	}

	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", userID).
		Str("data", data).
		Msg("Handling callback query")

	// Команды администратора
	if b.isAdmin(userID) && b.handleAdminCallback(ctx, update) {
		return
	}

	switch {
	case data == "back_to_main":
		b.answerCallback(callback.ID, "")
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)

	case data == "back_to_dates":
		b.answerCallback(callback.ID, "")
		state := b.getUserState(ctx, userID)
		if state == nil {
			b.handleMainMenu(ctx, update)
			return
		}
		b.showDateSelection(ctx, callback.Message.Chat.ID, userID, state.TempData)

	case strings.HasPrefix(data, "svc_toggle:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "svc_toggle:"), 10, 64)
		if err != nil {
			b.answerCallback(callback.ID, "")
			return
		}
		b.handleServiceToggle(ctx, update, id)

	case data == "svc_done":
		b.handleServicesDone(ctx, update)

	case strings.HasPrefix(data, "svc_book:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "svc_book:"), 10, 64)
		if err != nil {
			b.answerCallback(callback.ID, "")
			return
		}
		b.bookSingleService(ctx, update, id)

	case strings.HasPrefix(data, "date:"):
		b.handleDatePick(ctx, update, strings.TrimPrefix(data, "date:"))

	case strings.HasPrefix(data, "slot:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "slot:"), 10, 64)
		if err != nil {
			b.answerCallback(callback.ID, "")
			return
		}
		b.handleSlotPick(ctx, update, id)

	case strings.HasPrefix(data, "my_cancel:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "my_cancel:"), 10, 64)
		if err != nil {
			b.answerCallback(callback.ID, "")
			return
		}
		b.handleClientCancel(ctx, update, id)

	case strings.HasPrefix(data, "rate:"):
		rating, err := strconv.Atoi(strings.TrimPrefix(data, "rate:"))
		if err != nil {
			b.answerCallback(callback.ID, "")
			return
		}
		b.handleReviewRating(ctx, update, rating)

	case data == "review_photos_done":
		b.finishReview(ctx, update)

	default:
		b.answerCallback(callback.ID, "")
	}
}

// handleAdminCallback обрабатывает callback команды администратора.
// Возвращает true, если команда распознана.
func (b *Bot) handleAdminCallback(ctx context.Context, update tgbotapi.Update) bool {
	callback := update.CallbackQuery
	data := callback.Data

	switch {
	// approve_review: проверяется раньше approve_, иначе перехватит общий префикс
	case strings.HasPrefix(data, "approve_review:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "approve_review:"), 10, 64)
		if err != nil {
			return false
		}
		b.handleApproveReview(ctx, update, id)
		return true

	case strings.HasPrefix(data, "approve_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "approve_"), 10, 64)
		if err != nil {
			return false
		}
		b.handleAdminConfirm(ctx, update, id)
		return true

	case strings.HasPrefix(data, "reject_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "reject_"), 10, 64)
		if err != nil {
			return false
		}
		b.handleAdminReject(ctx, update, id)
		return true

	case strings.HasPrefix(data, "complete_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "complete_"), 10, 64)
		if err != nil {
			return false
		}
		b.handleAdminComplete(ctx, update, id)
		return true

	case strings.HasPrefix(data, "slotdur:"):
		minutes, err := strconv.Atoi(strings.TrimPrefix(data, "slotdur:"))
		if err != nil {
			return false
		}
		b.handleSlotDurationPick(ctx, update, minutes)
		return true

	case data == "slots_confirm":
		b.handleSlotWizardConfirm(ctx, update)
		return true

	case data == "slots_cancel":
		b.answerCallback(callback.ID, "")
		b.clearUserState(ctx, callback.From.ID)
		b.sendMessage(callback.Message.Chat.ID, "Мастер добавления слотов отменен.")
		return true
	}

	return false
}

// ensureAdminState проверяет, что пользователь находится на нужном шаге мастера.
func (b *Bot) ensureAdminState(ctx context.Context, userID int64, step string) *models.UserState {
	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != step {
		return nil
	}
	return state
}
