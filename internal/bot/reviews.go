package bot

import (
	"context"
	"fmt"
	"strings"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showReviews показывает опубликованные отзывы и кнопку «оставить отзыв»
func (b *Bot) showReviews(ctx context.Context, update tgbotapi.Update) {
	chatID, _ := chatAndUser(update)

	reviews, err := b.reviewService.GetApprovedReviews(ctx, 10)
	if err != nil {
		b.logger.Error().Err(err).Msg("get reviews error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	var message strings.Builder
	message.WriteString("⭐ Отзывы наших клиентов:\n\n")

	if len(reviews) == 0 {
		message.WriteString("Отзывов пока нет. Станьте первым!\n")
	}

	for _, review := range reviews {
		message.WriteString(fmt.Sprintf("%s %s\n%s\n\n",
			strings.Repeat("⭐", review.Rating), review.UserName, review.Text))
	}

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLeaveReview),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send reviews error")
	}
}

// startReview начинает диалог отзыва с оценки
func (b *Bot) startReview(ctx context.Context, update tgbotapi.Update) {
	chatID, userID := chatAndUser(update)

	b.setUserState(ctx, userID, models.StateReviewRating, nil)

	var row []tgbotapi.InlineKeyboardButton
	for rating := 1; rating <= 5; rating++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.Repeat("⭐", rating), fmt.Sprintf("rate:%d", rating)))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)

	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Оцените наш салон:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send rating request error")
	}
}

func (b *Bot) handleReviewRating(ctx context.Context, update tgbotapi.Update, rating int) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	if rating < 1 || rating > 5 {
		b.answerCallback(callback.ID, "Оценка от 1 до 5")
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != models.StateReviewRating {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	state.TempData["rating"] = rating
	b.setUserState(ctx, userID, models.StateReviewText, state.TempData)
	b.answerCallback(callback.ID, "")
	b.sendMessage(callback.Message.Chat.ID, "Напишите пару слов о визите:")
}

func (b *Bot) handleReviewText(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	sanitized := b.sanitizeInput(text)
	if sanitized == "" {
		b.sendMessage(chatID, "Отзыв не может быть пустым. Напишите хотя бы пару слов.")
		return
	}

	state.TempData["review_text"] = sanitized
	state.TempData["photos"] = []string{}
	b.setUserState(ctx, userID, models.StateReviewPhotos, state.TempData)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnPhotosDone, "review_photos_done"),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID,
		fmt.Sprintf("Можно приложить до %d фото питомца после груминга. Отправьте фото или нажмите «Готово».",
			models.MaxReviewPhotos), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send photos request error")
	}
}

// handleReviewPhotos принимает фотографии, максимум MaxReviewPhotos
func (b *Bot) handleReviewPhotos(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if len(update.Message.Photo) == 0 {
		b.sendMessage(chatID, "Отправьте фото или нажмите «Готово».")
		return
	}

	photos := state.GetStringSlice("photos")
	if len(photos) >= models.MaxReviewPhotos {
		b.sendMessage(chatID, fmt.Sprintf("Максимум %d фото. Нажмите «Готово», чтобы сохранить отзыв.", models.MaxReviewPhotos))
		return
	}

	// Telegram присылает варианты одного фото, берем самый крупный
	best := update.Message.Photo[len(update.Message.Photo)-1]
	photos = append(photos, best.FileID)
	state.TempData["photos"] = photos
	b.setUserState(ctx, userID, models.StateReviewPhotos, state.TempData)

	b.sendMessage(chatID, fmt.Sprintf("Фото %d/%d сохранено.", len(photos), models.MaxReviewPhotos))
}

// finishReview сохраняет отзыв и отправляет его администраторам на модерацию
func (b *Bot) finishReview(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != models.StateReviewPhotos {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	userName := strings.TrimSpace(callback.From.FirstName + " " + callback.From.LastName)
	review := &models.Review{
		TelegramID: userID,
		UserName:   userName,
		Rating:     state.GetInt("rating"),
		Text:       state.GetString("review_text"),
		Photos:     state.GetStringSlice("photos"),
	}

	if err := b.reviewService.AddReview(ctx, review); err != nil {
		b.answerCallback(callback.ID, "")
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Спасибо!")
	b.clearUserState(ctx, userID)
	b.sendMessage(callback.Message.Chat.ID, "💚 Спасибо за отзыв! Он появится в списке после проверки.")

	// Администраторам на модерацию
	message := fmt.Sprintf("📝 Новый отзыв #%d от %s:\n%s\n%s",
		review.ID, userName, strings.Repeat("⭐", review.Rating), review.Text)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Опубликовать", fmt.Sprintf("approve_review:%d", review.ID)),
		),
	)
	for _, adminID := range b.config.Admins {
		if _, err := b.tgService.SendWithInlineKeyboard(adminID, message, keyboard); err != nil {
			b.logger.Error().Err(err).Int64("admin_id", adminID).Msg("notify admin about review error")
		}
	}
}

// handleApproveReview публикация отзыва администратором
func (b *Bot) handleApproveReview(ctx context.Context, update tgbotapi.Update, reviewID int64) {
	callback := update.CallbackQuery

	if err := b.reviewService.ApproveReview(ctx, reviewID); err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Опубликован")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("✅ Отзыв #%d опубликован.", reviewID))
}
