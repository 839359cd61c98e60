package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groombot/internal/database"
	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const bookingDateLayout = "2006-01-02"

// startBooking начинает диалог записи с выбора услуг
func (b *Bot) startBooking(ctx context.Context, update tgbotapi.Update) {
	chatID, userID := chatAndUser(update)

	services := b.catalogService.GetServices()
	if len(services) == 0 {
		b.sendMessage(chatID, "Каталог услуг пока пуст. Загляните позже.")
		return
	}

	tempData := map[string]interface{}{
		"service_ids": []int64{},
	}
	b.setUserState(ctx, userID, models.StateSelectServices, tempData)

	keyboard := b.serviceSelectionKeyboard(nil)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID,
		"Выберите услуги (можно несколько), затем нажмите «Далее»:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send service selection error")
	}
}

// serviceSelectionKeyboard собирает клавиатуру корзины услуг
func (b *Bot) serviceSelectionKeyboard(selected []int64) tgbotapi.InlineKeyboardMarkup {
	inCart := make(map[int64]bool, len(selected))
	for _, id := range selected {
		inCart[id] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range b.catalogService.GetServices() {
		mark := "◻"
		if inCart[svc.ID] {
			mark = "☑"
		}
		label := fmt.Sprintf("%s %s — %d ₽", mark, svc.Name, svc.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("svc_toggle:%d", svc.ID)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Далее", "svc_done"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", "back_to_main"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleServiceToggle добавляет или убирает услугу из корзины
func (b *Bot) handleServiceToggle(ctx context.Context, update tgbotapi.Update, serviceID int64) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	if _, ok := b.catalogService.GetService(serviceID); !ok {
		b.answerCallback(callback.ID, "Услуга не найдена")
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != models.StateSelectServices {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	cart := state.GetInt64Slice("service_ids")
	found := false
	for i, id := range cart {
		if id == serviceID {
			cart = append(cart[:i], cart[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, serviceID)
	}

	state.TempData["service_ids"] = cart
	b.setUserState(ctx, userID, models.StateSelectServices, state.TempData)

	keyboard := b.serviceSelectionKeyboard(cart)
	if callback.Message != nil {
		total := b.catalogService.TotalPrice(cart)
		text := "Выберите услуги (можно несколько), затем нажмите «Далее»:"
		if len(cart) > 0 {
			text = fmt.Sprintf("Выбрано услуг: %d, итого %d ₽.\nНажмите «Далее», чтобы продолжить:", len(cart), total)
		}
		if _, err := b.tgService.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &keyboard); err != nil {
			b.logger.Error().Err(err).Msg("edit service selection error")
		}
	}
	b.answerCallback(callback.ID, "")
}

// handleServicesDone завершает выбор услуг и переходит к датам
func (b *Bot) handleServicesDone(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != models.StateSelectServices {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	cart := state.GetInt64Slice("service_ids")
	if len(cart) == 0 {
		b.answerCallback(callback.ID, "Выберите хотя бы одну услугу")
		return
	}

	b.answerCallback(callback.ID, "")
	b.showDateSelection(ctx, callback.Message.Chat.ID, userID, state.TempData)
}

// bookSingleService прямой вход «записаться на эту услугу» из каталога
func (b *Bot) bookSingleService(ctx context.Context, update tgbotapi.Update, serviceID int64) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	if _, ok := b.catalogService.GetService(serviceID); !ok {
		b.answerCallback(callback.ID, "Услуга не найдена")
		return
	}

	tempData := map[string]interface{}{
		"service_ids": []int64{serviceID},
	}
	b.answerCallback(callback.ID, "")
	b.showDateSelection(ctx, callback.Message.Chat.ID, userID, tempData)
}

// showDateSelection показывает дни с хотя бы одним свободным слотом
func (b *Bot) showDateSelection(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	horizon := b.config.Bot.BookingHorizonDays
	dates, err := b.slotService.GetAvailableDates(ctx, horizon)
	if err != nil {
		b.logger.Error().Err(err).Msg("get available dates error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(dates) == 0 {
		b.sendMessage(chatID, "Свободных окошек на ближайшие дни нет. Загляните позже или позвоните нам.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range dates {
		label := fmt.Sprintf("%s (%d)", d.Date.Format("02.01 Mon"), d.FreeSlots)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "date:"+d.Date.Format(bookingDateLayout)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", "back_to_main"),
	))

	delete(tempData, "slot_id")
	b.setUserState(ctx, userID, models.StateSelectDate, tempData)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Выберите день:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send date selection error")
	}
}

// handleDatePick сохраняет дату и показывает свободное время
func (b *Bot) handleDatePick(ctx context.Context, update tgbotapi.Update, dateStr string) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	if _, err := time.ParseInLocation(bookingDateLayout, dateStr, time.Local); err != nil {
		b.answerCallback(callback.ID, "Неверная дата")
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	state.TempData["date"] = dateStr
	b.setUserState(ctx, userID, models.StateSelectTime, state.TempData)
	b.answerCallback(callback.ID, "")

	state.CurrentStep = models.StateSelectTime
	b.showTimeSelection(ctx, callback.Message.Chat.ID, userID, state)
}

// showTimeSelection показывает свободные слоты выбранного дня
func (b *Bot) showTimeSelection(ctx context.Context, chatID, userID int64, state *models.UserState) {
	dateStr := state.GetString("date")
	date, err := time.ParseInLocation(bookingDateLayout, dateStr, time.Local)
	if err != nil {
		b.sendMessage(chatID, "Сначала выберите день.")
		b.showDateSelection(ctx, chatID, userID, state.TempData)
		return
	}

	slots, err := b.slotService.GetAvailableSlotsForDate(ctx, date)
	if err != nil {
		b.logger.Error().Err(err).Str("date", dateStr).Msg("get slots for date error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(slots) == 0 {
		b.sendMessage(chatID, "На этот день всё уже занято. Выберите другой день.")
		b.showDateSelection(ctx, chatID, userID, state.TempData)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, slot := range slots {
		label := fmt.Sprintf("%s–%s", slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04"))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("slot:%d", slot.ID)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К выбору дня", "back_to_dates"),
	))

	delete(state.TempData, "slot_id")
	b.setUserState(ctx, userID, models.StateSelectTime, state.TempData)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	text := fmt.Sprintf("Свободное время на %s:", date.Format("02.01.2006"))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send time selection error")
	}
}

// handleSlotPick сохраняет слот и переходит к контактным данным
func (b *Bot) handleSlotPick(ctx context.Context, update tgbotapi.Update, slotID int64) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != models.StateSelectTime {
		b.answerCallback(callback.ID, "Сессия устарела, начните заново")
		return
	}

	// Запоминаем время слота для экрана подтверждения
	if dateStr := state.GetString("date"); dateStr != "" {
		if date, err := time.ParseInLocation(bookingDateLayout, dateStr, time.Local); err == nil {
			if slots, err := b.slotService.GetAvailableSlotsForDate(ctx, date); err == nil {
				for _, slot := range slots {
					if slot.ID == slotID {
						state.TempData["slot_start"] = slot.StartTime.Format("15:04")
						state.TempData["slot_end"] = slot.EndTime.Format("15:04")
						break
					}
				}
			}
		}
	}

	state.TempData["slot_id"] = slotID
	b.answerCallback(callback.ID, "")
	b.askName(ctx, callback.Message.Chat.ID, userID, state.TempData)
}

func (b *Bot) askName(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	b.setUserState(ctx, userID, models.StateEnterName, tempData)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnUseTelegramName),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, "Как вас зовут?", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("ask name error")
	}
}

func (b *Bot) handleNameInput(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) {
	userID := update.Message.From.ID

	name := text
	if text == btnUseTelegramName {
		name = strings.TrimSpace(update.Message.From.FirstName + " " + update.Message.From.LastName)
	}
	name = b.sanitizeInput(name)

	if len([]rune(name)) < 2 {
		b.sendMessage(update.Message.Chat.ID, "Имя слишком короткое. Введите имя длиной от 2 символов.")
		return
	}
	if len([]rune(name)) > 150 {
		b.sendMessage(update.Message.Chat.ID, "Имя слишком длинное. Введите имя до 150 символов.")
		return
	}

	state.TempData["client_name"] = name
	b.askPhone(ctx, update.Message.Chat.ID, userID, state.TempData)
}

func (b *Bot) askPhone(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	b.setUserState(ctx, userID, models.StateEnterPhone, tempData)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnSendPhone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, "Номер телефона для связи:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("ask phone error")
	}
}

func (b *Bot) handlePhoneInput(ctx context.Context, update tgbotapi.Update, phone string, state *models.UserState) {
	normalized := b.normalizePhone(phone)
	if normalized == "" {
		b.sendMessage(update.Message.Chat.ID,
			"Неверный формат номера телефона. Введите номер в формате +7XXXXXXXXXX или 8XXXXXXXXXX")
		return
	}

	state.TempData["phone"] = normalized
	b.askBreed(ctx, update.Message.Chat.ID, update.Message.From.ID, state.TempData)
}

func (b *Bot) askBreed(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	b.setUserState(ctx, userID, models.StateEnterBreed, tempData)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, "Порода питомца (например: шпиц, мейн-кун):", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("ask breed error")
	}
}

func (b *Bot) handleBreedInput(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) {
	breed := b.sanitizeInput(text)
	if breed == "" {
		b.sendMessage(update.Message.Chat.ID, "Порода обязательна: грумеру важно заранее знать, с кем он работает.")
		return
	}

	state.TempData["pet_breed"] = breed
	b.askPetExtras(ctx, update.Message.Chat.ID, update.Message.From.ID, state.TempData)
}

func (b *Bot) askPetExtras(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	b.setUserState(ctx, userID, models.StateEnterPetExtras, tempData)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID,
		"Кличка и особенности питомца через запятую (например: Барсик, боится фена). Этот шаг можно пропустить.",
		keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("ask pet extras error")
	}
}

func (b *Bot) handlePetExtrasInput(ctx context.Context, update tgbotapi.Update, text string, state *models.UserState) {
	if text != btnSkip {
		sanitized := b.sanitizeInput(text)
		if name, notes, found := strings.Cut(sanitized, ","); found {
			state.TempData["pet_name"] = strings.TrimSpace(name)
			state.TempData["pet_notes"] = strings.TrimSpace(notes)
		} else {
			state.TempData["pet_name"] = strings.TrimSpace(sanitized)
		}
	}

	b.showBookingConfirmation(ctx, update.Message.Chat.ID, update.Message.From.ID, state.TempData)
}

// showBookingConfirmation показывает итог перед созданием записи
func (b *Bot) showBookingConfirmation(ctx context.Context, chatID, userID int64, tempData map[string]interface{}) {
	state := &models.UserState{UserID: userID, TempData: tempData}

	serviceIDs := state.GetInt64Slice("service_ids")
	names := b.catalogService.ServiceNames(serviceIDs)
	total := b.catalogService.TotalPrice(serviceIDs)

	var when string
	if dateStr := state.GetString("date"); dateStr != "" {
		if d, err := time.ParseInLocation(bookingDateLayout, dateStr, time.Local); err == nil {
			when = d.Format("02.01.2006")
		}
	}
	if start := state.GetString("slot_start"); start != "" {
		when = fmt.Sprintf("%s %s–%s", when, start, state.GetString("slot_end"))
	}

	var message strings.Builder
	message.WriteString("📋 Проверьте запись:\n\n")
	message.WriteString(fmt.Sprintf("💈 Услуги: %s\n", names))
	message.WriteString(fmt.Sprintf("💰 Итого: %d ₽\n", total))
	message.WriteString(fmt.Sprintf("📅 Дата: %s\n", when))
	message.WriteString(fmt.Sprintf("👤 Имя: %s\n", state.GetString("client_name")))
	message.WriteString(fmt.Sprintf("📱 Телефон: +%s\n", state.GetString("phone")))
	message.WriteString(fmt.Sprintf("🐾 Порода: %s\n", state.GetString("pet_breed")))
	if petName := state.GetString("pet_name"); petName != "" {
		message.WriteString(fmt.Sprintf("🐶 Кличка: %s\n", petName))
	}
	if notes := state.GetString("pet_notes"); notes != "" {
		message.WriteString(fmt.Sprintf("💬 Особенности: %s\n", notes))
	}

	b.setUserState(ctx, userID, models.StateConfirmBooking, tempData)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirmBooking),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send confirmation error")
	}
}

// finalizeBooking создает запись. Если слот успели занять, пользователь
// возвращается к выбору времени с сохраненными данными.
func (b *Bot) finalizeBooking(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	l := zerolog.Ctx(ctx)
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	appointment := &models.Appointment{
		TelegramID: userID,
		ClientName: state.GetString("client_name"),
		Phone:      state.GetString("phone"),
		PetName:    state.GetString("pet_name"),
		PetBreed:   state.GetString("pet_breed"),
		PetNotes:   state.GetString("pet_notes"),
		ServiceIDs: state.GetInt64Slice("service_ids"),
		SlotID:     state.GetInt64("slot_id"),
	}

	err := b.appointmentService.CreateAppointment(ctx, appointment)
	if err != nil {
		l.Warn().Err(err).Int64("user_id", userID).Int64("slot_id", appointment.SlotID).Msg("create appointment failed")

		b.sendMessage(chatID, b.getErrorMessage(err))

		// Проигранная гонка за слот не рушит диалог: корзина и контакты
		// остаются, пользователь выбирает другое время.
		if errors.Is(err, database.ErrSlotUnavailable) || errors.Is(err, database.ErrSlotNotFound) || errors.Is(err, database.ErrPastDate) {
			delete(state.TempData, "slot_id")
			state.CurrentStep = models.StateSelectTime
			b.showTimeSelection(ctx, chatID, userID, state)
			return
		}

		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)
		return
	}

	l.Info().Int64("appointment_id", appointment.ID).Int64("user_id", userID).Msg("appointment created")

	b.notifyAdminsAboutAppointment(ctx, appointment)

	b.clearUserState(ctx, userID)
	b.sendMessage(chatID, fmt.Sprintf(
		"✅ Заявка #%d отправлена и ожидает подтверждения. Мы напишем вам, как только администратор её подтвердит.",
		appointment.ID))
	b.handleMainMenu(ctx, update)
}

// showMyAppointments список записей клиента с кнопками отмены активных
func (b *Bot) showMyAppointments(ctx context.Context, update tgbotapi.Update) {
	chatID, userID := chatAndUser(update)

	appointments, err := b.appointmentService.GetUserAppointments(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("get user appointments error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(appointments) == 0 {
		b.sendMessage(chatID, "У вас пока нет записей. Нажмите «"+btnBook+"», чтобы записаться.")
		return
	}

	var message strings.Builder
	message.WriteString("📊 Ваши записи:\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range appointments {
		message.WriteString(formatAppointmentLine(a))
		message.WriteString("\n")

		if a.Status == models.StatusPending || a.Status == models.StatusConfirmed {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("❌ Отменить #%d (%s)", a.ID, a.SlotStart.Format("02.01 15:04")),
					fmt.Sprintf("my_cancel:%d", a.ID),
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
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send my appointments error")
	}
}

// handleClientCancel отмена записи самим клиентом
func (b *Bot) handleClientCancel(ctx context.Context, update tgbotapi.Update, appointmentID int64) {
	callback := update.CallbackQuery
	userID := callback.From.ID

	a, err := b.appointmentService.GetAppointment(ctx, appointmentID)
	if err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}
	if a.TelegramID != userID {
		b.answerCallback(callback.ID, "Это не ваша запись")
		return
	}

	if err := b.appointmentService.CancelAppointment(ctx, appointmentID, userID); err != nil {
		b.answerCallback(callback.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(callback.ID, "Запись отменена")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("❌ Запись #%d отменена. Будем ждать вас в другой раз!", appointmentID))
	b.notifyAdmins(ctx, fmt.Sprintf("ℹ️ Клиент отменил запись #%d (%s, %s).", a.ID, a.ClientName, a.ServiceNames))
}

// showServiceCatalog каталог услуг с прямой записью
func (b *Bot) showServiceCatalog(ctx context.Context, update tgbotapi.Update) {
	chatID, _ := chatAndUser(update)

	services := b.catalogService.GetServices()
	if len(services) == 0 {
		b.sendMessage(chatID, "Каталог услуг пока пуст.")
		return
	}

	var message strings.Builder
	message.WriteString("💈 Услуги салона «Пушистый друг»:\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		message.WriteString(fmt.Sprintf("🔹 %s — %d ₽ (%d мин)\n", svc.Name, svc.Price, svc.DurationMinutes))
		if svc.Description != "" {
			message.WriteString(fmt.Sprintf("   %s\n", svc.Description))
		}
		message.WriteString("\n")

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🐾 Записаться: %s", svc.Name),
				fmt.Sprintf("svc_book:%d", svc.ID),
			),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, message.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send catalog error")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("answer callback error")
	}
}
