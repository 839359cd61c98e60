package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"groombot/internal/config"
	"groombot/internal/database"
	"groombot/internal/domain"
	"groombot/internal/events"
	"groombot/internal/models"
	"groombot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type mockTelegramService struct {
	domain.TelegramService
	updatesChan  chan tgbotapi.Update
	sentMessages []tgbotapi.Chattable
	failChats    map[int64]error
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sentMessages = append(m.sentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	if err := m.failChats[chatID]; err != nil {
		return tgbotapi.Message{}, err
	}
	return m.Send(tgbotapi.NewMessage(chatID, text))
}

func (m *mockTelegramService) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return m.Send(msg)
}

func (m *mockTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return m.Send(msg)
}

func (m *mockTelegramService) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return m.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (m *mockTelegramService) AnswerCallback(callbackID, text string) error {
	return nil
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

type mockStateManager struct {
	domain.StateManager
	states map[int64]*models.UserState
}

func (m *mockStateManager) SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error {
	if m.states == nil {
		m.states = make(map[int64]*models.UserState)
	}
	m.states[userID] = &models.UserState{UserID: userID, CurrentStep: step, TempData: data}
	return nil
}

func (m *mockStateManager) GetUserState(ctx context.Context, userID int64) (*models.UserState, error) {
	return m.states[userID], nil
}

func (m *mockStateManager) ClearUserState(ctx context.Context, userID int64) error {
	delete(m.states, userID)
	return nil
}

func (m *mockStateManager) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return true, nil
}

type mockUserService struct {
	domain.UserService
	admins map[int64]bool
	saved  map[int64]*models.User
}

func (m *mockUserService) IsAdmin(userID int64) bool { return m.admins[userID] }

func (m *mockUserService) IsBlacklisted(userID int64) bool { return false }

func (m *mockUserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return nil
}

func (m *mockUserService) SaveUser(ctx context.Context, user *models.User) error {
	if m.saved == nil {
		m.saved = make(map[int64]*models.User)
	}
	m.saved[user.TelegramID] = user
	return nil
}

type mockAppointmentService struct {
	domain.AppointmentService
	createErr    error
	created      []*models.Appointment
	userAppts    []*models.AppointmentWithSlot
	due          []*models.AppointmentWithSlot
	markedSent   []int64
	confirmedIDs []int64
}

func (m *mockAppointmentService) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = int64(len(m.created) + 1)
	m.created = append(m.created, a)
	return nil
}

func (m *mockAppointmentService) GetUserAppointments(ctx context.Context, telegramID int64) ([]*models.AppointmentWithSlot, error) {
	return m.userAppts, nil
}

func (m *mockAppointmentService) ConfirmAppointment(ctx context.Context, appointmentID, adminID int64) error {
	m.confirmedIDs = append(m.confirmedIDs, appointmentID)
	return nil
}

func (m *mockAppointmentService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return &models.Appointment{ID: id, TelegramID: 777, Status: models.StatusConfirmed}, nil
}

func (m *mockAppointmentService) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.AppointmentWithSlot, error) {
	return m.due, nil
}

func (m *mockAppointmentService) MarkReminderSent(ctx context.Context, appointmentID int64) error {
	m.markedSent = append(m.markedSent, appointmentID)
	return nil
}

type mockSlotService struct {
	domain.SlotService
	dates []*models.DayAvailability
	slots []*models.Slot
}

func (m *mockSlotService) GetAvailableDates(ctx context.Context, horizonDays int) ([]*models.DayAvailability, error) {
	return m.dates, nil
}

func (m *mockSlotService) GetAvailableSlotsForDate(ctx context.Context, date time.Time) ([]*models.Slot, error) {
	return m.slots, nil
}

var errSendFailed = errors.New("send failed")

func testServices() []models.Service {
	return []models.Service{
		{ID: 1, Name: "Стрижка", Price: 2500, DurationMinutes: 60, Available: true, SortOrder: 1},
		{ID: 2, Name: "Мытьё", Price: 1000, DurationMinutes: 30, Available: true, SortOrder: 2},
	}
}

type botFixture struct {
	bot   *Bot
	tg    *mockTelegramService
	state *mockStateManager
	appts *mockAppointmentService
	slots *mockSlotService
	users *mockUserService
	bus   *events.EventBus
}

func newTestBot(t *testing.T, cfg *config.Config) *botFixture {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{
			Telegram: config.TelegramConfig{BotToken: "test"},
			Admins:   []int64{900},
			Bot: config.BotConfig{
				ReminderIntervalMinutes: 5,
				ReminderWindowMinutes:   90,
				BookingHorizonDays:      14,
				RateLimitMessages:       100,
				RateLimitWindow:         60,
			},
		}
	}

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 1)}
	state := &mockStateManager{states: make(map[int64]*models.UserState)}
	appts := &mockAppointmentService{}
	slots := &mockSlotService{}
	users := &mockUserService{admins: map[int64]bool{900: true}}
	catalog := service.NewCatalogService(testServices())
	bus := events.NewEventBus()
	logger := zerolog.New(io.Discard)

	b, err := NewBot(tg, cfg, state, appts, slots, catalog, users, nil, nil, bus, nil, &logger)
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}

	return &botFixture{bot: b, tg: tg, state: state, appts: appts, slots: slots, users: users, bus: bus}
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: "testuser", FirstName: "Анна"},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: userID},
				MessageID: 42,
			},
			Data: data,
		},
	}
}

func TestBotStart(t *testing.T) {
	f := newTestBot(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go f.bot.Start(ctx)

	f.tg.updatesChan <- messageUpdate(123, "/start")

	time.Sleep(100 * time.Millisecond)
	cancel()

	if f.users.saved[123] == nil {
		t.Fatal("expected user to be saved on /start")
	}
	if f.users.saved[123].Username != "testuser" {
		t.Errorf("expected username testuser, got %s", f.users.saved[123].Username)
	}
	if len(f.tg.sentMessages) == 0 {
		t.Errorf("expected at least one message sent")
	}
}

func TestStartBookingSetsServiceSelection(t *testing.T) {
	f := newTestBot(t, nil)

	f.bot.handleMessage(context.Background(), messageUpdate(123, btnBook))

	state := f.state.states[123]
	if state == nil || state.CurrentStep != models.StateSelectServices {
		t.Fatalf("expected state %s, got %+v", models.StateSelectServices, state)
	}
	if len(f.tg.sentMessages) == 0 {
		t.Errorf("expected service selection message")
	}
}

func TestServiceToggleAndDone(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.bot.handleMessage(ctx, messageUpdate(123, btnBook))
	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "svc_toggle:1"))

	cart := f.state.states[123].GetInt64Slice("service_ids")
	if len(cart) != 1 || cart[0] != 1 {
		t.Fatalf("expected cart [1], got %v", cart)
	}

	// Повторный клик убирает услугу из корзины
	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "svc_toggle:1"))
	if cart := f.state.states[123].GetInt64Slice("service_ids"); len(cart) != 0 {
		t.Fatalf("expected empty cart after second toggle, got %v", cart)
	}

	f.slots.dates = []*models.DayAvailability{
		{Date: time.Now().AddDate(0, 0, 1), FreeSlots: 3},
	}

	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "svc_toggle:2"))
	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "svc_done"))

	if step := f.state.states[123].CurrentStep; step != models.StateSelectDate {
		t.Fatalf("expected state %s, got %s", models.StateSelectDate, step)
	}
}

func TestDateAndSlotSelection(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	tomorrow := time.Now().AddDate(0, 0, 1)
	f.slots.slots = []*models.Slot{
		{ID: 7, StartTime: tomorrow, EndTime: tomorrow.Add(time.Hour)},
	}

	f.state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateSelectDate,
		TempData:    map[string]interface{}{"service_ids": []int64{1}},
	}

	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "date:"+tomorrow.Format(bookingDateLayout)))
	if step := f.state.states[123].CurrentStep; step != models.StateSelectTime {
		t.Fatalf("expected state %s, got %s", models.StateSelectTime, step)
	}

	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "slot:7"))
	state := f.state.states[123]
	if state.CurrentStep != models.StateEnterName {
		t.Fatalf("expected state %s, got %s", models.StateEnterName, state.CurrentStep)
	}
	if state.GetInt64("slot_id") != 7 {
		t.Fatalf("expected slot_id 7, got %d", state.GetInt64("slot_id"))
	}
}

func TestContactSteps(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateEnterName,
		TempData:    map[string]interface{}{"service_ids": []int64{1}, "slot_id": int64(7)},
	}

	f.bot.handleMessage(ctx, messageUpdate(123, "Анна"))
	if step := f.state.states[123].CurrentStep; step != models.StateEnterPhone {
		t.Fatalf("expected state %s, got %s", models.StateEnterPhone, step)
	}

	f.bot.handleMessage(ctx, messageUpdate(123, "+7 999 123-45-67"))
	state := f.state.states[123]
	if state.CurrentStep != models.StateEnterBreed {
		t.Fatalf("expected state %s, got %s", models.StateEnterBreed, state.CurrentStep)
	}
	if state.GetString("phone") != "79991234567" {
		t.Fatalf("expected normalized phone, got %s", state.GetString("phone"))
	}

	// Неверный телефон не двигает диалог вперед
	f.state.states[123].CurrentStep = models.StateEnterPhone
	f.bot.handleMessage(ctx, messageUpdate(123, "12345"))
	if step := f.state.states[123].CurrentStep; step != models.StateEnterPhone {
		t.Fatalf("expected to stay on %s, got %s", models.StateEnterPhone, step)
	}
}

func TestFinalizeBookingSuccess(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateConfirmBooking,
		TempData: map[string]interface{}{
			"service_ids": []int64{1, 2},
			"slot_id":     int64(7),
			"client_name": "Анна",
			"phone":       "79991234567",
			"pet_breed":   "Шпиц",
		},
	}

	f.bot.handleMessage(ctx, messageUpdate(123, btnConfirmBooking))

	if len(f.appts.created) != 1 {
		t.Fatalf("expected 1 appointment created, got %d", len(f.appts.created))
	}
	created := f.appts.created[0]
	if created.SlotID != 7 || created.ClientName != "Анна" || created.PetBreed != "Шпиц" {
		t.Fatalf("unexpected appointment: %+v", created)
	}
	if len(created.ServiceIDs) != 2 {
		t.Fatalf("expected 2 services, got %v", created.ServiceIDs)
	}

	// После успеха состояние сброшено в главное меню
	if step := f.state.states[123].CurrentStep; step != models.StateMainMenu {
		t.Fatalf("expected state %s, got %s", models.StateMainMenu, step)
	}
}

// Проигранная гонка за слот возвращает к выбору времени, сохраняя корзину и контакты.
func TestFinalizeBookingSlotTakenKeepsData(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.appts.createErr = database.ErrSlotUnavailable

	tomorrow := time.Now().AddDate(0, 0, 1)
	f.slots.slots = []*models.Slot{
		{ID: 8, StartTime: tomorrow, EndTime: tomorrow.Add(time.Hour)},
	}

	f.state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateConfirmBooking,
		TempData: map[string]interface{}{
			"service_ids": []int64{1},
			"slot_id":     int64(7),
			"date":        tomorrow.Format(bookingDateLayout),
			"client_name": "Анна",
			"phone":       "79991234567",
			"pet_breed":   "Шпиц",
		},
	}

	f.bot.handleMessage(ctx, messageUpdate(123, btnConfirmBooking))

	state := f.state.states[123]
	if state.CurrentStep != models.StateSelectTime {
		t.Fatalf("expected state %s, got %s", models.StateSelectTime, state.CurrentStep)
	}
	if state.GetString("client_name") != "Анна" || state.GetString("phone") != "79991234567" {
		t.Fatalf("expected contact data preserved, got %+v", state.TempData)
	}
	if got := state.GetInt64Slice("service_ids"); len(got) != 1 {
		t.Fatalf("expected cart preserved, got %v", got)
	}
	if state.GetInt64("slot_id") != 0 {
		t.Fatalf("expected slot_id dropped, got %d", state.GetInt64("slot_id"))
	}
}

func TestAdminConfirmCallback(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.bot.handleCallbackQuery(ctx, callbackUpdate(900, "approve_5"))

	if len(f.appts.confirmedIDs) != 1 || f.appts.confirmedIDs[0] != 5 {
		t.Fatalf("expected appointment 5 confirmed, got %v", f.appts.confirmedIDs)
	}
}

func TestNonAdminCannotConfirm(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.bot.handleCallbackQuery(ctx, callbackUpdate(123, "approve_5"))

	if len(f.appts.confirmedIDs) != 0 {
		t.Fatalf("expected no confirmation by non-admin, got %v", f.appts.confirmedIDs)
	}
}

// Ошибка отправки одного напоминания не мешает остальным,
// и неотправленное не помечается как отправленное.
func TestSendDueRemindersErrorIsolation(t *testing.T) {
	f := newTestBot(t, nil)

	start := time.Now().Add(time.Hour)
	f.appts.due = []*models.AppointmentWithSlot{
		{Appointment: models.Appointment{ID: 1, TelegramID: 500, ServiceNames: "Стрижка"}, SlotStart: start},
		{Appointment: models.Appointment{ID: 2, TelegramID: 501, ServiceNames: "Мытьё"}, SlotStart: start},
	}
	f.tg.failChats = map[int64]error{500: errSendFailed}

	f.bot.sendDueReminders(context.Background())

	if len(f.appts.markedSent) != 1 || f.appts.markedSent[0] != 2 {
		t.Fatalf("expected only appointment 2 marked sent, got %v", f.appts.markedSent)
	}
}

// Событие reminder_sent публикуется только для реально отправленных
// напоминаний.
func TestReminderPublishesEvent(t *testing.T) {
	f := newTestBot(t, nil)

	var notified []int64
	f.bus.Subscribe(events.EventReminderSent, func(ev *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return err
		}
		notified = append(notified, payload.AppointmentID)
		return nil
	})

	start := time.Now().Add(time.Hour)
	f.appts.due = []*models.AppointmentWithSlot{
		{Appointment: models.Appointment{ID: 1, TelegramID: 500, ServiceNames: "Стрижка"}, SlotStart: start},
		{Appointment: models.Appointment{ID: 2, TelegramID: 501, ServiceNames: "Мытьё"}, SlotStart: start},
	}
	f.tg.failChats = map[int64]error{500: errSendFailed}

	f.bot.sendDueReminders(context.Background())

	if len(notified) != 1 || notified[0] != 2 {
		t.Fatalf("expected event only for appointment 2, got %v", notified)
	}
}

func TestCancelResetsToMainMenu(t *testing.T) {
	f := newTestBot(t, nil)
	ctx := context.Background()

	f.state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateEnterPhone,
		TempData:    map[string]interface{}{"client_name": "Анна"},
	}

	f.bot.handleMessage(ctx, messageUpdate(123, btnCancel))

	if step := f.state.states[123].CurrentStep; step != models.StateMainMenu {
		t.Fatalf("expected state %s, got %s", models.StateMainMenu, step)
	}
	if f.state.states[123].GetString("client_name") != "" {
		t.Fatalf("expected temp data cleared")
	}
}
