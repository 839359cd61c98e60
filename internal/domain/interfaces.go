package domain

import (
	"context"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the persistence surface over sqlite.
type Repository interface {
	// Slots
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	ListAvailableSlots(ctx context.Context, from, to time.Time) ([]*models.Slot, error)
	ListAvailableSlotsForDate(ctx context.Context, date time.Time) ([]*models.Slot, error)
	ListAvailableDates(ctx context.Context, horizonDays int) ([]*models.DayAvailability, error)
	ClaimSlot(ctx context.Context, slotID, appointmentID int64) (*models.Slot, error)
	ReleaseSlot(ctx context.Context, slotID int64) error
	CreateSlots(ctx context.Context, slots []*models.Slot) error
	CountSlotsOnDate(ctx context.Context, date time.Time) (int, error)

	// Appointments
	CreateAppointmentWithSlot(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	UpdateAppointmentStatusGuarded(ctx context.Context, id int64, to string, from ...string) error
	MarkReminderSent(ctx context.Context, id int64) error
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.AppointmentWithSlot, error)
	ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.AppointmentWithSlot, error)
	ListUserAppointments(ctx context.Context, telegramID int64) ([]*models.AppointmentWithSlot, error)
	ListAppointmentsByStatus(ctx context.Context, status string) ([]*models.AppointmentWithSlot, error)

	// Users
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)

	// Reviews
	CreateReview(ctx context.Context, review *models.Review) error
	ListApprovedReviews(ctx context.Context, limit int) ([]*models.Review, error)
	ApproveReview(ctx context.Context, id int64) error

	// Sync queue
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	AppendAppointmentCtx(ctx context.Context, a *models.AppointmentWithSlot) error
	UpdateAppointmentStatusCtx(ctx context.Context, appointmentID int64, status string) error
	ReplaceAppointmentsSheetCtx(ctx context.Context, appointments []*models.AppointmentWithSlot) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, appointmentID int64, a *models.AppointmentWithSlot, status string) error
}

// AppointmentService owns the appointment lifecycle and the slot claims tied to it.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	ConfirmAppointment(ctx context.Context, appointmentID, adminID int64) error
	CancelAppointment(ctx context.Context, appointmentID, actorID int64) error
	CompleteAppointment(ctx context.Context, appointmentID, adminID int64) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetUserAppointments(ctx context.Context, telegramID int64) ([]*models.AppointmentWithSlot, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.AppointmentWithSlot, error)
	GetPendingAppointments(ctx context.Context) ([]*models.AppointmentWithSlot, error)
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.AppointmentWithSlot, error)
	MarkReminderSent(ctx context.Context, appointmentID int64) error
}

// SlotService generates and queries bookable slots.
type SlotService interface {
	GenerateSlots(ctx context.Context, date time.Time, dayStart, dayEnd time.Time, durationMinutes int, createdBy int64) ([]*models.Slot, error)
	PreviewSlots(date time.Time, dayStart, dayEnd time.Time, durationMinutes int) ([]*models.Slot, error)
	GetAvailableDates(ctx context.Context, horizonDays int) ([]*models.DayAvailability, error)
	GetAvailableSlotsForDate(ctx context.Context, date time.Time) ([]*models.Slot, error)
	CountSlotsOnDate(ctx context.Context, date time.Time) (int, error)
}

// CatalogService serves the groomer's service price list.
type CatalogService interface {
	GetServices() []models.Service
	GetService(id int64) (*models.Service, bool)
	TotalPrice(ids []int64) int64
	ServiceNames(ids []int64) string
}

// ReviewService captures and serves client reviews.
type ReviewService interface {
	AddReview(ctx context.Context, review *models.Review) error
	GetApprovedReviews(ctx context.Context, limit int) ([]*models.Review, error)
	ApproveReview(ctx context.Context, id int64) error
}

type UserService interface {
	IsAdmin(userID int64) bool
	IsBlacklisted(userID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}
