package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Шаги диалога записи клиента
const (
	StateMainMenu       = "main_menu"
	StateSelectServices = "select_services"
	StateSelectDate     = "select_date"
	StateSelectTime     = "select_time"
	StateEnterName      = "enter_name"
	StateEnterPhone     = "enter_phone"
	StateEnterBreed     = "enter_breed"
	StateEnterPetExtras = "enter_pet_extras"
	StateConfirmBooking = "confirm_booking"
)

// Шаги мастера добавления слотов (только администратор)
const (
	StateSlotDate     = "slot_date"
	StateSlotStart    = "slot_start"
	StateSlotEnd      = "slot_end"
	StateSlotDuration = "slot_duration"
	StateSlotConfirm  = "slot_confirm"
)

// Шаги диалога отзыва
const (
	StateReviewRating = "review_rating"
	StateReviewText   = "review_text"
	StateReviewPhotos = "review_photos"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// ReminderIntervalMinutes период проверки напоминаний
	ReminderIntervalMinutes = 5

	// ReminderWindowMinutes за сколько минут до начала слота отправляется напоминание
	ReminderWindowMinutes = 90

	// BookingHorizonDays горизонт показа дат для записи
	BookingHorizonDays = 14

	// DefaultSlotDurationMinutes длительность слота по умолчанию
	DefaultSlotDurationMinutes = 60

	// MaxReviewPhotos максимум фотографий в отзыве
	MaxReviewPhotos = 3

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8
)

// SlotDurationChoices варианты длительности слота, предлагаемые в мастере
var SlotDurationChoices = []int{30, 45, 60, 90, 120}
