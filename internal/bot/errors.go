package bot

import (
	"errors"

	"groombot/internal/database"
	"groombot/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSlotUnavailable) {
		return "⚠️ Извините, это время уже заняли. Пожалуйста, выберите другой слот."
	}

	if errors.Is(err, database.ErrSlotNotFound) {
		return "⚠️ Выбранный слот больше не существует. Пожалуйста, выберите время заново."
	}

	if errors.Is(err, database.ErrPastDate) {
		return "⚠️ Нельзя записаться на прошедшее время."
	}

	if errors.Is(err, database.ErrInvalidTransition) {
		return "⚠️ Статус записи уже изменился. Обновите список и попробуйте еще раз."
	}

	if errors.Is(err, database.ErrAppointmentNotFound) {
		return "⚠️ Запись не найдена. Возможно, она была удалена."
	}

	if errors.Is(err, database.ErrInvalidWindow) {
		return "⚠️ Неверный интервал времени. Проверьте начало, конец и длительность."
	}

	if errors.Is(err, service.ErrNoServicesSelected) {
		return "⚠️ Выберите хотя бы одну услугу."
	}

	if errors.Is(err, service.ErrMissingContact) {
		return "⚠️ Для записи нужны имя и номер телефона."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже или свяжитесь с салоном."
}
