package bot

import (
	"context"
	"time"
)

// withRecovery страхует обработку обновления: паника одного апдейта не
// должна останавливать цикл бота.
func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Паника в обработчике обновления")
		}
	}()
	handler()
}

// trackActivity отмечает активность клиента в фоне, не задерживая
// основной цикл.
func (b *Bot) trackActivity(userID int64) {
	if userID == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.userService.UpdateUserActivity(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Ошибка обновления активности клиента")
		}
	}()
}
