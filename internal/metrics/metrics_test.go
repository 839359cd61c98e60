package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register должен быть безопасен при повторных вызовах
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
		IncAppointmentCreated()
		IncSlotClaimConflict()
		IncReminderSent()
	})
}
