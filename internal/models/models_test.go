package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStateGetters(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	state := &UserState{
		UserID:      42,
		CurrentStep: StateSelectTime,
		TempData: map[string]interface{}{
			"slot_id":  int64(7),
			"date":     now.Format(time.RFC3339),
			"name":     "Анна",
			"cart":     []int64{1, 3},
			"photos":   []string{"file1", "file2"},
			"float_id": float64(9),
		},
	}

	assert.Equal(t, int64(7), state.GetInt64("slot_id"))
	assert.Equal(t, int64(9), state.GetInt64("float_id"))
	assert.Equal(t, "Анна", state.GetString("name"))
	assert.True(t, state.GetTime("date").Equal(now))
	assert.Equal(t, []int64{1, 3}, state.GetInt64Slice("cart"))
	assert.Equal(t, []string{"file1", "file2"}, state.GetStringSlice("photos"))

	assert.Zero(t, state.GetInt64("missing"))
	assert.Empty(t, state.GetString("missing"))
	assert.True(t, state.GetTime("missing").IsZero())
}

func TestUserStateGettersAfterJSONRoundTrip(t *testing.T) {
	state := &UserState{
		UserID:      1,
		CurrentStep: StateSelectServices,
		TempData: map[string]interface{}{
			"cart":    []int64{2, 5, 8},
			"slot_id": int64(11),
			"photos":  []string{"a"},
		},
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded UserState
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// json turns int64 into float64 and slices into []interface{}
	assert.Equal(t, []int64{2, 5, 8}, decoded.GetInt64Slice("cart"))
	assert.Equal(t, int64(11), decoded.GetInt64("slot_id"))
	assert.Equal(t, []string{"a"}, decoded.GetStringSlice("photos"))
}

func TestJoinSplitIDs(t *testing.T) {
	assert.Equal(t, "", JoinIDs(nil))
	assert.Equal(t, "1,2,3", JoinIDs([]int64{1, 2, 3}))
	assert.Equal(t, []int64{1, 2, 3}, SplitIDs("1,2,3"))
	assert.Nil(t, SplitIDs(""))
	assert.Equal(t, []int64{4}, SplitIDs("4,junk"))
}

func TestSlotIsAvailable(t *testing.T) {
	now := time.Now()
	free := &Slot{StartTime: now.Add(time.Hour)}
	assert.True(t, free.IsAvailable(now))

	booked := &Slot{StartTime: now.Add(time.Hour), IsBooked: true}
	assert.False(t, booked.IsAvailable(now))

	past := &Slot{StartTime: now.Add(-time.Minute)}
	assert.False(t, past.IsAvailable(now))
}

func TestAppointmentIsTerminal(t *testing.T) {
	for status, terminal := range map[string]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusCancelled: true,
		StatusCompleted: true,
	} {
		a := &Appointment{Status: status}
		assert.Equal(t, terminal, a.IsTerminal(), status)
	}
}
