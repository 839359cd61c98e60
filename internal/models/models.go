package models

import "time"

// UserState is the per-user conversation state persisted between updates.
// TempData survives JSON round-trips through Redis, so the typed getters below
// tolerate the number/string forms encoding/json produces.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

func (s *UserState) GetInt64(key string) int64 {
	if s.TempData == nil {
		return 0
	}
	val, ok := s.TempData[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s *UserState) GetInt(key string) int {
	return int(s.GetInt64(key))
}

func (s *UserState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

func (s *UserState) GetTime(key string) time.Time {
	if s.TempData == nil {
		return time.Time{}
	}
	switch v := s.TempData[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// GetInt64Slice reads a list of ids (the service cart) from TempData.
func (s *UserState) GetInt64Slice(key string) []int64 {
	if s.TempData == nil {
		return nil
	}
	switch v := s.TempData[key].(type) {
	case []int64:
		return v
	case []interface{}:
		var ids []int64
		for _, item := range v {
			switch val := item.(type) {
			case int64:
				ids = append(ids, val)
			case float64:
				ids = append(ids, int64(val))
			case int:
				ids = append(ids, int64(val))
			}
		}
		return ids
	default:
		return nil
	}
}

// GetStringSlice reads a list of strings (review photo file IDs) from TempData.
func (s *UserState) GetStringSlice(key string) []string {
	if s.TempData == nil {
		return nil
	}
	switch v := s.TempData[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// DayAvailability is the number of free future slots on one calendar day.
type DayAvailability struct {
	Date      time.Time `json:"date"`
	FreeSlots int64     `json:"free_slots"`
}
