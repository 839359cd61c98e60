package config

import (
	"os"
	"path/filepath"
	"testing"

	"groombot/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("GROOMBOT_TEST_TOKEN", "test_token")

	yamlContent := `
telegram:
  bot_token: "${GROOMBOT_TEST_TOKEN}"
database:
  path: "test.db"
services:
  - id: 1
    name: "Стрижка"
    price: 2500
    duration_minutes: 60
    available: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Переменная окружения разворачивается до парсинга YAML
	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}

	if len(cfg.Services) != 1 || cfg.Services[0].ID != 1 {
		t.Errorf("expected 1 service with ID 1, got %+v", cfg.Services)
	}

	if cfg.Bot.ReminderIntervalMinutes != models.ReminderIntervalMinutes {
		t.Errorf("expected default reminder interval %d, got %d",
			models.ReminderIntervalMinutes, cfg.Bot.ReminderIntervalMinutes)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{{ID: 1, Name: "Стрижка"}},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: ""},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: ""},
			},
			wantErr: true,
		},
		{
			name: "duplicate service id",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{
					{ID: 1, Name: "Стрижка"},
					{ID: 1, Name: "Мытьё"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Bot.ReminderIntervalMinutes != models.ReminderIntervalMinutes {
		t.Errorf("expected default reminder interval %d, got %d",
			models.ReminderIntervalMinutes, cfg.Bot.ReminderIntervalMinutes)
	}
	if cfg.Bot.ReminderWindowMinutes != models.ReminderWindowMinutes {
		t.Errorf("expected default reminder window %d, got %d",
			models.ReminderWindowMinutes, cfg.Bot.ReminderWindowMinutes)
	}
	if cfg.Bot.BookingHorizonDays != models.BookingHorizonDays {
		t.Errorf("expected default booking horizon %d, got %d",
			models.BookingHorizonDays, cfg.Bot.BookingHorizonDays)
	}
	if cfg.Bot.RateLimitMessages != models.RateLimitMessages {
		t.Errorf("expected default rate limit messages %d, got %d",
			models.RateLimitMessages, cfg.Bot.RateLimitMessages)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default auth header x-api-key, got %s", cfg.API.Auth.HeaderAPIKey)
	}
}

func TestValidateServices(t *testing.T) {
	tests := []struct {
		name     string
		services []models.Service
		wantErr  bool
	}{
		{
			name: "valid services",
			services: []models.Service{
				{ID: 1, Name: "Стрижка", Price: 2500},
				{ID: 2, Name: "Мытьё", Price: 1000},
			},
			wantErr: false,
		},
		{
			name: "duplicate id",
			services: []models.Service{
				{ID: 1, Name: "Стрижка"},
				{ID: 1, Name: "Мытьё"},
			},
			wantErr: true,
		},
		{
			name:     "id zero",
			services: []models.Service{{ID: 0, Name: "Стрижка"}},
			wantErr:  true,
		},
		{
			name:     "negative price",
			services: []models.Service{{ID: 1, Name: "Стрижка", Price: -1}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServices(tt.services)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServices() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
