package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"groombot/internal/api"
	"groombot/internal/bot"
	"groombot/internal/config"
	"groombot/internal/database"
	"groombot/internal/domain"
	"groombot/internal/events"
	"groombot/internal/google"
	"groombot/internal/logging"
	"groombot/internal/metrics"
	"groombot/internal/models"
	"groombot/internal/repository"
	"groombot/internal/service"
	"groombot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)
	redisClient, stateService := initStateService(ctx, cfg, &logger)

	// Воркер синхронизации Google Sheets
	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, nil)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeAppointmentEvents(eventBus, &logger)

	// Бизнес-сервисы
	catalogService := service.NewCatalogService(cfg.Services)
	userService := service.NewUserService(db, cfg, &logger)
	slotService := service.NewSlotService(db, eventBus, &logger)
	reviewService := service.NewReviewService(db, &logger)

	// Типизированный nil в интерфейсе ломает проверки на nil, поэтому
	// присваиваем воркер только когда он реально создан
	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}
	appointmentService := service.NewAppointmentService(db, catalogService, eventBus, syncWorker, &logger)

	botMetrics := bot.NewMetrics()

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, slotService, appointmentService, catalogService, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startBot(ctx, cfg, stateService, appointmentService, slotService,
		catalogService, userService, reviewService, sheetsService, eventBus, botMetrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	// Каталог услуг может жить в отдельном файле
	if len(cfg.Services) == 0 {
		services, err := loadServices(&logger)
		if err != nil {
			return nil, zerolog.Logger{}, closer, err
		}
		cfg.Services = services
	}

	return cfg, logger, closer, nil
}

func loadServices(logger *zerolog.Logger) ([]models.Service, error) {
	servicesPath := os.Getenv("SERVICES_PATH")
	if servicesPath == "" {
		servicesPath = "configs/services.yaml"
	}

	data, err := os.ReadFile(servicesPath)
	if err != nil {
		logger.Error().Err(err).Str("services_path", servicesPath).Msgf("Ошибка чтения %s", servicesPath)
		return nil, err
	}

	var servicesConfig struct {
		Services []models.Service `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &servicesConfig); err != nil {
		logger.Error().Err(err).Msg("Ошибка парсинга services.yaml")
		return nil, err
	}

	if err := config.ValidateServices(servicesConfig.Services); err != nil {
		logger.Error().Err(err).Msg("Services validation failed")
		return nil, err
	}

	return servicesConfig.Services, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	return nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.AppointmentsSpreadSheetID == "" {
		logger.Info().Msg("Google Sheets не настроен, синхронизация отключена")
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.GoogleCredentialsFile,
		cfg.Google.AppointmentsSpreadSheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Google Sheets init failed, continuing without sheets")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized")
	return sheetsService
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultRedisTTL) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go metrics.Serve(ctx, port, logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	appointmentService *service.AppointmentService,
	slotService *service.SlotService,
	catalogService *service.CatalogService,
	userService *service.UserService,
	reviewService *service.ReviewService,
	sheetsService *google.SheetsService,
	eventBus *events.EventBus,
	botMetrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	var sheets domain.SheetsWriter
	if sheetsService != nil {
		sheets = sheetsService
	}

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, appointmentService, slotService,
		catalogService, userService, reviewService, sheets, eventBus,
		botMetrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.StartReminders(ctx)
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func subscribeAppointmentEvents(bus *events.EventBus, logger *zerolog.Logger) {
	if bus == nil {
		return
	}

	auditLog := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("appointment event")
		return nil
	}

	bus.Subscribe(events.EventAppointmentCreated, auditLog)
	bus.Subscribe(events.EventAppointmentConfirmed, auditLog)
	bus.Subscribe(events.EventAppointmentCancelled, auditLog)
	bus.Subscribe(events.EventAppointmentCompleted, auditLog)
	bus.Subscribe(events.EventReminderSent, auditLog)
}
