package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groombot/internal/api"
	"groombot/internal/config"
	"groombot/internal/database"
	"groombot/internal/logging"
	"groombot/internal/metrics"
	"groombot/internal/models"
	"groombot/internal/service"

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

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	catalogService := service.NewCatalogService(cfg.Services)
	slotService := service.NewSlotService(db, nil, &logger)
	appointmentService := service.NewAppointmentService(db, catalogService, nil, nil, &logger)

	httpServer := api.NewHTTPServer(cfg.API, slotService, appointmentService, catalogService, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		port := cfg.Monitoring.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.Serve(ctx, port, &logger)
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	if len(cfg.Services) == 0 {
		servicesPath := os.Getenv("SERVICES_PATH")
		if servicesPath == "" {
			servicesPath = "configs/services.yaml"
		}
		data, err := os.ReadFile(servicesPath)
		if err != nil {
			logger.Error().Err(err).Str("services_path", servicesPath).Msg("read services")
			return nil, zerolog.Logger{}, closer, err
		}

		var servicesConfig struct {
			Services []models.Service `yaml:"services"`
		}
		if err := yaml.Unmarshal(data, &servicesConfig); err != nil {
			logger.Error().Err(err).Msg("parse services")
			return nil, zerolog.Logger{}, closer, err
		}
		if err := config.ValidateServices(servicesConfig.Services); err != nil {
			logger.Error().Err(err).Msg("services validation failed")
			return nil, zerolog.Logger{}, closer, err
		}
		cfg.Services = servicesConfig.Services
	}

	return cfg, logger, closer, nil
}
