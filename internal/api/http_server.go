package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"groombot/internal/config"
	"groombot/internal/domain"
	"groombot/internal/metrics"
	"groombot/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPServer exposes a read-only HTTP API for the salon website:
// free slots, day availability and the service catalog.
type HTTPServer struct {
	cfg                config.APIConfig
	slotService        domain.SlotService
	appointmentService domain.AppointmentService
	catalogService     domain.CatalogService
	server             *http.Server
	auth               *HTTPAuth
	logger             zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	slotService domain.SlotService,
	appointmentService domain.AppointmentService,
	catalogService domain.CatalogService,
	logger *zerolog.Logger,
) *HTTPServer {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "http_api").Logger()
	}

	srv := &HTTPServer{
		cfg:                cfg,
		slotService:        slotService,
		appointmentService: appointmentService,
		catalogService:     catalogService,
		logger:             l,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/appointments", srv.handleAppointments)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	root := http.NewServeMux()
	root.HandleFunc("/health", srv.handleHealth)
	root.Handle("/", handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler возвращает корневой обработчик, используется в тестах
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSlots свободные слоты на дату: GET /api/v1/slots?date=YYYY-MM-DD
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("slots")

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slots, err := s.slotService.GetAvailableSlotsForDate(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("get slots error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type slotDTO struct {
		ID    int64  `json:"id"`
		Date  string `json:"date"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			ID:    slot.ID,
			Date:  slot.StartTime.Format("2006-01-02"),
			Start: slot.StartTime.Format("15:04"),
			End:   slot.EndTime.Format("15:04"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

// handleAvailability сводка свободных слотов по дням:
// GET /api/v1/availability?days=N
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("availability")

	days := models.BookingHorizonDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = parsed
	}

	dates, err := s.slotService.GetAvailableDates(r.Context(), days)
	if err != nil {
		s.logger.Error().Err(err).Msg("get availability error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type dayDTO struct {
		Date      string `json:"date"`
		FreeSlots int64  `json:"free_slots"`
	}
	out := make([]dayDTO, 0, len(dates))
	for _, d := range dates {
		out = append(out, dayDTO{Date: d.Date.Format("2006-01-02"), FreeSlots: d.FreeSlots})
	}

	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

// handleServices каталог услуг салона
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("services")

	writeJSON(w, http.StatusOK, map[string]any{"services": s.catalogService.GetServices()})
}

// handleAppointments записи на дату, требует права read:appointments:
// GET /api/v1/appointments?date=YYYY-MM-DD
func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("appointments")

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	appointments, err := s.appointmentService.GetAppointmentsByDateRange(r.Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("get appointments error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type appointmentDTO struct {
		ID         int64  `json:"id"`
		Start      string `json:"start"`
		End        string `json:"end"`
		ClientName string `json:"client_name"`
		PetBreed   string `json:"pet_breed"`
		Services   string `json:"services"`
		TotalPrice int64  `json:"total_price"`
		Status     string `json:"status"`
	}
	out := make([]appointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, appointmentDTO{
			ID:         a.ID,
			Start:      a.SlotStart.Format("15:04"),
			End:        a.SlotEnd.Format("15:04"),
			ClientName: a.ClientName,
			PetBreed:   a.PetBreed,
			Services:   a.ServiceNames,
			TotalPrice: a.TotalPrice,
			Status:     a.Status,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format; expected YYYY-MM-DD", name)
	}
	return date, nil
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  []config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, clients: cfg.Auth.APIKeys}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled || !a.cfg.HTTP.Enabled {
			writeError(w, http.StatusServiceUnavailable, "api disabled")
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = fmt.Errorf("permission denied")

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	client, ok := a.lookupClient(apiKey)
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

// lookupClient сравнивает ключи за постоянное время
func (a *HTTPAuth) lookupClient(apiKey string) (config.APIClientKey, bool) {
	var found config.APIClientKey
	matched := false
	for _, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(apiKey)) == 1 {
			found = c
			matched = true
		}
	}
	return found, matched
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermission(r)
	if required == "" {
		return nil
	}
	// Пустой список прав трактуется как allow-all
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	switch r.URL.Path {
	case "/api/v1/slots", "/api/v1/availability":
		return "read:availability"
	case "/api/v1/services":
		return "read:services"
	case "/api/v1/appointments":
		return "read:appointments"
	}
	return ""
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	lim := a.getLimiter(a.clientKey(r))
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) apiKeyHeader() string {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}
	return header
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
