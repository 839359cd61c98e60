package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"groombot/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	appointmentsSheetName = "Appointments"
	appointmentsColumns   = "A:M"
	statusColumn          = "J"
	updatedAtColumn       = "M"
)

var errRowNotFound = errors.New("appointment row not found")

// SheetsService mirrors appointments into a Google spreadsheet. Row lookups
// for an appointment id go through an in-memory cache of column A.
type SheetsService struct {
	service             *sheets.Service
	appointmentsSheetID string
	rowCache            map[int64]int
	cacheMu             sync.RWMutex
}

func NewSheetsService(credentialsFile, appointmentsSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:             srv,
		appointmentsSheetID: appointmentsSheetID,
		rowCache:            make(map[int64]int),
	}

	// Прогрев кеша строк в фоне
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// AppendAppointmentCtx добавляет новую запись в конец листа
func (s *SheetsService) AppendAppointmentCtx(ctx context.Context, a *models.AppointmentWithSlot) error {
	if a == nil {
		return fmt.Errorf("appointment is nil")
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{appointmentRowValues(a)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.appointmentsSheetID, appointmentsSheetName+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpdateAppointmentStatusCtx updates status (and UpdatedAt) for a row.
func (s *SheetsService) UpdateAppointmentStatusCtx(ctx context.Context, appointmentID int64, status string) error {
	rowIdx, err := s.FindAppointmentRow(ctx, appointmentID)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	statusRange := fmt.Sprintf("%s!%s%d:%s%d", appointmentsSheetName, statusColumn, rowIdx, statusColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.appointmentsSheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!%s%d:%s%d", appointmentsSheetName, updatedAtColumn, rowIdx, updatedAtColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.appointmentsSheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// ReplaceAppointmentsSheetCtx полностью перезаписывает лист записей
func (s *SheetsService) ReplaceAppointmentsSheetCtx(ctx context.Context, appointments []*models.AppointmentWithSlot) error {
	clearRange := appointmentsSheetName + "!" + appointmentsColumns
	if _, err := s.service.Spreadsheets.Values.Clear(s.appointmentsSheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to clear sheet: %v", err)
	}

	values := [][]interface{}{
		{"ID", "Telegram ID", "Client", "Phone", "Pet", "Breed", "Services", "Slot Start", "Slot End", "Status", "Price", "Created At", "Updated At"},
	}
	for _, a := range appointments {
		values = append(values, appointmentRowValues(a))
	}

	rangeData := fmt.Sprintf("%s!A1:M%d", appointmentsSheetName, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.appointmentsSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err == nil {
		s.ClearCache()
	}
	return err
}

// FindAppointmentRow locates row index (1-based) for an appointment id in
// column A, consulting the cache first.
func (s *SheetsService) FindAppointmentRow(ctx context.Context, appointmentID int64) (int, error) {
	if appointmentID == 0 {
		return 0, fmt.Errorf("appointment id is required")
	}

	if row, ok := s.getCachedRow(appointmentID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == appointmentID {
				rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
				s.setCachedRow(appointmentID, rowIdx)
				return rowIdx, nil
			}
		case string:
			if v == fmt.Sprintf("%d", appointmentID) {
				rowIdx := i + 1
				s.setCachedRow(appointmentID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func appointmentRowValues(a *models.AppointmentWithSlot) []interface{} {
	return []interface{}{
		a.ID,
		a.TelegramID,
		a.ClientName,
		a.Phone,
		a.PetName,
		a.PetBreed,
		a.ServiceNames,
		a.SlotStart.Format("2006-01-02 15:04"),
		a.SlotEnd.Format("2006-01-02 15:04"),
		a.Status,
		a.TotalPrice,
		a.CreatedAt.Format("2006-01-02 15:04:05"),
		a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Обертки без контекста под интерфейс воркера

func (s *SheetsService) AppendAppointment(a *models.AppointmentWithSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.AppendAppointmentCtx(ctx, a)
}

func (s *SheetsService) UpdateAppointmentStatus(appointmentID int64, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.UpdateAppointmentStatusCtx(ctx, appointmentID, status)
}

func (s *SheetsService) ReplaceAppointmentsSheet(appointments []*models.AppointmentWithSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return s.ReplaceAppointmentsSheetCtx(ctx, appointments)
}
