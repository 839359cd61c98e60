package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"groombot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// handleWeekExport выгружает записи ближайшей недели в xlsx и отправляет файл
func (b *Bot) handleWeekExport(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 7)

	filePath, err := b.exportToExcel(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Msg("export error")
		b.sendMessage(chatID, "❌ Не удалось сформировать экспорт: "+err.Error())
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("Записи с %s по %s", start.Format("02.01.2006"), end.AddDate(0, 0, -1).Format("02.01.2006"))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("send export document error")
		b.sendMessage(chatID, "❌ Файл сформирован, но отправить не удалось.")
	}
}

// exportToExcel создает Excel файл с записями за период
func (b *Bot) exportToExcel(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	appointments, err := b.appointmentService.GetAppointmentsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting appointments: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Записи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		startDate.Format("02.01.2006"), endDate.AddDate(0, 0, -1).Format("02.01.2006")))

	headers := []string{"№", "Дата", "Время", "Клиент", "Телефон", "Питомец", "Порода", "Услуги", "Цена, ₽", "Статус"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A2", "J2", headerStyle)

	for i, a := range appointments {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), a.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), a.SlotStart.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("%s–%s",
			a.SlotStart.Format("15:04"), a.SlotEnd.Format("15:04")))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), a.ClientName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), "+"+a.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), a.PetName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), a.PetBreed)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), a.ServiceNames)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), a.TotalPrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), statusTitle(a.Status))

		if styleID, err := b.exportRowStyle(f, a.Status); err == nil {
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("J%d", row), styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 6)
	_ = f.SetColWidth(sheetName, "B", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "H", 24)
	_ = f.SetColWidth(sheetName, "I", "J", 14)

	_ = f.MergeCell(sheetName, "A1", "J1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("appointments_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.AddDate(0, 0, -1).Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("appointments", len(appointments)).Msg("Excel file created")
	return filePath, nil
}

// exportRowStyle цвет строки по статусу записи
func (b *Bot) exportRowStyle(f *excelize.File, status string) (int, error) {
	color := "#FFFFFF"
	switch status {
	case models.StatusConfirmed:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusCancelled:
		color = "#FFC7CE"
	}

	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
	})
}
