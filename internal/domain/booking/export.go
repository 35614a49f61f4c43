package booking

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

var exportColumns = []string{"Date", "Time", "Name", "Phone", "Service", "Status", "Notes", "Booking ID", "Created"}

// ExportXLSX writes barberID's bookings matching f as a spreadsheet.
func (s *Service) ExportXLSX(w io.Writer, barberID string, f BookingFilter) error {
	bookings, err := s.Bookings(barberID, f)
	if err != nil {
		return err
	}
	return WriteXLSX(w, barberID, bookings, s.cfg.Now().Location())
}

// WriteXLSX renders bookings on a single sheet named after the barber.
func WriteXLSX(w io.Writer, sheet string, bookings []Booking, loc *time.Location) error {
	file := excelize.NewFile()
	defer file.Close()

	// Sheet names are limited to 31 characters
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if sheet == "" {
		sheet = "Bookings"
	}
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(file, sheet, 1, toCells(exportColumns)); err != nil {
		return err
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = file.SetCellStyle(sheet, "A1", end, style)
	}

	for i, b := range bookings {
		created := ""
		if b.CreatedAt > 0 {
			created = time.UnixMilli(b.CreatedAt).In(loc).Format("2006-01-02 15:04")
		}
		row := []interface{}{
			b.Date, schedule.FormatTime12(b.Time), b.Name, b.Phone, b.Service,
			string(b.Status), b.Notes, b.ID, created,
		}
		if err := writeRow(file, sheet, i+2, row); err != nil {
			return err
		}
	}

	return file.Write(w)
}

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
