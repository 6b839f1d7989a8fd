package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	exportDateLayout = "2006-01-02"
	exportTimeLayout = "15:04"
	exportSheetName  = "Procedures"
)

var ErrExportFormatInvalid = errors.New("export invalid format")

var ExportHeaders = []string{
	"Date",
	"Time",
	"Procedure",
	"Category",
	"Downtime days",
	"Sensitive until",
	"Caution until",
	"Recovery until",
	"Memo",
}

var exportColumnWidths = []float64{12, 8, 28, 16, 14, 16, 16, 16, 40}

type ExportRow struct {
	Date           string
	Time           string
	Procedure      string
	Category       string
	DowntimeDays   int
	SensitiveUntil string
	CautionUntil   string
	RecoveryUntil  string
	Memo           string
}

type ExportService struct {
	procedures ScheduledProcedureRepository
	location   *time.Location
}

func NewExportService(procedures ScheduledProcedureRepository, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{procedures: procedures, location: location}
}

func NormalizeExportFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	default:
		return "", ErrExportFormatInvalid
	}
}

func ExportContentType(format string) string {
	if format == ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func ExportFilename(now time.Time, format string) string {
	return fmt.Sprintf("glowlog-procedures-%s.%s", now.Format(exportDateLayout), format)
}

// BuildRows lists the user's procedures in [from, to] inclusive. Nil bounds
// fall back to the supported calendar years.
func (service *ExportService) BuildRows(userID uint, from *time.Time, to *time.Time) ([]ExportRow, error) {
	rangeStart := time.Date(MinCalendarYear, time.January, 1, 0, 0, 0, 0, service.location)
	if from != nil {
		rangeStart = DateAtLocation(*from, service.location)
	}
	rangeEnd := time.Date(MaxCalendarYear+1, time.January, 1, 0, 0, 0, 0, service.location)
	if to != nil {
		rangeEnd = DateAtLocation(*to, service.location).AddDate(0, 0, 1)
	}

	entries, err := service.procedures.ListByUserRange(userID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("load procedures for export: %w", err)
	}

	rows := make([]ExportRow, 0, len(entries))
	for _, entry := range entries {
		window, err := ProcedureDowntime(entry, service.location)
		if err != nil {
			return nil, err
		}
		local := entry.ScheduledAt.In(service.location)
		rows = append(rows, ExportRow{
			Date:           local.Format(exportDateLayout),
			Time:           local.Format(exportTimeLayout),
			Procedure:      entry.Procedure.Name,
			Category:       entry.Procedure.Category,
			DowntimeDays:   window.TotalDays(),
			SensitiveUntil: lastExportDay(window.SensitiveDays),
			CautionUntil:   lastExportDay(window.CautionDays),
			RecoveryUntil:  lastExportDay(window.RecoveryDays),
			Memo:           entry.Memo,
		})
	}
	return rows, nil
}

func (service *ExportService) Write(w io.Writer, format string, rows []ExportRow) error {
	switch format {
	case ExportFormatCSV:
		return WriteExportCSV(w, rows)
	case ExportFormatXLSX:
		return WriteExportXLSX(w, rows)
	default:
		return ErrExportFormatInvalid
	}
}

func WriteExportCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteExportXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F3E6FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, 0, len(ExportHeaders))
	for _, title := range ExportHeaders {
		header = append(header, title)
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	lastHeaderCell, err := excelize.CoordinatesToCellName(len(ExportHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for index, width := range exportColumnWidths {
		column, err := excelize.ColumnNumberToName(index + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheetName, column, column, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for index, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, index+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Date,
			row.Time,
			row.Procedure,
			row.Category,
			row.DowntimeDays,
			row.SensitiveUntil,
			row.CautionUntil,
			row.RecoveryUntil,
			row.Memo,
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", index+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (row ExportRow) values() []string {
	return []string{
		row.Date,
		row.Time,
		row.Procedure,
		row.Category,
		strconv.Itoa(row.DowntimeDays),
		row.SensitiveUntil,
		row.CautionUntil,
		row.RecoveryUntil,
		row.Memo,
	}
}

func lastExportDay(days []time.Time) string {
	if len(days) == 0 {
		return ""
	}
	return days[len(days)-1].Format(exportDateLayout)
}
