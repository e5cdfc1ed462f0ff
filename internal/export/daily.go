// Package export renders reports as spreadsheet documents.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/autoservice-bot/internal/domain"
)

const dailySheet = "Отчет"

var dailyHeaders = []any{"Дата", "Заказов", "Услуги, ₽", "Запчасти, ₽", "Итого, ₽"}

// DailyFileName returns the document name for a report generated at t.
func DailyFileName(t time.Time) string {
	return fmt.Sprintf("orders_report_%s.xlsx", t.Format("20060102_1504"))
}

// DailyXLSX writes the per-day income report into a single-sheet workbook.
// Money columns are written as fixed two-decimal strings to keep them exact.
func DailyXLSX(rows []domain.DailyIncome) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return nil, fmt.Errorf("export: sheet: %w", err)
	}
	if err := f.SetSheetRow(dailySheet, "A1", &dailyHeaders); err != nil {
		return nil, fmt.Errorf("export: header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: style: %w", err)
	}
	if err := f.SetCellStyle(dailySheet, "A1", "E1", style); err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: cell: %w", err)
		}
		row := []any{
			r.Date.Format("2006-01-02"),
			r.Orders,
			r.ServicesIncome.StringFixed(2),
			r.PartsIncome.StringFixed(2),
			r.TotalIncome.StringFixed(2),
		}
		if err := f.SetSheetRow(dailySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(dailySheet, "A", "A", 14); err != nil {
		return nil, fmt.Errorf("export: width: %w", err)
	}
	if err := f.SetColWidth(dailySheet, "C", "E", 16); err != nil {
		return nil, fmt.Errorf("export: width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}
