package ats

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	keywordsSheet = "Keywords"
)

// ReportMeta labels the workbook.
type ReportMeta struct {
	JobTitle    string
	Company     string
	GeneratedAt time.Time
}

// WriteWorkbook writes report as an .xlsx workbook with a summary sheet and a
// per-keyword sheet.
func WriteWorkbook(w io.Writer, report Report, meta ReportMeta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(keywordsSheet); err != nil {
		return err
	}
	if err := writeSummarySheet(f, report, meta); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeKeywordsSheet(f, report); err != nil {
		return fmt.Errorf("failed to create keywords sheet: %w", err)
	}
	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, report Report, meta ReportMeta) error {
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "ATS Keyword Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	rows := []struct {
		label string
		value any
	}{
		{"Job Title:", meta.JobTitle},
		{"Company:", meta.Company},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"ATS Score:", report.Score},
		{"Matched Keywords:", len(report.Matched)},
		{"Missing Keywords:", len(report.Missing)},
	}
	for i, r := range rows {
		row := i + 3
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r.label)
		f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r.value)
	}
	return nil
}

func writeKeywordsSheet(f *excelize.File, report Report) error {
	f.SetColWidth(keywordsSheet, "A", "A", 30)
	f.SetColWidth(keywordsSheet, "B", "B", 12)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	matchedStyle, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1}})
	if err != nil {
		return err
	}
	missingStyle, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1}})
	if err != nil {
		return err
	}

	f.SetCellValue(keywordsSheet, "A1", "Keyword")
	f.SetCellValue(keywordsSheet, "B1", "Status")
	f.SetCellStyle(keywordsSheet, "A1", "B1", headerStyle)

	row := 2
	write := func(keywords []string, status string, style int) {
		for _, kw := range keywords {
			f.SetCellValue(keywordsSheet, fmt.Sprintf("A%d", row), kw)
			f.SetCellValue(keywordsSheet, fmt.Sprintf("B%d", row), status)
			f.SetCellStyle(keywordsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), style)
			row++
		}
	}
	write(report.Matched, "Matched", matchedStyle)
	write(report.Missing, "Missing", missingStyle)
	return nil
}
