package quiz

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	questionSheet = "Questions"
	summarySheet  = "Summary"
)

// ExportDaily writes d as an xlsx workbook with one row per question and a
// summary sheet. Answers are only revealed for questions already played.
func ExportDaily(w io.Writer, d *Daily) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", questionSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	header := []any{"#", "Category", "Prompt", "Option A", "Option B", "Option C", "Option D", "Answer", "Result"}
	if err := f.SetSheetRow(questionSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(questionSheet, "A1", "I1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, q := range d.Questions {
		row := []any{i + 1, q.Category.Title(), q.Prompt}
		for _, o := range q.Options {
			row = append(row, o)
		}
		answer, result := "", ""
		if i < len(d.Results) {
			answer = q.Answer()
			result = "wrong"
			if d.Results[i] {
				result = "correct"
			}
		}
		row = append(row, answer, result)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(questionSheet, cell, &row); err != nil {
			return fmt.Errorf("writing question %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(questionSheet, "C", "C", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(questionSheet, "D", "H", 22); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	summary := [][]any{
		{"Date", d.Seed.Date},
		{"Exam mode", d.Seed.ExamMode},
		{"Regional focus", d.Seed.Focus},
		{"Answered", fmt.Sprintf("%d/%d", d.Index, len(d.Questions))},
		{"Score", d.Score},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A5", bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
