package Reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func renderExcel(tables []Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", t.Sheet, err)
		}

		if err := writeSheet(f, t, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	for col, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("locate %s header: %w", t.Sheet, err)
		}
		if err := f.SetCellValue(t.Sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", t.Sheet, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return fmt.Errorf("locate %s last column: %w", t.Sheet, err)
	}
	if err := f.SetCellStyle(t.Sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", t.Sheet, err)
	}
	if err := f.SetColWidth(t.Sheet, "A", last, 18); err != nil {
		return fmt.Errorf("size %s columns: %w", t.Sheet, err)
	}

	for r, row := range t.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return fmt.Errorf("locate %s row %d: %w", t.Sheet, r+1, err)
			}
			if m, ok := value.(Money); ok {
				value = float64(m)
			}
			if err := f.SetCellValue(t.Sheet, cell, value); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.Sheet, r+1, err)
			}
		}
	}
	return nil
}
