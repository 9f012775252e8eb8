package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in CSV files.
const utf8BOM = "\ufeff"

// EncodeOptions controls Encode.
type EncodeOptions struct {
	Format    Format
	SheetName string // xlsx only
}

// Encode writes t to w. Missing cells are left empty.
func Encode(w io.Writer, t *Table, opts EncodeOptions) error {
	switch opts.Format {
	case FormatXLSX, "":
		return encodeXLSX(w, t, opts.SheetName)
	case FormatCSV:
		return encodeCSV(w, t)
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

func encodeXLSX(w io.Writer, t *Table, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	// NewFile starts with Sheet1; drop it unless that is the name we asked for
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
		index, err = f.GetSheetIndex(sheetName)
		if err != nil {
			return fmt.Errorf("failed to locate sheet: %w", err)
		}
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStr(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, columnWidth(header)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, row := range t.Rows {
		for col, header := range t.Columns {
			value, ok := row[header]
			if !ok || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			// Cells are always text so phone numbers keep their leading zeros
			if err := f.SetCellStr(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if len(t.Columns) > 0 {
		if err := f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze panes: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func encodeCSV(w io.Writer, t *Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, header := range t.Columns {
			record[i] = row[header]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnWidth sizes a column from its header, counting wide runes twice.
func columnWidth(header string) float64 {
	width := 0
	for _, r := range header {
		if r > 0x2E80 {
			width += 2
		} else {
			width++
		}
	}
	if width < 12 {
		return 14
	}
	return float64(width) + 4
}
