package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Decode reads a table from r. For xlsx only the first sheet is read. The
// first non-blank row is the header; blank rows and cells under an empty header are
// skipped. A repeated header is renamed <header>_<n> so no cell is lost.
func Decode(r io.Reader, format Format) (*Table, error) {
	var records [][]string
	var err error
	switch format {
	case FormatXLSX, "":
		records, err = readXLSX(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, []byte(utf8BOM)) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func fromRecords(records [][]string) *Table {
	t := &Table{Columns: []string{}, Rows: []Row{}}
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return t
	}

	// headers[i] is the column name for cell i, or "" when the cell is ignored
	headers := make([]string, len(records[0]))
	used := make(map[string]bool)
	for i, h := range records[0] {
		if h == "" {
			continue
		}
		name := h
		// A repeated header becomes h_2, h_3, ... skipping names already taken.
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		headers[i] = name
		t.Columns = append(t.Columns, name)
	}

	for _, record := range records[1:] {
		row := Row{}
		for i, value := range record {
			if i >= len(headers) || headers[i] == "" || value == "" {
				continue
			}
			row[headers[i]] = value
		}
		if len(row) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
