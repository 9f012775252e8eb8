// Package sheet reads and writes single-sheet tables as xlsx or csv.
//
// A Table is the header row plus sparse rows keyed by header. A cell that is
// absent from a row is simply missing from its map.
package sheet

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheetName is used when EncodeOptions.SheetName is empty.
const DefaultSheetName = "Sheet"

// Row maps a column header to its cell value.
type Row map[string]string

// Table is an ordered header plus rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// ParseFormat validates a format name. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want xlsx or csv)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension", path)
	}
	return ParseFormat(ext)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
