package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"impactproof/domain/record"
)

// FileReader reads CSV and Excel files into ordered raw rows.
type FileReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
	sheet    string // xlsx only; first sheet when empty
}

// NewFileReader creates a reader that picks the format from the extension
func NewFileReader(filePath, sheet string) *FileReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &FileReader{filePath: filePath, fileType: fileType, sheet: sheet}
}

// Source names the dataset origin
func (r *FileReader) Source() string {
	return r.filePath
}

// Read returns every row of the file in file order
func (r *FileReader) Read(ctx context.Context) ([]record.RawRow, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readExcel()
	}
}

func (r *FileReader) readCSV() ([]record.RawRow, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return CSVRows(f)
}

// CSVRows parses CSV content from any reader into ordered raw rows. The
// first record is the header.
func CSVRows(src io.Reader) ([]record.RawRow, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; standardization classifies the gaps

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("csv input has no data rows")
	}
	return rowsFromCells(raw[0], raw[1:]), nil
}

func (r *FileReader) readExcel() ([]record.RawRow, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}
	return rowsFromCells(raw[0], raw[1:]), nil
}

func rowsFromCells(headers []string, body [][]string) []record.RawRow {
	rows := make([]record.RawRow, 0, len(body))
	for _, cells := range body {
		row := make(record.RawRow, len(headers))
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows
}
