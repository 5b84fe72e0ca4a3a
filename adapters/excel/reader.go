// Package excel reads batches of water samples from spreadsheets and CSV files.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV sample files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

var _ ports.SampleReader = (*DataReader)(nil)

// NewDataReader creates a reader that picks CSV or XLSX from the extension
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// WithSheet selects a worksheet; the first sheet is used otherwise.
func (r *DataReader) WithSheet(name string) *DataReader {
	r.sheet = name
	return r
}

// ReadSamples implements ports.SampleReader
func (r *DataReader) ReadSamples(ctx context.Context) ([]ports.SampleRow, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no worksheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads every record of a CSV stream. Ragged rows are allowed; short
// rows surface later as missing measurements.
func ReadCSV(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// ParseRows maps a header row plus data rows onto samples. Header names are
// resolved with water.ParseParameter; columns that are not measurements (for
// example the dataset's Potability label) are ignored. Line numbers are
// 1-based and count the header.
func ParseRows(rows [][]string) ([]ports.SampleRow, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have at least a header row and one data row")
	}

	columns := make(map[water.Parameter]int, water.Count)
	for i, header := range rows[0] {
		p, err := water.ParseParameter(header)
		if err != nil {
			continue
		}
		if _, dup := columns[p]; dup {
			return nil, fmt.Errorf("column %q maps to %s, which appears twice", header, p)
		}
		columns[p] = i
	}
	for _, p := range water.Parameters {
		if _, ok := columns[p]; !ok {
			return nil, fmt.Errorf("header is missing the %s column", p)
		}
	}

	var samples []ports.SampleRow
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		samples = append(samples, parseRow(i+1, rows[i], columns))
	}

	log.Printf("[DataReader] processed %d sample rows", len(samples))
	return samples, nil
}

func parseRow(line int, cells []string, columns map[water.Parameter]int) ports.SampleRow {
	row := ports.SampleRow{Line: line, Values: make(map[string]float64, water.Count)}
	for _, p := range water.Parameters {
		i := columns[p]
		cell := ""
		if i < len(cells) {
			cell = strings.TrimSpace(cells[i])
		}
		if cell == "" {
			row.Err = fmt.Errorf("line %d: %w", line, core.NewMissingFieldError(p.String()))
			return row
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			row.Err = fmt.Errorf("line %d: %s: %q is not a number", line, p, cell)
			return row
		}
		row.Values[p.String()] = v
	}
	return row
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
