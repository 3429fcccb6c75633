package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"clinsample/internal"
	"clinsample/internal/errors"
	"clinsample/ports"
)

// PlanReader reads batch plans from Excel and CSV files
type PlanReader struct {
	logger *internal.Logger
}

var _ ports.PlanReader = (*PlanReader)(nil)

// NewPlanReader creates a plan reader that handles both Excel and CSV files
func NewPlanReader(logger *internal.Logger) *PlanReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PlanReader{logger: logger}
}

// ReadPlan reads a plan sheet: a header row naming label, kind, optional
// design columns and the calculator's input fields, then one calculation per row
func (r *PlanReader) ReadPlan(ctx context.Context, path string) ([]ports.PlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData(path)
	if err != nil {
		return nil, errors.PlanError(path, err)
	}
	rows, err := planRows(data)
	if err != nil {
		return nil, errors.PlanError(path, err)
	}
	return rows, nil
}

// ReadData reads the raw plan sheet from Excel or CSV files
func (r *PlanReader) ReadData(path string) (*SheetData, error) {
	fileType := fileTypeOf(path)
	r.logger.Debug("[PlanReader] Reading %s file: %s", fileType, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(fileType), path)
	}

	switch fileType {
	case "csv":
		return r.readCSVData(path)
	case "xlsx":
		return r.readExcelData(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// readExcelData reads the Plan sheet, falling back to the first sheet
func (r *PlanReader) readExcelData(path string) (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := PlanSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[PlanReader] Sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s must have a header row and at least one calculation", sheet)
	}
	return processRows(rows), nil
}

// readCSVData reads CSV plans
func (r *PlanReader) readCSVData(path string) (*SheetData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[PlanReader] CSV file read (%d rows)", len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have a header row and at least one calculation")
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into SheetData, skipping blank lines
func processRows(rows [][]string) *SheetData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	data := &SheetData{Headers: headers}
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		for j, cell := range rows[i] {
			if j < len(headers) && headers[j] != "" {
				if v := strings.TrimSpace(cell); v != "" {
					rowData[headers[j]] = v
				}
			}
		}
		if len(rowData) == 0 {
			continue
		}
		data.Rows = append(data.Rows, rowData)
		data.Lines = append(data.Lines, i+1)
	}
	return data
}

// planRows splits each raw row into label, kind, design overrides and inputs
func planRows(data *SheetData) ([]ports.PlanRow, error) {
	hasKind := false
	for _, h := range data.Headers {
		if h == ColumnKind {
			hasKind = true
		}
	}
	if !hasKind {
		return nil, fmt.Errorf("missing required %q column", ColumnKind)
	}

	rows := make([]ports.PlanRow, 0, len(data.Rows))
	for i, raw := range data.Rows {
		row := ports.PlanRow{
			Line:   data.Lines[i],
			Label:  raw[ColumnLabel],
			Kind:   raw[ColumnKind],
			Design: make(map[string]interface{}),
			Inputs: make(map[string]interface{}),
		}
		for column, cell := range raw {
			switch {
			case column == ColumnLabel || column == ColumnKind:
			case column == ColumnTwoSided:
				b, err := strconv.ParseBool(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d: %s must be true or false, got %q", row.Line, column, cell)
				}
				row.Design[column] = b
			case designColumns[column]:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: %s must be a number, got %q", row.Line, column, cell)
				}
				row.Design[column] = v
			default:
				row.Inputs[column] = cellValue(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue keeps numbers numeric and passes anything else through as text so
// the calculator input decoder reports the type mismatch
func cellValue(cell string) interface{} {
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}

func fileTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
