package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"clinsample/internal"
	"clinsample/internal/errors"
	"clinsample/ports"
)

var resultHeaders = []string{
	"label", "kind", "calculation_id", "fingerprint",
	"alpha", "power", "two_sided", "dropout_rate",
	"n_group1", "n_group2", "groups", "n_per_group",
	"n_before_dropout", "n_total", "warnings", "error_code", "error",
}

// ResultWriter writes batch results as an .xlsx Results sheet or a CSV file
type ResultWriter struct {
	logger *internal.Logger
}

var _ ports.PlanWriter = (*ResultWriter)(nil)

// NewResultWriter creates a result writer
func NewResultWriter(logger *internal.Logger) *ResultWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ResultWriter{logger: logger}
}

// WriteResults writes one line per batch item, choosing the format by extension
func (w *ResultWriter) WriteResults(ctx context.Context, path string, rows []ports.ResultRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	switch fileTypeOf(path) {
	case "csv":
		err = writeCSV(path, rows)
	case "xlsx":
		err = writeExcel(path, rows)
	default:
		err = fmt.Errorf("unsupported output file type for %s", path)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write results to %s", path)
	}
	w.logger.Info("[ResultWriter] Wrote %d results to %s", len(rows), path)
	return nil
}

func writeExcel(path string, rows []ports.ResultRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &resultHeaders); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := excelValues(row)
		if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeCSV(path string, rows []ports.ResultRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(resultHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(csvValues(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// excelValues keeps counts numeric; failed rows leave the numeric cells empty
func excelValues(row ports.ResultRow) []interface{} {
	values := []interface{}{row.Label, row.Kind, row.CalculationID, row.Fingerprint}
	if row.ErrorCode != "" {
		values = append(values, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "")
	} else {
		values = append(values,
			row.Alpha, row.Power, row.TwoSided, row.DropoutRate,
			optionalInt(row.Group1), optionalInt(row.Group2), optionalInt(row.Groups), optionalInt(row.PerGroup),
			row.TotalBeforeDropout, row.Total, row.Warnings)
	}
	return append(values, row.ErrorCode, row.Error)
}

func csvValues(row ports.ResultRow) []string {
	values := excelValues(row)
	out := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case int:
			out[i] = strconv.Itoa(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(x)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

func optionalInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
