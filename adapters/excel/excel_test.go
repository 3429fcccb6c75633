package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"clinsample/internal/errors"
	"clinsample/ports"
)

const csvPlan = `label,kind,alpha,two_sided,dropout_rate,sd,delta,r
Primary,one_sample_mean,,true,0.1,1,0.5,
,correlation,0.01,,,,,0.3
,,,,,,,
Secondary,correlation,,,,,,high
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadPlan_CSV(t *testing.T) {
	path := writeFile(t, "plan.csv", csvPlan)

	rows, err := NewPlanReader(nil).ReadPlan(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Primary", first.Label)
	assert.Equal(t, "one_sample_mean", first.Kind)
	assert.Equal(t, map[string]interface{}{"two_sided": true, "dropout_rate": 0.1}, first.Design)
	assert.Equal(t, map[string]interface{}{"sd": 1.0, "delta": 0.5}, first.Inputs)

	second := rows[1]
	assert.Empty(t, second.Label)
	assert.Equal(t, map[string]interface{}{"alpha": 0.01}, second.Design)
	assert.Equal(t, map[string]interface{}{"r": 0.3}, second.Inputs)

	// empty row skipped, line numbers follow the file
	third := rows[2]
	assert.Equal(t, 5, third.Line)
	assert.Equal(t, "high", third.Inputs["r"])
}

func TestReadPlan_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet(PlanSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(PlanSheet, "A1", &[]interface{}{"Label", "Kind", "Power", "cohens_f", "groups"}))
	require.NoError(t, f.SetSheetRow(PlanSheet, "A2", &[]interface{}{"ANOVA", "anova", 0.9, 0.25, 3}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := NewPlanReader(nil).ReadPlan(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "anova", rows[0].Kind)
	assert.Equal(t, 0.9, rows[0].Design["power"])
	assert.Equal(t, 0.25, rows[0].Inputs["cohens_f"])
	assert.Equal(t, 3.0, rows[0].Inputs["groups"])
}

func TestReadPlan_Errors(t *testing.T) {
	reader := NewPlanReader(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.csv")},
		{"no kind column", writeFile(t, "plan.csv", "label,sd\na,1\n")},
		{"header only", writeFile(t, "plan.csv", "label,kind\n")},
		{"bad design cell", writeFile(t, "plan.csv", "kind,alpha,r\ncorrelation,five,0.3\n")},
		{"bad sidedness", writeFile(t, "plan.csv", "kind,two_sided,r\ncorrelation,maybe,0.3\n")},
		{"unsupported type", writeFile(t, "plan.txt", "kind\ncorrelation\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadPlan(ctx, tt.path)
			require.Error(t, err)
			assert.Equal(t, errors.CodePlanError, errors.GetCode(err))
		})
	}
}

func sampleResults() []ports.ResultRow {
	return []ports.ResultRow{
		{Label: "Primary", Kind: "two_independent_means", CalculationID: "id-1", Fingerprint: "abc",
			Alpha: 0.05, Power: 0.8, TwoSided: true, Group1: 63, Group2: 63, TotalBeforeDropout: 126, Total: 126},
		{Label: "row 3", Kind: "correlation", ErrorCode: errors.CodeDegenerateEffect, Error: "degenerate effect size"},
	}
}

func TestWriteResults_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewResultWriter(nil).WriteResults(context.Background(), path, sampleResults()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, "Primary", rows[1][0])
	assert.Equal(t, "63", rows[1][8])
	assert.Equal(t, "126", rows[1][13])
	assert.Equal(t, errors.CodeDegenerateEffect, rows[2][15])
}

func TestWriteResults_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, NewResultWriter(nil).WriteResults(context.Background(), path, sampleResults()))

	data, err := NewPlanReader(nil).ReadData(path)
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "63", data.Rows[0]["n_group1"])
	assert.Equal(t, "0.05", data.Rows[0]["alpha"])
	assert.Equal(t, "true", data.Rows[0]["two_sided"])
	assert.Empty(t, data.Rows[0]["groups"])
	assert.Equal(t, errors.CodeDegenerateEffect, data.Rows[1]["error_code"])
	assert.Empty(t, data.Rows[1]["n_total"])
}

func TestWriteResults_UnsupportedType(t *testing.T) {
	err := NewResultWriter(nil).WriteResults(context.Background(), filepath.Join(t.TempDir(), "out.pdf"), nil)
	assert.Error(t, err)
}
