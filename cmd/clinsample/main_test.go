package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"clinsample/app"
	"clinsample/adapters/excel"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalculatorCommand_Table(t *testing.T) {
	out, err := run(t, "one-sample-mean", "--sd", "1", "--delta", "0.5", "--dropout", "0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Participants")
	assert.Contains(t, out, "36")
	assert.Contains(t, out, "dropout rate of 10%")
}

func TestCalculatorCommand_JSON(t *testing.T) {
	out, err := run(t, "two-independent-means", "--sd", "10", "--delta", "5", "--allocation-ratio", "2", "--format", "json")
	require.NoError(t, err)

	var calc app.Calculation
	require.NoError(t, json.Unmarshal([]byte(out), &calc))
	assert.Equal(t, 48, calc.Result.NGroup1)
	assert.Equal(t, 95, calc.Result.NGroup2)
}

func TestCalculatorCommand_OneSided(t *testing.T) {
	out, err := run(t, "one-sample-mean", "--sd", "1", "--delta", "0.5", "--one-sided", "--format", "json")
	require.NoError(t, err)

	var calc app.Calculation
	require.NoError(t, json.Unmarshal([]byte(out), &calc))
	assert.Equal(t, 25, calc.Result.NRequired)
	assert.False(t, calc.Design.TwoSided)
}

func TestCalculatorCommand_IntInputs(t *testing.T) {
	out, err := run(t, "anova", "--cohens-f", "0.25", "--groups", "3", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# One-Way ANOVA")
	assert.Contains(t, out, "| Total (3 groups) | 159 | 159 |")
}

func TestCalculatorCommand_Warnings(t *testing.T) {
	out, err := run(t, "logistic-regression", "--event-probability", "0.05", "--odds-ratio", "2", "--predictors", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: expected events")
}

func TestCalculatorCommand_Errors(t *testing.T) {
	_, err := run(t, "correlation")
	assert.ErrorContains(t, err, "required flag")

	_, err = run(t, "correlation", "--r", "0")
	assert.ErrorContains(t, err, "degenerate effect size")

	_, err = run(t, "correlation", "--r", "0.3", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown --format")
}

func TestKindsCommand(t *testing.T) {
	out, err := run(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "case_control")
	assert.Contains(t, out, "Total: 11 calculators")
}

func TestEffectCommands(t *testing.T) {
	out, err := run(t, "effect", "sd-diff", "--sd-pre", "3", "--sd-post", "4", "--rho", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "sd_diff = 5")

	out, err = run(t, "effect", "f2", "--r2", "0.2")
	require.NoError(t, err)
	assert.Contains(t, out, "f2 = 0.25")

	out, err = run(t, "effect", "pooled-sd", "--n", "10,10", "--sds", "2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "sd = 2")

	_, err = run(t, "effect", "cohens-f", "--eta2", "1")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(plan, []byte(
		"label,kind,dropout_rate,sd,delta,r\n"+
			"Primary,two_independent_means,0.2,10,5,\n"+
			"Bad,correlation,,,,0\n"), 0o600))
	out := filepath.Join(dir, "results.xlsx")

	stdout, err := run(t, "batch", plan, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 succeeded, 1 failed")
	assert.Contains(t, stdout, "DEGENERATE_EFFECT")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(excel.ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Primary", rows[1][0])
	assert.Equal(t, "158", rows[1][13])
}

func TestBatchCommand_YAML(t *testing.T) {
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(plan, []byte(`
calculations:
  - label: corr
    kind: correlation
    inputs: {r: 0.3}
`), 0o600))

	stdout, err := run(t, "batch", plan, "--format", "json")
	require.NoError(t, err)

	var batch app.BatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &batch))
	require.Len(t, batch.Items, 1)
	assert.Equal(t, 85, batch.Items[0].Calculation.Result.NRequired)
}
