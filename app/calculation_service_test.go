package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinsample/domain/core"
	"clinsample/domain/design"
	"clinsample/internal/errors"
	"clinsample/ports"
)

func newTestService() *CalculationService {
	return NewCalculationService(design.DefaultDesignParameters(), 3, nil)
}

func TestCalculate_OneSampleMean(t *testing.T) {
	svc := newTestService()

	calc, err := svc.Calculate(context.Background(), Request{
		Kind:   design.KindOneSampleMean,
		Inputs: json.RawMessage(`{"sd": 1, "delta": 0.5}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 32, calc.Result.NRequired)
	assert.Equal(t, design.DefaultDesignParameters(), calc.Design)
	assert.False(t, calc.ID.String() == "")
	_, err = core.ParseCalculationID(calc.ID.String())
	assert.NoError(t, err)
	assert.Len(t, calc.Fingerprint.String(), 64)
	assert.Contains(t, calc.Paragraph, "32 participants are required")
	assert.False(t, calc.CreatedAt.IsZero())
}

func TestCalculate_DesignOverride(t *testing.T) {
	svc := newTestService()
	d := design.DefaultDesignParameters()
	d.DropoutRate = 0.1

	calc, err := svc.Calculate(context.Background(), Request{
		Kind:   design.KindOneSampleMean,
		Design: &d,
		Inputs: json.RawMessage(`{"sd": 1, "delta": 0.5}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 36, calc.Result.NRequired)
}

func TestCalculate_FingerprintStable(t *testing.T) {
	svc := newTestService()
	req := Request{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0.3}`)}

	a, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.ID, b.ID)

	c, err := svc.Calculate(context.Background(), Request{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0.31}`)})
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestCalculate_DefaultAllocationRatio(t *testing.T) {
	calc, err := newTestService().Calculate(context.Background(), Request{
		Kind:   design.KindTwoProportions,
		Inputs: json.RawMessage(`{"p1": 0.3, "p2": 0.2}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 587, calc.Result.NGroup1)
	assert.Equal(t, 587, calc.Result.NGroup2)
}

func TestCalculate_EveryKindDispatches(t *testing.T) {
	inputs := map[design.Kind]string{
		design.KindOneSampleMean:      `{"sd": 1, "delta": 0.5}`,
		design.KindTwoIndependentMean: `{"sd": 10, "delta": 5}`,
		design.KindPairedMean:         `{"sd_diff": 10, "delta": 5}`,
		design.KindAnova:              `{"cohens_f": 0.25, "groups": 3}`,
		design.KindOneProportion:      `{"p0": 0.5, "p1": 0.6}`,
		design.KindTwoProportions:     `{"p1": 0.3, "p2": 0.2}`,
		design.KindCaseControl:        `{"p0": 0.3, "odds_ratio": 2}`,
		design.KindCohort:             `{"p0": 0.1, "risk_ratio": 2}`,
		design.KindCorrelation:        `{"r": 0.3}`,
		design.KindLinearRegression:   `{"f2": 0.15, "predictors": 3}`,
		design.KindLogisticRegression: `{"event_probability": 0.5, "odds_ratio": 2, "predictors": 1}`,
	}
	svc := newTestService()
	require.Len(t, svc.Kinds(), len(inputs))

	for _, info := range svc.Kinds() {
		t.Run(string(info.Kind), func(t *testing.T) {
			raw, ok := inputs[info.Kind]
			require.True(t, ok)
			calc, err := svc.Calculate(context.Background(), Request{Kind: info.Kind, Inputs: json.RawMessage(raw)})
			require.NoError(t, err)
			assert.Equal(t, info.Kind, calc.Result.Kind)
			assert.Positive(t, calc.Result.TotalEnrolled())
			assert.NotEmpty(t, calc.Paragraph)
		})
	}
}

func TestCalculate_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		req      Request
		wantCode string
	}{
		{"unknown kind", Request{Kind: "survival", Inputs: json.RawMessage(`{}`)}, errors.CodeInvalidInput},
		{"missing inputs", Request{Kind: design.KindCorrelation}, errors.CodeInvalidInput},
		{"unknown field", Request{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"rho": 0.3}`)}, errors.CodeInvalidInput},
		{"wrong type", Request{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": "high"}`)}, errors.CodeInvalidInput},
		{"domain", Request{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 1.5}`)}, errors.CodeDomainError},
		{"degenerate", Request{Kind: design.KindTwoProportions, Inputs: json.RawMessage(`{"p1": 0.3, "p2": 0.3}`)}, errors.CodeDegenerateEffect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := svc.Calculate(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, calc)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestCalculate_ComputationErrorKeepsSentinel(t *testing.T) {
	_, err := newTestService().Calculate(context.Background(), Request{
		Kind:   design.KindAnova,
		Inputs: json.RawMessage(`{"cohens_f": 0.001, "groups": 3}`),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeComputationError, errors.GetCode(err))
	assert.True(t, core.IsComputationError(err))
}

func TestDecodeDesign(t *testing.T) {
	svc := newTestService()

	d, err := svc.DecodeDesign(json.RawMessage(`{"power": 0.9, "two_sided": false}`))
	require.NoError(t, err)
	assert.Equal(t, 0.05, d.Alpha)
	assert.Equal(t, 0.9, d.Power)
	assert.False(t, d.TwoSided)

	d, err = svc.DecodeDesign(nil)
	require.NoError(t, err)
	assert.Equal(t, svc.Defaults(), d)

	_, err = svc.DecodeDesign(json.RawMessage(`{"beta": 0.2}`))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestCalculateBatch_PreservesOrderAndIsolatesErrors(t *testing.T) {
	svc := newTestService()
	reqs := []Request{
		{Label: "a", Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0.3}`)},
		{Label: "b", Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0}`)},
		{Label: "c", Kind: design.KindAnova, Inputs: json.RawMessage(`{"cohens_f": 0.25, "groups": 3}`)},
		{Label: "d", Kind: "unknown", Inputs: json.RawMessage(`{}`)},
		{Label: "e", Kind: design.KindOneSampleMean, Inputs: json.RawMessage(`{"sd": 1, "delta": 0.5}`)},
	}

	batch := svc.CalculateBatch(context.Background(), reqs)
	require.Len(t, batch.Items, len(reqs))
	assert.Equal(t, 3, batch.Succeeded)
	assert.Equal(t, 2, batch.Failed)
	assert.False(t, batch.ID.String() == "")

	for i, item := range batch.Items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, reqs[i].Label, item.Label)
	}
	assert.Equal(t, 85, batch.Items[0].Calculation.Result.NRequired)
	assert.Equal(t, errors.CodeDegenerateEffect, batch.Items[1].Error.Code)
	assert.Equal(t, 159, batch.Items[2].Calculation.Result.NTotal)
	assert.Equal(t, errors.CodeInvalidInput, batch.Items[3].Error.Code)
	assert.Equal(t, 32, batch.Items[4].Calculation.Result.NRequired)
}

func TestCalculateBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := newTestService().CalculateBatch(ctx, []Request{
		{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0.3}`)},
		{Kind: design.KindCorrelation, Inputs: json.RawMessage(`{"r": 0.4}`)},
	})
	require.Len(t, batch.Items, 2)
	assert.Equal(t, 2, batch.Failed)
	for _, item := range batch.Items {
		require.NotNil(t, item.Error)
		assert.ErrorIs(t, item.Error, context.Canceled)
	}
}

type stubPlanReader struct {
	rows []ports.PlanRow
	err  error
}

func (s stubPlanReader) ReadPlan(context.Context, string) ([]ports.PlanRow, error) {
	return s.rows, s.err
}

func TestRunPlan(t *testing.T) {
	svc := newTestService()
	reader := stubPlanReader{rows: []ports.PlanRow{
		{Line: 2, Label: "primary", Kind: "two_independent_means",
			Design: map[string]interface{}{"dropout_rate": 0.2},
			Inputs: map[string]interface{}{"sd": 10, "delta": 5}},
		{Line: 3, Kind: "correlation", Inputs: map[string]interface{}{"r": 0}},
	}}

	batch, err := svc.RunPlan(context.Background(), reader, "plan.xlsx")
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)

	rows := ResultRows(batch)
	require.Len(t, rows, 2)
	assert.Equal(t, "primary", rows[0].Label)
	assert.Equal(t, 79, rows[0].Group1)
	assert.Equal(t, 79, rows[0].Group2)
	assert.Equal(t, 126, rows[0].TotalBeforeDropout)
	assert.Equal(t, 158, rows[0].Total)
	assert.Equal(t, 0.2, rows[0].DropoutRate)
	assert.Empty(t, rows[0].Error)

	assert.Equal(t, "row 3", rows[1].Label)
	assert.Equal(t, errors.CodeDegenerateEffect, rows[1].ErrorCode)
	assert.NotEmpty(t, rows[1].Error)
}

func TestRunPlan_Errors(t *testing.T) {
	svc := newTestService()

	_, err := svc.RunPlan(context.Background(), stubPlanReader{}, "empty.csv")
	assert.Equal(t, errors.CodePlanError, errors.GetCode(err))

	_, err = svc.RunPlan(context.Background(), stubPlanReader{rows: []ports.PlanRow{
		{Line: 2, Kind: "correlation", Design: map[string]interface{}{"alfa": 0.05}, Inputs: map[string]interface{}{"r": 0.3}},
	}}, "plan.csv")
	assert.Equal(t, errors.CodePlanError, errors.GetCode(err))
}
