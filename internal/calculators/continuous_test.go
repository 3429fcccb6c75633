package calculators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinsample/domain/core"
	"clinsample/domain/design"
)

func defaultDesign() design.DesignParameters {
	return design.DefaultDesignParameters()
}

func withDropout(rate float64) design.DesignParameters {
	d := design.DefaultDesignParameters()
	d.DropoutRate = rate
	return d
}

func TestOneSampleMean_Baseline(t *testing.T) {
	// ceil(((1.9600 + 0.8416) * 1.0 / 0.5)^2) = ceil(31.40) = 32
	r, err := OneSampleMean(defaultDesign(), design.OneSampleMeanInput{SD: 1.0, Delta: 0.5})
	require.NoError(t, err)

	assert.Equal(t, design.KindOneSampleMean, r.Kind)
	assert.Equal(t, 32, r.NBeforeDropout)
	assert.Equal(t, 32, r.NRequired)
	assert.InDelta(t, 31.3955, r.Intermediates["n_raw"], 1e-3)
	assert.InDelta(t, 1.9600, r.ZAlpha, 1e-4)
	assert.InDelta(t, 0.8416, r.ZBeta, 1e-4)
	assert.NotEmpty(t, r.Formula)
	assert.Len(t, r.Assumptions, 3)
}

func TestOneSampleMean_DropoutAndSidedness(t *testing.T) {
	r, err := OneSampleMean(withDropout(0.1), design.OneSampleMeanInput{SD: 1.0, Delta: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 32, r.NBeforeDropout)
	assert.Equal(t, 36, r.NRequired)

	oneSided := defaultDesign()
	oneSided.TwoSided = false
	r, err = OneSampleMean(oneSided, design.OneSampleMeanInput{SD: 1.0, Delta: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 25, r.NRequired)
}

func TestOneSampleMean_Monotonicity(t *testing.T) {
	prev := 1 << 30
	for _, delta := range []float64{0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0} {
		r, err := OneSampleMean(defaultDesign(), design.OneSampleMeanInput{SD: 1.0, Delta: delta})
		require.NoError(t, err)
		assert.LessOrEqual(t, r.NRequired, prev, "n should not increase with delta=%v", delta)
		prev = r.NRequired
	}

	prev = 0
	for _, sd := range []float64{0.5, 1.0, 1.5, 2.0, 5.0} {
		r, err := OneSampleMean(defaultDesign(), design.OneSampleMeanInput{SD: sd, Delta: 0.5})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.NRequired, prev, "n should not decrease with sd=%v", sd)
		prev = r.NRequired
	}
}

func TestOneSampleMean_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		d    design.DesignParameters
		in   design.OneSampleMeanInput
	}{
		{"zero sd", defaultDesign(), design.OneSampleMeanInput{SD: 0, Delta: 0.5}},
		{"negative delta", defaultDesign(), design.OneSampleMeanInput{SD: 1, Delta: -0.5}},
		{"alpha out of range", design.DesignParameters{Alpha: 1.2, Power: 0.8}, design.OneSampleMeanInput{SD: 1, Delta: 0.5}},
		{"dropout of one", withDropout(1), design.OneSampleMeanInput{SD: 1, Delta: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := OneSampleMean(tt.d, tt.in)
			assert.Nil(t, r)
			assert.True(t, core.IsDomainError(err), "got %v", err)
		})
	}
}

func TestTwoIndependentMeans(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		dropout   float64
		wantN1    int
		wantN2    int
		wantPreN1 int
		wantPreN2 int
	}{
		{"equal allocation", 1, 0, 63, 63, 63, 63},
		{"two to one", 2, 0, 48, 95, 48, 95},
		{"one to two", 0.5, 0, 95, 48, 95, 48},
		{"with dropout", 1, 0.2, 79, 79, 63, 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := withDropout(tt.dropout)
			r, err := TwoIndependentMeans(d, design.TwoMeansInput{SD: 1, Delta: 0.5, AllocationRatio: tt.ratio})
			require.NoError(t, err)
			assert.Equal(t, tt.wantN1, r.NGroup1)
			assert.Equal(t, tt.wantN2, r.NGroup2)
			assert.Equal(t, tt.wantPreN1, r.NBeforeDropoutGroup1)
			assert.Equal(t, tt.wantPreN2, r.NBeforeDropoutGroup2)
			assert.Equal(t, r.NGroup1+r.NGroup2, r.NTotal)
			assert.Zero(t, r.NRequired)
		})
	}
}

func TestTwoIndependentMeans_InvalidInputs(t *testing.T) {
	for _, in := range []design.TwoMeansInput{
		{SD: 0, Delta: 0.5, AllocationRatio: 1},
		{SD: 1, Delta: 0, AllocationRatio: 1},
		{SD: 1, Delta: 0.5, AllocationRatio: 0},
		{SD: 1, Delta: 0.5, AllocationRatio: -1},
	} {
		_, err := TwoIndependentMeans(defaultDesign(), in)
		assert.True(t, core.IsDomainError(err), "%+v", in)
	}
}

func TestPairedMean(t *testing.T) {
	sdDiff, err := SDDiff(10, 10, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, sdDiff, 1e-12)

	r, err := PairedMean(defaultDesign(), design.PairedMeanInput{SDDiff: sdDiff, Delta: 5})
	require.NoError(t, err)
	assert.Equal(t, design.KindPairedMean, r.Kind)
	assert.Equal(t, 32, r.NRequired)

	_, err = PairedMean(defaultDesign(), design.PairedMeanInput{SDDiff: -1, Delta: 5})
	assert.True(t, core.IsDomainError(err))
}

func TestSDDiff(t *testing.T) {
	// Uncorrelated measurements add variances
	sd, err := SDDiff(3, 4, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, sd, 1e-12)

	// Higher correlation shrinks the SD of differences
	low, _ := SDDiff(10, 12, 0.2)
	high, _ := SDDiff(10, 12, 0.8)
	assert.Less(t, high, low)

	for _, tt := range []struct{ pre, post, rho float64 }{
		{0, 1, 0.5},
		{1, -1, 0.5},
		{1, 1, 1},
		{1, 1, -0.1},
	} {
		_, err := SDDiff(tt.pre, tt.post, tt.rho)
		assert.True(t, core.IsDomainError(err), "%+v", tt)
	}
}
