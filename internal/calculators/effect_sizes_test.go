package calculators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinsample/domain/core"
)

func TestCohensFFromEta2_RoundTrip(t *testing.T) {
	for _, eta2 := range []float64{0.01, 0.0588, 0.138, 0.5, 0.9} {
		f, err := CohensFFromEta2(eta2)
		require.NoError(t, err)
		back, err := Eta2FromCohensF(f)
		require.NoError(t, err)
		assert.InDelta(t, eta2, back, 1e-12)
	}

	// Cohen's conventional medium effect
	f, err := CohensFFromEta2(0.0588)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f, 1e-3)

	for _, bad := range []float64{0, 1, -0.1} {
		_, err := CohensFFromEta2(bad)
		assert.True(t, core.IsDomainError(err))
	}
	_, err = Eta2FromCohensF(0)
	assert.True(t, core.IsDomainError(err))
}

func TestCohensFFromMeans(t *testing.T) {
	// Means 10, 12, 14: population SD = sqrt(8/3)
	f, err := CohensFFromMeans([]float64{10, 12, 14}, 4)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(8.0/3.0)/4, f, 1e-12)

	// Equal means carry no effect
	f, err = CohensFFromMeans([]float64{5, 5}, 1)
	require.NoError(t, err)
	assert.Zero(t, f)

	_, err = CohensFFromMeans([]float64{10}, 4)
	assert.True(t, core.IsDomainError(err))
	_, err = CohensFFromMeans([]float64{10, 12}, 0)
	assert.True(t, core.IsDomainError(err))
	_, err = CohensFFromMeans([]float64{10, math.NaN()}, 1)
	assert.True(t, core.IsDomainError(err))
}

func TestPooledSD(t *testing.T) {
	sd, err := PooledSD([]int{10, 10}, []float64{2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sd, 1e-12)

	// sqrt((9*4 + 19*9) / 28)
	sd, err = PooledSD([]int{10, 20}, []float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt((9*4.0+19*9.0)/28), sd, 1e-12)

	_, err = PooledSD([]int{10}, []float64{2, 3})
	assert.True(t, core.IsDomainError(err))
	_, err = PooledSD([]int{1, 10}, []float64{2, 3})
	assert.True(t, core.IsDomainError(err))
	_, err = PooledSD([]int{10, 10}, []float64{2, -3})
	assert.True(t, core.IsDomainError(err))
}

func TestF2Conversions(t *testing.T) {
	f2, err := F2FromR2(0.13)
	require.NoError(t, err)
	assert.InDelta(t, 0.13/0.87, f2, 1e-12)

	f2, err = F2FromR2(0)
	require.NoError(t, err)
	assert.Zero(t, f2)

	_, err = F2FromR2(1)
	assert.True(t, core.IsDomainError(err))

	partial, err := PartialF2(0.05, 0.30)
	require.NoError(t, err)
	assert.InDelta(t, 0.05/0.70, partial, 1e-12)

	for _, tt := range []struct{ delta, full float64 }{
		{0, 0.3},
		{0.4, 0.3},
		{0.05, 1},
	} {
		_, err := PartialF2(tt.delta, tt.full)
		assert.True(t, core.IsDomainError(err), "%+v", tt)
	}
}
