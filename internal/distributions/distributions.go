// Package distributions provides the probability distributions the sample
// size calculators rely on: the standard normal for critical values and the
// central and noncentral F distributions for the one-way ANOVA power solve.
package distributions

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Poisson mixture truncation for the noncentral F series. Terms are summed
// over mode +/- (noncentralTailSDs*sqrt(mode) + noncentralTailPad), which
// leaves a Poisson tail mass far below float64 resolution.
const (
	noncentralTailSDs = 12.0
	noncentralTailPad = 30.0
)

// NormalQuantile computes quantile function for standard normal (inverse CDF)
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// NormalCDF computes cumulative distribution function for standard normal
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// FCDF computes the central F distribution CDF
func FCDF(x, df1, df2 float64) float64 {
	if x <= 0 {
		return 0
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return fDist.CDF(x)
}

// FQuantile returns the p-quantile of the central F distribution with
// (df1, df2) degrees of freedom, via the inverse regularized incomplete beta.
func FQuantile(p, df1, df2 float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	y := mathext.InvRegIncBeta(df1/2, df2/2, p)
	if y >= 1 {
		return math.Inf(1)
	}
	return df2 * y / (df1 * (1 - y))
}

// NoncentralFCDF computes P(F' <= x) for the noncentral F distribution with
// (df1, df2) degrees of freedom and noncentrality lambda, as a Poisson(lambda/2)
// mixture of regularized incomplete beta functions.
func NoncentralFCDF(x, df1, df2, lambda float64) float64 {
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	if lambda <= 0 {
		return FCDF(x, df1, df2)
	}

	y := df1 * x / (df1*x + df2)
	mu := lambda / 2
	pois := distuv.Poisson{Lambda: mu}

	mode := math.Floor(mu)
	spread := math.Ceil(noncentralTailSDs*math.Sqrt(mu)) + noncentralTailPad
	lo := math.Max(0, mode-spread)
	hi := mode + spread

	sum := 0.0
	for j := lo; j <= hi; j++ {
		w := pois.Prob(j)
		if w == 0 {
			continue
		}
		sum += w * mathext.RegIncBeta(df1/2+j, df2/2, y)
	}

	// Clamp to [0,1] against accumulated rounding
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// AnovaPower returns the power of the one-way ANOVA F-test with k groups and
// total sample size n for Cohen's f at significance alpha. Degrees of freedom
// are (k-1, n-k) and the noncentrality is f^2 * n.
func AnovaPower(f float64, n, k int, alpha float64) float64 {
	if k < 2 || n <= k {
		return 0
	}
	df1 := float64(k - 1)
	df2 := float64(n - k)
	critical := FQuantile(1-alpha, df1, df2)
	lambda := f * f * float64(n)
	return 1 - NoncentralFCDF(critical, df1, df2, lambda)
}
