package calculators

import (
	"fmt"

	"clinsample/domain/core"
	"clinsample/domain/design"
	"clinsample/internal/distributions"
)

// Search bounds for the ANOVA power solve. The total N is searched over the
// integers in [k+1, AnovaMaxTotal]. Doubling then bisecting over that range
// takes at most about 40 power evaluations; AnovaMaxIterations caps the loop.
const (
	AnovaMaxTotal      = 1_000_000
	AnovaMaxIterations = 64
)

// OneWayAnova finds the smallest total N at which the one-way ANOVA F-test
// with k groups reaches the target power for Cohen's f. Power is evaluated on
// the noncentral F distribution with df (k-1, N-k) and noncentrality f^2*N.
// The total is then split into ceil(N/k) per group and each group is inflated
// for dropout. The F-test is one-directional, so DesignParameters.TwoSided is
// not applied.
func OneWayAnova(d design.DesignParameters, in design.AnovaInput) (*design.Result, error) {
	if _, err := ValidatePositive(in.CohensF, "cohens_f"); err != nil {
		return nil, err
	}
	if err := validateCount(in.Groups, 2, "groups"); err != nil {
		return nil, err
	}
	if err := ValidateDesign(d); err != nil {
		return nil, err
	}

	total, achieved, err := solveAnovaTotal(in.CohensF, in.Groups, d.Alpha, d.Power)
	if err != nil {
		return nil, err
	}

	perGroup, err := CeilInt(float64(total) / float64(in.Groups))
	if err != nil {
		return nil, err
	}
	perGroupFinal, err := AdjustForDropout(perGroup, d.DropoutRate)
	if err != nil {
		return nil, err
	}

	// Z values are reported for reference only; the solve uses the F distribution
	za, _ := ZAlpha(d.Alpha, false)
	zb, _ := ZBeta(d.Power)

	r := &design.Result{
		Kind:                   design.KindAnova,
		NRequired:              perGroupFinal * in.Groups,
		NBeforeDropout:         total,
		NTotal:                 perGroupFinal * in.Groups,
		Groups:                 in.Groups,
		NPerGroup:              perGroupFinal,
		NPerGroupBeforeDropout: perGroup,
		ZAlpha:                 za,
		ZBeta:                  zb,
		SidednessApplied:       false,
		Formula:                "Smallest N with 1 - F'_{k-1, N-k, lambda=f^2*N}(F_crit) >= power",
		Assumptions: []string{
			"Independent groups of equal size",
			"Outcome approximately normally distributed within groups",
			"Common within-group variance",
			"Overall F-test is one-directional; the two-sided setting does not apply",
		},
	}
	r.SetIntermediate("achieved_power", achieved)
	r.SetIntermediate("df_between", float64(in.Groups-1))
	r.SetIntermediate("df_within", float64(total-in.Groups))
	r.SetIntermediate("noncentrality", in.CohensF*in.CohensF*float64(total))
	if eta2, err := Eta2FromCohensF(in.CohensF); err == nil {
		r.SetIntermediate("eta2", eta2)
	}
	return r, nil
}

// solveAnovaTotal brackets the answer by doubling N from k+1, then bisects
// over integer totals. Power is monotonically increasing in N, so the loop
// invariant is power(lo) < target <= power(hi). Both phases count
// against AnovaMaxIterations.
func solveAnovaTotal(f float64, k int, alpha, target float64) (int, float64, error) {
	lo := k + 1
	if p := distributions.AnovaPower(f, lo, k, alpha); p >= target {
		return lo, p, nil
	}

	iterations := 0
	hi, hiPower := lo, 0.0
	for {
		iterations++
		if iterations > AnovaMaxIterations {
			return 0, 0, anovaNotConverged()
		}
		next := hi * 2
		if next > AnovaMaxTotal {
			next = AnovaMaxTotal
		}
		hi = next
		hiPower = distributions.AnovaPower(f, hi, k, alpha)
		if hiPower >= target {
			break
		}
		if hi == AnovaMaxTotal {
			return 0, 0, core.NewComputationError(fmt.Sprintf(
				"ANOVA power %.4f at N=%d is below target %.4f; effect size too small", hiPower, hi, target))
		}
		lo = hi
	}

	for hi-lo > 1 {
		iterations++
		if iterations > AnovaMaxIterations {
			return 0, 0, anovaNotConverged()
		}
		mid := lo + (hi-lo)/2
		p := distributions.AnovaPower(f, mid, k, alpha)
		if p >= target {
			hi, hiPower = mid, p
		} else {
			lo = mid
		}
	}
	return hi, hiPower, nil
}

func anovaNotConverged() error {
	return core.NewComputationError(fmt.Sprintf(
		"ANOVA power solve did not converge within %d iterations", AnovaMaxIterations))
}
