// Package calculators implements closed-form sample size formulas for
// clinical study designs. Every calculator is a pure function: it validates
// its inputs, derives critical values, computes the raw size, rounds up and
// inflates for dropout. Nothing here logs, retries or keeps state.
package calculators

import (
	"fmt"
	"math"

	"clinsample/domain/core"
	"clinsample/domain/design"
	"clinsample/internal/distributions"
)

// dropoutSnapTolerance is the relative distance below which an inflated
// count is treated as the integer it approximates.
const dropoutSnapTolerance = 1e-12

// ZAlpha returns the standard normal critical value for alpha:
// the (1-alpha/2) quantile when twoSided, else the (1-alpha) quantile.
func ZAlpha(alpha float64, twoSided bool) (float64, error) {
	if !inOpenUnit(alpha) {
		return 0, core.NewDomainError("alpha", fmt.Sprintf("must be in (0, 1), got %v", alpha))
	}
	if twoSided {
		return distributions.NormalQuantile(1 - alpha/2), nil
	}
	return distributions.NormalQuantile(1 - alpha), nil
}

// ZBeta returns the standard normal quantile at the target power
func ZBeta(power float64) (float64, error) {
	if !inOpenUnit(power) {
		return 0, core.NewDomainError("power", fmt.Sprintf("must be in (0, 1), got %v", power))
	}
	return distributions.NormalQuantile(power), nil
}

// AdjustForDropout inflates n so that n survive after losing the given
// fraction of participants: ceil(n / (1 - rate)).
func AdjustForDropout(n int, rate float64) (int, error) {
	if err := validateDropout(rate); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, core.NewDomainError("n", fmt.Sprintf("must be a positive count, got %d", n))
	}
	inflated := float64(n) / (1 - rate)
	// 100/(1-0.9) evaluates to 1000.0000000000002; snap quotients that are
	// integers up to representation error so they are not bumped by one.
	if nearest := math.Round(inflated); math.Abs(inflated-nearest) <= dropoutSnapTolerance*nearest {
		inflated = nearest
	}
	return CeilInt(inflated)
}

// CeilInt rounds x up to the nearest integer. Sample sizes are never rounded
// down, so anything non-finite or non-positive is a computation failure.
func CeilInt(x float64) (int, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, core.NewComputationError(fmt.Sprintf("non-finite sample size %v", x))
	}
	if x <= 0 {
		return 0, core.NewComputationError(fmt.Sprintf("non-positive sample size %v", x))
	}
	if x > math.MaxInt32 {
		return 0, core.NewComputationError(fmt.Sprintf("sample size %v exceeds representable range", x))
	}
	return int(math.Ceil(x)), nil
}

// ValidateProportion fails unless 0 < p < 1
func ValidateProportion(p float64, name string) (float64, error) {
	if !inOpenUnit(p) {
		return 0, core.NewDomainError(name, fmt.Sprintf("must be a proportion in (0, 1), got %v", p))
	}
	return p, nil
}

// ValidatePositive fails unless x is finite and > 0
func ValidatePositive(x float64, name string) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return 0, core.NewDomainError(name, fmt.Sprintf("must be positive, got %v", x))
	}
	return x, nil
}

// ValidateDesign checks alpha, power and dropout before any computation
func ValidateDesign(d design.DesignParameters) error {
	if !inOpenUnit(d.Alpha) {
		return core.NewDomainError("alpha", fmt.Sprintf("must be in (0, 1), got %v", d.Alpha))
	}
	if !inOpenUnit(d.Power) {
		return core.NewDomainError("power", fmt.Sprintf("must be in (0, 1), got %v", d.Power))
	}
	return validateDropout(d.DropoutRate)
}

func validateDropout(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate >= 1 {
		return core.NewDomainError("dropout_rate", fmt.Sprintf("must be in [0, 1), got %v", rate))
	}
	return nil
}

func validateCount(n, min int, name string) error {
	if n < min {
		return core.NewDomainError(name, fmt.Sprintf("must be at least %d, got %d", min, n))
	}
	return nil
}

func inOpenUnit(x float64) bool {
	return x > 0 && x < 1
}

// criticalValues validates the design and returns (Z_alpha, Z_beta)
func criticalValues(d design.DesignParameters) (float64, float64, error) {
	if err := ValidateDesign(d); err != nil {
		return 0, 0, err
	}
	za, err := ZAlpha(d.Alpha, d.TwoSided)
	if err != nil {
		return 0, 0, err
	}
	zb, err := ZBeta(d.Power)
	if err != nil {
		return 0, 0, err
	}
	return za, zb, nil
}

// singleGroupResult rounds a raw single-group size and applies dropout
func singleGroupResult(kind design.Kind, d design.DesignParameters, raw, za, zb float64) (*design.Result, error) {
	before, err := CeilInt(raw)
	if err != nil {
		return nil, err
	}
	after, err := AdjustForDropout(before, d.DropoutRate)
	if err != nil {
		return nil, err
	}
	r := &design.Result{
		Kind:             kind,
		NRequired:        after,
		NBeforeDropout:   before,
		ZAlpha:           za,
		ZBeta:            zb,
		SidednessApplied: true,
	}
	r.SetIntermediate("n_raw", raw)
	return r, nil
}

// twoGroupResult rounds n1 and n2 = ratio*n1 independently and applies dropout
// to each group; the total is the post-dropout sum.
func twoGroupResult(kind design.Kind, d design.DesignParameters, n1Raw, ratio, za, zb float64) (*design.Result, error) {
	n2Raw := ratio * n1Raw

	n1, err := CeilInt(n1Raw)
	if err != nil {
		return nil, err
	}
	n2, err := CeilInt(n2Raw)
	if err != nil {
		return nil, err
	}
	n1Final, err := AdjustForDropout(n1, d.DropoutRate)
	if err != nil {
		return nil, err
	}
	n2Final, err := AdjustForDropout(n2, d.DropoutRate)
	if err != nil {
		return nil, err
	}

	r := &design.Result{
		Kind:                 kind,
		NGroup1:              n1Final,
		NGroup2:              n2Final,
		NTotal:               n1Final + n2Final,
		NBeforeDropoutGroup1: n1,
		NBeforeDropoutGroup2: n2,
		ZAlpha:               za,
		ZBeta:                zb,
		SidednessApplied:     true,
	}
	r.SetIntermediate("n1_raw", n1Raw)
	r.SetIntermediate("n2_raw", n2Raw)
	r.SetIntermediate("allocation_ratio", ratio)
	return r, nil
}
