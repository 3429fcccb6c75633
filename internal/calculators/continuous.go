package calculators

import (
	"fmt"
	"math"

	"clinsample/domain/core"
	"clinsample/domain/design"
)

// OneSampleMean computes n = ((Z_alpha + Z_beta) * sd / delta)^2 for a single
// group mean compared against a reference value.
func OneSampleMean(d design.DesignParameters, in design.OneSampleMeanInput) (*design.Result, error) {
	if _, err := ValidatePositive(in.SD, "sd"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.Delta, "delta"); err != nil {
		return nil, err
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	raw := math.Pow((za+zb)*in.SD/in.Delta, 2)

	r, err := singleGroupResult(design.KindOneSampleMean, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "n = ((Z_alpha + Z_beta) * SD / delta)^2"
	r.Assumptions = []string{
		"Single group",
		"Outcome approximately normally distributed",
		"Standard deviation known or estimated from prior data",
	}
	r.SetIntermediate("standardized_effect", in.Delta/in.SD)
	return r, nil
}

// TwoIndependentMeans computes n1 = (1 + 1/r) * ((Z_alpha + Z_beta) * sd / delta)^2
// and n2 = r * n1, where r = n2/n1 is the allocation ratio.
func TwoIndependentMeans(d design.DesignParameters, in design.TwoMeansInput) (*design.Result, error) {
	if _, err := ValidatePositive(in.SD, "sd"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.Delta, "delta"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.AllocationRatio, "allocation_ratio"); err != nil {
		return nil, err
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	ratio := in.AllocationRatio
	n1Raw := (1 + 1/ratio) * math.Pow((za+zb)*in.SD/in.Delta, 2)

	r, err := twoGroupResult(design.KindTwoIndependentMean, d, n1Raw, ratio, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "n1 = (1 + 1/r) * ((Z_alpha + Z_beta) * SD / delta)^2, n2 = r * n1"
	r.Assumptions = []string{
		"Independent groups",
		"Outcome approximately normally distributed",
		"Common standard deviation in both groups",
		"Allocation ratio specified",
	}
	r.SetIntermediate("standardized_effect", in.Delta/in.SD)
	return r, nil
}

// PairedMean applies the one-sample formula to the standard deviation of the
// within-subject differences.
func PairedMean(d design.DesignParameters, in design.PairedMeanInput) (*design.Result, error) {
	if _, err := ValidatePositive(in.SDDiff, "sd_diff"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.Delta, "delta"); err != nil {
		return nil, err
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	raw := math.Pow((za+zb)*in.SDDiff/in.Delta, 2)

	r, err := singleGroupResult(design.KindPairedMean, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "n = ((Z_alpha + Z_beta) * SD_diff / delta)^2"
	r.Assumptions = []string{
		"Paired or repeated measurements on the same participants",
		"Within-subject differences approximately normally distributed",
		"SD of differences known or derived from pre/post SDs and their correlation",
	}
	r.SetIntermediate("standardized_effect", in.Delta/in.SDDiff)
	return r, nil
}

// SDDiff derives the SD of paired differences from the pre and post SDs and
// their correlation: sqrt(sd_pre^2 + sd_post^2 - 2*rho*sd_pre*sd_post).
func SDDiff(sdPre, sdPost, rho float64) (float64, error) {
	if _, err := ValidatePositive(sdPre, "sd_pre"); err != nil {
		return 0, err
	}
	if _, err := ValidatePositive(sdPost, "sd_post"); err != nil {
		return 0, err
	}
	if math.IsNaN(rho) || rho < 0 || rho >= 1 {
		return 0, core.NewDomainError("rho", fmt.Sprintf("must be in [0, 1), got %v", rho))
	}

	radicand := sdPre*sdPre + sdPost*sdPost - 2*rho*sdPre*sdPost
	if radicand <= 0 {
		return 0, core.NewComputationError(fmt.Sprintf("SD of differences is undefined (radicand %v)", radicand))
	}
	return math.Sqrt(radicand), nil
}
