package calculators

import (
	"fmt"
	"math"

	"clinsample/domain/core"
	"clinsample/domain/design"
)

// OneProportion computes
// n = (Z_alpha*sqrt(p0(1-p0)) + Z_beta*sqrt(p1(1-p1)))^2 / (p1-p0)^2
// for a single proportion tested against a reference value.
func OneProportion(d design.DesignParameters, in design.OneProportionInput) (*design.Result, error) {
	p0, err := ValidateProportion(in.P0, "p0")
	if err != nil {
		return nil, err
	}
	p1, err := ValidateProportion(in.P1, "p1")
	if err != nil {
		return nil, err
	}
	if p0 == p1 {
		return nil, core.NewDegenerateEffectError("p1 must differ from p0")
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	numerator := math.Pow(za*math.Sqrt(p0*(1-p0))+zb*math.Sqrt(p1*(1-p1)), 2)
	raw := numerator / math.Pow(p1-p0, 2)

	r, err := singleGroupResult(design.KindOneProportion, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "Normal approximation for one proportion"
	r.Assumptions = []string{
		"Single group",
		"Binary outcome",
		"Large sample approximation",
	}
	r.SetIntermediate("difference", p1-p0)
	return r, nil
}

// TwoProportions computes, with pooled p = (p1+p2)/2 and r = n2/n1,
// n1 = (1 + 1/r) * (Z_alpha*sqrt(2p(1-p)) + Z_beta*sqrt(p1(1-p1) + p2(1-p2)))^2 / (p1-p2)^2
// and n2 = r * n1.
func TwoProportions(d design.DesignParameters, in design.TwoProportionsInput) (*design.Result, error) {
	p1, err := ValidateProportion(in.P1, "p1")
	if err != nil {
		return nil, err
	}
	p2, err := ValidateProportion(in.P2, "p2")
	if err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.AllocationRatio, "allocation_ratio"); err != nil {
		return nil, err
	}
	if p1 == p2 {
		return nil, core.NewDegenerateEffectError("p1 must differ from p2")
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	ratio := in.AllocationRatio
	pooled := (p1 + p2) / 2

	numerator := math.Pow(
		za*math.Sqrt(2*pooled*(1-pooled))+
			zb*math.Sqrt(p1*(1-p1)+p2*(1-p2)),
		2,
	)
	denominator := math.Pow(p1-p2, 2)
	n1Raw := (1 + 1/ratio) * (numerator / denominator)

	r, err := twoGroupResult(design.KindTwoProportions, d, n1Raw, ratio, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "Pooled normal approximation for two proportions"
	r.Assumptions = []string{
		"Independent groups",
		"Large sample approximation",
		"Allocation ratio specified",
	}
	r.SetIntermediate("pooled_proportion", pooled)
	return r, nil
}

// CaseControl plans an unmatched case-control study on an exposure odds
// ratio. The exposure prevalence among cases is derived as
// p1 = OR*p0 / (1 - p0 + OR*p0), then
// n1 = (Z_alpha+Z_beta)^2 * (1/(p0(1-p0)) + 1/(r*p1(1-p1))) / ln(OR)^2 and
// n2 = r * n1 with r the number of controls per case.
func CaseControl(d design.DesignParameters, in design.CaseControlInput) (*design.Result, error) {
	p0, err := ValidateProportion(in.P0, "p0")
	if err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.OddsRatio, "odds_ratio"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.ControlsPerCase, "controls_per_case"); err != nil {
		return nil, err
	}
	if in.OddsRatio == 1 {
		return nil, core.NewDegenerateEffectError("odds ratio of 1 has no effect to detect")
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	or := in.OddsRatio
	ratio := in.ControlsPerCase
	p1 := or * p0 / (1 - p0 + or*p0)
	if !inOpenUnit(p1) {
		return nil, core.NewComputationError(fmt.Sprintf("derived case exposure proportion %v is outside (0, 1)", p1))
	}

	logOR := math.Log(or)
	variance := 1/(p0*(1-p0)) + 1/(ratio*p1*(1-p1))
	n1Raw := math.Pow(za+zb, 2) * variance / (logOR * logOR)

	r, err := twoGroupResult(design.KindCaseControl, d, n1Raw, ratio, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "Log odds ratio normal approximation for unmatched case-control"
	r.Assumptions = []string{
		"Unmatched cases and controls",
		"Exposure prevalence among controls known",
		"Large sample approximation on the log odds ratio scale",
		"Group 1 = cases, group 2 = controls",
	}
	r.SetIntermediate("p1", p1)
	r.SetIntermediate("log_odds_ratio", logOR)
	return r, nil
}

// Cohort plans a cohort study on a risk ratio. The exposed risk is
// p1 = RR*p0 and must stay below 1; then
// n1 = (Z_alpha+Z_beta)^2 * ((1-p0)/p0 + (1-p1)/(r*p1)) / ln(RR)^2 and n2 = r * n1.
func Cohort(d design.DesignParameters, in design.CohortInput) (*design.Result, error) {
	p0, err := ValidateProportion(in.P0, "p0")
	if err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.RiskRatio, "risk_ratio"); err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.AllocationRatio, "allocation_ratio"); err != nil {
		return nil, err
	}
	if in.RiskRatio == 1 {
		return nil, core.NewDegenerateEffectError("risk ratio of 1 has no effect to detect")
	}

	rr := in.RiskRatio
	p1 := rr * p0
	if p1 >= 1 {
		return nil, core.NewDomainError("risk_ratio", fmt.Sprintf("too large for given baseline risk (%v * %v >= 1)", rr, p0))
	}

	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	ratio := in.AllocationRatio
	logRR := math.Log(rr)
	variance := (1-p0)/p0 + (1-p1)/(ratio*p1)
	n1Raw := math.Pow(za+zb, 2) * variance / (logRR * logRR)

	r, err := twoGroupResult(design.KindCohort, d, n1Raw, ratio, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "Log risk ratio normal approximation for cohort studies"
	r.Assumptions = []string{
		"Independent exposed and unexposed cohorts",
		"Baseline risk among unexposed known",
		"Large sample approximation on the log risk ratio scale",
		"Group 1 = unexposed, group 2 = exposed",
	}
	r.SetIntermediate("p1", p1)
	r.SetIntermediate("log_risk_ratio", logRR)
	return r, nil
}
