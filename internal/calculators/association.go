package calculators

import (
	"fmt"
	"math"

	"clinsample/domain/core"
	"clinsample/domain/design"
)

const (
	// MaxCorrelation bounds |r| away from 1 where the Fisher transform diverges
	MaxCorrelation = 0.99

	// MinEventsPerVariable is the events-per-variable rule of thumb for
	// logistic regression model stability
	MinEventsPerVariable = 10
)

// Correlation computes n = (Z_alpha + Z_beta)^2 / z^2 + 3 with the Fisher
// transform z = 0.5 * ln((1+r)/(1-r)).
func Correlation(d design.DesignParameters, in design.CorrelationInput) (*design.Result, error) {
	r := in.R
	if math.IsNaN(r) || math.Abs(r) > MaxCorrelation {
		return nil, core.NewDomainError("r", fmt.Sprintf("must satisfy |r| <= %v, got %v", MaxCorrelation, r))
	}
	if r == 0 {
		return nil, core.NewDegenerateEffectError("correlation of 0 has no effect to detect")
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	z := FisherZ(r)
	raw := math.Pow(za+zb, 2)/(z*z) + 3

	res, err := singleGroupResult(design.KindCorrelation, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	res.Formula = "n = (Z_alpha + Z_beta)^2 / z^2 + 3, z = 0.5 * ln((1+r)/(1-r))"
	res.Assumptions = []string{
		"Bivariate normal variables",
		"Linear association",
		"Null hypothesis of zero correlation",
	}
	res.SetIntermediate("fisher_z", z)
	return res, nil
}

// FisherZ is the variance-stabilizing transform 0.5 * ln((1+r)/(1-r))
func FisherZ(r float64) float64 {
	return 0.5 * math.Log((1+r)/(1-r))
}

// LinearRegression computes n = (Z_alpha + Z_beta)^2 / f2 + p + 1 for a
// multiple regression with p predictors and effect size f2.
func LinearRegression(d design.DesignParameters, in design.LinearRegressionInput) (*design.Result, error) {
	if _, err := ValidatePositive(in.F2, "f2"); err != nil {
		return nil, err
	}
	if err := validateCount(in.Predictors, 1, "predictors"); err != nil {
		return nil, err
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	raw := math.Pow(za+zb, 2)/in.F2 + float64(in.Predictors) + 1

	r, err := singleGroupResult(design.KindLinearRegression, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "n = (Z_alpha + Z_beta)^2 / f^2 + p + 1"
	r.Assumptions = []string{
		"Linear relationship between predictors and outcome",
		"Independent, homoscedastic, approximately normal residuals",
		"Effect expressed as Cohen's f-squared",
	}
	r.SetIntermediate("predictors", float64(in.Predictors))
	return r, nil
}

// LogisticRegression computes the Wald approximation
// n = (Z_alpha + Z_beta)^2 / (p(1-p) * ln(OR)^2) and attaches an
// events-per-variable diagnostic. Too few expected events is reported as a
// warning on an otherwise valid result.
func LogisticRegression(d design.DesignParameters, in design.LogisticRegressionInput) (*design.Result, error) {
	p, err := ValidateProportion(in.EventProbability, "event_probability")
	if err != nil {
		return nil, err
	}
	if _, err := ValidatePositive(in.OddsRatio, "odds_ratio"); err != nil {
		return nil, err
	}
	if err := validateCount(in.Predictors, 1, "predictors"); err != nil {
		return nil, err
	}
	if in.OddsRatio == 1 {
		return nil, core.NewDegenerateEffectError("odds ratio of 1 has no effect to detect")
	}
	za, zb, err := criticalValues(d)
	if err != nil {
		return nil, err
	}

	logOR := math.Log(in.OddsRatio)
	raw := math.Pow(za+zb, 2) / (p * (1 - p) * logOR * logOR)

	r, err := singleGroupResult(design.KindLogisticRegression, d, raw, za, zb)
	if err != nil {
		return nil, err
	}
	r.Formula = "n = (Z_alpha + Z_beta)^2 / (p(1-p) * ln(OR)^2)"
	r.Assumptions = []string{
		"Wald test for a single standardized predictor",
		"Independent observations",
		"At least 10 events per candidate predictor",
	}
	r.SetIntermediate("log_odds_ratio", logOR)

	epv := EventsPerVariable(r.NRequired, p, in.Predictors)
	r.EPV = &epv
	if epv.Insufficient {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"expected events %.1f are below the %d required for %d predictors (%.1f events per variable)",
			epv.ExpectedEvents, epv.RequiredEvents, epv.Predictors, epv.EventsPerVar))
	}
	return r, nil
}

// EventsPerVariable checks a planned enrolment n with event probability p
// against the rule of MinEventsPerVariable events per predictor.
func EventsPerVariable(n int, p float64, predictors int) design.EPVDiagnostic {
	required := MinEventsPerVariable * predictors
	expected := float64(n) * p
	perVar := 0.0
	if predictors > 0 {
		perVar = expected / float64(predictors)
	}
	return design.EPVDiagnostic{
		Predictors:     predictors,
		RequiredEvents: required,
		ExpectedEvents: expected,
		EventsPerVar:   perVar,
		Insufficient:   expected < float64(required),
	}
}
