package design

// Effect inputs, one struct per calculator. Validity domains are enforced by
// the calculators, never trusted from the caller.

// OneSampleMeanInput plans a single-group mean comparison
type OneSampleMeanInput struct {
	SD    float64 `json:"sd" yaml:"sd"`       // outcome standard deviation, > 0
	Delta float64 `json:"delta" yaml:"delta"` // mean difference to detect, > 0
}

// TwoMeansInput plans a comparison of two independent means
type TwoMeansInput struct {
	SD              float64 `json:"sd" yaml:"sd"`                             // pooled standard deviation, > 0
	Delta           float64 `json:"delta" yaml:"delta"`                       // mean difference, > 0
	AllocationRatio float64 `json:"allocation_ratio" yaml:"allocation_ratio"` // n2/n1, > 0
}

// PairedMeanInput plans a paired (within-subject) mean comparison
type PairedMeanInput struct {
	SDDiff float64 `json:"sd_diff" yaml:"sd_diff"` // SD of within-subject differences, > 0
	Delta  float64 `json:"delta" yaml:"delta"`     // mean difference, > 0
}

// AnovaInput plans a one-way ANOVA
type AnovaInput struct {
	CohensF float64 `json:"cohens_f" yaml:"cohens_f"` // > 0
	Groups  int     `json:"groups" yaml:"groups"`     // k >= 2
}

// OneProportionInput plans a single proportion test
type OneProportionInput struct {
	P0 float64 `json:"p0" yaml:"p0"` // reference proportion, (0,1)
	P1 float64 `json:"p1" yaml:"p1"` // expected proportion, (0,1), != P0
}

// TwoProportionsInput plans a comparison of two independent proportions
type TwoProportionsInput struct {
	P1              float64 `json:"p1" yaml:"p1"`
	P2              float64 `json:"p2" yaml:"p2"`
	AllocationRatio float64 `json:"allocation_ratio" yaml:"allocation_ratio"` // n2/n1
}

// CaseControlInput plans an unmatched case-control study
type CaseControlInput struct {
	P0              float64 `json:"p0" yaml:"p0"`                               // exposure prevalence among controls
	OddsRatio       float64 `json:"odds_ratio" yaml:"odds_ratio"`               // > 0, != 1
	ControlsPerCase float64 `json:"controls_per_case" yaml:"controls_per_case"` // control:case ratio
}

// CohortInput plans a cohort study on a risk ratio
type CohortInput struct {
	P0              float64 `json:"p0" yaml:"p0"`                 // baseline risk among unexposed
	RiskRatio       float64 `json:"risk_ratio" yaml:"risk_ratio"` // > 0, != 1, RR*p0 < 1
	AllocationRatio float64 `json:"allocation_ratio" yaml:"allocation_ratio"`
}

// CorrelationInput plans detection of a Pearson correlation
type CorrelationInput struct {
	R float64 `json:"r" yaml:"r"` // |r| <= 0.99, != 0
}

// LinearRegressionInput plans a multiple linear regression
type LinearRegressionInput struct {
	F2         float64 `json:"f2" yaml:"f2"`                 // Cohen's f-squared, > 0
	Predictors int     `json:"predictors" yaml:"predictors"` // p >= 1
}

// LogisticRegressionInput plans a logistic regression on one odds ratio
type LogisticRegressionInput struct {
	EventProbability float64 `json:"event_probability" yaml:"event_probability"` // (0,1)
	OddsRatio        float64 `json:"odds_ratio" yaml:"odds_ratio"`               // > 0, != 1
	Predictors       int     `json:"predictors" yaml:"predictors"`               // k >= 1
}

// NewInput returns a zero-valued input struct for kind, suitable for decoding
// into. Ratios default to 1 so callers may omit them.
func NewInput(kind Kind) (interface{}, bool) {
	switch kind {
	case KindOneSampleMean:
		return &OneSampleMeanInput{}, true
	case KindTwoIndependentMean:
		return &TwoMeansInput{AllocationRatio: 1}, true
	case KindPairedMean:
		return &PairedMeanInput{}, true
	case KindAnova:
		return &AnovaInput{}, true
	case KindOneProportion:
		return &OneProportionInput{}, true
	case KindTwoProportions:
		return &TwoProportionsInput{AllocationRatio: 1}, true
	case KindCaseControl:
		return &CaseControlInput{ControlsPerCase: 1}, true
	case KindCohort:
		return &CohortInput{AllocationRatio: 1}, true
	case KindCorrelation:
		return &CorrelationInput{}, true
	case KindLinearRegression:
		return &LinearRegressionInput{}, true
	case KindLogisticRegression:
		return &LogisticRegressionInput{}, true
	}
	return nil, false
}
