package design

import (
	"fmt"
	"sort"
)

// ============================================================================
// DESIGN PARAMETERS (shared by every calculator)
// ============================================================================

// DesignParameters carries the error rates and dropout assumption shared by
// every calculator. Values are passed by value and never mutated.
type DesignParameters struct {
	Alpha       float64 `json:"alpha" yaml:"alpha"`               // Type I error rate, (0,1)
	Power       float64 `json:"power" yaml:"power"`               // 1 - beta, (0,1)
	TwoSided    bool    `json:"two_sided" yaml:"two_sided"`       // two-sided critical value for alpha
	DropoutRate float64 `json:"dropout_rate" yaml:"dropout_rate"` // expected loss to follow-up, [0,1)
}

// DefaultDesignParameters returns the conventional alpha 0.05, power 0.80,
// two-sided design with no dropout.
func DefaultDesignParameters() DesignParameters {
	return DesignParameters{
		Alpha:       0.05,
		Power:       0.80,
		TwoSided:    true,
		DropoutRate: 0,
	}
}

// Sidedness returns "two-sided" or "one-sided"
func (d DesignParameters) Sidedness() string {
	if d.TwoSided {
		return "two-sided"
	}
	return "one-sided"
}

// ============================================================================
// CALCULATOR KINDS
// ============================================================================

// Kind identifies a sample size calculator
type Kind string

const (
	KindOneSampleMean      Kind = "one_sample_mean"
	KindTwoIndependentMean Kind = "two_independent_means"
	KindPairedMean         Kind = "paired_mean"
	KindAnova              Kind = "anova"
	KindOneProportion      Kind = "one_proportion"
	KindTwoProportions     Kind = "two_proportions"
	KindCaseControl        Kind = "case_control"
	KindCohort             Kind = "cohort"
	KindCorrelation        Kind = "correlation"
	KindLinearRegression   Kind = "linear_regression"
	KindLogisticRegression Kind = "logistic_regression"
)

// Outcome groups calculators by the type of outcome they plan for
type Outcome string

const (
	OutcomeContinuous  Outcome = "continuous"
	OutcomeBinary      Outcome = "binary"
	OutcomeAssociation Outcome = "association"
)

// KindInfo describes a calculator for listings and help output
type KindInfo struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Outcome     Outcome  `json:"outcome"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	TwoGroup    bool     `json:"two_group"`
}

var kindCatalog = map[Kind]KindInfo{
	KindOneSampleMean: {
		Kind: KindOneSampleMean, Title: "One-Sample Mean", Outcome: OutcomeContinuous,
		Description: "Single group mean compared against a reference value",
		Inputs:      []string{"sd", "delta"},
	},
	KindTwoIndependentMean: {
		Kind: KindTwoIndependentMean, Title: "Two Independent Means", Outcome: OutcomeContinuous,
		Description: "Difference in means between two independent groups",
		Inputs:      []string{"sd", "delta", "allocation_ratio"}, TwoGroup: true,
	},
	KindPairedMean: {
		Kind: KindPairedMean, Title: "Paired Mean", Outcome: OutcomeContinuous,
		Description: "Mean within-subject difference (pre/post or matched pairs)",
		Inputs:      []string{"sd_diff", "delta"},
	},
	KindAnova: {
		Kind: KindAnova, Title: "One-Way ANOVA", Outcome: OutcomeContinuous,
		Description: "Overall F-test across k independent group means",
		Inputs:      []string{"cohens_f", "groups"},
	},
	KindOneProportion: {
		Kind: KindOneProportion, Title: "One Proportion", Outcome: OutcomeBinary,
		Description: "Single proportion compared against a reference proportion",
		Inputs:      []string{"p0", "p1"},
	},
	KindTwoProportions: {
		Kind: KindTwoProportions, Title: "Two Proportions", Outcome: OutcomeBinary,
		Description: "Difference between two independent proportions",
		Inputs:      []string{"p1", "p2", "allocation_ratio"}, TwoGroup: true,
	},
	KindCaseControl: {
		Kind: KindCaseControl, Title: "Case-Control (Odds Ratio)", Outcome: OutcomeBinary,
		Description: "Exposure odds ratio between cases and controls",
		Inputs:      []string{"p0", "odds_ratio", "controls_per_case"}, TwoGroup: true,
	},
	KindCohort: {
		Kind: KindCohort, Title: "Cohort (Risk Ratio)", Outcome: OutcomeBinary,
		Description: "Outcome risk ratio between exposed and unexposed cohorts",
		Inputs:      []string{"p0", "risk_ratio", "allocation_ratio"}, TwoGroup: true,
	},
	KindCorrelation: {
		Kind: KindCorrelation, Title: "Correlation", Outcome: OutcomeAssociation,
		Description: "Pearson correlation via Fisher z-transform",
		Inputs:      []string{"r"},
	},
	KindLinearRegression: {
		Kind: KindLinearRegression, Title: "Linear Regression", Outcome: OutcomeAssociation,
		Description: "Multiple linear regression effect via Cohen's f-squared",
		Inputs:      []string{"f2", "predictors"},
	},
	KindLogisticRegression: {
		Kind: KindLogisticRegression, Title: "Logistic Regression", Outcome: OutcomeAssociation,
		Description: "Wald test for a single odds ratio with an events-per-variable check",
		Inputs:      []string{"event_probability", "odds_ratio", "predictors"},
	},
}

// Info returns the catalog entry for k
func (k Kind) Info() (KindInfo, bool) {
	info, ok := kindCatalog[k]
	return info, ok
}

// Valid reports whether k names a known calculator
func (k Kind) Valid() bool {
	_, ok := kindCatalog[k]
	return ok
}

// ParseKind parses a calculator kind name
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown calculator kind %q", s)
	}
	return k, nil
}

// AllKinds returns every calculator in stable order
func AllKinds() []KindInfo {
	infos := make([]KindInfo, 0, len(kindCatalog))
	for _, info := range kindCatalog {
		infos = append(infos, info)
	}
	order := map[Outcome]int{OutcomeContinuous: 0, OutcomeBinary: 1, OutcomeAssociation: 2}
	sort.Slice(infos, func(i, j int) bool {
		if order[infos[i].Outcome] != order[infos[j].Outcome] {
			return order[infos[i].Outcome] < order[infos[j].Outcome]
		}
		return infos[i].Kind < infos[j].Kind
	})
	return infos
}
