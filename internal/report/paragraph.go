// Package report turns calculator results into manuscript text: a methods
// paragraph, a Markdown/HTML report and a terminal table.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"clinsample/domain/design"
)

// Paragraph writes a methods-section paragraph for a calculation. The text is
// a pure function of its arguments.
func Paragraph(d design.DesignParameters, input interface{}, r *design.Result) string {
	if r == nil {
		return ""
	}
	title := string(r.Kind)
	if info, ok := r.Kind.Info(); ok {
		title = info.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A sample size calculation was performed for a %s design", strings.ToLower(title))
	if effect := effectPhrase(input); effect != "" {
		fmt.Fprintf(&b, " to detect %s", effect)
	}
	b.WriteString(". ")

	if r.SidednessApplied {
		fmt.Fprintf(&b, "Assuming a %s significance level of %s and %s power, ",
			d.Sidedness(), percent(d.Alpha), percent(d.Power))
	} else {
		fmt.Fprintf(&b, "Assuming a significance level of %s and %s power, ", percent(d.Alpha), percent(d.Power))
	}
	b.WriteString(countPhrase(r, false))
	b.WriteString(" are required")
	if r.Formula != "" {
		fmt.Fprintf(&b, " (%s)", r.Formula)
	}
	b.WriteString(". ")

	if d.DropoutRate > 0 {
		fmt.Fprintf(&b, "Allowing for an anticipated dropout rate of %s, the target enrolment is %s.",
			percent(d.DropoutRate), countPhrase(r, true))
	} else {
		b.WriteString("No adjustment for dropout was applied.")
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, " Note: %s.", strings.TrimSuffix(w, "."))
	}
	return b.String()
}

// GroupLabels names the two arms of a two-group result
func GroupLabels(kind design.Kind) (string, string) {
	switch kind {
	case design.KindCaseControl:
		return "cases", "controls"
	case design.KindCohort:
		return "unexposed", "exposed"
	}
	return "group 1", "group 2"
}

func countPhrase(r *design.Result, afterDropout bool) string {
	switch {
	case r.Groups > 0:
		perGroup, total := r.NPerGroupBeforeDropout, r.NPerGroupBeforeDropout*r.Groups
		if afterDropout {
			perGroup, total = r.NPerGroup, r.NTotal
		}
		return fmt.Sprintf("%s participants per group across %d groups (%s in total)",
			count(perGroup), r.Groups, count(total))
	case r.IsTwoGroup():
		n1, n2 := r.NBeforeDropoutGroup1, r.NBeforeDropoutGroup2
		if afterDropout {
			n1, n2 = r.NGroup1, r.NGroup2
		}
		label1, label2 := GroupLabels(r.Kind)
		return fmt.Sprintf("%s %s and %s %s (%s in total)",
			count(n1), label1, count(n2), label2, count(n1+n2))
	default:
		n := r.NBeforeDropout
		if afterDropout {
			n = r.NRequired
		}
		return count(n) + " participants"
	}
}

func effectPhrase(input interface{}) string {
	switch in := input.(type) {
	case *design.OneSampleMeanInput:
		return fmt.Sprintf("a mean difference of %s with a standard deviation of %s", num(in.Delta), num(in.SD))
	case *design.TwoMeansInput:
		return fmt.Sprintf("a difference in means of %s between groups with a common standard deviation of %s and an allocation ratio of %s",
			num(in.Delta), num(in.SD), num(in.AllocationRatio))
	case *design.PairedMeanInput:
		return fmt.Sprintf("a mean within-subject difference of %s with a standard deviation of differences of %s",
			num(in.Delta), num(in.SDDiff))
	case *design.AnovaInput:
		return fmt.Sprintf("an effect size of Cohen's f = %s across %d groups", num(in.CohensF), in.Groups)
	case *design.OneProportionInput:
		return fmt.Sprintf("a change in proportion from %s to %s", num(in.P0), num(in.P1))
	case *design.TwoProportionsInput:
		return fmt.Sprintf("a difference between proportions of %s and %s with an allocation ratio of %s",
			num(in.P1), num(in.P2), num(in.AllocationRatio))
	case *design.CaseControlInput:
		return fmt.Sprintf("an odds ratio of %s given an exposure prevalence of %s among controls with %s controls per case",
			num(in.OddsRatio), num(in.P0), num(in.ControlsPerCase))
	case *design.CohortInput:
		return fmt.Sprintf("a risk ratio of %s given a baseline risk of %s among the unexposed with an allocation ratio of %s",
			num(in.RiskRatio), num(in.P0), num(in.AllocationRatio))
	case *design.CorrelationInput:
		return fmt.Sprintf("a correlation coefficient of %s", num(in.R))
	case *design.LinearRegressionInput:
		return fmt.Sprintf("an effect size of Cohen's f-squared = %s with %d predictors", num(in.F2), in.Predictors)
	case *design.LogisticRegressionInput:
		return fmt.Sprintf("an odds ratio of %s with an event probability of %s and %d predictors",
			num(in.OddsRatio), num(in.EventProbability), in.Predictors)
	}
	return ""
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func num(x float64) string {
	return humanize.FtoaWithDigits(x, 4)
}

func percent(x float64) string {
	return humanize.FtoaWithDigits(x*100, 2) + "%"
}
