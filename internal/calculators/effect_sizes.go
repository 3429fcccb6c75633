package calculators

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"clinsample/domain/core"
)

// CohensFFromEta2 converts eta-squared to Cohen's f: sqrt(eta2 / (1 - eta2))
func CohensFFromEta2(eta2 float64) (float64, error) {
	if !inOpenUnit(eta2) {
		return 0, core.NewDomainError("eta2", fmt.Sprintf("must be in (0, 1), got %v", eta2))
	}
	return math.Sqrt(eta2 / (1 - eta2)), nil
}

// Eta2FromCohensF is the inverse of CohensFFromEta2: f^2 / (1 + f^2)
func Eta2FromCohensF(f float64) (float64, error) {
	if _, err := ValidatePositive(f, "cohens_f"); err != nil {
		return 0, err
	}
	return f * f / (1 + f*f), nil
}

// CohensFFromMeans computes Cohen's f from expected group means and a common
// within-group SD: the population SD of the means divided by sd.
func CohensFFromMeans(means []float64, sd float64) (float64, error) {
	if len(means) < 2 {
		return 0, core.NewDomainError("means", fmt.Sprintf("need at least 2 group means, got %d", len(means)))
	}
	if _, err := ValidatePositive(sd, "sd"); err != nil {
		return 0, err
	}
	for i, m := range means {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return 0, core.NewDomainError("means", fmt.Sprintf("mean %d is not finite", i))
		}
	}

	variance, err := stats.PopulationVariance(means)
	if err != nil {
		return 0, core.NewComputationError(fmt.Sprintf("variance of means: %v", err))
	}
	return math.Sqrt(variance) / sd, nil
}

// PooledSD combines group SDs weighted by their degrees of freedom:
// sqrt(sum((n_i - 1) * sd_i^2) / sum(n_i - 1)).
func PooledSD(ns []int, sds []float64) (float64, error) {
	if len(ns) == 0 || len(ns) != len(sds) {
		return 0, core.NewDomainError("groups", fmt.Sprintf("need matching non-empty sizes and SDs, got %d and %d", len(ns), len(sds)))
	}

	weighted := make([]float64, len(ns))
	dfs := make([]float64, len(ns))
	for i := range ns {
		if ns[i] < 2 {
			return 0, core.NewDomainError(fmt.Sprintf("n[%d]", i), fmt.Sprintf("must be at least 2, got %d", ns[i]))
		}
		if _, err := ValidatePositive(sds[i], fmt.Sprintf("sd[%d]", i)); err != nil {
			return 0, err
		}
		df := float64(ns[i] - 1)
		dfs[i] = df
		weighted[i] = df * sds[i] * sds[i]
	}

	num, err := stats.Sum(weighted)
	if err != nil {
		return 0, core.NewComputationError(fmt.Sprintf("pooled variance numerator: %v", err))
	}
	den, err := stats.Sum(dfs)
	if err != nil {
		return 0, core.NewComputationError(fmt.Sprintf("pooled variance denominator: %v", err))
	}
	return math.Sqrt(num / den), nil
}

// F2FromR2 converts a model R-squared to Cohen's f^2: r2 / (1 - r2)
func F2FromR2(r2 float64) (float64, error) {
	if math.IsNaN(r2) || r2 < 0 || r2 >= 1 {
		return 0, core.NewDomainError("r2", fmt.Sprintf("must be in [0, 1), got %v", r2))
	}
	return r2 / (1 - r2), nil
}

// PartialF2 is the effect of adding predictors that raise R-squared by
// deltaR2 to a full model with R-squared r2Full: deltaR2 / (1 - r2Full).
func PartialF2(deltaR2, r2Full float64) (float64, error) {
	if math.IsNaN(deltaR2) || deltaR2 <= 0 {
		return 0, core.NewDomainError("delta_r2", fmt.Sprintf("must be positive, got %v", deltaR2))
	}
	if math.IsNaN(r2Full) || r2Full >= 1 {
		return 0, core.NewDomainError("r2_full", fmt.Sprintf("must be below 1, got %v", r2Full))
	}
	if deltaR2 > r2Full {
		return 0, core.NewDomainError("delta_r2", fmt.Sprintf("cannot exceed r2_full (%v > %v)", deltaR2, r2Full))
	}
	return deltaR2 / (1 - r2Full), nil
}
