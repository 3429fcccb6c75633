package ports

import (
	"context"
)

// PlanRow is one calculation request as read from a plan file. Design holds
// only the design parameters the row overrides; Inputs holds the effect
// inputs keyed by their field names.
type PlanRow struct {
	Line   int                    `yaml:"-"`
	Label  string                 `yaml:"label"`
	Kind   string                 `yaml:"kind"`
	Design map[string]interface{} `yaml:"design"`
	Inputs map[string]interface{} `yaml:"inputs"`
}

// ResultRow is one flattened batch outcome for tabular output
type ResultRow struct {
	Label              string  `yaml:"label"`
	Kind               string  `yaml:"kind"`
	CalculationID      string  `yaml:"calculation_id,omitempty"`
	Fingerprint        string  `yaml:"fingerprint,omitempty"`
	Alpha              float64 `yaml:"alpha,omitempty"`
	Power              float64 `yaml:"power,omitempty"`
	TwoSided           bool    `yaml:"two_sided,omitempty"`
	DropoutRate        float64 `yaml:"dropout_rate,omitempty"`
	Group1             int     `yaml:"n_group1,omitempty"`
	Group2             int     `yaml:"n_group2,omitempty"`
	PerGroup           int     `yaml:"n_per_group,omitempty"`
	Groups             int     `yaml:"groups,omitempty"`
	TotalBeforeDropout int     `yaml:"n_before_dropout,omitempty"`
	Total              int     `yaml:"n_total,omitempty"`
	Warnings           string  `yaml:"warnings,omitempty"`
	ErrorCode          string  `yaml:"error_code,omitempty"`
	Error              string  `yaml:"error,omitempty"`
}

// PlanReader loads batch plans
type PlanReader interface {
	ReadPlan(ctx context.Context, path string) ([]PlanRow, error)
}

// PlanWriter stores batch results
type PlanWriter interface {
	WriteResults(ctx context.Context, path string, rows []ResultRow) error
}
