// Package planfile reads batch plans from YAML and writes results back as YAML.
package planfile

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"clinsample/internal/errors"
	"clinsample/ports"
)

// Plan is the YAML document layout. Design values under defaults apply to
// every calculation that does not override them.
//
//	defaults:
//	  design: {alpha: 0.05, dropout_rate: 0.1}
//	calculations:
//	  - label: Primary endpoint
//	    kind: two_independent_means
//	    inputs: {sd: 10, delta: 5}
type Plan struct {
	Defaults struct {
		Design map[string]interface{} `yaml:"design"`
	} `yaml:"defaults"`
	Calculations []ports.PlanRow `yaml:"calculations"`
}

// Results is the YAML document written by WriteResults
type Results struct {
	Results []ports.ResultRow `yaml:"results"`
}

// Store reads and writes YAML plan files
type Store struct{}

var (
	_ ports.PlanReader = Store{}
	_ ports.PlanWriter = Store{}
)

// NewStore creates a YAML plan store
func NewStore() Store {
	return Store{}
}

// ReadPlan decodes a YAML plan, rejecting unknown keys
func (Store) ReadPlan(ctx context.Context, path string) ([]ports.PlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PlanError(path, err)
	}
	rows, err := Decode(data)
	if err != nil {
		return nil, errors.PlanError(path, err)
	}
	return rows, nil
}

// Decode parses a YAML plan document
func Decode(data []byte) ([]ports.PlanRow, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("invalid YAML plan: %w", err)
	}

	rows := make([]ports.PlanRow, len(plan.Calculations))
	for i, row := range plan.Calculations {
		if row.Kind == "" {
			return nil, fmt.Errorf("calculation %d: kind is required", i+1)
		}
		merged := make(map[string]interface{}, len(plan.Defaults.Design)+len(row.Design))
		for k, v := range plan.Defaults.Design {
			merged[k] = v
		}
		for k, v := range row.Design {
			merged[k] = v
		}
		row.Design = merged
		rows[i] = row
	}
	return rows, nil
}

// WriteResults encodes batch results as a YAML document
func (Store) WriteResults(ctx context.Context, path string, rows []ports.ResultRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Results{Results: rows}); err != nil {
		return errors.Wrapf(err, "failed to encode results for %s", path)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "failed to encode results for %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write results to %s", path)
	}
	return nil
}
