package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clinsample/domain/design"
	"clinsample/internal/errors"
	"clinsample/ports"
)

// RequestsFromPlan converts plan rows into requests. A design override that
// cannot be decoded fails the whole plan; unknown kinds and bad inputs are
// left to the per-item errors of the batch.
func (s *CalculationService) RequestsFromPlan(rows []ports.PlanRow) ([]Request, error) {
	reqs := make([]Request, 0, len(rows))
	for i, row := range rows {
		where := fmt.Sprintf("row %d", row.Line)
		if row.Line == 0 {
			where = fmt.Sprintf("entry %d", i+1)
		}

		d := s.defaults
		if len(row.Design) > 0 {
			raw, err := json.Marshal(row.Design)
			if err != nil {
				return nil, errors.PlanError(where, err)
			}
			if d, err = s.DecodeDesign(raw); err != nil {
				return nil, errors.PlanError(where, err)
			}
		}

		inputs, err := json.Marshal(row.Inputs)
		if err != nil {
			return nil, errors.PlanError(where, err)
		}

		label := row.Label
		if label == "" {
			label = where
		}
		reqs = append(reqs, Request{
			Label:  label,
			Kind:   design.Kind(strings.TrimSpace(row.Kind)),
			Design: &d,
			Inputs: inputs,
		})
	}
	return reqs, nil
}

// RunPlan reads a plan and evaluates it as one batch
func (s *CalculationService) RunPlan(ctx context.Context, reader ports.PlanReader, path string) (*BatchResult, error) {
	rows, err := reader.ReadPlan(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.PlanError(path, fmt.Errorf("no calculations found"))
	}
	reqs, err := s.RequestsFromPlan(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[Plan] %s: %d calculations", path, len(reqs))
	return s.CalculateBatch(ctx, reqs), nil
}

// ResultRows flattens batch items for tabular writers
func ResultRows(batch *BatchResult) []ports.ResultRow {
	rows := make([]ports.ResultRow, 0, len(batch.Items))
	for _, item := range batch.Items {
		row := ports.ResultRow{Label: item.Label, Kind: string(item.Kind)}
		if item.Error != nil {
			row.ErrorCode = item.Error.Code
			row.Error = item.Error.Error()
			rows = append(rows, row)
			continue
		}

		c := item.Calculation
		r := c.Result
		row.CalculationID = c.ID.String()
		row.Fingerprint = c.Fingerprint.Short()
		row.Alpha = c.Design.Alpha
		row.Power = c.Design.Power
		row.TwoSided = c.Design.TwoSided
		row.DropoutRate = c.Design.DropoutRate
		row.Group1 = r.NGroup1
		row.Group2 = r.NGroup2
		row.PerGroup = r.NPerGroup
		row.Groups = r.Groups
		row.TotalBeforeDropout = r.TotalBeforeDropout()
		row.Total = r.TotalEnrolled()
		row.Warnings = strings.Join(r.Warnings, "; ")
		rows = append(rows, row)
	}
	return rows
}
