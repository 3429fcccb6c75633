package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"clinsample/domain/core"
	"clinsample/domain/design"
	"clinsample/internal"
	"clinsample/internal/calculators"
	"clinsample/internal/errors"
	"clinsample/internal/report"
)

// CalculationService dispatches sample size requests to the calculators and
// decorates results with identity and manuscript text
type CalculationService struct {
	defaults    design.DesignParameters
	concurrency int64
	logger      *internal.Logger
}

// Request is one calculation to run. A nil Design uses the service defaults.
type Request struct {
	Label  string                   `json:"label,omitempty"`
	Kind   design.Kind              `json:"kind"`
	Design *design.DesignParameters `json:"design,omitempty"`
	Inputs json.RawMessage          `json:"inputs"`
}

// Calculation is a completed calculation with its inputs and provenance
type Calculation struct {
	ID          core.CalculationID      `json:"id"`
	Label       string                  `json:"label,omitempty"`
	Kind        design.Kind             `json:"kind"`
	Design      design.DesignParameters `json:"design"`
	Inputs      interface{}             `json:"inputs"`
	Fingerprint core.InputFingerprint   `json:"fingerprint"`
	Result      *design.Result          `json:"result"`
	Paragraph   string                  `json:"paragraph"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Summary adapts the calculation for the report renderers
func (c *Calculation) Summary() report.Summary {
	return report.Summary{
		Label:       c.Label,
		ID:          c.ID.String(),
		Fingerprint: c.Fingerprint.Short(),
		Design:      c.Design,
		Result:      c.Result,
		Paragraph:   c.Paragraph,
	}
}

// BatchItem is the outcome of one batch request; exactly one of Calculation
// and Error is set
type BatchItem struct {
	Index       int              `json:"index"`
	Label       string           `json:"label,omitempty"`
	Kind        design.Kind      `json:"kind"`
	Calculation *Calculation     `json:"calculation,omitempty"`
	Error       *errors.AppError `json:"error,omitempty"`
}

// BatchResult holds batch items in request order
type BatchResult struct {
	ID        core.BatchID `json:"id"`
	Items     []BatchItem  `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	RuntimeMs int64        `json:"runtime_ms"`
}

// NewCalculationService creates a calculation service. concurrency bounds the
// number of batch requests evaluated at once.
func NewCalculationService(defaults design.DesignParameters, concurrency int, logger *internal.Logger) *CalculationService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CalculationService{
		defaults:    defaults,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// Defaults returns the design parameters applied to requests without a design
func (s *CalculationService) Defaults() design.DesignParameters {
	return s.defaults
}

// Kinds lists the available calculators
func (s *CalculationService) Kinds() []design.KindInfo {
	return design.AllKinds()
}

// DecodeDesign overlays a partial JSON design object on the service defaults.
// An empty message returns the defaults.
func (s *CalculationService) DecodeDesign(raw json.RawMessage) (design.DesignParameters, error) {
	d := s.defaults
	if isEmptyJSON(raw) {
		return d, nil
	}
	if err := strictUnmarshal(raw, &d); err != nil {
		return design.DesignParameters{}, errors.InvalidInput(fmt.Sprintf("design: %v", err))
	}
	return d, nil
}

// DecodeInputs decodes raw effect inputs into the typed input struct for
// kind. Unknown fields are rejected.
func DecodeInputs(kind design.Kind, raw json.RawMessage) (interface{}, error) {
	input, ok := design.NewInput(kind)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown calculator kind %q", kind))
	}
	if isEmptyJSON(raw) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s: inputs are required", kind))
	}
	if err := strictUnmarshal(raw, input); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("%s inputs: %v", kind, err))
	}
	return input, nil
}

// Calculate runs a single request
func (s *CalculationService) Calculate(ctx context.Context, req Request) (*Calculation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Kind.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown calculator kind %q", req.Kind))
	}

	d := s.defaults
	if req.Design != nil {
		d = *req.Design
	}

	input, err := DecodeInputs(req.Kind, req.Inputs)
	if err != nil {
		return nil, err
	}

	result, err := dispatch(req.Kind, d, input)
	if err != nil {
		return nil, errors.FromCalculation(err)
	}

	fingerprint, err := core.ComputeInputFingerprint(string(req.Kind), map[string]interface{}{
		"design": d,
		"inputs": input,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint inputs")
	}

	return &Calculation{
		ID:          core.NewCalculationID(),
		Label:       req.Label,
		Kind:        req.Kind,
		Design:      d,
		Inputs:      input,
		Fingerprint: fingerprint,
		Result:      result,
		Paragraph:   report.Paragraph(d, input, result),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// CalculateBatch runs requests with bounded parallelism. Every request gets an
// item at its own index; failures are recorded per item and never abort the
// batch. Requests not started before ctx is cancelled fail with the context error.
func (s *CalculationService) CalculateBatch(ctx context.Context, reqs []Request) *BatchResult {
	start := time.Now()
	batch := &BatchResult{
		ID:    core.NewBatchID(),
		Items: make([]BatchItem, len(reqs)),
	}
	s.logger.Debug("[Batch] %s: %d requests, concurrency %d", batch.ID, len(reqs), s.concurrency)

	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup
	for i, req := range reqs {
		batch.Items[i] = BatchItem{Index: i, Label: req.Label, Kind: req.Kind}

		if err := sem.Acquire(ctx, 1); err != nil {
			batch.Items[i].Error = &errors.AppError{Code: errors.CodeInternalError, Message: "batch cancelled", Cause: err}
			continue
		}
		wg.Add(1)
		go func(item *BatchItem, req Request) {
			defer wg.Done()
			defer sem.Release(1)

			calc, err := s.Calculate(ctx, req)
			if err != nil {
				item.Error = errors.FromCalculation(err)
				return
			}
			item.Calculation = calc
		}(&batch.Items[i], req)
	}
	wg.Wait()

	for _, item := range batch.Items {
		if item.Error != nil {
			batch.Failed++
			s.logger.Debug("[Batch] %s: item %d (%s) failed: %v", batch.ID, item.Index, item.Kind, item.Error)
		} else {
			batch.Succeeded++
		}
	}
	batch.RuntimeMs = time.Since(start).Milliseconds()
	s.logger.Info("[Batch] %s completed: %d succeeded, %d failed in %dms",
		batch.ID, batch.Succeeded, batch.Failed, batch.RuntimeMs)
	return batch
}

func dispatch(kind design.Kind, d design.DesignParameters, input interface{}) (*design.Result, error) {
	switch in := input.(type) {
	case *design.OneSampleMeanInput:
		return calculators.OneSampleMean(d, *in)
	case *design.TwoMeansInput:
		return calculators.TwoIndependentMeans(d, *in)
	case *design.PairedMeanInput:
		return calculators.PairedMean(d, *in)
	case *design.AnovaInput:
		return calculators.OneWayAnova(d, *in)
	case *design.OneProportionInput:
		return calculators.OneProportion(d, *in)
	case *design.TwoProportionsInput:
		return calculators.TwoProportions(d, *in)
	case *design.CaseControlInput:
		return calculators.CaseControl(d, *in)
	case *design.CohortInput:
		return calculators.Cohort(d, *in)
	case *design.CorrelationInput:
		return calculators.Correlation(d, *in)
	case *design.LinearRegressionInput:
		return calculators.LinearRegression(d, *in)
	case *design.LogisticRegressionInput:
		return calculators.LogisticRegression(d, *in)
	}
	return nil, errors.InternalError(fmt.Sprintf("no calculator registered for %s", kind))
}

func strictUnmarshal(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
