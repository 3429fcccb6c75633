package design

// Result is the output of one calculator call, tagged by Kind.
// INVARIANTS:
// - every post-dropout count >= its pre-dropout count
// - every count is a positive integer obtained by rounding up
// Single-group calculators fill NRequired/NBeforeDropout; two-group
// calculators fill the group fields and NTotal; ANOVA fills the per-group
// fields plus NTotal and NRequired.
type Result struct {
	Kind Kind `json:"kind"`

	NRequired      int `json:"n_required,omitempty"`
	NBeforeDropout int `json:"n_before_dropout,omitempty"`

	NGroup1              int `json:"n_group1,omitempty"`
	NGroup2              int `json:"n_group2,omitempty"`
	NTotal               int `json:"n_total,omitempty"`
	NBeforeDropoutGroup1 int `json:"n_before_dropout_group1,omitempty"`
	NBeforeDropoutGroup2 int `json:"n_before_dropout_group2,omitempty"`

	Groups                 int `json:"groups,omitempty"`
	NPerGroup              int `json:"n_per_group,omitempty"`
	NPerGroupBeforeDropout int `json:"n_per_group_before_dropout,omitempty"`

	ZAlpha           float64 `json:"z_alpha"`
	ZBeta            float64 `json:"z_beta"`
	SidednessApplied bool    `json:"sidedness_applied"`

	Formula       string             `json:"formula"`
	Assumptions   []string           `json:"assumptions"`
	Intermediates map[string]float64 `json:"intermediates,omitempty"`
	EPV           *EPVDiagnostic     `json:"epv,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// EPVDiagnostic is the events-per-variable check for logistic regression.
// Insufficient is a warning, never an error.
type EPVDiagnostic struct {
	Predictors     int     `json:"predictors"`
	RequiredEvents int     `json:"required_events"`
	ExpectedEvents float64 `json:"expected_events"`
	EventsPerVar   float64 `json:"events_per_variable"`
	Insufficient   bool    `json:"insufficient"`
}

// IsTwoGroup reports whether the result carries per-group allocations
func (r *Result) IsTwoGroup() bool {
	return r.NGroup1 > 0 || r.NGroup2 > 0
}

// TotalEnrolled returns the post-dropout enrolment target regardless of shape
func (r *Result) TotalEnrolled() int {
	if r.NTotal > 0 {
		return r.NTotal
	}
	return r.NRequired
}

// TotalBeforeDropout returns the pre-dropout total regardless of shape
func (r *Result) TotalBeforeDropout() int {
	switch {
	case r.NBeforeDropout > 0:
		return r.NBeforeDropout
	case r.IsTwoGroup():
		return r.NBeforeDropoutGroup1 + r.NBeforeDropoutGroup2
	default:
		return r.NPerGroupBeforeDropout * r.Groups
	}
}

// HasWarnings reports whether the result carries non-fatal diagnostics
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// SetIntermediate records a named diagnostic value
func (r *Result) SetIntermediate(name string, value float64) {
	if r.Intermediates == nil {
		r.Intermediates = make(map[string]float64)
	}
	r.Intermediates[name] = value
}
