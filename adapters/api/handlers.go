package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"clinsample/app"
	"clinsample/domain/design"
	"clinsample/internal/errors"
	"clinsample/internal/report"
)

// requestFields are the keys accepted in a calculation object
var requestFields = map[string]bool{
	"label":  true,
	"kind":   true,
	"design": true,
	"inputs": true,
}

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kinds":    s.service.Kinds(),
		"defaults": s.service.Defaults(),
	})
}

func (s *Server) handleKind(w http.ResponseWriter, r *http.Request) {
	kind := design.Kind(chi.URLParam(r, "kind"))
	info, ok := kind.Info()
	if !ok {
		s.writeError(w, errors.NotFound(fmt.Sprintf("calculator %q", kind)))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleCalculate runs one calculation. ?format=html returns the rendered report.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.parseRequest(gjson.ParseBytes(body))
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	calc, err := s.service.Calculate(r.Context(), req)
	s.observe(req.Kind, err, time.Since(start))
	if err != nil {
		s.logger.Debug("[API] %s calculation rejected: %v", req.Kind, err)
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(report.RenderHTML(calc.Summary()))
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// handleBatch runs {"calculations": [...]} and reports per-item outcomes.
// Structural problems in any item reject the whole batch before it runs.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := gjson.GetBytes(body, "calculations")
	if !items.IsArray() {
		s.writeError(w, errors.InvalidInput(`body must contain a "calculations" array`))
		return
	}

	var reqs []app.Request
	for i, item := range items.Array() {
		req, err := s.parseRequest(item)
		if err != nil {
			s.writeError(w, errors.Wrapf(err, "calculation %d", i))
			return
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		s.writeError(w, errors.InvalidInput("batch contains no calculations"))
		return
	}

	batch := s.service.CalculateBatch(r.Context(), reqs)
	for _, item := range batch.Items {
		outcome := outcomeSuccess
		if item.Error != nil {
			outcome = item.Error.Code
		}
		s.metrics.Count(item.Kind, outcome)
	}
	writeJSON(w, http.StatusOK, batch)
}

// parseRequest validates the shape of a calculation object and overlays its
// design on the configured defaults. Effect inputs are decoded by the service.
func (s *Server) parseRequest(obj gjson.Result) (app.Request, error) {
	if !obj.IsObject() {
		return app.Request{}, errors.InvalidInput("calculation must be a JSON object")
	}

	var unknown string
	obj.ForEach(func(key, _ gjson.Result) bool {
		if !requestFields[key.String()] {
			unknown = key.String()
			return false
		}
		return true
	})
	if unknown != "" {
		return app.Request{}, errors.InvalidInput(fmt.Sprintf("unknown field %q", unknown))
	}

	kind := obj.Get("kind")
	if !kind.Exists() || kind.Type != gjson.String || kind.String() == "" {
		return app.Request{}, errors.InvalidInput(`"kind" is required`)
	}

	d, err := s.service.DecodeDesign(json.RawMessage(obj.Get("design").Raw))
	if err != nil {
		return app.Request{}, err
	}

	return app.Request{
		Label:  obj.Get("label").String(),
		Kind:   design.Kind(kind.String()),
		Design: &d,
		Inputs: json.RawMessage(obj.Get("inputs").Raw),
	}, nil
}

func (s *Server) observe(kind design.Kind, err error, elapsed time.Duration) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = errors.FromCalculation(err).Code
	}
	s.metrics.Observe(kind, outcome, elapsed)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := errors.FromCalculation(err)
	status := errors.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %v", err)
	}
	writeJSON(w, status, errorResponse{Code: appErr.Code, Message: err.Error()})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read body: %v", err))
	}
	if len(body) > maxBodyBytes {
		return nil, errors.InvalidInput("request body too large")
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("request body is not valid JSON")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
