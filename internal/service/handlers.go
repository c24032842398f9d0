package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/dag"
	"github.com/specialistvlad/dmngrid/internal/dmnxml"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/engine/remote"
	"github.com/specialistvlad/dmngrid/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	req, m, err := decodeModel(w, r)
	if err != nil {
		logger.Warn("Evaluate: request rejected", "error", err)
		s.metrics.evaluations.WithLabelValues(outcomeRejected).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, err))
		return
	}
	logger = logger.With("model", m.Name)

	res, err := s.engine.Evaluate(r.Context(), m, req.Context)
	if err != nil {
		status := http.StatusInternalServerError
		var cycle *dag.CircularDependencyError
		if errors.As(err, &cycle) {
			status = http.StatusUnprocessableEntity
		}
		logger.Warn("Evaluate: model cannot be evaluated", "error", err, "status", status)
		s.metrics.evaluations.WithLabelValues(outcomeRejected).Inc()
		writeJSON(w, status, errorResponse(m, err))
		return
	}

	outcome := outcomeSuccess
	if !res.Success {
		outcome = outcomeFailure
	}
	s.metrics.evaluations.WithLabelValues(outcome).Inc()
	for _, dr := range res.Decisions {
		s.metrics.decisions.WithLabelValues(string(dr.Status)).Inc()
	}
	logger.Debug("Evaluate: model evaluated", "success", res.Success, "decisions", len(res.Decisions))

	writeJSON(w, http.StatusOK, buildResponse(m, req.Context, res))
}

// handleValidate answers 400 for a document that cannot be read and 200
// otherwise. Lint findings are returned as warnings and a dependency cycle as
// an error.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	_, m, err := decodeModel(w, r)
	if err != nil {
		logger.Debug("Validate: document rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, []remote.Message{{Message: err.Error(), Severity: remote.SeverityError}})
		return
	}

	msgs := []remote.Message{}
	if err := m.Validate(); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				msgs = append(msgs, remote.Message{Message: e.Error(), Severity: remote.SeverityWarning})
			}
		} else {
			msgs = append(msgs, remote.Message{Message: err.Error(), Severity: remote.SeverityWarning})
		}
	}
	if _, err := dag.Resolve(r.Context(), m); err != nil {
		var cycle *dag.CircularDependencyError
		source := ""
		if errors.As(err, &cycle) {
			source = cycle.DecisionID
		}
		msgs = append(msgs, remote.Message{Message: err.Error(), Severity: remote.SeverityError, SourceID: source})
	}
	logger.Debug("Validate: document checked", "model", m.Name, "messages", len(msgs))
	writeJSON(w, http.StatusOK, msgs)
}

func decodeModel(w http.ResponseWriter, r *http.Request) (*remote.Request, *model.Model, error) {
	var req remote.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, nil, fmt.Errorf("invalid request body: %w", err)
	}
	res, err := req.Main()
	if err != nil {
		return nil, nil, err
	}
	m, err := dmnxml.Import([]byte(res.Content))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", res.URI, err)
	}
	return &req, m, nil
}

// buildResponse lists constants first, as a DMN engine evaluates them as
// decisions without requirements, then the decisions in evaluation order.
func buildResponse(m *model.Model, inputs map[string]any, res *engine.ExecutionResult) remote.Response {
	resp := remote.Response{
		Namespace:       m.Namespace,
		ModelName:       m.Name,
		DMNContext:      map[string]any{},
		Messages:        []remote.Message{},
		DecisionResults: []remote.DecisionResult{},
	}
	for _, in := range m.Inputs {
		v, ok := inputs[in.Name]
		if !ok {
			v = inputs[in.ID]
		}
		resp.DMNContext[in.Name] = v
	}
	for _, c := range m.Constants {
		resp.DMNContext[c.Name] = c.Value
		resp.DecisionResults = append(resp.DecisionResults, remote.DecisionResult{
			DecisionID:       c.ID,
			DecisionName:     c.Name,
			Result:           c.Value,
			Messages:         []remote.Message{},
			EvaluationStatus: string(engine.StatusSucceeded),
		})
	}
	for _, id := range res.Order {
		dr := res.Decisions[id]
		out := remote.DecisionResult{
			DecisionID:       dr.DecisionID,
			DecisionName:     dr.DecisionName,
			Result:           dr.Value,
			Messages:         []remote.Message{},
			EvaluationStatus: string(dr.Status),
		}
		if dr.Error != "" {
			out.Messages = append(out.Messages, remote.Message{Message: dr.Error, Severity: remote.SeverityError, SourceID: dr.DecisionID})
		}
		resp.DMNContext[dr.DecisionName] = dr.Value
		resp.DecisionResults = append(resp.DecisionResults, out)
	}
	return resp
}

func errorResponse(m *model.Model, err error) remote.Response {
	resp := remote.Response{
		DMNContext:      map[string]any{},
		Messages:        []remote.Message{{Message: err.Error(), Severity: remote.SeverityError}},
		DecisionResults: []remote.DecisionResult{},
	}
	if m != nil {
		resp.Namespace = m.Namespace
		resp.ModelName = m.Name
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
