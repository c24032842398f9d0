package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/specialistvlad/dmngrid/internal/dmnxml"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/engine/remote"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitModel() *model.Model {
	return &model.Model{
		ID:        "m",
		Name:      "Limit Check",
		Namespace: "https://example.com/limit",
		Inputs:    []model.InputData{{ID: "in_a", Name: "A", TypeRef: model.TypeNumber}},
		Constants: []model.Constant{{ID: "c_limit", Name: "LIMIT", Value: 10.0, Type: model.ConstantNumber}},
		Decisions: []model.Decision{
			{
				ID: "d_double", Name: "Double", Expression: "A * 2",
				InformationRequirements: []model.InformationRequirement{{ID: "r1", Type: model.RequirementInput, Href: "in_a"}},
			},
			{
				ID: "d_big", Name: "IsBig", Expression: "Double > LIMIT",
				InformationRequirements: []model.InformationRequirement{{ID: "r2", Type: model.RequirementDecision, Href: "d_double"}},
			},
		},
	}
}

func postRequest(t *testing.T, url string, m *model.Model, ctx map[string]any) *http.Response {
	t.Helper()
	doc, err := dmnxml.Export(m)
	require.NoError(t, err)
	body, err := json.Marshal(remote.Request{
		MainURI:   "model.dmn",
		Resources: []remote.Resource{{URI: "model.dmn", Content: string(doc)}},
		Context:   ctx,
	})
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestEvaluateThroughRemoteEngine(t *testing.T) {
	// --- Arrange ---
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()
	e := remote.New(remote.Options{BaseURL: srv.URL})
	ctx := context.Background()

	// --- Act ---
	res, err := e.Evaluate(ctx, limitModel(), map[string]any{"in_a": 6.0})

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, []string{"d_double", "d_big"}, res.Order, "constants are not reported as decisions")
	assert.Equal(t, 12.0, res.Decisions["d_double"].Value)
	assert.Equal(t, true, res.Decisions["d_big"].Value)
	assert.Equal(t, engine.StatusSucceeded, res.Decisions["d_big"].Status)
	assert.True(t, e.CheckConnection(ctx))
}

func TestEvaluateResponses(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	t.Run("decision failure is reported per decision", func(t *testing.T) {
		m := limitModel()
		m.Decisions[0].Expression = "A *"

		resp := postRequest(t, srv.URL+remote.PathEvaluate, m, map[string]any{"A": 6})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out remote.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "Limit Check", out.ModelName)
		assert.Equal(t, "https://example.com/limit", out.Namespace)
		require.Len(t, out.DecisionResults, 3)
		assert.Equal(t, "c_limit", out.DecisionResults[0].DecisionID)
		assert.Equal(t, string(engine.StatusFailed), out.DecisionResults[1].EvaluationStatus)
		require.Len(t, out.DecisionResults[1].Messages, 1)
		assert.Equal(t, remote.SeverityError, out.DecisionResults[1].Messages[0].Severity)
		assert.Equal(t, 6.0, out.DMNContext["A"])
		assert.Equal(t, 10.0, out.DMNContext["LIMIT"])
	})

	t.Run("cycle is unprocessable", func(t *testing.T) {
		m := limitModel()
		m.Decisions[0].InformationRequirements = append(m.Decisions[0].InformationRequirements,
			model.InformationRequirement{ID: "r3", Type: model.RequirementDecision, Href: "d_big"})

		resp := postRequest(t, srv.URL+remote.PathEvaluate, m, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		res, err := remote.New(remote.Options{BaseURL: srv.URL}).Evaluate(context.Background(), m, nil)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Empty(t, res.Decisions)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "circular dependency detected at")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+remote.PathEvaluate, "application/json", bytes.NewBufferString("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no resource", func(t *testing.T) {
		resp, err := http.Post(srv.URL+remote.PathEvaluate, "application/json", bytes.NewBufferString(`{"mainURI":"x"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		var out remote.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Len(t, out.Messages, 1)
		assert.Equal(t, remote.ErrNoResource.Error(), out.Messages[0].Message)
	})
}

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	t.Run("clean model", func(t *testing.T) {
		resp := postRequest(t, srv.URL+remote.PathValidate, limitModel(), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var msgs []remote.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
		assert.Empty(t, msgs)
	})

	t.Run("lint findings and cycles", func(t *testing.T) {
		m := limitModel()
		m.Decisions[1].Name = "Double"
		m.Decisions[0].InformationRequirements = append(m.Decisions[0].InformationRequirements,
			model.InformationRequirement{ID: "r3", Type: model.RequirementDecision, Href: "d_double"})

		resp := postRequest(t, srv.URL+remote.PathValidate, m, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var msgs []remote.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
		require.NotEmpty(t, msgs)
		last := msgs[len(msgs)-1]
		assert.Equal(t, remote.SeverityError, last.Severity)
		assert.Equal(t, "d_double", last.SourceID)
		assert.Equal(t, remote.SeverityWarning, msgs[0].Severity)
	})

	t.Run("unreadable document", func(t *testing.T) {
		body := `{"mainURI":"a.dmn","resources":[{"URI":"a.dmn","content":"<definitions"}]}`
		resp, err := http.Post(srv.URL+remote.PathValidate, "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	postRequest(t, srv.URL+remote.PathEvaluate, limitModel(), map[string]any{"A": 6})

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `dmngrid_evaluations_total{outcome="success"} 1`)
	assert.Contains(t, string(body), `dmngrid_decisions_total{status="SUCCEEDED"} 2`)
	assert.Contains(t, string(body), `dmngrid_request_duration_seconds_count{endpoint="evaluate"} 1`)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New().Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
