package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteModel() *model.Model {
	return &model.Model{
		ID:        "m",
		Name:      "Loan  Check",
		Inputs:    []model.InputData{{ID: "in_a", Name: "A", TypeRef: model.TypeNumber}},
		Constants: []model.Constant{{ID: "c1", Name: "LIMIT", Value: 10.0, Type: model.ConstantNumber}},
		Decisions: []model.Decision{
			{ID: "d1", Name: "Double", Expression: "A * 2"},
			{ID: "d2", Name: "IsBig", Expression: "Double > LIMIT"},
		},
	}
}

func TestDecodeOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := DecodeOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, Options{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout}, opts)
	})

	t.Run("values", func(t *testing.T) {
		opts, err := DecodeOptions(map[string]any{"baseUrl": "http://svc:8080", "timeout": "5s"})
		require.NoError(t, err)
		assert.Equal(t, "http://svc:8080", opts.BaseURL)
		assert.Equal(t, 5*time.Second, opts.Timeout)
	})

	t.Run("keys match regardless of case", func(t *testing.T) {
		opts, err := DecodeOptions(map[string]any{"baseURL": "http://svc:8080"})
		require.NoError(t, err)
		assert.Equal(t, "http://svc:8080", opts.BaseURL)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := DecodeOptions(map[string]any{"base_url": "x"})
		assert.Error(t, err)

		_, err = DecodeOptions(map[string]any{"basUrl": "x"})
		assert.ErrorContains(t, err, "basUrl")
	})
}

func TestEvaluate(t *testing.T) {
	// --- Arrange ---
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathEvaluate, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(Response{
			ModelName: "Loan  Check",
			DecisionResults: []DecisionResult{
				{DecisionID: "c1", DecisionName: "LIMIT", Result: 10, EvaluationStatus: "SUCCEEDED"},
				{DecisionID: "d1", DecisionName: "Double", Result: 12, EvaluationStatus: "SUCCEEDED"},
				{DecisionID: "d2", DecisionName: "IsBig", EvaluationStatus: "FAILED", Messages: []Message{{Message: "bad", Severity: SeverityError}, {Message: "worse"}}},
			},
			Messages: []Message{{Message: "model warning", Severity: SeverityWarning}, {Message: "model error", Severity: SeverityError}},
		})
	}))
	defer srv.Close()
	e := New(Options{BaseURL: srv.URL + "/"})

	// --- Act ---
	res, err := e.Evaluate(context.Background(), remoteModel(), map[string]any{"in_a": 6})

	// --- Assert ---
	require.NoError(t, err)

	assert.Equal(t, "Loan_Check.dmn", got.MainURI)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, got.MainURI, got.Resources[0].URI)
	assert.Contains(t, got.Resources[0].Content, `<decision id="d1" name="Double">`)
	assert.Equal(t, map[string]any{"A": 6.0}, got.Context, "inputs are keyed by name")

	assert.False(t, res.Success)
	assert.NotContains(t, res.Decisions, "c1", "constants are not decisions of the result")
	assert.Equal(t, 12.0, res.Decisions["d1"].Value)
	assert.Equal(t, engine.StatusSucceeded, res.Decisions["d1"].Status)
	assert.Equal(t, "bad; worse", res.Decisions["d2"].Error)
	assert.Equal(t, []string{`Error evaluating "IsBig": bad; worse`, "model error"}, res.Errors)
	assert.Equal(t, []string{"d1", "d2"}, res.Order)
}

func TestEvaluateFailedWithoutMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"decisionResults":[{"decisionId":"d1","decisionName":"Double","evaluationStatus":"FAILED","messages":[]}]}`))
	}))
	defer srv.Close()

	res, err := New(Options{BaseURL: srv.URL}).Evaluate(context.Background(), remoteModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Evaluation failed", res.Decisions["d1"].Error)
	assert.Equal(t, []string{`Error evaluating "Double": Unknown error`}, res.Errors)
}

func TestEvaluateTransportFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "status with messages",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"messages":[{"message":"parse error","severity":"ERROR"},{"message":"line 3","severity":"ERROR"}]}`))
			},
			wantErr: "parse error; line 3",
		},
		{
			name: "status without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: "Remote service returned 500",
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr: "Failed to decode remote service response",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			res, err := New(Options{BaseURL: srv.URL}).Evaluate(context.Background(), remoteModel(), map[string]any{"A": 1})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Empty(t, res.Decisions)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tc.wantErr)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		res, err := New(Options{BaseURL: url}).Evaluate(context.Background(), remoteModel(), nil)
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.True(t, strings.HasPrefix(res.Errors[0], "Failed to connect to remote service: "))
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := New(Options{BaseURL: srv.URL}).Evaluate(ctx, remoteModel(), nil)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Errors[0], "context canceled")
	})
}

func TestCheckConnection(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"validation error still means reachable", http.StatusBadRequest, true},
		{"server error", http.StatusInternalServerError, false},
		{"not found", http.StatusNotFound, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathValidate, r.URL.Path)
				var req Request
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "test.dmn", req.MainURI)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			assert.Equal(t, tc.want, New(Options{BaseURL: srv.URL}).CheckConnection(context.Background()))
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		e := New(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
		assert.False(t, e.CheckConnection(context.Background()))
	})
}

func TestRequestMain(t *testing.T) {
	r := Request{MainURI: "b", Resources: []Resource{{URI: "a"}, {URI: "b", Content: "x"}}}
	res, err := r.Main()
	require.NoError(t, err)
	assert.Equal(t, "x", res.Content)

	r.MainURI = "zzz"
	res, err = r.Main()
	require.NoError(t, err)
	assert.Equal(t, "a", res.URI)

	_, err = (&Request{}).Main()
	assert.ErrorIs(t, err, ErrNoResource)
}
