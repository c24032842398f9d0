package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/dmnxml"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:21345"
	DefaultTimeout = 30 * time.Second
)

// probeDocument is the empty model sent by CheckConnection.
const probeDocument = `<?xml version="1.0" encoding="UTF-8"?>
<definitions xmlns="https://www.omg.org/spec/DMN/20191111/MODEL/" id="test" name="test" namespace="test">
</definitions>`

// Options are the engine settings found under engines.remoteService in the
// configuration.
type Options struct {
	BaseURL string        `mapstructure:"baseUrl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DecodeOptions reads Options from a loosely typed map. Keys match field
// names case-insensitively and unknown keys are rejected. Durations may be
// given as strings such as "5s".
func DecodeOptions(raw map[string]any) (Options, error) {
	opts := Options{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("invalid remoteService options: %w", err)
	}
	return opts, nil
}

// Engine is the HTTP client engine. It is safe for concurrent use.
type Engine struct {
	baseURL string
	client  *http.Client
}

var (
	_ engine.Engine            = (*Engine)(nil)
	_ engine.ConnectionChecker = (*Engine)(nil)
)

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient replaces the HTTP client. Its timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.client = c }
}

// New creates an engine talking to opts.BaseURL.
func New(opts Options, options ...Option) *Engine {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	e := &Engine{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// BaseURL returns the service address in use.
func (e *Engine) BaseURL() string { return e.baseURL }

func (e *Engine) Info() engine.Info {
	return engine.Info{
		ID:                 engine.RemoteServiceID,
		Name:               "Remote DMN service",
		Description:        "Full DMN engine reached over HTTP. Requires the service to be running.",
		RequiresConnection: true,
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// ResourceName is the file name a model is sent under.
func ResourceName(m *model.Model) string {
	return whitespace.ReplaceAllString(m.Name, "_") + ".dmn"
}

// Evaluate sends m and inputs to the service. It never returns an error;
// every failure is reported inside the result.
func (e *Engine) Evaluate(ctx context.Context, m *model.Model, inputs map[string]any) (*engine.ExecutionResult, error) {
	logger := ctxlog.FromContext(ctx).With("engine", engine.RemoteServiceID, "model", m.Name)
	logger.Info("🚀 Sending model to remote service.", "url", e.baseURL+PathEvaluate)

	doc, err := dmnxml.Export(m)
	if err != nil {
		return engine.Failed(inputs, err.Error()), nil
	}

	name := ResourceName(m)
	req := Request{
		MainURI:   name,
		Resources: []Resource{{URI: name, Content: string(doc)}},
		Context:   contextByName(m, inputs),
	}

	status, body, err := e.post(ctx, PathEvaluate, req)
	if err != nil {
		logger.Error("Remote service unreachable.", "error", err)
		return engine.Failed(inputs, "Failed to connect to remote service: "+err.Error()), nil
	}
	if status < 200 || status > 299 {
		msg := errorMessage(status, body)
		logger.Warn("Remote service rejected the request.", "status", status, "message", msg)
		return engine.Failed(inputs, msg), nil
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return engine.Failed(inputs, fmt.Sprintf("Failed to decode remote service response: %v", err)), nil
	}

	result := mapResponse(m, &resp, inputs)
	logger.Info("🏁 Remote evaluation finished.", "success", result.Success, "errors", len(result.Errors))
	return result, nil
}

// CheckConnection posts an empty model to the validate endpoint. A 200 or a
// 400 both prove the service is up.
func (e *Engine) CheckConnection(ctx context.Context) bool {
	logger := ctxlog.FromContext(ctx)
	req := Request{
		MainURI:   "test.dmn",
		Resources: []Resource{{URI: "test.dmn", Content: probeDocument}},
	}
	status, _, err := e.post(ctx, PathValidate, req)
	if err != nil {
		logger.Debug("🩺 Remote service probe failed.", "error", err)
		return false
	}
	logger.Debug("🩺 Remote service probe answered.", "status", status)
	return status == http.StatusOK || status == http.StatusBadRequest
}

func (e *Engine) post(ctx context.Context, path string, payload Request) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// contextByName keys input values by input name. Values are looked up by id
// first, then by name.
func contextByName(m *model.Model, inputs map[string]any) map[string]any {
	out := make(map[string]any, len(m.Inputs))
	for _, in := range m.Inputs {
		v, ok := inputs[in.ID]
		if !ok || v == nil {
			v = inputs[in.Name]
		}
		out[in.Name] = v
	}
	return out
}

func errorMessage(status int, body []byte) string {
	var resp Response
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Messages) > 0 {
		return joinMessages(resp.Messages)
	}
	return fmt.Sprintf("Remote service returned %d", status)
}

func joinMessages(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Message != "" {
			parts = append(parts, msg.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// mapResponse converts decision results into an ExecutionResult. Results for
// constants, which travel as decisions, are dropped.
func mapResponse(m *model.Model, resp *Response, inputs map[string]any) *engine.ExecutionResult {
	result := engine.NewExecutionResult(inputs)

	for _, dr := range resp.DecisionResults {
		if _, isConstant := m.Constant(dr.DecisionID); isConstant {
			continue
		}
		out := engine.DecisionResult{
			DecisionID:   dr.DecisionID,
			DecisionName: dr.DecisionName,
			Value:        dr.Result,
			Status:       engine.Status(dr.EvaluationStatus),
		}
		if out.Status == "" {
			out.Status = engine.StatusSucceeded
		}
		if out.Status == engine.StatusFailed {
			reason := joinMessages(dr.Messages)
			out.Error = reason
			if out.Error == "" {
				out.Error = "Evaluation failed"
				reason = "Unknown error"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Error evaluating %q: %s", dr.DecisionName, reason))
		}
		result.Decisions[dr.DecisionID] = out
		result.Order = append(result.Order, dr.DecisionID)
	}

	for _, msg := range resp.Messages {
		if msg.Severity == SeverityError {
			result.Errors = append(result.Errors, msg.Message)
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}
