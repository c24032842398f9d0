package remote

import "errors"

// ErrNoResource is returned for a request without DMN content.
var ErrNoResource = errors.New("request carries no DMN resource")

// Endpoint paths of the evaluation protocol.
const (
	PathEvaluate = "/jitdmn/dmnresult"
	PathValidate = "/jitdmn/validate"
)

// Message severities.
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
	SeverityInfo    = "INFO"
)

// Resource is one DMN file of a request.
type Resource struct {
	URI     string `json:"URI"`
	Content string `json:"content"`
}

// Request is the body of both protocol endpoints. Context is left out by
// validation requests.
type Request struct {
	MainURI   string         `json:"mainURI"`
	Resources []Resource     `json:"resources"`
	Context   map[string]any `json:"context,omitempty"`
}

// Main returns the resource named by MainURI, or the first one.
func (r *Request) Main() (Resource, error) {
	for _, res := range r.Resources {
		if res.URI == r.MainURI {
			return res, nil
		}
	}
	if len(r.Resources) > 0 {
		return r.Resources[0], nil
	}
	return Resource{}, ErrNoResource
}

// Message is a diagnostic attached to a response or a decision.
type Message struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	SourceID string `json:"sourceId,omitempty"`
}

// DecisionResult is the per-decision entry of a Response.
type DecisionResult struct {
	DecisionID       string    `json:"decisionId"`
	DecisionName     string    `json:"decisionName"`
	Result           any       `json:"result"`
	Messages         []Message `json:"messages"`
	EvaluationStatus string    `json:"evaluationStatus"`
}

// Response is the body returned by the evaluate endpoint.
type Response struct {
	Namespace       string           `json:"namespace"`
	ModelName       string           `json:"modelName"`
	DMNContext      map[string]any   `json:"dmnContext"`
	Messages        []Message        `json:"messages"`
	DecisionResults []DecisionResult `json:"decisionResults"`
}
