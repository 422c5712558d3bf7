package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// APITool invokes an HTTP endpoint. Failure (transport error or a 4xx/5xx
// status) is reported in the Result; the per-tool timeout bounds the call so
// a hung endpoint blocks only its own branch.
type APITool struct {
	name     string
	endpoint string
	method   string
	client   *http.Client
}

// NewAPITool creates an HTTP-backed tool. An empty method defaults to GET
// and a zero timeout defaults to 30 seconds.
func NewAPITool(name, endpoint, method string, timeout time.Duration) *APITool {
	if method == "" {
		method = http.MethodGet
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APITool{
		name:     name,
		endpoint: endpoint,
		method:   strings.ToUpper(method),
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the tool name.
func (t *APITool) Name() string { return t.name }

// Descriptor returns the tool's identity and capability tags.
func (t *APITool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:         t.name,
		Description:  "REST API integration tool for connecting to web services",
		Capabilities: []string{"rest_apis", "http_methods", "json_processing"},
		InputTypes:   []string{"http_request", "endpoint_config"},
		OutputTypes:  []string{"api_response", "json_data"},
	}
}

// Execute performs the HTTP request.
func (t *APITool) Execute(ctx context.Context, p Params) Result {
	req, err := http.NewRequestWithContext(ctx, t.method, t.endpoint, nil)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("X-Choreo-Agent", p.Agent)
	req.Header.Set("X-Choreo-Step", p.Step)

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 400 {
		return Result{ErrorMessage: fmt.Sprintf("endpoint returned %d", resp.StatusCode)}
	}
	return Result{Success: true, Output: string(body)}
}
