// Package ollama implements the local backend against an
// Ollama-compatible HTTP server: generate, generate-with-images,
// list-models, and a liveness probe.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spetersoncode/duet"
)

// DefaultEndpoint is the standard Ollama listen address.
const DefaultEndpoint = "http://localhost:11434"

// Client speaks the Ollama HTTP contract. It is stateless apart from
// its endpoint and is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	vision  duet.VisionDetector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithVisionDetector overrides the heuristic deciding whether the
// active model accepts image input.
func WithVisionDetector(d duet.VisionDetector) Option {
	return func(c *Client) {
		c.vision = d
	}
}

// New creates a client for the given endpoint. An empty endpoint falls
// back to DefaultEndpoint.
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		vision:  duet.DefaultVisionDetector,
		client: &http.Client{
			Timeout: 300 * time.Second, // local inference can be slow
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string { return c.baseURL }

// Kind identifies the backend.
func (c *Client) Kind() duet.BackendKind { return duet.BackendLocal }

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Images  []string         `json:"images,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate performs a single non-streaming completion. Requests with
// audio attachments are rejected outright, and image attachments
// require the model to pass the vision detector; either gate fails
// before any network traffic.
func (c *Client) Generate(ctx context.Context, model string, req *duet.GenerationRequest) (string, error) {
	if req.HasAudio() {
		return "", &duet.UnsupportedOperationError{
			Op:      "audio input",
			Backend: duet.BackendLocal,
			Model:   model,
			Hint:    "audio is only accepted by the cloud backend",
		}
	}

	images := req.Images()
	if len(images) > 0 && !c.vision(model) {
		return "", &duet.UnsupportedOperationError{
			Op:      "image input",
			Backend: duet.BackendLocal,
			Model:   model,
			Hint:    "pull a vision-capable model such as " + strings.Join(duet.VisionModelSuggestions()[:3], ", "),
		}
	}

	body := generateRequest{
		Model:  model,
		Prompt: req.Prompt,
		Images: images,
		Stream: false,
	}
	if req.Params.Temperature != nil || req.Params.TopP != nil {
		body.Options = &generateOptions{
			Temperature: req.Params.Temperature,
			TopP:        req.Params.TopP,
		}
	}

	var out generateResponse
	if err := c.post(ctx, model, "/api/generate", body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ListModels fetches the names of all models hosted by the server, in
// the order the server returns them.
func (c *Client) ListModels(ctx context.Context) ([]duet.ModelDescriptor, error) {
	var out tagsResponse
	if err := c.get(ctx, "/api/tags", &out); err != nil {
		return nil, err
	}
	models := make([]duet.ModelDescriptor, 0, len(out.Models))
	for _, m := range out.Models {
		models = append(models, duet.ModelDescriptor{Name: m.Name})
	}
	return models, nil
}

// Health probes the server root for liveness.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: err}
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &duet.UpstreamError{
			Backend: duet.BackendLocal,
			Status:  resp.StatusCode,
			Cause:   fmt.Errorf("health check at %s returned status %d", c.baseURL, resp.StatusCode),
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, model, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Model: model, Cause: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Model: model, Cause: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Model: model, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Model: model, Cause: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &duet.UpstreamError{
			Backend: duet.BackendLocal,
			Model:   model,
			Status:  resp.StatusCode,
			Cause:   fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Model: model, Cause: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: fmt.Errorf("create request: %w", err)}
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &duet.UpstreamError{
			Backend: duet.BackendLocal,
			Status:  resp.StatusCode,
			Cause:   fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &duet.UpstreamError{Backend: duet.BackendLocal, Cause: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

var _ duet.Backend = (*Client)(nil)
