// Package google implements the cloud backend on top of the Google
// GenAI SDK: text, text+image, and text+audio generation against a
// Gemini model.
package google

import (
	"context"

	"github.com/spetersoncode/duet"
	"google.golang.org/genai"
)

// Client wraps the Google GenAI SDK to implement duet.AudioBackend.
type Client struct {
	client *genai.Client
}

// New creates a new Gemini client with the given API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// Kind identifies the backend.
func (c *Client) Kind() duet.BackendKind { return duet.BackendCloud }

// Generate performs a single request/response completion. Attachments
// are inlined as base64 blobs with explicit MIME types. There is no
// streaming and no retry; transient failures surface unchanged as
// UpstreamError.
func (c *Client) Generate(ctx context.Context, model string, req *duet.GenerationRequest) (string, error) {
	parts, err := convertRequest(req)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{}
	if req.Params.Temperature != nil {
		temp := float32(*req.Params.Temperature)
		config.Temperature = &temp
	}
	if req.Params.TopP != nil {
		topP := float32(*req.Params.TopP)
		config.TopP = &topP
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", wrapError(model, err)
	}

	content := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}
	return content, nil
}

// GenerateAudio performs a completion whose request carries an audio
// attachment. The wire path is identical to Generate; the separate
// method exists so audio capability is visible in the type system.
func (c *Client) GenerateAudio(ctx context.Context, model string, req *duet.GenerationRequest) (string, error) {
	return c.Generate(ctx, model, req)
}

var _ duet.AudioBackend = (*Client)(nil)
