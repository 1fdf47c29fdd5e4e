package duet

import (
	"context"
	"time"
)

// BackendKind identifies which backend a session routes to.
type BackendKind string

// String returns the backend identifier.
func (k BackendKind) String() string { return string(k) }

const (
	// BackendLocal is a locally reachable Ollama-compatible HTTP server.
	BackendLocal BackendKind = "local"
	// BackendCloud is the hosted Gemini API reached via the genai SDK.
	BackendCloud BackendKind = "cloud"
)

// ModelDescriptor names a model available on a backend.
type ModelDescriptor struct {
	Name string `json:"name"`
}

// Params holds optional generation parameters. Nil fields are omitted
// from the request and left to the backend's defaults.
type Params struct {
	Temperature *float64
	TopP        *float64
}

// GenerationRequest is a prompt plus zero or more encoded media
// attachments. It is immutable once built; backends only read it.
type GenerationRequest struct {
	Prompt      string
	Attachments []Attachment
	Params      Params
}

// Images returns the base64 payloads of all image attachments, in order.
func (r *GenerationRequest) Images() []string {
	var out []string
	for _, a := range r.Attachments {
		if a.Kind == MediaImage {
			out = append(out, a.Base64)
		}
	}
	return out
}

// HasAudio reports whether the request carries an audio attachment.
func (r *GenerationRequest) HasAudio() bool {
	for _, a := range r.Attachments {
		if a.Kind == MediaAudio {
			return true
		}
	}
	return false
}

// GenerationResult is a free-text completion plus its completion time.
// Operations that promise structured output decode into their own types
// instead and never return a GenerationResult.
type GenerationResult struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Backend is the capability contract shared by both providers: generate
// text (optionally with image attachments) against a named model.
type Backend interface {
	// Kind identifies the backend for routing and error reporting.
	Kind() BackendKind

	// Generate performs a single non-streaming completion. Image
	// attachments in the request are inlined; audio attachments are
	// rejected by backends that do not implement AudioBackend.
	Generate(ctx context.Context, model string, req *GenerationRequest) (string, error)
}

// AudioBackend is implemented only by backends that accept inlined audio.
// The local backend deliberately does not implement it; callers gate
// audio operations with a type assertion rather than a runtime probe.
type AudioBackend interface {
	Backend

	// GenerateAudio performs a completion whose request carries an
	// audio attachment alongside the prompt.
	GenerateAudio(ctx context.Context, model string, req *GenerationRequest) (string, error)
}
