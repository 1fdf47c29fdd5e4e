package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/duet"
	"github.com/spetersoncode/duet/internal/provider/google"
	"github.com/spetersoncode/duet/internal/provider/ollama"
	"golang.org/x/sync/errgroup"
)

// Default models used when the configuration names none.
const (
	DefaultLocalModel = "llama3.2"
	DefaultCloudModel = "gemini-2.5-flash"
)

// Config holds configuration for creating a session. Configuration
// values are supplied by the caller; the session does no parsing of its
// own.
type Config struct {
	// APIKey is the Gemini credential. Required unless UseLocal is set.
	APIKey string
	// UseLocal selects the local backend regardless of APIKey presence.
	UseLocal bool
	// Model names the initial model. Defaults to DefaultLocalModel or
	// DefaultCloudModel depending on the active backend.
	Model string
	// Endpoint is the local server base URL. Defaults to the standard
	// Ollama address. Ignored for cloud sessions.
	Endpoint string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for session diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used by the local backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) {
		s.httpClient = hc
	}
}

// WithVisionDetector overrides the heuristic deciding whether a local
// model accepts image input.
func WithVisionDetector(d duet.VisionDetector) Option {
	return func(s *Session) {
		s.vision = d
	}
}

// WithCloudModel sets the model used when the cloud backend is active.
func WithCloudModel(model string) Option {
	return func(s *Session) {
		s.cloudModel = model
	}
}

// WithDefaultTemperature sets the sampling temperature for all requests.
func WithDefaultTemperature(t float64) Option {
	return func(s *Session) {
		s.params.Temperature = &t
	}
}

// WithDefaultTopP sets nucleus sampling for all requests.
func WithDefaultTopP(p float64) Option {
	return func(s *Session) {
		s.params.TopP = &p
	}
}

// Session routes the uniform operation set to the active backend. The
// backend and model fields are guarded by an internal mutex, so switch
// operations are safe relative to in-flight calls; each network
// operation is otherwise independent.
type Session struct {
	mu         sync.RWMutex
	kind       duet.BackendKind
	localModel string
	cloudModel string
	local      *ollama.Client
	cloud      *google.Client
	ready      chan struct{}
	// switches counts backend switches. A model selection that started
	// before a switch must not commit after it.
	switches uint64

	logger     *slog.Logger
	httpClient *http.Client
	vision     duet.VisionDetector
	params     duet.Params
}

// New creates a session with the given configuration. A cloud session
// requires an API key; a local session starts best-effort model
// auto-selection in the background and never blocks on it. Failures
// during auto-selection are logged, not returned.
func New(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if !cfg.UseLocal && cfg.APIKey == "" {
		return nil, &duet.ConfigurationError{
			Reason: "either an API key or the local backend flag is required",
		}
	}

	s := &Session{
		cloudModel: DefaultCloudModel,
		logger:     slog.Default(),
		vision:     duet.DefaultVisionDetector,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")

	if cfg.APIKey != "" {
		cloud, err := google.New(ctx, cfg.APIKey)
		if err != nil {
			if !cfg.UseLocal {
				return nil, &duet.ConfigurationError{Reason: fmt.Sprintf("creating cloud client: %v", err)}
			}
			// Local sessions keep working without a cloud handle.
			s.logger.Warn("cloud client unavailable", "error", err)
		} else {
			s.cloud = cloud
		}
	}

	ready := make(chan struct{})
	s.ready = ready

	if cfg.UseLocal {
		s.kind = duet.BackendLocal
		s.localModel = cfg.Model
		if s.localModel == "" {
			s.localModel = DefaultLocalModel
		}
		s.local = s.newLocalClient(cfg.Endpoint)
		go s.autoSelect(ready)
	} else {
		s.kind = duet.BackendCloud
		if cfg.Model != "" {
			s.cloudModel = cfg.Model
		}
		close(ready)
	}

	return s, nil
}

func (s *Session) newLocalClient(endpoint string) *ollama.Client {
	opts := []ollama.Option{ollama.WithVisionDetector(s.vision)}
	if s.httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(s.httpClient))
	}
	return ollama.New(endpoint, opts...)
}

// Ready returns a channel that closes once local model auto-selection
// has settled (successfully or not). For cloud sessions it is already
// closed. Each switch to the local backend installs a fresh channel.
func (s *Session) Ready() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Backend returns the active backend kind.
func (s *Session) Backend() duet.BackendKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

// Model returns the active model identifier.
func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kind == duet.BackendLocal {
		return s.localModel
	}
	return s.cloudModel
}

// active resolves the backend and model for the next call. A cloud
// session without a live cloud client fails fast.
func (s *Session) active() (duet.Backend, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kind == duet.BackendCloud {
		if s.cloud == nil {
			return nil, "", &duet.ConfigurationError{Reason: "cloud backend active but no cloud client is configured"}
		}
		return s.cloud, s.cloudModel, nil
	}
	return s.local, s.localModel, nil
}

// audioBackend resolves the active backend as audio-capable, or fails
// with an UnsupportedOperationError before any network call.
func (s *Session) audioBackend() (duet.AudioBackend, string, error) {
	b, model, err := s.active()
	if err != nil {
		return nil, "", err
	}
	ab, ok := b.(duet.AudioBackend)
	if !ok {
		return nil, "", &duet.UnsupportedOperationError{
			Op:      "audio description",
			Backend: b.Kind(),
			Model:   model,
			Hint:    "switch to the cloud backend for audio input",
		}
	}
	return ab, model, nil
}

// generate dispatches one request to the active backend with request
// correlation in the logs.
func (s *Session) generate(ctx context.Context, req *duet.GenerationRequest) (string, error) {
	b, model, err := s.active()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	start := time.Now()
	s.logger.Debug("generation request",
		"id", id, "backend", b.Kind(), "model", model, "attachments", len(req.Attachments))
	out, err := b.Generate(ctx, model, req)
	if err != nil {
		s.logger.Warn("generation failed",
			"id", id, "backend", b.Kind(), "model", model, "error", err)
		return "", err
	}
	s.logger.Debug("generation complete", "id", id, "elapsed", time.Since(start))
	return out, nil
}

// requestParams copies the session default generation parameters.
func (s *Session) requestParams() duet.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Chat performs a single-turn completion against the active backend.
func (s *Session) Chat(ctx context.Context, message string) (string, error) {
	return s.generate(ctx, &duet.GenerationRequest{
		Prompt: message,
		Params: s.requestParams(),
	})
}

// ExtractFromImages extracts a structured problem description from the
// given screenshots. The backend must answer with JSON matching
// ProblemInfo; anything else fails with MalformedResponseError.
func (s *Session) ExtractFromImages(ctx context.Context, paths []string) (*ProblemInfo, error) {
	atts, err := encodeImages(paths)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, &duet.GenerationRequest{
		Prompt:      extractionPrompt,
		Attachments: atts,
		Params:      s.requestParams(),
	})
	if err != nil {
		return nil, err
	}
	info, err := duet.Decode[ProblemInfo](raw)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GenerateSolution produces a solution for a previously extracted
// problem, with the same normalization discipline as extraction.
func (s *Session) GenerateSolution(ctx context.Context, info *ProblemInfo) (*SolutionResult, error) {
	raw, err := s.generate(ctx, &duet.GenerationRequest{
		Prompt: solutionPrompt(info),
		Params: s.requestParams(),
	})
	if err != nil {
		return nil, err
	}
	result, err := duet.Decode[SolutionResult](raw)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DebugWithImages combines the prior context, the current answer, and
// fresh screenshots into one request. Response contract matches
// GenerateSolution.
func (s *Session) DebugWithImages(ctx context.Context, info *ProblemInfo, currentCode string, paths []string) (*SolutionResult, error) {
	atts, err := encodeImages(paths)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, &duet.GenerationRequest{
		Prompt:      debugPrompt(info, currentCode),
		Attachments: atts,
		Params:      s.requestParams(),
	})
	if err != nil {
		return nil, err
	}
	result, err := duet.Decode[SolutionResult](raw)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DescribeImage returns a concise free-text description of an image.
// Brevity comes from the prompt, not from truncation.
func (s *Session) DescribeImage(ctx context.Context, path string) (*duet.GenerationResult, error) {
	att, err := duet.ImageFromFile(path)
	if err != nil {
		return nil, err
	}
	text, err := s.generate(ctx, &duet.GenerationRequest{
		Prompt:      describeImagePrompt,
		Attachments: []duet.Attachment{att},
		Params:      s.requestParams(),
	})
	if err != nil {
		return nil, err
	}
	return &duet.GenerationResult{Text: text, Timestamp: time.Now()}, nil
}

// DescribeAudio returns a free-text description of base64-encoded
// audio. Audio is cloud-only: with the local backend active this fails
// with UnsupportedOperationError before any network call, regardless of
// the model name.
func (s *Session) DescribeAudio(ctx context.Context, base64Data, mimeType string) (*duet.GenerationResult, error) {
	ab, model, err := s.audioBackend()
	if err != nil {
		return nil, err
	}
	return s.describeAudio(ctx, ab, model, duet.Attachment{
		Kind:     duet.MediaAudio,
		Base64:   base64Data,
		MimeType: mimeType,
	})
}

// DescribeAudioFile reads and describes an audio file. The capability
// gate applies before the file is touched.
func (s *Session) DescribeAudioFile(ctx context.Context, path string) (*duet.GenerationResult, error) {
	ab, model, err := s.audioBackend()
	if err != nil {
		return nil, err
	}
	att, err := duet.AudioFromFile(path)
	if err != nil {
		return nil, err
	}
	return s.describeAudio(ctx, ab, model, att)
}

func (s *Session) describeAudio(ctx context.Context, ab duet.AudioBackend, model string, att duet.Attachment) (*duet.GenerationResult, error) {
	id := uuid.NewString()
	s.logger.Debug("audio description request", "id", id, "model", model, "mime", att.MimeType)
	text, err := ab.GenerateAudio(ctx, model, &duet.GenerationRequest{
		Prompt:      describeAudioPrompt,
		Attachments: []duet.Attachment{att},
		Params:      s.requestParams(),
	})
	if err != nil {
		s.logger.Warn("audio description failed", "id", id, "model", model, "error", err)
		return nil, err
	}
	return &duet.GenerationResult{Text: text, Timestamp: time.Now()}, nil
}

// ListModels returns the models hosted by the local backend. With the
// cloud backend active, or when discovery fails, it returns an empty
// sequence; discovery failure is diagnostic, never an error.
func (s *Session) ListModels(ctx context.Context) []duet.ModelDescriptor {
	s.mu.RLock()
	kind, local := s.kind, s.local
	s.mu.RUnlock()

	if kind != duet.BackendLocal || local == nil {
		return nil
	}
	models, err := local.ListModels(ctx)
	if err != nil {
		s.logger.Warn("model discovery failed", "endpoint", local.Endpoint(), "error", err)
		return nil
	}
	return models
}

// TestConnection performs a minimal round trip against the active
// backend. It always returns a status, never an error.
func (s *Session) TestConnection(ctx context.Context) ConnectionStatus {
	b, model, err := s.active()
	if err != nil {
		return ConnectionStatus{Error: err.Error()}
	}

	if b.Kind() == duet.BackendLocal {
		s.mu.RLock()
		local := s.local
		s.mu.RUnlock()
		if err := local.Health(ctx); err != nil {
			return ConnectionStatus{Error: err.Error()}
		}
		return ConnectionStatus{Success: true}
	}

	if _, err := b.Generate(ctx, model, &duet.GenerationRequest{Prompt: "ping"}); err != nil {
		return ConnectionStatus{Error: err.Error()}
	}
	return ConnectionStatus{Success: true}
}

// SwitchToLocal makes the local backend active. An empty model re-runs
// auto-selection against the (possibly new) endpoint; an empty endpoint
// keeps the previous one. Switching to local always succeeds.
func (s *Session) SwitchToLocal(model, endpoint string) {
	s.mu.Lock()
	if s.local == nil || (endpoint != "" && endpoint != s.local.Endpoint()) {
		s.local = s.newLocalClient(endpoint)
	}
	s.kind = duet.BackendLocal
	s.switches++
	reselect := model == ""
	if model != "" {
		s.localModel = model
	}
	if s.localModel == "" {
		s.localModel = DefaultLocalModel
	}
	ready := make(chan struct{})
	s.ready = ready
	endpoint = s.local.Endpoint()
	s.mu.Unlock()

	s.logger.Info("switched to local backend", "model", s.Model(), "endpoint", endpoint)
	if reselect {
		go s.autoSelect(ready)
	} else {
		close(ready)
	}
}

// SwitchToCloud makes the cloud backend active. An empty API key
// succeeds only if a cloud client already exists; otherwise the switch
// fails with ConfigurationError and the session is unchanged.
func (s *Session) SwitchToCloud(ctx context.Context, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if apiKey == "" {
		if s.cloud == nil {
			return &duet.ConfigurationError{
				Reason: "switching to cloud requires an API key when no cloud client exists",
			}
		}
	} else {
		cloud, err := google.New(ctx, apiKey)
		if err != nil {
			return &duet.ConfigurationError{Reason: fmt.Sprintf("creating cloud client: %v", err)}
		}
		s.cloud = cloud
	}

	s.kind = duet.BackendCloud
	s.switches++
	ready := make(chan struct{})
	close(ready)
	s.ready = ready
	s.logger.Info("switched to cloud backend", "model", s.cloudModel)
	return nil
}

// autoSelect runs the best-effort local model selection: one attempt
// preferring the configured model, then exactly one retry adopting the
// first listed model. Failures are diagnostic only.
func (s *Session) autoSelect(ready chan struct{}) {
	defer close(ready)
	ctx := context.Background()

	if err := s.selectModel(ctx, true); err != nil {
		s.logger.Warn("model auto-selection failed, retrying once", "error", err)
		if err := s.selectModel(ctx, false); err != nil {
			s.logger.Warn("model auto-selection failed, keeping configured model",
				"model", s.Model(), "error", err)
		}
	}
}

// selectModel picks the active local model from a fresh server list and
// confirms it with one throwaway generation. preferConfigured keeps the
// configured model when the server still hosts it; the retry pass
// always adopts the first listed model. A selection that started before
// a backend switch is discarded rather than committed.
func (s *Session) selectModel(ctx context.Context, preferConfigured bool) error {
	s.mu.RLock()
	local, configured, gen := s.local, s.localModel, s.switches
	s.mu.RUnlock()

	models, err := local.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("no models available at %s", local.Endpoint())
	}

	candidate := models[0].Name
	if preferConfigured {
		for _, m := range models {
			if m.Name == configured {
				candidate = configured
				break
			}
		}
	}

	if _, err := local.Generate(ctx, candidate, &duet.GenerationRequest{Prompt: "ping"}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.switches != gen {
		s.logger.Debug("discarding stale model selection", "model", candidate)
		return nil
	}
	if s.localModel != candidate {
		s.logger.Info("local model auto-selected", "model", candidate, "configured", s.localModel)
		s.localModel = candidate
	}
	return nil
}

// encodeImages encodes all image files concurrently and joins before
// dispatch, preserving input order. Encoding is local file I/O only, so
// no context is threaded through.
func encodeImages(paths []string) ([]duet.Attachment, error) {
	atts := make([]duet.Attachment, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			att, err := duet.ImageFromFile(path)
			if err != nil {
				return err
			}
			atts[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return atts, nil
}
