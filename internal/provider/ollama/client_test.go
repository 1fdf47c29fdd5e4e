package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spetersoncode/duet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults endpoint", func(t *testing.T) {
		c := New("")
		assert.Equal(t, DefaultEndpoint, c.Endpoint())
		assert.Equal(t, duet.BackendLocal, c.Kind())
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c := New("http://box:11434/")
		assert.Equal(t, "http://box:11434", c.Endpoint())
	})
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body.Model)
		assert.Equal(t, "Hello", body.Prompt)
		assert.False(t, body.Stream)
		assert.Empty(t, body.Images)
		require.NotNil(t, body.Options)
		assert.Equal(t, 0.7, *body.Options.Temperature)

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "Hi there", Done: true})
	}))
	defer server.Close()

	temp := 0.7
	c := New(server.URL)
	out, err := c.Generate(context.Background(), "llama3.2", &duet.GenerationRequest{
		Prompt: "Hello",
		Params: duet.Params{Temperature: &temp},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out)
}

func TestGenerateOmitsOptionsWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Nil(t, body.Options)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Generate(context.Background(), "llama3.2", &duet.GenerationRequest{Prompt: "hi"})
	require.NoError(t, err)
}

func TestGenerateWithImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"aW1hZ2Ux", "aW1hZ2Uy"}, body.Images)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "two images", Done: true})
	}))
	defer server.Close()

	c := New(server.URL)
	out, err := c.Generate(context.Background(), "llava", &duet.GenerationRequest{
		Prompt: "what do you see?",
		Attachments: []duet.Attachment{
			{Kind: duet.MediaImage, Base64: "aW1hZ2Ux", MimeType: "image/png"},
			{Kind: duet.MediaImage, Base64: "aW1hZ2Uy", MimeType: "image/png"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "two images", out)
}

func TestGenerateVisionGate(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "should not happen", Done: true})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Generate(context.Background(), "llama3.2", &duet.GenerationRequest{
		Prompt: "look at this",
		Attachments: []duet.Attachment{
			{Kind: duet.MediaImage, Base64: "aW1n", MimeType: "image/png"},
		},
	})

	var uerr *duet.UnsupportedOperationError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "llama3.2", uerr.Model)
	assert.Contains(t, uerr.Hint, "llava")
	assert.Equal(t, int64(0), calls.Load(), "vision gate must reject before any network call")
}

func TestGenerateAudioGate(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "should not happen", Done: true})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Generate(context.Background(), "llava", &duet.GenerationRequest{
		Prompt: "transcribe this",
		Attachments: []duet.Attachment{
			{Kind: duet.MediaAudio, Base64: "Y2xpcA==", MimeType: "audio/mp3"},
		},
	})

	var uerr *duet.UnsupportedOperationError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "audio input", uerr.Op)
	assert.Equal(t, duet.BackendLocal, uerr.Backend)
	assert.Equal(t, int64(0), calls.Load(), "audio gate must reject before any network call")
}

func TestGenerateVisionDetectorOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "seen", Done: true})
	}))
	defer server.Close()

	c := New(server.URL, WithVisionDetector(func(model string) bool { return model == "experimental-vl" }))
	out, err := c.Generate(context.Background(), "experimental-vl", &duet.GenerationRequest{
		Prompt:      "look",
		Attachments: []duet.Attachment{{Kind: duet.MediaImage, Base64: "aW1n"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "seen", out)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model load failed"))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Generate(context.Background(), "llama3.2", &duet.GenerationRequest{Prompt: "hi"})

	var uerr *duet.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusInternalServerError, uerr.Status)
	assert.Equal(t, duet.BackendLocal, uerr.Backend)
	assert.Contains(t, uerr.Error(), "llama3.2")
}

func TestGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	c := New(server.URL)
	_, err := c.Generate(context.Background(), "llama3.2", &duet.GenerationRequest{Prompt: "hi"})
	assert.True(t, duet.IsUpstream(err))
}

func TestListModels(t *testing.T) {
	t.Run("returns names in server order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/tags", r.URL.Path)
			require.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2","size":123},{"name":"llava:13b"}]}`))
		}))
		defer server.Close()

		c := New(server.URL)
		models, err := c.ListModels(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []duet.ModelDescriptor{{Name: "llama3.2"}, {Name: "llava:13b"}}, models)
	})

	t.Run("server failure is an UpstreamError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := New(server.URL)
		_, err := c.ListModels(context.Background())
		assert.True(t, duet.IsUpstream(err))
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/", r.URL.Path)
			_, _ = w.Write([]byte("Ollama is running"))
		}))
		defer server.Close()

		c := New(server.URL)
		assert.NoError(t, c.Health(context.Background()))
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		c := New(server.URL)
		err := c.Health(context.Background())
		assert.True(t, duet.IsUpstream(err))
	})
}
