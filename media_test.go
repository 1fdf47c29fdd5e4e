package duet

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFromBytes(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4e, 0x47}
	att := ImageFromBytes(data)

	assert.Equal(t, MediaImage, att.Kind)
	assert.Equal(t, "image/png", att.MimeType)

	decoded, err := base64.StdEncoding.DecodeString(att.Base64)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestImageFromFile(t *testing.T) {
	t.Run("encodes file contents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shot.png")
		require.NoError(t, os.WriteFile(path, []byte("fake png bytes"), 0o644))

		att, err := ImageFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, MediaImage, att.Kind)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake png bytes")), att.Base64)
	})

	t.Run("missing file returns MediaError", func(t *testing.T) {
		_, err := ImageFromFile(filepath.Join(t.TempDir(), "nope.png"))
		var merr *MediaError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "read", merr.Op)
	})
}

func TestAudioFromBytes(t *testing.T) {
	t.Run("defaults to audio/mp3", func(t *testing.T) {
		att := AudioFromBytes([]byte("riff"), "")
		assert.Equal(t, MediaAudio, att.Kind)
		assert.Equal(t, "audio/mp3", att.MimeType)
	})

	t.Run("caller MIME type wins", func(t *testing.T) {
		att := AudioFromBytes([]byte("riff"), "audio/webm")
		assert.Equal(t, "audio/webm", att.MimeType)
	})
}

func TestAudioFromFile(t *testing.T) {
	tests := []struct {
		file string
		mime string
	}{
		{"clip.mp3", "audio/mp3"},
		{"clip.wav", "audio/wav"},
		{"clip.ogg", "audio/ogg"},
		{"clip.m4a", "audio/mp4"},
		{"clip.flac", "audio/flac"},
		{"clip.unknown", "audio/mp3"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))

			att, err := AudioFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.mime, att.MimeType)
		})
	}
}

func TestGenerationRequestHelpers(t *testing.T) {
	req := &GenerationRequest{
		Prompt: "look at these",
		Attachments: []Attachment{
			ImageFromBytes([]byte("one")),
			AudioFromBytes([]byte("clip"), ""),
			ImageFromBytes([]byte("two")),
		},
	}

	assert.Len(t, req.Images(), 2)
	assert.True(t, req.HasAudio())

	textOnly := &GenerationRequest{Prompt: "hi"}
	assert.Empty(t, textOnly.Images())
	assert.False(t, textOnly.HasAudio())
}
