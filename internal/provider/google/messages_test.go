package google

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/spetersoncode/duet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRequest(t *testing.T) {
	t.Run("text part comes first, blobs in order", func(t *testing.T) {
		req := &duet.GenerationRequest{
			Prompt: "what is shown?",
			Attachments: []duet.Attachment{
				duet.ImageFromBytes([]byte("first")),
				duet.ImageFromBytes([]byte("second")),
			},
		}

		parts, err := convertRequest(req)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		assert.Equal(t, "what is shown?", parts[0].Text)
		assert.Equal(t, []byte("first"), parts[1].InlineData.Data)
		assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
		assert.Equal(t, []byte("second"), parts[2].InlineData.Data)
	})

	t.Run("audio attachment keeps caller MIME type", func(t *testing.T) {
		req := &duet.GenerationRequest{
			Prompt: "describe",
			Attachments: []duet.Attachment{
				{Kind: duet.MediaAudio, Base64: base64.StdEncoding.EncodeToString([]byte("clip")), MimeType: "audio/wav"},
			},
		}

		parts, err := convertRequest(req)
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, "audio/wav", parts[1].InlineData.MIMEType)
	})

	t.Run("audio defaults to audio/mp3", func(t *testing.T) {
		parts, err := convertRequest(&duet.GenerationRequest{
			Prompt:      "describe",
			Attachments: []duet.Attachment{{Kind: duet.MediaAudio, Base64: "Y2xpcA=="}},
		})
		require.NoError(t, err)
		assert.Equal(t, "audio/mp3", parts[1].InlineData.MIMEType)
	})

	t.Run("invalid base64 is a MediaError", func(t *testing.T) {
		_, err := convertRequest(&duet.GenerationRequest{
			Prompt:      "x",
			Attachments: []duet.Attachment{{Kind: duet.MediaImage, Base64: "!!not base64!!"}},
		})
		var merr *duet.MediaError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "decode", merr.Op)
	})
}

func TestWrapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, wrapError("gemini-2.5-flash", nil))
	})

	t.Run("plain error becomes UpstreamError naming the model", func(t *testing.T) {
		cause := errors.New("deadline exceeded")
		err := wrapError("gemini-2.5-flash", cause)

		var uerr *duet.UpstreamError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, duet.BackendCloud, uerr.Backend)
		assert.Equal(t, "gemini-2.5-flash", uerr.Model)
		assert.Equal(t, 0, uerr.Status)
		assert.True(t, errors.Is(err, cause))
	})
}
