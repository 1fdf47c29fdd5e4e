package google

import (
	"encoding/base64"

	"github.com/spetersoncode/duet"
	"google.golang.org/genai"
)

// convertRequest builds the ordered part list for a generation request:
// the text prompt first, then each attachment as an inline blob.
func convertRequest(req *duet.GenerationRequest) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	if req.Prompt != "" {
		parts = append(parts, &genai.Part{Text: req.Prompt})
	}
	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Base64)
		if err != nil {
			return nil, &duet.MediaError{Op: "decode", Path: "base64", Err: err}
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     data,
				MIMEType: mimeTypeFor(att),
			},
		})
	}
	return parts, nil
}

// mimeTypeFor returns the attachment's MIME type, defaulting per kind.
func mimeTypeFor(att duet.Attachment) string {
	if att.MimeType != "" {
		return att.MimeType
	}
	if att.Kind == duet.MediaAudio {
		return "audio/mp3"
	}
	return "image/png"
}
