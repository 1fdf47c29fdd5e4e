package google

import (
	"errors"

	"github.com/spetersoncode/duet"
	"google.golang.org/genai"
)

// wrapError converts a GenAI SDK failure into an UpstreamError naming
// the model. API errors carry their HTTP status code; transport errors
// pass through with status 0.
func wrapError(model string, err error) error {
	if err == nil {
		return nil
	}

	upstream := &duet.UpstreamError{
		Backend: duet.BackendCloud,
		Model:   model,
		Cause:   err,
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		upstream.Status = apiErr.Code
	}
	return upstream
}
