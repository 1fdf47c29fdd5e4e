package duet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultVisionDetector(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"llava", true},
		{"llava:13b", true},
		{"LLaVA:latest", true},
		{"bakllava", true},
		{"llama3.2-vision:11b", true},
		{"minicpm-v:8b", true},
		{"moondream", true},
		{"gemma3:4b", true},
		{"qwen2.5vl:7b", true},
		{"llama3.2", false},
		{"mistral:7b", false},
		{"deepseek-r1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultVisionDetector(tt.model))
		})
	}
}

func TestVisionModelSuggestions(t *testing.T) {
	suggestions := VisionModelSuggestions()
	assert.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions, "llava")

	// Returned slice is a copy; mutating it must not affect the detector.
	suggestions[0] = "not-a-vision-model"
	assert.True(t, DefaultVisionDetector("llava"))
}
