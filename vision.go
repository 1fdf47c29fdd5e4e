package duet

import "strings"

// VisionDetector reports whether a local model can accept image input.
// Vision support is not queried from the server; it is inferred from the
// model name. The detector is pluggable so new model families can be
// added without touching dispatch logic.
type VisionDetector func(model string) bool

// visionFamilies are model-name substrings of known vision-capable
// local model families.
var visionFamilies = []string{
	"llava",
	"bakllava",
	"llama3.2-vision",
	"minicpm-v",
	"moondream",
	"granite3.2-vision",
	"qwen2.5vl",
	"qwen2-vl",
	"gemma3",
	"mllama",
}

// DefaultVisionDetector matches the model name against known
// vision-capable family names, case-insensitively.
func DefaultVisionDetector(model string) bool {
	lower := strings.ToLower(model)
	for _, family := range visionFamilies {
		if strings.Contains(lower, family) {
			return true
		}
	}
	return false
}

// VisionModelSuggestions lists known vision-capable families for use in
// capability-gate error messages.
func VisionModelSuggestions() []string {
	out := make([]string, len(visionFamilies))
	copy(out, visionFamilies)
	return out
}
