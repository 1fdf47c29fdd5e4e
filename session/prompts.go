package session

import (
	"encoding/json"
	"fmt"
)

// Fixed prompt templates for the structured and descriptive operations.
// Each structured prompt names the exact JSON shape the normalizer
// expects back.

const extractionPrompt = `Analyze the attached screenshots and extract the question or problem they show.
Respond with a single JSON object and no markdown formatting, with exactly these fields:
{
  "problem_statement": "the full problem or question being asked",
  "context": "relevant background, constraints, or examples",
  "suggested_responses": ["possible answers or approaches"],
  "reasoning": "why these responses fit the problem"
}`

const describeImagePrompt = `Describe the visible content of this image concisely, in two or three sentences.`

const describeAudioPrompt = `Listen to this audio clip and describe its content concisely: who is speaking, what is said or played, and anything notable about tone or setting.`

func solutionPrompt(info *ProblemInfo) string {
	ctxJSON, _ := json.MarshalIndent(info, "", "  ")
	return fmt.Sprintf(`You are given this extracted problem:

%s

Produce the best solution. Respond with a single JSON object and no markdown formatting, shaped exactly like this:
{
  "solution": {
    "code": "the code or direct answer",
    "problem_statement": "the problem restated",
    "context": "relevant background and constraints",
    "suggested_responses": ["alternative answers or approaches"],
    "reasoning": "why this solution is correct"
  }
}`, ctxJSON)
}

func debugPrompt(info *ProblemInfo, currentCode string) string {
	ctxJSON, _ := json.MarshalIndent(info, "", "  ")
	return fmt.Sprintf(`You are given this extracted problem:

%s

The current attempt is:

%s

The attached screenshots show new information such as error messages or failing tests. Debug the attempt and produce a corrected solution. Respond with a single JSON object and no markdown formatting, shaped exactly like this:
{
  "solution": {
    "code": "the corrected code or answer",
    "problem_statement": "the problem restated",
    "context": "relevant background and constraints",
    "suggested_responses": ["alternative answers or approaches"],
    "reasoning": "what was wrong and why this fix is correct"
  }
}`, ctxJSON, currentCode)
}
