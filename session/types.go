package session

// ProblemInfo is the structured problem description extracted from
// screenshots.
type ProblemInfo struct {
	ProblemStatement   string   `json:"problem_statement"`
	Context            string   `json:"context"`
	SuggestedResponses []string `json:"suggested_responses"`
	Reasoning          string   `json:"reasoning"`
}

// Solution is the inner solution object produced by GenerateSolution
// and DebugWithImages.
type Solution struct {
	Code               string   `json:"code"`
	ProblemStatement   string   `json:"problem_statement"`
	Context            string   `json:"context"`
	SuggestedResponses []string `json:"suggested_responses"`
	Reasoning          string   `json:"reasoning"`
}

// SolutionResult wraps a Solution under the nested "solution" key the
// generation prompts demand.
type SolutionResult struct {
	Solution Solution `json:"solution"`
}

// ConnectionStatus reports the outcome of TestConnection. Error carries
// a human-readable cause when Success is false.
type ConnectionStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
