package llm

// Options tunes a single completion call.
type Options struct {
	Model            string  // override the client default
	Temperature      float64 // 0 means API default
	MaxTokens        int     // 0 means client default
	PresencePenalty  float64
	FrequencyPenalty float64
}

// apiRequest is the Messages API request body.
type apiRequest struct {
	Model            string    `json:"model"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Temperature      float64   `json:"temperature,omitempty"`
	PresencePenalty  float64   `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64   `json:"frequency_penalty,omitempty"`
	Messages         []message `json:"messages"`
}

// apiResponse is the Messages API response body.
type apiResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   usage     `json:"usage"`
}

// apiError is the Messages API error envelope.
type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
