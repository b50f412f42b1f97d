package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// ClaudeAPIEndpoint is the Anthropic API endpoint.
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1/messages"
	// ClaudeModel is the default model.
	ClaudeModel = "claude-sonnet-4-20250514"
	// ClaudeFallbackModel is the cheaper model used for the one-shot fallback
	// when the primary reports itself unavailable.
	ClaudeFallbackModel = "claude-3-5-haiku-20241022"
	// ClaudeAPIVersion is the API version.
	ClaudeAPIVersion = "2023-06-01"

	defaultMaxTokens = 4096
)

// Client is a Claude Messages API client. It performs exactly one HTTP call
// per Complete; retry, timeout, and fallback policy live in the Invoker.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	if model == "" {
		model = ClaudeModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: ClaudeAPIEndpoint,
		httpClient: &http.Client{
			// Per-call deadlines come from the caller's context; this is the
			// absolute ceiling.
			Timeout: 120 * time.Second,
		},
	}
	return client
}

// Complete sends one completion request and returns the model's text.
// Unavailability is reported as an error wrapping ErrUnavailable; a context
// deadline surfaces as an error wrapping ErrTimeout.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (text string, err error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:            model,
		MaxTokens:        maxTokens,
		System:           systemPrompt,
		Temperature:      opts.Temperature,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
		Messages: []message{
			{
				Role:    "user",
				Content: userPrompt,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(apiReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return text, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", ClaudeAPIVersion)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			err = errors.Wrap(ErrTimeout, ctx.Err().Error())
			return text, err
		}
		err = errors.Wrap(err, "HTTP request failed")
		return text, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return text, err
	}

	if resp.StatusCode != http.StatusOK {
		err = classifyHTTPFailure(resp.StatusCode, respBody)
		return text, err
	}

	var apiResp apiResponse
	err = json.Unmarshal(respBody, &apiResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse API response: %s", string(respBody))
		return text, err
	}

	if len(apiResp.Content) == 0 {
		err = errors.New("no content in API response")
		return text, err
	}

	text = apiResp.Content[0].Text

	return text, err
}

// classifyHTTPFailure maps an error status to the call-failure taxonomy.
func classifyHTTPFailure(status int, body []byte) (err error) {
	var envelope apiError
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error.Message
	if message == "" {
		message = string(body)
	}

	unavailable := status == http.StatusServiceUnavailable ||
		status == 529 || // Anthropic "overloaded"
		envelope.Error.Type == "overloaded_error" ||
		strings.Contains(strings.ToLower(message), "unavailable") ||
		strings.Contains(strings.ToLower(message), "overloaded")

	if unavailable {
		err = errors.Wrapf(ErrUnavailable, "status %d: %s", status, message)
		return err
	}

	err = errors.Errorf("API request failed with status %d: %s", status, message)
	return err
}

// StripMarkdownCodeFences removes a wrapping ```json ... ``` fence, which
// models emit even when told not to.
func StripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(cleaned, fence) {
			cleaned = cleaned[len(fence):]
			if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
				cleaned = cleaned[:idx]
			}
			cleaned = strings.TrimSpace(cleaned)
			break
		}
	}

	return cleaned
}
