package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const togetherEndpoint = "https://api.together.xyz/v1/chat/completions"

// DefaultTogetherModel is used when no model is configured.
const DefaultTogetherModel = "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"

// TogetherClient implements Client using the Together AI chat completions
// API (OpenAI-compatible envelope).
type TogetherClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewTogetherClient creates a client for the Together AI API.
// Model defaults to DefaultTogetherModel if empty.
func NewTogetherClient(apiKey, model string) *TogetherClient {
	if model == "" {
		model = DefaultTogetherModel
	}
	return &TogetherClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: togetherEndpoint,
		// The backend call is bounded by a fixed timeout; on expiry it is
		// treated like any other failure, not retried.
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Model returns the configured model identifier.
func (c *TogetherClient) Model() string { return c.model }

func (c *TogetherClient) Complete(ctx context.Context, system, user string) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  2048,
		"temperature": 0.7,
		"top_p":       0.9,
		// Llama stop tokens; harmless for other model families.
		"stop": []string{"<|eot_id|>", "<|end_of_text|>"},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("together API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	if result.Usage.TotalTokens > 0 {
		log.Printf("together tokens: %d input, %d output, %d total",
			result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens)
	}

	return result.Choices[0].Message.Content, nil
}
