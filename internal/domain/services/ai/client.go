package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/pkg/logger"
)

// Client provides access to large language model APIs
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     config.LLMConfig
}

// NewClient creates a new LLM client
func NewClient(cfg config.LLMConfig, log *logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Model == "" {
		if cfg.Provider == "claude" {
			cfg.Model = "claude-3-5-haiku-20241022"
		} else {
			cfg.Model = "llama-3.3-70b"
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("llm-client"),
		config: cfg,
	}
}

// Enabled reports whether the client is configured to make calls.
func (c *Client) Enabled() bool {
	return c.config.Enabled && c.config.APIKey != ""
}

// Chat sends a system+user prompt pair and returns the raw completion
// text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	switch c.config.Provider {
	case "claude":
		return c.callClaude(ctx, system, user)
	case "openai", "cerebras", "":
		// Cerebras exposes the OpenAI chat-completions wire format.
		return c.callOpenAI(ctx, system, user)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.config.Provider)
	}
}

// callClaude makes a request to the Anthropic messages API
func (c *Client) callClaude(ctx context.Context, system, user string) (string, error) {
	url := c.config.BaseURL
	if url == "" {
		url = "https://api.anthropic.com"
	}
	url += "/v1/messages"

	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"system":      system,
		"messages": []map[string]interface{}{
			{"role": "user", "content": user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude API error %d: %s", resp.StatusCode, string(body))
	}

	var claudeResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", err
	}

	var content string
	for _, part := range claudeResp.Content {
		if part.Type == "text" {
			content += part.Text
		}
	}
	return content, nil
}

// callOpenAI makes a request to an OpenAI-compatible chat-completions
// endpoint.
func (c *Client) callOpenAI(ctx context.Context, system, user string) (string, error) {
	url := c.config.BaseURL
	if url == "" {
		url = "https://api.openai.com"
	}
	url += "/v1/chat/completions"

	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API error %d: %s", resp.StatusCode, string(body))
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", err
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return openAIResp.Choices[0].Message.Content, nil
}
