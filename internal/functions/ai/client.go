package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured indicates the AI client is not configured
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrAPICallFailed indicates the AI API call failed
	ErrAPICallFailed = errors.New("AI API call failed")
	// ErrInvalidResponse indicates an invalid response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
)

// Provider represents an AI provider
type Provider string

const (
	// ProviderOpenAI represents OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderAzure represents Azure OpenAI API
	ProviderAzure Provider = "azure"
	// ProviderCustom represents a custom OpenAI-compatible endpoint
	ProviderCustom Provider = "custom"
)

const defaultModel = "gpt-4o-2024-08-06"

// MaxLabels caps the number of labels accepted from the model
const MaxLabels = 2

// EmailInput is the validated email content handed to the generator.
// Attachments carries the delivery's serialized attachment descriptors so the
// prompt sees the full payload; it is dropped from the prompt when absent.
type EmailInput struct {
	MessageID   string          `json:"MessageID"`
	Subject     string          `json:"Subject"`
	From        string          `json:"From"`
	To          string          `json:"To"`
	Date        string          `json:"Date"`
	TextBody    string          `json:"TextBody"`
	Attachments json.RawMessage `json:"Attachments,omitempty"`
}

// SummaryResult is the structured object returned by the generation call
type SummaryResult struct {
	Summary string   `json:"summary"`
	Labels  []string `json:"labels"`
}

// Client handles structured-output generation calls for inbound emails
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	configured bool
}

// NewClient creates a new AI Client instance
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configure configures the AI client with provider settings.
// An empty baseURL selects the provider default.
func (c *Client) Configure(provider, apiKey, model, baseURL string) {
	c.provider = Provider(strings.ToLower(provider))
	c.apiKey = apiKey
	c.model = model
	c.configured = apiKey != ""

	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	} else {
		switch c.provider {
		case ProviderAzure, ProviderCustom:
			// These require an explicit base URL; leave unset so calls fail
			// with ErrNotConfigured instead of hitting the wrong host.
			c.configured = false
		default:
			c.provider = ProviderOpenAI
			c.baseURL = "https://api.openai.com/v1"
		}
	}
	if c.model == "" {
		c.model = defaultModel
	}
}

// SetBaseURL sets a custom base URL for the API
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
	if c.apiKey != "" {
		c.configured = true
	}
}

// IsConfigured returns whether the client is configured
func (c *Client) IsConfigured() bool {
	return c.configured && c.apiKey != "" && c.baseURL != ""
}

// chatRequest represents a chat completion request with structured output
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat constrains the model to a JSON schema (OpenAI structured outputs)
type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// summarySchema declares the {summary, labels} object the model must return
var summarySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"labels": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["summary", "labels"],
	"additionalProperties": false
}`)

// chatResponse represents a chat completion response
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateSummary asks the model for a 1-2 sentence summary and 1-2 topical
// labels for the given email. The call is constrained to the {summary, labels}
// schema; it is never retried, and any failure is returned to the caller.
func (c *Client) GenerateSummary(ctx context.Context, email EmailInput) (*SummaryResult, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	emailJSON, err := json.Marshal(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	prompt := fmt.Sprintf(
		"Generate a summary and labels for the following email: %s. "+
			"The summary should be a 1-2 sentences and only generate 1-2 labels that are relevant to the email.",
		emailJSON,
	)

	content, err := c.sendChatRequest(ctx, []chatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var result SummaryResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}

	if result.Labels == nil {
		result.Labels = []string{}
	}
	if len(result.Labels) > MaxLabels {
		result.Labels = result.Labels[:MaxLabels]
	}

	return &result, nil
}

// sendChatRequest sends a structured-output chat completion request to the AI API
func (c *Client) sendChatRequest(ctx context.Context, messages []chatMessage) (string, error) {
	request := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.3,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "email_summary",
				Strict: true,
				Schema: summarySchema,
			},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	switch c.provider {
	case ProviderAzure:
		req.Header.Set("api-key", c.apiKey)
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
