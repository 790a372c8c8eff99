package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/tale-engine/pkg/narrator"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"

	DefaultVeniceTemperature = 0.7
	DefaultVeniceMaxTokens   = 256
)

// VeniceService implements the narrator.Embellisher port against the Venice
// AI chat completions API. It is flavor only: callers fall back to canned
// lines whenever it errors.
type VeniceService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
}

// Ensure VeniceService implements the embellishment port
var _ narrator.Embellisher = (*VeniceService)(nil)

type veniceChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type veniceParameters struct {
	IncludeVeniceSystemPrompt bool `json:"include_venice_system_prompt"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model            string              `json:"model"`
	Messages         []veniceChatMessage `json:"messages"`
	Temperature      float64             `json:"temperature,omitempty"`
	MaxTokens        int                 `json:"max_tokens,omitempty"`
	Stream           bool                `json:"stream"`
	VeniceParameters veniceParameters    `json:"venice_parameters"`
}

// VeniceChatChoice represents a single choice in the Venice AI response
type VeniceChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// VeniceChatResponse represents the response structure for Venice AI chat completions
type VeniceChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []VeniceChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a new Venice AI embellishment service
func NewVeniceService(apiKey string, modelName string) *VeniceService {
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const embellishSystemPrompt = `You rewrite a single line of game dialogue in the speaker's voice. Keep the meaning intact, keep it to one short line, and output only the rewritten line with no quotes or commentary.`

// Embellish rewrites a canned line in the speaker's style.
func (v *VeniceService) Embellish(ctx context.Context, line string, speaker string) (string, error) {
	prompt := line
	if speaker != "" {
		prompt = fmt.Sprintf("Speaker: %s\nLine: %s", speaker, line)
	}

	reqBody := VeniceChatRequest{
		Model: v.modelName,
		Messages: []veniceChatMessage{
			{Role: "system", Content: embellishSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: DefaultVeniceTemperature,
		MaxTokens:   DefaultVeniceMaxTokens,
		Stream:      false,
		VeniceParameters: veniceParameters{
			IncludeVeniceSystemPrompt: false,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal venice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, veniceBaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create venice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("venice request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read venice response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("venice returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp VeniceChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse venice response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("venice error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("venice returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
