// Package gemini implements llm.Client on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"applygen-backend/internal/llm"
	"applygen-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Client implements llm.Client using the Gemini API backend.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Complete sends one generation request and returns the response text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.8),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}
	if reason := resp.Candidates[0].FinishReason; reason == genai.FinishReasonSafety {
		return "", fmt.Errorf("gemini response blocked: %s", reason)
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	fields := map[string]any{"model": c.model, "purpose": req.Purpose}
	if usage := resp.UsageMetadata; usage != nil {
		fields["promptTokens"] = usage.PromptTokenCount
		fields["completionTokens"] = usage.CandidatesTokenCount
		fields["totalTokens"] = usage.TotalTokenCount
	}
	telemetry.Debug("llm.response", fields)
	return content, nil
}

var _ llm.Client = (*Client)(nil)
