package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis is the structured enrichment for one memo.
type Analysis struct {
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

const analyzePrompt = `You are a note-taking assistant. Analyze the memo below and respond with a single JSON object, nothing else:
{"tags": ["up to 5 short tags"], "category": "one category", "summary": "one sentence summary", "keywords": ["up to 8 search keywords"]}
Respond in the language of the memo.

Memo:
`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze asks the model for tags, a category, a summary and search keywords
// for the given memo content.
func (c *Client) Analyze(ctx context.Context, content string) (*Analysis, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: analyzePrompt + content},
		},
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("ai: empty completion")
	}

	analysis, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("ai: bad analysis: %w", err)
	}
	return analysis, nil
}

// parseAnalysis decodes the model output, tolerating markdown code fences
// around the JSON object.
func parseAnalysis(text string) (*Analysis, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
