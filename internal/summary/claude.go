// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/pdiddy/gene-scout/pkg/types"
)

// summaryPromptTmpl is the prompt sent to the Claude API. It embeds the
// aggregate record as JSON and asks for a plain-language summary.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are a bioinformatics assistant. Summarize the following JSON record of annotation data collected for a {{.Kind}} query.

Cover, where the data supports it:
- what the {{.Kind}} is and where it is located
- clinical significance and known phenotype associations
- population frequency and predicted functional impact
- which data sources contributed and any notable gaps

Write a few short paragraphs of plain prose. Do not invent findings that are not in the data.

Collected data:
{{.Data}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const claudeTimeout = 60 * time.Second

// ClaudeSummarizer calls the Claude Messages API to summarize an
// aggregate record. The API key is injected at construction; the package
// never reads credentials from the environment itself.
type ClaudeSummarizer struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Summarize renders the prompt with the record and returns the model's
// text response.
func (c *ClaudeSummarizer) Summarize(ctx context.Context, rec types.AggregateRecord) (string, error) {
	prompt, err := renderPrompt(rec)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 2048,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, claudeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

// renderPrompt executes the summary prompt template with the record's
// kind and JSON form.
func renderPrompt(rec types.AggregateRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling record: %w", err)
	}
	var buf bytes.Buffer
	err = summaryPromptTmpl.Execute(&buf, struct {
		Kind types.QueryKind
		Data string
	}{Kind: rec.Kind, Data: string(data)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
