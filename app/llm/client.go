package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const translateSystemPrompt = "You are a professional Chinese-to-English translator " +
	"specializing in news articles, legal documents, and adverse media reports. " +
	"Translate the following Chinese text into clear, accurate English. Preserve " +
	"paragraph structure. Do not add commentary — only output the translation."

const summarizeSystemPrompt = "You are an analyst producing concise executive summaries of " +
	"adverse media articles for compliance and due-diligence teams. " +
	"Given the English translation of a Chinese article, produce a structured summary in this exact format:\n\n" +
	"OVERVIEW: 2-3 sentence summary of the article.\n\n" +
	"KEY ENTITIES: Bullet list of people, companies, or organizations mentioned. " +
	"Write each name in both Chinese and English, e.g. '张三 (Zhang San)' or '新华社 (Xinhua News Agency)'.\n\n" +
	"KEY CLAIMS: Bullet list of the main allegations, findings, or events.\n\n" +
	"KEY DATES: Bullet list of any significant dates mentioned.\n\n" +
	"Use plain text with bullet points (- ). Be concise and factual. " +
	"Do not add commentary beyond what is in the article."

const entitySystemPrompt = "You are an entity extraction assistant. Extract all key entities " +
	"(people, companies, organizations, government bodies, locations, laws/regulations) " +
	"from the provided article text. For each entity, count how many times it is mentioned in the article. " +
	"Return ONLY a JSON array like: [{\"entity\": \"Name\", \"type\": \"person\", \"mentions\": 3}, ...]. " +
	"Use these types: person, company, organization, government, location, regulation, other. " +
	"Include both Chinese and English names if both appear — combine them as one entry using the format " +
	"'English Name (中文名)'. Do not include generic terms. Only return the JSON array, no other text."

// Client calls an OpenAI-compatible chat completion API (DeepSeek by default)
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// NewClient builds an LLM client. The timeout bounds every request so a stuck
// upstream surfaces as an error instead of hanging the caller.
func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Translate renders Chinese source text into English
func (c *Client) Translate(ctx context.Context, chineseText string) (string, error) {
	result, err := c.chat(ctx, translateSystemPrompt, chineseText, 0)
	if err != nil {
		return "", &TranslationError{Stage: "translate", Err: err}
	}
	if result == "" {
		return "", &TranslationError{Stage: "translate"}
	}
	return result, nil
}

// Summarize produces an executive summary of translated article text
func (c *Client) Summarize(ctx context.Context, englishText string) (string, error) {
	result, err := c.chat(ctx, summarizeSystemPrompt, englishText, 0)
	if err != nil {
		return "", &TranslationError{Stage: "summarize", Err: err}
	}
	if result == "" {
		return "", &TranslationError{Stage: "summarize"}
	}
	return result, nil
}

// ExtractEntities pulls named entities out of article text. An article with no
// extractable entities returns an empty slice, not an error.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	result, err := c.chat(ctx, entitySystemPrompt, text, 2000)
	if err != nil {
		return nil, fmt.Errorf("entity extraction failed: %w", err)
	}

	raw := stripMarkdownFences(result)
	if raw == "" {
		return nil, fmt.Errorf("entity extraction returned empty response")
	}

	var entities []Entity
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entity response: %w", err)
	}

	filtered := entities[:0]
	for _, entity := range entities {
		if strings.TrimSpace(entity.Name) == "" {
			continue
		}
		if entity.Mentions < 1 {
			entity.Mentions = 1
		}
		filtered = append(filtered, entity)
	}

	return filtered, nil
}

// chatRequest and chatResponse follow the OpenAI chat completion wire format

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) chat(ctx context.Context, systemPrompt, userContent string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("LLM API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM API")
	}

	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
