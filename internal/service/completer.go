package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultVertexModel   = "gemini-2.0-flash-001"

	systemPrompt = "You are an expert blog content strategist and writer. Follow the requested output format exactly."
)

// OpenAICompleter calls an OpenAI-compatible chat completions endpoint. It
// authenticates with a static API key, or with Google ADC bearer tokens when
// pointed at an OpenAI-compatible Vertex endpoint.
type OpenAICompleter struct {
	baseURL     string
	apiKey      string
	model       string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
}

func NewOpenAICompleter(baseURL, apiKey, model string) *OpenAICompleter {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAICompleter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewGoogleOpenAICompleter authenticates every request with application default credentials.
func NewGoogleOpenAICompleter(ctx context.Context, baseURL, model string) (*OpenAICompleter, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to get default credentials: %w", err)
	}
	c := NewOpenAICompleter(baseURL, "", model)
	c.tokenSource = creds.TokenSource
	return c, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	bearer := c.apiKey
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return "", fmt.Errorf("failed to get token: %w", err)
		}
		bearer = token.AccessToken
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return result.Choices[0].Message.Content, nil
}

// VertexCompleter generates text with a Gemini model on Vertex AI.
type VertexCompleter struct {
	client *genai.Client
	model  string
}

func NewVertexCompleter(ctx context.Context, projectID, location, model string) (*VertexCompleter, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	if model == "" {
		model = defaultVertexModel
	}
	return &VertexCompleter{client: client, model: model}, nil
}

func (c *VertexCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func (c *VertexCompleter) Close() error {
	return c.client.Close()
}
