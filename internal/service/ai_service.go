package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bytebolt/bytebolt-api/internal/metrics"
)

// techKeywords is the fixed allow-list of technology topics the assistant
// answers about. Prompts that match none of these are refused without
// calling the remote API.
var techKeywords = []string{
	"programming language", "code", "software", "hardware", "computer", "technology", "digital", "developer", "founder",
	"internet", "web", "mobile", "app", "database", "cloud", "security", "network",
	"algorithm", "data", "development", "engineering", "system", "platform", "framework",
	"language", "api", "server", "client", "frontend", "backend", "devops", "ai",
	"machine learning", "artificial intelligence", "blockchain", "cryptography", "cybersecurity",
}

// refusalMessage is returned verbatim for off-topic prompts.
const refusalMessage = "I apologize, but I'm specifically designed to assist with technology-related queries only. " +
	"Please ask questions about programming, software development, hardware, or other technical topics. " +
	"For non-technical questions, I recommend consulting appropriate resources or experts in those fields."

// AIService generates assistant replies via a Gemini-style generateContent
// REST endpoint. All remote calls are bounded by the configured timeout.
type AIService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewAIService creates a text generation client. metrics is optional.
func NewAIService(baseURL, apiKey, model string, timeout time.Duration, m *metrics.Metrics) *AIService {
	return &AIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// isTechRelated reports whether the prompt matches the topic allow-list
func isTechRelated(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, keyword := range techKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// generateContent request/response wire format

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
	SafetySettings   []safetySetting   `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// GenerateReply returns the assistant's reply for a prompt. Off-topic
// prompts get the canned refusal without any remote call. Remote failures
// surface as ErrAIUnavailable / ErrAIRateLimited.
func (s *AIService) GenerateReply(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty: %w", ErrAIUnavailable)
	}

	if !isTechRelated(prompt) {
		if s.metrics != nil {
			s.metrics.AIRefusals.Inc()
		}
		return refusalMessage, nil
	}

	if s.apiKey == "" {
		return "", fmt.Errorf("api key is not configured: %w", ErrAIUnavailable)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		SafetySettings: defaultSafetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.countRequest("transport_error")
		return "", fmt.Errorf("generateContent request failed: %w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		s.countRequest("rate_limited")
		return "", fmt.Errorf("generateContent: %w", ErrAIRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		s.countRequest("error")
		log.Printf("[AIService] generateContent returned status %d", resp.StatusCode)
		return "", fmt.Errorf("generateContent status %d: %w", resp.StatusCode, ErrAIUnavailable)
	}

	var parsed generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		s.countRequest("bad_response")
		return "", fmt.Errorf("failed to decode response: %w: %v", ErrAIUnavailable, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		s.countRequest("bad_response")
		return "", fmt.Errorf("empty candidates in response: %w", ErrAIUnavailable)
	}

	s.countRequest("ok")
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func (s *AIService) countRequest(status string) {
	if s.metrics != nil {
		s.metrics.AIRequests.WithLabelValues(status).Inc()
	}
}
