// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService implements the adapter.CategorySuggester using Google Gemini.
type GeminiService struct {
	apiKey    string
	modelName string
}

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		apiKey:    apiKey,
		modelName: "gemini-2.5-flash-lite",
	}
}

// IsAvailable checks if the Gemini service is available and properly configured.
func (s *GeminiService) IsAvailable() bool {
	return s.apiKey != ""
}

// Suggest returns a spending category for the given merchant and description.
func (s *GeminiService) Suggest(ctx context.Context, merchant, description string) (string, error) {
	if !s.IsAvailable() {
		return "", fmt.Errorf("gemini service is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	prompt := s.buildPrompt(merchant, description)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return s.parseResponse(resp)
}

// buildPrompt creates the prompt for Gemini.
func (s *GeminiService) buildPrompt(merchant, description string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert at categorizing recurring financial transactions. ")
	sb.WriteString("Given a merchant and description, answer with a single concise spending category ")
	sb.WriteString("such as Housing, Utilities, Subscriptions, Insurance, Health, Transport, Income.\n\n")
	sb.WriteString(fmt.Sprintf("Merchant: %s\n", merchant))
	sb.WriteString(fmt.Sprintf("Description: %s\n\n", description))
	sb.WriteString(`Respond with JSON in the form {"category": "<name>"}.`)

	return sb.String()
}

// parseResponse extracts the suggested category from the model response.
func (s *GeminiService) parseResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(raw.String()), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	return strings.TrimSpace(parsed.Category), nil
}
