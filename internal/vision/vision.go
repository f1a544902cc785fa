// Package vision estimates nutrition from food photographs through an
// OpenAI-compatible vision chat endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/models"
)

// ErrAnalysisFailed wraps every upstream failure: network errors, non-200
// responses and malformed JSON. Callers surface a single "try again" outcome
// and never retry automatically.
var ErrAnalysisFailed = errors.New("vision analysis failed")

// Analyzer estimates nutrition from image bytes plus an optional caption.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, caption string) (models.FoodEntry, error)
}

// Service calls the configured vision API.
type Service struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// Ensure Service implements Analyzer
var _ Analyzer = (*Service)(nil)

// NewService creates a vision Service from environment variables.
func NewService() (*Service, error) {
	apiKey := os.Getenv("VISION_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("VISION_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("VISION_API_KEY or VISION_API_KEY_FILE must be set")
		}
		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}
		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("VISION_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}
	model := os.Getenv("VISION_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Service{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// message mirrors the chat-completions message shape with image content.
type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type request struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// estimate is the JSON shape the model is asked to produce.
type estimate struct {
	FoodName    string  `json:"food_name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Hydration   float64 `json:"hydration"`
	ServingSize string  `json:"serving_size"`
	Confidence  string  `json:"confidence"`
}

const systemPrompt = `You are a nutrition estimation assistant. Look at the food photo and respond only with JSON:
{
    "food_name": "Short name of the dish or drink",
    "calories": 0,
    "protein": 0,
    "carbs": 0,
    "fat": 0,
    "fiber": 0,
    "hydration": 0,
    "serving_size": "Estimated portion, e.g. 300g or 250ml",
    "confidence": "high, medium or low"
}

All nutrient fields must be non-negative numbers for the whole visible portion.
hydration is the fluid content in ml (0 for solid food).`

// Analyze sends the photo and optional caption to the vision API and parses
// the structured estimate. Every failure mode wraps ErrAnalysisFailed.
func (s *Service) Analyze(ctx context.Context, image []byte, caption string) (models.FoodEntry, error) {
	userParts := []contentPart{
		{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
			},
		},
	}
	if caption != "" {
		userParts = append(userParts, contentPart{
			Type: "text",
			Text: "The sender described it as: " + caption,
		})
	}

	reqBody := request{
		Model: s.model,
		Messages: []message{
			{Role: "system", Content: []contentPart{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: userParts},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: marshal request: %v", ErrAnalysisFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: create request: %v", ErrAnalysisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: read response: %v", ErrAnalysisFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.FoodEntry{}, fmt.Errorf("%w: status %d: %s", ErrAnalysisFailed, resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: decode response: %v", ErrAnalysisFailed, err)
	}
	if len(result.Choices) == 0 {
		return models.FoodEntry{}, fmt.Errorf("%w: no choices in response", ErrAnalysisFailed)
	}

	return parseEstimate(result.Choices[0].Message.Content)
}

// parseEstimate converts the model's JSON into a FoodEntry, clamping
// negatives and normalizing the confidence label.
func parseEstimate(content string) (models.FoodEntry, error) {
	var est estimate
	if err := json.Unmarshal([]byte(content), &est); err != nil {
		return models.FoodEntry{}, fmt.Errorf("%w: parse estimate: %v", ErrAnalysisFailed, err)
	}
	if est.FoodName == "" {
		return models.FoodEntry{}, fmt.Errorf("%w: estimate has no food name", ErrAnalysisFailed)
	}

	entry := models.FoodEntry{
		FoodName:    est.FoodName,
		Calories:    clamp(est.Calories),
		Protein:     clamp(est.Protein),
		Carbs:       clamp(est.Carbs),
		Fat:         clamp(est.Fat),
		Fiber:       clamp(est.Fiber),
		Hydration:   clamp(est.Hydration),
		ServingSize: est.ServingSize,
		Confidence:  normalizeConfidence(est.Confidence),
	}
	return entry, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func normalizeConfidence(c string) models.Confidence {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "high":
		return models.ConfidenceHigh
	case "low":
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}
