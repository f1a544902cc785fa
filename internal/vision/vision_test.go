package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrace/mealtrace-bot/internal/models"
)

func newTestService(url string) *Service {
	return &Service{
		apiKey: "test-key",
		apiURL: url,
		model:  "test-model",
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestAnalyze(t *testing.T) {
	var gotAuth string
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse(
			`{"food_name":"Margherita pizza","calories":285,"protein":12,"carbs":36,"fat":10,"fiber":2,"hydration":0,"serving_size":"1 slice","confidence":"high"}`,
		))
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(srv.URL)
	entry, err := svc.Analyze(context.Background(), []byte("jpeg bytes"), "lunch at home")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	// photo first, then the caption hint
	user := gotReq.Messages[1]
	require.Len(t, user.Content, 2)
	assert.Contains(t, user.Content[0].ImageURL.URL, "data:image/jpeg;base64,")
	assert.Contains(t, user.Content[1].Text, "lunch at home")

	assert.Equal(t, "Margherita pizza", entry.FoodName)
	assert.Equal(t, 285.0, entry.Calories)
	assert.Equal(t, "1 slice", entry.ServingSize)
	assert.Equal(t, models.ConfidenceHigh, entry.Confidence)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(srv.URL)
	_, err := svc.Analyze(context.Background(), []byte("jpeg bytes"), "")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(completionResponse("I can't tell what this is."))
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(srv.URL)
	_, err := svc.Analyze(context.Background(), []byte("jpeg bytes"), "")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(srv.URL)
	_, err := svc.Analyze(context.Background(), []byte("jpeg bytes"), "")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestParseEstimate(t *testing.T) {
	t.Run("clamps negatives", func(t *testing.T) {
		entry, err := parseEstimate(`{"food_name":"Oddity","calories":-50,"protein":3}`)
		require.NoError(t, err)
		assert.Equal(t, 0.0, entry.Calories)
		assert.Equal(t, 3.0, entry.Protein)
	})

	t.Run("unknown confidence becomes medium", func(t *testing.T) {
		entry, err := parseEstimate(`{"food_name":"Soup","confidence":"fairly sure"}`)
		require.NoError(t, err)
		assert.Equal(t, models.ConfidenceMedium, entry.Confidence)
	})

	t.Run("missing food name fails", func(t *testing.T) {
		_, err := parseEstimate(`{"calories":100}`)
		assert.ErrorIs(t, err, ErrAnalysisFailed)
	})
}

func TestNewServiceRequiresKey(t *testing.T) {
	t.Setenv("VISION_API_KEY", "")
	t.Setenv("VISION_API_KEY_FILE", "")

	_, err := NewService()
	assert.Error(t, err)
}
