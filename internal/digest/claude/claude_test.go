package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/bbqreviews/internal/digest"
	"github.com/vbonduro/bbqreviews/internal/domain"
)

var reviews = []domain.Review{
	{Spot: "Oak & Ember BBQ", Dish: "Brisket Sandwich", Rating: 5, Notes: "Incredible bark."},
}

func TestClaudeSummarize(t *testing.T) {
	var gotPrompt, gotKey, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		gotKey = r.Header.Get("x-api-key")

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		if len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			gotPrompt = req.Messages[0].Content[0].Text
		}

		resp := map[string]interface{}{
			"id":          "msg_01",
			"type":        "message",
			"role":        "assistant",
			"model":       req.Model,
			"stop_reason": "end_turn",
			"content": []map[string]interface{}{
				{"type": "text", "text": "Here is a summary:\nOak & Ember's brisket sandwich earns a perfect 5."},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 12},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := NewClaudeSummarizer("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL+"/v1"))

	summary, err := s.Summarize(context.Background(), reviews)
	require.NoError(t, err)
	assert.Equal(t, "Oak & Ember's brisket sandwich earns a perfect 5.", summary)
	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "claude-3-5-haiku-latest", gotModel)
	assert.Contains(t, gotPrompt, "Oak & Ember BBQ | Brisket Sandwich | 5/5")
}

func TestClaudeSummarizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	s := NewClaudeSummarizer("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL+"/v1"))

	_, err := s.Summarize(context.Background(), reviews)
	assert.Error(t, err)
}

func TestClaudeSummarizeNoReviews(t *testing.T) {
	s := NewClaudeSummarizer("sk-test", "claude-3-5-haiku-latest")

	_, err := s.Summarize(context.Background(), nil)
	assert.ErrorIs(t, err, digest.ErrNoReviews)
}
