package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vbonduro/bbqreviews/internal/digest"
	"github.com/vbonduro/bbqreviews/internal/domain"
)

type OllamaSummarizer struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaSummarizer(host, model string) *OllamaSummarizer {
	return &OllamaSummarizer{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (s *OllamaSummarizer) Summarize(ctx context.Context, reviews []domain.Review) (string, error) {
	prompt, err := digest.BuildPrompt(reviews)
	if err != nil {
		return "", err
	}

	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return digest.CleanResponse(respBody.Response), nil
}
