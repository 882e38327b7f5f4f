package claude

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/bbqreviews/internal/digest"
	"github.com/vbonduro/bbqreviews/internal/domain"
)

// maxTokens leaves room for a few sentences; summaries are short by prompt.
const maxTokens = 512

type ClaudeSummarizer struct {
	client *anthropic.Client
	model  string
}

func NewClaudeSummarizer(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeSummarizer {
	return &ClaudeSummarizer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeSummarizer) Summarize(ctx context.Context, reviews []domain.Review) (string, error) {
	prompt, err := digest.BuildPrompt(reviews)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText {
			return digest.CleanResponse(content.GetText()), nil
		}
	}
	return "", fmt.Errorf("claude returned no text content")
}
