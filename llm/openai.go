package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type openAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(opts Options) Client {
	cfg := openai.DefaultConfig(opts.OpenAIAPIKey)
	if opts.OpenAIBaseURL != "" {
		cfg.BaseURL = opts.OpenAIBaseURL
	}

	return &openAIClient{client: openai.NewClientWithConfig(cfg)}
}

func (c *openAIClient) Complete(ctx context.Context, model string, messages []Message) Completion {
	req := openai.ChatCompletionRequest{
		Model: model,
	}

	req.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{Outcome: OutcomeTransportError, Detail: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return Completion{Outcome: OutcomeMalformed, Detail: "chat completion returned no choices"}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return Completion{Outcome: OutcomeBlocked, Detail: "content filtered by provider"}
	}

	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		return Completion{Outcome: OutcomeMalformed, Detail: "chat completion returned empty message"}
	}

	return Completion{Text: text, Outcome: OutcomeSuccess}
}
