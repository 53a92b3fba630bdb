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

type ollamaClient struct {
	host   string
	client *http.Client
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

func NewOllamaClient(opts Options) Client {
	host := strings.TrimRight(opts.OllamaHost, "/")
	if host == "" {
		host = "http://localhost:11434"
	}

	return &ollamaClient{
		host: host,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *ollamaClient) Complete(ctx context.Context, model string, messages []Message) Completion {
	payload := ollamaChatRequest{
		Model:  model,
		Stream: false,
	}
	payload.Messages = toOllamaMessages(messages)

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{Outcome: OutcomeTransportError, Detail: fmt.Sprintf("marshal ollama request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Completion{Outcome: OutcomeTransportError, Detail: fmt.Sprintf("create ollama request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{Outcome: OutcomeTransportError, Detail: fmt.Sprintf("call ollama chat API: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		detail := resp.Status
		if readErr == nil && len(data) > 0 {
			detail = string(data)
		}
		return Completion{Outcome: OutcomeTransportError, Detail: fmt.Sprintf("ollama chat API error: %s", detail)}
	}

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Completion{Outcome: OutcomeMalformed, Detail: fmt.Sprintf("decode ollama response: %v", err)}
	}

	if parsed.Error != "" {
		return Completion{Outcome: OutcomeTransportError, Detail: fmt.Sprintf("ollama chat error: %s", parsed.Error)}
	}

	if strings.TrimSpace(parsed.Message.Content) == "" {
		return Completion{Outcome: OutcomeMalformed, Detail: "ollama returned empty message"}
	}

	return Completion{Text: parsed.Message.Content, Outcome: OutcomeSuccess}
}

func toOllamaMessages(messages []Message) []ollamaChatMessage {
	if len(messages) == 0 {
		return nil
	}
	converted := make([]ollamaChatMessage, len(messages))
	for i := range messages {
		converted[i] = ollamaChatMessage(messages[i])
	}
	return converted
}
