package llm

import (
	"context"
	"fmt"

	"github.com/reddygtvs/Archived-News-RAG/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Outcome is the closed set of ways a completion call can end. Callers
// branch on it instead of sniffing error strings.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	// OutcomeBlocked means the provider refused the prompt or the response
	// on safety grounds.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeMalformed means the provider answered but the response carried
	// no usable candidate text.
	OutcomeMalformed      Outcome = "malformed"
	OutcomeTransportError Outcome = "transport_error"
)

type Completion struct {
	Text    string
	Outcome Outcome
	// Detail carries the block reason or error description for logging.
	Detail string
}

func (c Completion) OK() bool {
	return c.Outcome == OutcomeSuccess
}

// Client issues a single prompt->text call against a named model. It never
// returns a Go error: every upstream failure is folded into the Completion
// outcome so that one generation failing cannot abort a whole request.
type Client interface {
	Complete(ctx context.Context, model string, messages []Message) Completion
}

type Options struct {
	Provider string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaClient(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}
