package variant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the subset of an OpenAI-compatible client needed to ask a
// model for substitution symbols. *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMOptions configures NewLLM.
type LLMOptions struct {
	Client      ChatClient
	Model       string
	Placeholder string
	// MaxSymbols caps how many variants are generated. Zero means 26.
	MaxSymbols int
}

const llmSystemMessage = "You expand search query templates. Respond with strict JSON only, no narration. The JSON schema is {\"symbols\": string[]}. Every placeholder in the template is replaced by one symbol to form one search query. Symbols must be short, distinct, and ordered from most to least useful."

// NewLLM asks a chat model once for the symbols to substitute into template
// and returns a Substitution over them. The model is consulted only here, so
// the returned generator is deterministic.
func NewLLM(ctx context.Context, template string, opts LLMOptions) (*Substitution, error) {
	if opts.Client == nil || strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("llm generator: client and model are required")
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	limit := opts.MaxSymbols
	if limit <= 0 {
		limit = len(Latin)
	}

	user := fmt.Sprintf("Template: %s\nPlaceholder: %q\nReturn at most %d symbols.", template, placeholder, limit)
	log.Debug().Str("stage", "variant").Str("model", opts.Model).Int("user_len", len(user)).Msg("llm symbol prompt")
	resp, err := opts.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("llm generator call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm generator: no choices")
	}
	var payload struct {
		Symbols []string `json:"symbols"`
	}
	raw := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse llm symbols: %w", err)
	}
	symbols := sanitizeSymbols(payload.Symbols, placeholder, limit)
	if len(symbols) == 0 {
		return nil, errors.New("llm generator: model returned no usable symbols")
	}
	return NewSymbolSubstitution(placeholder, symbols)
}

// sanitizeSymbols trims, de-duplicates and caps symbols. Symbols containing
// the placeholder are dropped since they would leave a marker in the query.
func sanitizeSymbols(in []string, placeholder string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || strings.Contains(s, placeholder) {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
