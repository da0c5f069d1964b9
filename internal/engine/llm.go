package engine

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt using the configured temperature and max_tokens.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	IncrLLMCall()
	resp, err := cfg.LLMClient.Complete(ctx, system, prompt)
	if err != nil {
		IncrLLMError()
		return "", err
	}
	return stripFences(resp), nil
}

// CallLLMExtract sends an extraction prompt at temperature 0 for deterministic
// JSON output, with a per-call token cap.
func CallLLMExtract(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	IncrLLMCall()
	resp, err := cfg.LLMClient.Complete(ctx, system, prompt,
		llm.WithChatTemperature(0),
		llm.WithChatMaxTokens(maxTokens),
	)
	if err != nil {
		IncrLLMError()
		return "", err
	}
	return stripFences(resp), nil
}
