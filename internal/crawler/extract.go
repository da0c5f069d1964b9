package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_crawl/internal/engine"
)

const (
	defaultChunkSize     = 4000
	defaultExtractTokens = 5000
)

const extractSystem = `You are a precise data extraction engine. Extract structured data from the provided page content.
Respond with a JSON array only, no prose and no code fences. Every element must follow the requested schema exactly.
Return [] when nothing in the content matches.`

// ExtractConfig drives LLM extraction over a crawled page.
type ExtractConfig struct {
	Schema      string // JSON shape the model must produce, required
	Instruction string // optional extra guidance
	ChunkSize   int    // chars of markdown per LLM call, 0 = default
	MaxTokens   int    // per-call response cap, 0 = default
}

// Extract crawls pageURL fresh (cache bypassed) and runs the LLM over the
// markdown chunk by chunk, merging per-chunk JSON arrays into one. Individual
// chunk failures are logged and skipped; it fails only when every chunk fails.
func (c *Crawler) Extract(ctx context.Context, pageURL string, ec ExtractConfig) ([]json.RawMessage, error) {
	engine.IncrExtract()

	if strings.TrimSpace(ec.Schema) == "" {
		return nil, fmt.Errorf("schema is required")
	}

	page, err := c.Page(ctx, pageURL, RunConfig{CacheMode: CacheBypass})
	if err != nil {
		return nil, err
	}
	if page.Markdown == "" {
		return nil, fmt.Errorf("no content extracted from %s", pageURL)
	}

	chunkSize := ec.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	maxTokens := ec.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultExtractTokens
	}

	chunks := splitChunks(page.Markdown, chunkSize)
	items := make([]json.RawMessage, 0)
	failed := 0
	for i, chunk := range chunks {
		out, err := engine.CallLLMExtract(ctx, extractSystem, buildExtractPrompt(ec.Schema, ec.Instruction, chunk), maxTokens)
		if err != nil {
			slog.Warn("extract chunk failed",
				slog.String("url", pageURL), slog.Int("chunk", i), slog.Any("error", err))
			failed++
			continue
		}
		parsed, err := parseItems(out)
		if err != nil {
			slog.Warn("extract chunk returned bad JSON",
				slog.String("url", pageURL), slog.Int("chunk", i), slog.Any("error", err))
			failed++
			continue
		}
		items = append(items, parsed...)
	}
	if failed == len(chunks) {
		return nil, fmt.Errorf("extraction failed for all %d chunks of %s", len(chunks), pageURL)
	}
	return items, nil
}

func buildExtractPrompt(schema, instruction, chunk string) string {
	var sb strings.Builder
	sb.WriteString("Schema:\n")
	sb.WriteString(schema)
	if instruction != "" {
		sb.WriteString("\n\nInstruction:\n")
		sb.WriteString(instruction)
	}
	sb.WriteString("\n\nPage content:\n")
	sb.WriteString(chunk)
	return sb.String()
}

// splitChunks cuts text into pieces of at most size bytes, preferring to break
// at a newline so list items are less likely to straddle a boundary.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	var chunks []string
	for len(text) > size {
		cut := size
		if i := strings.LastIndexByte(text[:size], '\n'); i > size/2 {
			cut = i + 1
		} else {
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = size
			}
		}
		if chunk := strings.TrimSpace(text[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = text[cut:]
	}
	if chunk := strings.TrimSpace(text); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// parseItems decodes an LLM response into array elements. A bare object is
// wrapped into a single-element result.
func parseItems(out string) ([]json.RawMessage, error) {
	if raw, ok := extractJSONArray(out); ok {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
	}
	trimmed := strings.TrimSpace(out)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	}
	return nil, fmt.Errorf("no JSON array in response")
}

// extractJSONArray pulls the first balanced JSON array out of s, tolerating
// prose around it.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if esc {
			esc = false
			continue
		}
		switch c {
		case '\\':
			if inStr {
				esc = true
			}
		case '"':
			inStr = !inStr
		case '[':
			if !inStr {
				depth++
			}
		case ']':
			if !inStr {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
