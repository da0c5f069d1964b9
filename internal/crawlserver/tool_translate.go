package crawlserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const translateSystem = `You are a translator between English and Vietnamese.
Detect the language of the input text. If it is Vietnamese, translate it to English.
Otherwise translate it to Vietnamese.
Reply with a JSON object only: {"output": "<translated text>"}`

func registerTranslate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "translate",
		Description: "Translates text between English and Vietnamese. The direction is detected automatically: Vietnamese input comes back in English, anything else comes back in Vietnamese. Translations are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranslateInput) (*mcp.CallToolResult, engine.TranslateOutput, error) {
		if input.Text == "" {
			return nil, engine.TranslateOutput{}, fmt.Errorf("text is required")
		}
		engine.IncrTranslate()

		cacheKey := engine.CacheKey("translate", input.Text)
		if out, ok := toolutil.CacheLoadJSON[engine.TranslateOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		resp, err := engine.CallLLM(ctx, translateSystem, input.Text)
		if err != nil {
			return nil, engine.TranslateOutput{}, fmt.Errorf("LLM translation failed: %w", err)
		}

		out := engine.TranslateOutput{
			Output:       parseTranslation(resp),
			OriginalText: input.Text,
		}
		toolutil.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

// parseTranslation pulls the translated text out of the LLM reply. The model
// is asked for {"output": ...} but may wrap it in markdown fences or ignore
// the format entirely, in which case the trimmed reply is used as-is.
func parseTranslation(resp string) string {
	s := strings.TrimSpace(resp)
	if f := strings.TrimPrefix(s, "```json"); f != s {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f), "```"))
	} else if f := strings.TrimPrefix(s, "```"); f != s {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f), "```"))
	}
	var parsed struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal([]byte(s), &parsed); err == nil && parsed.Output != "" {
		return parsed.Output
	}
	return s
}
