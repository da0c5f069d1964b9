package crawlserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/toolutil"
	"github.com/anatolykoptev/go_crawl/internal/youtube"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const summarySystem = `You are a careful video summarizer. Summarize the provided transcript:
state the main topic in one sentence, then the key points as a short list, then any conclusions.
Write the whole summary in the requested language.`

func registerSummary(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summary",
		Description: "Fetches the transcript of a YouTube video and summarizes it with the LLM: main topic, key points, conclusions. Responds in the requested language, Vietnamese by default. Summaries are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryInput) (*mcp.CallToolResult, engine.SummaryOutput, error) {
		if input.VideoID == "" {
			return nil, engine.SummaryOutput{}, fmt.Errorf("video_id is required")
		}
		engine.IncrSummary()

		videoID := youtube.ExtractVideoID(input.VideoID)
		lang := input.Language
		if lang == "" {
			lang = "vi"
		}

		cacheKey := engine.CacheKey("youtube_summary", videoID, lang)
		if out, ok := toolutil.CacheLoadJSON[engine.SummaryOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		tr, err := youtube.FetchTranscript(ctx, videoID, "en")
		if err != nil {
			return nil, engine.SummaryOutput{}, transcriptUserError(err)
		}

		text := tr.Text
		if max := engine.Cfg.MaxContentChars; max > 0 {
			text = engine.TruncateRunes(text, max, "...")
		}

		summary, err := engine.CallLLM(ctx, summarySystem,
			fmt.Sprintf("Summary language: %s\n\nTranscript:\n%s", lang, text))
		if err != nil {
			return nil, engine.SummaryOutput{}, fmt.Errorf("LLM summarization failed: %w", err)
		}

		out := engine.SummaryOutput{
			VideoID:            videoID,
			Language:           lang,
			Summary:            summary,
			TranscriptLanguage: tr.Language,
		}
		toolutil.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
