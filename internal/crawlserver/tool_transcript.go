package crawlserver

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/toolutil"
	"github.com/anatolykoptev/go_crawl/internal/youtube"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Gets the transcript text for a YouTube video. Accepts a video ID or a full watch URL. Picks the caption track matching the requested language, falling back to English and then to the first available track. When the caption payload cannot be parsed, returns a raw excerpt flagged with raw=true.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *youtube.Transcript, error) {
		if input.VideoID == "" {
			return nil, nil, fmt.Errorf("video_id is required")
		}
		videoID := youtube.ExtractVideoID(input.VideoID)
		lang := toolutil.NormLang(input.Language)

		tr, err := youtube.FetchTranscript(ctx, videoID, lang)
		if err != nil {
			return nil, nil, transcriptUserError(err)
		}
		return nil, tr, nil
	})
}

// transcriptUserError maps fetch failures onto the tool's stable user-facing
// messages. Transport problems get actionable Vietnamese texts; everything
// else goes through the generic wrapper.
func transcriptUserError(err error) error {
	var se *youtube.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Errorf("Lỗi HTTP %d khi cố gắng lấy transcript. Vui lòng kiểm tra lại ID video hoặc thử lại sau.", se.Status)
	case youtube.IsTimeout(err):
		return errors.New("Yêu cầu lấy transcript bị quá thời gian chờ. Vui lòng thử lại.")
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return errors.New("Lỗi mạng khi cố gắng lấy transcript. Vui lòng kiểm tra kết nối và thử lại.")
	}
	return fmt.Errorf("Đã xảy ra lỗi không mong muốn khi lấy transcript: %v. Vui lòng thử lại.", err)
}
