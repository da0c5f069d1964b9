package crawlserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_crawl/internal/youtube"
)

// transcriptManualSchema is written out by hand rather than reflected from a
// struct: both fields are required and unknown arguments are rejected.
const transcriptManualSchema = `{
	"type": "object",
	"properties": {
		"video_id": {
			"type": "string",
			"description": "The ID of the YouTube video"
		},
		"language": {
			"type": "string",
			"description": "The language code for the transcript (e.g. 'en', 'vi')"
		}
	},
	"required": ["video_id", "language"],
	"additionalProperties": false
}`

func registerTranscriptManual(server *mcp.Server) {
	schema := new(jsonschema.Schema)
	if err := json.Unmarshal([]byte(transcriptManualSchema), schema); err != nil {
		panic(fmt.Sprintf("transcript manual schema: %v", err))
	}

	server.AddTool(&mcp.Tool{
		Name:        "get_youtube_transcript_manual",
		Description: "Gets the transcript text for a given YouTube video ID and language (Manually created tool).",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: invokeTranscriptManual(ctx, req.Params.Arguments)}},
		}, nil
	})
}

// invokeTranscriptManual runs the manual transcript tool. Every failure comes
// back as a formatted message in the result text; the tool never returns a
// protocol-level error.
func invokeTranscriptManual(ctx context.Context, argsJSON json.RawMessage) string {
	var args struct {
		VideoID  string `json:"video_id"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		return fmt.Sprintf("Error: Invalid parameters provided for transcript tool. Details: %v", err)
	}
	var missing []string
	if args.VideoID == "" {
		missing = append(missing, "video_id")
	}
	if args.Language == "" {
		missing = append(missing, "language")
	}
	if len(missing) > 0 {
		return fmt.Sprintf("Error: Invalid parameters provided for transcript tool. Details: missing required %s",
			strings.Join(missing, ", "))
	}

	tr, err := youtube.FetchTranscript(ctx, args.VideoID, args.Language)
	if err != nil {
		return manualErrorMessage(args.VideoID, args.Language, err)
	}
	return formatManualTranscript(tr)
}

func formatManualTranscript(tr *youtube.Transcript) string {
	lang := tr.Language
	if lang == "" {
		lang = "unknown"
	}
	if tr.Raw {
		return fmt.Sprintf("Transcript for %s (%s) (raw content):\n%s...", tr.VideoID, lang, tr.Text)
	}
	return fmt.Sprintf("Transcript for %s (%s):\n%s", tr.VideoID, lang, tr.Text)
}

func manualErrorMessage(videoID, language string, err error) string {
	var se *youtube.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("Lỗi HTTP %d khi cố gắng lấy transcript. Vui lòng kiểm tra lại ID video hoặc thử lại sau.", se.Status)
	case youtube.IsTimeout(err):
		return "Yêu cầu lấy transcript bị quá thời gian chờ. Vui lòng thử lại."
	case errors.Is(err, youtube.ErrNoCaptions):
		return fmt.Sprintf("Error: Could not find transcript data for video %s.", videoID)
	case errors.Is(err, youtube.ErrMalformedData):
		return fmt.Sprintf("Error: Failed to parse transcript data for video %s.", videoID)
	case errors.Is(err, youtube.ErrNoTrackURL):
		return fmt.Sprintf("Error: Could not find a suitable transcript URL for video %s (language: %s).", videoID, language)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Sprintf("Lỗi mạng khi cố gắng lấy transcript: %v. Vui lòng kiểm tra kết nối và thử lại.", err)
	}
	return "Đã xảy ra lỗi không mong muốn trong quá trình xử lý transcript."
}
