package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go_crawl/internal/engine"
)

// Overridable in tests; the fetch flow itself always performs exactly two
// sequential GETs against these.
var (
	watchBase    = "https://www.youtube.com/watch?v="
	fetchTimeout = 15 * time.Second
)

const (
	maxWatchBytes   = 6 * 1024 * 1024
	maxTrackBytes   = 512 * 1024
	rawExcerptRunes = 1000
)

// captionTracksRE captures the caption track JSON array embedded in the watch
// page HTML. Non-greedy on purpose: the array ends at the first "]", which
// holds for the payloads YouTube serves today.
var captionTracksRE = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// CaptionTrack is one subtitle stream advertised by the watch page. Track
// order is as embedded; the first entry is the fallback of last resort.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// Transcript is the resolved transcript for a single video.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"` // code of the track actually used, not necessarily the requested one
	Text     string `json:"transcript"`
	Raw      bool   `json:"raw,omitempty"` // true when Text is an unparsed payload excerpt, not caption lines
}

// FetchTranscript downloads the caption transcript for videoID, preferring
// the requested language. Track precedence: exact language match, then "en"
// (when a different language was asked for), then the first advertised track.
//
// Exactly two HTTP calls are made (the watch page, then the track URL) on a
// client scoped to this invocation with a 15s per-call bound. No retries; a
// first-call failure means the second call is never attempted. The videoID is
// treated as opaque and never validated.
func FetchTranscript(ctx context.Context, videoID, language string) (*Transcript, error) {
	engine.IncrTranscript()

	client := &http.Client{Timeout: fetchTimeout}
	defer client.CloseIdleConnections()

	slog.Debug("youtube: fetching watch page", slog.String("id", videoID), slog.String("lang", language))
	html, err := get(ctx, client, watchBase+videoID, maxWatchBytes)
	if err != nil {
		engine.IncrTranscriptError()
		return nil, fmt.Errorf("watch page: %w", err)
	}

	m := captionTracksRE.FindSubmatch(html)
	if m == nil {
		engine.IncrTranscriptError()
		return nil, ErrNoCaptions
	}

	var tracks []CaptionTrack
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		engine.IncrTranscriptError()
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if len(tracks) == 0 {
		engine.IncrTranscriptError()
		return nil, fmt.Errorf("%w: empty track list", ErrNoCaptions)
	}

	track := selectTrack(tracks, language)
	if track.BaseURL == "" {
		engine.IncrTranscriptError()
		return nil, ErrNoTrackURL
	}
	slog.Debug("youtube: fetching caption track",
		slog.String("id", videoID), slog.String("resolved_lang", track.LanguageCode))

	payload, err := get(ctx, client, track.BaseURL, maxTrackBytes)
	if err != nil {
		engine.IncrTranscriptError()
		return nil, fmt.Errorf("caption track: %w", err)
	}

	text, ok := parseTimedText(payload)
	if !ok {
		slog.Warn("youtube: caption payload unparseable, returning raw excerpt",
			slog.String("id", videoID), slog.String("lang", track.LanguageCode))
		return &Transcript{
			VideoID:  videoID,
			Language: track.LanguageCode,
			Text:     engine.TruncateRunes(string(payload), rawExcerptRunes, ""),
			Raw:      true,
		}, nil
	}

	return &Transcript{VideoID: videoID, Language: track.LanguageCode, Text: text}, nil
}

// get performs a single GET with browser-like headers. No retries.
func get(ctx context.Context, client *http.Client, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentChrome)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Status: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// selectTrack picks the caption track for the requested language. The track
// list must be non-empty.
func selectTrack(tracks []CaptionTrack, language string) CaptionTrack {
	for _, t := range tracks {
		if t.LanguageCode == language {
			return t
		}
	}
	if language != "en" {
		for _, t := range tracks {
			if t.LanguageCode == "en" {
				return t
			}
		}
	}
	return tracks[0]
}

// parseTimedText extracts caption lines from a timedtext payload. Lines come
// from the direct text content of text elements, or of p elements when the
// document has no text elements at all (the srv3 format), matched by local
// name in any namespace. Returns false when the payload is not valid XML or
// yields no lines; the caller degrades to a raw excerpt in that case.
func parseTimedText(payload []byte) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(payload))

	var (
		textLines, pLines []string
		sawText           bool
		inside            string // local name of the caption element being read, "" otherwise
		collecting        bool   // still before the element's first child
		buf               strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case inside == "" && (t.Name.Local == "text" || t.Name.Local == "p"):
				inside = t.Name.Local
				collecting = true
				buf.Reset()
				if inside == "text" {
					sawText = true
				}
			case inside != "":
				collecting = false // child element ends the direct text
			}
		case xml.CharData:
			if inside != "" && collecting {
				buf.Write(t)
			}
		case xml.EndElement:
			if inside != "" && t.Name.Local == inside {
				if line := buf.String(); line != "" {
					if inside == "text" {
						textLines = append(textLines, line)
					} else {
						pLines = append(pLines, line)
					}
				}
				inside = ""
			}
		}
	}

	lines := textLines
	if !sawText {
		lines = pLines
	}
	full := strings.TrimSpace(strings.Join(lines, "\n"))
	if full == "" {
		return "", false
	}
	return full, true
}
