// Package youtube fetches caption transcripts by scraping the public watch
// page. No API key: the watch page HTML embeds the caption track list as a
// "captionTracks" JSON array, and each track's baseUrl serves timedtext XML.
// The marker regex breaks if YouTube renames the embedded field.
package youtube

import "regexp"

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls the 11-char video ID out of a watch or share URL.
// Non-URL input is returned unchanged so bare IDs pass through untouched.
func ExtractVideoID(s string) string {
	if m := videoIDRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return s
}
