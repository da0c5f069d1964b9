package engine

import "encoding/json"

// --- Transcript tool types ---

type TranscriptInput struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID or watch URL"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language code (default: en)"`
}

type SummaryInput struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID or watch URL"`
	Language string `json:"language,omitempty" jsonschema:"Summary language code (default: vi)"`
}

type SummaryOutput struct {
	VideoID            string `json:"video_id"`
	Language           string `json:"language"`
	Summary            string `json:"summary"`
	TranscriptLanguage string `json:"transcript_language,omitempty"` // caption track the summary was built from
}

// --- Crawl tool types ---

type CrawlInput struct {
	URL         string `json:"url" jsonschema:"Page URL to crawl"`
	CacheMode   string `json:"cache_mode,omitempty" jsonschema:"Cache behavior: enabled (default), bypass (refetch but store), disabled"`
	Profile     string `json:"profile,omitempty" jsonschema:"Named login profile to apply"`
	CheckRobots bool   `json:"check_robots,omitempty" jsonschema:"Honor the site's robots.txt before fetching"`
}

type ExtractInput struct {
	URL         string `json:"url" jsonschema:"Page URL to extract from"`
	Schema      string `json:"schema" jsonschema:"JSON shape every extracted item must follow"`
	Instruction string `json:"instruction,omitempty" jsonschema:"Extra guidance for the extractor"`
}

type ExtractOutput struct {
	URL   string            `json:"url"`
	Count int               `json:"count"`
	Items []json.RawMessage `json:"items"`
}

type CrawlManyInput struct {
	URLs          []string `json:"urls" jsonschema:"Pages to crawl"`
	MaxConcurrent int      `json:"max_concurrent,omitempty" jsonschema:"Concurrent fetch cap (default from config)"`
	CacheMode     string   `json:"cache_mode,omitempty" jsonschema:"Cache behavior: enabled (default), bypass, disabled"`
	CheckRobots   bool     `json:"check_robots,omitempty" jsonschema:"Honor robots.txt for every URL"`
}

// --- Profile tool types ---

type ProfileCookie struct {
	Name   string `json:"name" jsonschema:"Cookie name"`
	Value  string `json:"value" jsonschema:"Cookie value"`
	Domain string `json:"domain" jsonschema:"Cookie domain, may carry a leading dot"`
	Path   string `json:"path,omitempty" jsonschema:"Cookie path"`
}

type ProfileSaveInput struct {
	Name    string            `json:"name" jsonschema:"Profile name"`
	Cookies []ProfileCookie   `json:"cookies,omitempty" jsonschema:"Session cookies to store"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Extra headers to send with every request"`
}

type ProfileSaveOutput struct {
	Name    string `json:"name"`
	Cookies int    `json:"cookies"`
	Headers int    `json:"headers"`
}

type ProfileNameInput struct {
	Name string `json:"name" jsonschema:"Profile name"`
}

type ProfileListOutput struct {
	Profiles []string `json:"profiles"`
	Count    int      `json:"count"`
}

type ProfileDeleteOutput struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

type ProfileTestInput struct {
	Name string `json:"name" jsonschema:"Profile name"`
	URL  string `json:"url" jsonschema:"URL to fetch with the profile applied"`
}

type ProfileTestOutput struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Title  string `json:"title,omitempty"`
	Chars  int    `json:"chars"`
}

// --- Translate tool types ---

type TranslateInput struct {
	Text string `json:"text" jsonschema:"Text to translate (English or Vietnamese, direction is detected)"`
}

type TranslateOutput struct {
	Output       string `json:"output"`
	OriginalText string `json:"original_text"`
}
