package crawlserver

import "testing"

func TestParseTranslation(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{"json object", `{"output": "Xin chào thế giới"}`, "Xin chào thế giới"},
		{"json fence", "```json\n{\"output\": \"Xin chào\"}\n```", "Xin chào"},
		{"bare fence", "```\n{\"output\": \"Hello\"}\n```", "Hello"},
		{"plain text fallback", "Hello world", "Hello world"},
		{"surrounding whitespace", "  {\"output\": \"Hi\"}\n", "Hi"},
		{"broken json fallback", `{"output": "Hi`, `{"output": "Hi`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTranslation(tt.resp)
			if got != tt.want {
				t.Errorf("parseTranslation(%q) = %q, want %q", tt.resp, got, tt.want)
			}
		})
	}
}
