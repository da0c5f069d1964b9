package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		chunks := splitChunks("hello world", 4000)
		assert.Equal(t, []string{"hello world"}, chunks)
	})

	t.Run("breaks at newline", func(t *testing.T) {
		chunks := splitChunks("aaaa\nbbbb\ncccc", 10)
		assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)
	})

	t.Run("hard cut without newlines", func(t *testing.T) {
		text := strings.Repeat("x", 25)
		chunks := splitChunks(text, 10)
		require.Len(t, chunks, 3)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 10)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})

	t.Run("content preserved", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 200; i++ {
			sb.WriteString("line with some words in it\n")
		}
		text := sb.String()
		chunks := splitChunks(text, 500)
		assert.Greater(t, len(chunks), 5)

		squash := func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		}
		assert.Equal(t, squash(text), squash(strings.Join(chunks, "\n")))
	})
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare array", `[{"a":1}]`, `[{"a":1}]`, true},
		{"prose around", `Sure! Here is the data: [1, 2, 3] as requested.`, `[1, 2, 3]`, true},
		{"nested arrays", `[[1,2],[3,4]]`, `[[1,2],[3,4]]`, true},
		{"bracket inside string", `[{"t":"a ] b"}]`, `[{"t":"a ] b"}]`, true},
		{"escaped quote inside string", `["say \" ]"]`, `["say \" ]"]`, true},
		{"object only", `{"a":1}`, "", false},
		{"no json", `nothing here`, "", false},
		{"unterminated", `[1, 2`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONArray(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseItems(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items, err := parseItems(`[{"name":"a"},{"name":"b"}]`)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("array with prose", func(t *testing.T) {
		items, err := parseItems("Here you go:\n[{\"name\":\"a\"}]")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("empty array", func(t *testing.T) {
		items, err := parseItems(`[]`)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("bare object gets wrapped", func(t *testing.T) {
		items, err := parseItems(`{"name":"solo"}`)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.JSONEq(t, `{"name":"solo"}`, string(items[0]))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseItems(`I could not find anything.`)
		assert.Error(t, err)
	})
}

func TestBuildExtractPrompt(t *testing.T) {
	p := buildExtractPrompt(`{"name": "string"}`, "only products", "some page text")
	assert.Contains(t, p, `{"name": "string"}`)
	assert.Contains(t, p, "only products")
	assert.Contains(t, p, "some page text")

	p = buildExtractPrompt(`{"name": "string"}`, "", "text")
	assert.NotContains(t, p, "Instruction:")
}
