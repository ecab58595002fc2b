package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	md := NewMarkdown()

	cases := []struct {
		name, in, contains string
	}{
		{"emphasis", "**bold** text", "<strong>bold</strong>"},
		{"fenced code", "```go\nfmt.Println(1)\n```", `<code class="language-go">`},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"hard wraps", "line one\nline two", "<br>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := md.ToHTML(tc.in)
			require.NoError(t, err)
			assert.Contains(t, out, tc.contains)
		})
	}
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out, err := NewMarkdown().ToHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
