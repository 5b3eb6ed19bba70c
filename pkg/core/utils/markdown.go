package utils

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var renderer = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// CleanMarkdown strips an outer wrapping code fence if present, so that
// reports saved as ```markdown blocks render the same as bare ones.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// RenderMarkdown converts analysis markdown to HTML for the detail view.
// Returns "" on conversion failure; the raw text is still served alongside.
func RenderMarkdown(input string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(CleanMarkdown(input)), &buf); err != nil {
		return ""
	}
	return buf.String()
}
