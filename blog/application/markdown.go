package application

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const summaryMaxLength = 200

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// Renderer converts a stored post body to HTML for read-time rendering.
// Bodies are persisted verbatim; this only shapes the response.
type Renderer interface {
	Render(content string) (string, error)
}

type markdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)

	return &markdownRenderer{md: md}
}

func (r *markdownRenderer) Render(content string) (string, error) {
	// the admin editor submits HTML; pass it through untouched
	if looksLikeHTML(content) {
		return content, nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return buf.String(), nil
}

func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<")
}

// ExtractSummary derives a short plain-text summary from a post body: the
// first paragraph, tags stripped, truncated at a word boundary.
func ExtractSummary(content string) string {
	plain := htmlTagRegex.ReplaceAllString(content, " ")

	var paragraphLines []string
	for _, line := range strings.Split(plain, "\n") {
		trimmed := strings.TrimSpace(line)

		// skip headings and markdown furniture before the first paragraph
		if trimmed == "" ||
			strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "|") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		paragraphLines = append(paragraphLines, trimmed)
	}

	if len(paragraphLines) == 0 {
		return ""
	}

	summary := strings.Join(strings.Fields(strings.Join(paragraphLines, " ")), " ")

	if len(summary) > summaryMaxLength {
		summary = summary[:summaryMaxLength]
		if lastSpace := strings.LastIndexAny(summary, " \t"); lastSpace > 0 {
			summary = summary[:lastSpace]
		}
		summary += "..."
	}

	return summary
}
