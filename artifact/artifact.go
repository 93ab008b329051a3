package artifact

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"ai_content_generator/generator"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects how a result is rendered for download.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

const (
	MediaTypeMarkdown = "text/markdown"
	MediaTypeHTML     = "text/html; charset=utf-8"
)

// Artifact is a downloadable rendering of one generation.
type Artifact struct {
	FileName  string
	MediaType string
	Body      []byte
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseFormat maps a query value to a Format. An empty value means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FileName returns content_YYYYMMDD.<ext> for the result's generation date.
func FileName(result generator.GenerationResult, format Format) string {
	return "content_" + result.GeneratedAt.Format("20060102") + "." + string(format)
}

// New renders result in the given format. The Markdown body is the generated
// content byte for byte.
func New(result generator.GenerationResult, format Format) (Artifact, error) {
	switch format {
	case FormatMarkdown:
		return Artifact{
			FileName:  FileName(result, format),
			MediaType: MediaTypeMarkdown,
			Body:      []byte(result.Content),
		}, nil
	case FormatHTML:
		body, err := mdToHTML(result.Content)
		if err != nil {
			return Artifact{}, fmt.Errorf("render html: %w", err)
		}
		return Artifact{
			FileName:  FileName(result, format),
			MediaType: MediaTypeHTML,
			Body:      []byte(wrapDocument(documentTitle(result), body)),
		}, nil
	default:
		return Artifact{}, fmt.Errorf("unsupported format %q", format)
	}
}

// WriteFile stores a under dir and returns the written path.
func WriteFile(dir string, a Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, a.FileName)
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func documentTitle(result generator.GenerationResult) string {
	if result.Title != "" {
		return result.Title
	}
	return result.Topic
}

func wrapDocument(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
