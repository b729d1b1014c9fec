// Package goldmark renders model replies, which are markdown, for clients
// that cannot render markdown themselves. HTML output uses goldmark with the
// GitHub Flavored Markdown extensions; raw HTML in the source is dropped.
// Plain output walks the same AST and keeps only the readable text.
package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer converts markdown replies to HTML or plain text. It is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders source as an HTML fragment.
func (r *Renderer) HTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Plain renders source as unstyled text. Emphasis markers are removed,
// list items keep their markers, and links are written as "text (url)".
func (r *Renderer) Plain(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))
	return newPlainWriter(src).render(doc)
}
