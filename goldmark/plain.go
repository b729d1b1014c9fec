package goldmark

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

type plainWriter struct {
	source []byte
}

func newPlainWriter(source []byte) *plainWriter {
	return &plainWriter{source: source}
}

func (w *plainWriter) render(doc ast.Node) string {
	var buf bytes.Buffer
	w.walkBlock(doc, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (w *plainWriter) walkBlock(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.renderBlock(c, buf)
	}
}

func (w *plainWriter) renderBlock(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		buf.WriteString(w.collectInline(n))
		buf.WriteString("\n")
		w.blockGap(n, buf)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.WriteString(strings.TrimRight(string(line.Value(w.source)), "\n"))
			buf.WriteString("\n")
		}
		w.blockGap(n, buf)

	case *ast.List:
		w.renderList(n, buf, 0)
		w.blockGap(n, buf)

	case *ast.ThematicBreak:
		buf.WriteString("---\n")
		w.blockGap(n, buf)

	case *ast.HTMLBlock:
		// Raw HTML is not text.

	case *east.Table:
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, w.collectInline(cell))
			}
			buf.WriteString(strings.Join(cells, " | "))
			buf.WriteString("\n")
		}
		w.blockGap(n, buf)

	default:
		// Blockquotes and other containers: recurse into children.
		w.walkBlock(node, buf)
	}
}

func (w *plainWriter) blockGap(n ast.Node, buf *bytes.Buffer) {
	if n.NextSibling() != nil {
		buf.WriteString("\n")
	}
}

func (w *plainWriter) renderList(node *ast.List, buf *bytes.Buffer, depth int) {
	num := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				buf.WriteString(indent + marker + w.collectInline(in) + "\n")
				marker = strings.Repeat(" ", len(marker))
			case *ast.List:
				w.renderList(in, buf, depth+1)
			default:
				w.renderBlock(ic, buf)
			}
		}
	}
}

// collectInline recursively collects the text of a node's inline children.
func (w *plainWriter) collectInline(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.renderInline(c, &buf)
	}
	return buf.String()
}

func (w *plainWriter) renderInline(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(w.source))
		if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Link:
		inner := w.collectInline(n)
		url := string(n.Destination)
		buf.WriteString(inner)
		if url != "" && url != inner {
			buf.WriteString(" (" + url + ")")
		}

	case *ast.AutoLink:
		buf.Write(n.URL(w.source))

	case *ast.Image:
		buf.WriteString(w.collectInline(n))

	case *ast.RawHTML:

	case *east.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	default:
		// Emphasis, code spans, strikethrough: keep the text only.
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.renderInline(c, buf)
		}
	}
}
