package export

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// Run is a span of text with inline styling.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Paragraph is an ordered sequence of runs.
type Paragraph []Run

// Text returns the paragraph's plain text.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// RenderBody converts markdown body text into paragraphs of styled runs by
// rendering it to HTML and walking the node tree. Only the inline markup
// content calls are allowed to use (bold, italic) is honored; anything
// else degrades to plain text.
func RenderBody(body string) []Paragraph {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(body), &buf); err != nil {
		return plainParagraphs(body)
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return plainParagraphs(body)
	}

	w := &bodyWalker{}
	w.walk(doc, false, false)
	w.flush()
	return w.paragraphs
}

func plainParagraphs(body string) []Paragraph {
	var out []Paragraph
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, Paragraph{{Text: line}})
		}
	}
	return out
}

type bodyWalker struct {
	paragraphs []Paragraph
	current    Paragraph
}

func (w *bodyWalker) flush() {
	if p := trimParagraph(w.current); len(p) > 0 {
		w.paragraphs = append(w.paragraphs, p)
	}
	w.current = nil
}

func (w *bodyWalker) append(text string, bold, italic bool) {
	if text == "" {
		return
	}
	w.current = append(w.current, Run{Text: text, Bold: bold, Italic: italic})
}

func (w *bodyWalker) walk(n *html.Node, bold, italic bool) {
	switch n.Type {
	case html.TextNode:
		// Softbreaks render as newlines inside one <p>; treat each line
		// as its own paragraph, matching how bodies are cleaned.
		parts := strings.Split(n.Data, "\n")
		for i, part := range parts {
			if i > 0 {
				w.flush()
			}
			w.append(part, bold, italic)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			w.flush()
		case "li":
			w.flush()
			w.append("• ", bold, italic)
		case "strong", "b":
			bold = true
		case "em", "i":
			italic = true
		case "br":
			w.flush()
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, bold, italic)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			w.flush()
		}
	}
}

// trimParagraph trims surrounding whitespace but keeps interior
// whitespace-only runs, which separate adjacent styled spans.
func trimParagraph(p Paragraph) Paragraph {
	for len(p) > 0 {
		p[0].Text = strings.TrimLeft(p[0].Text, " \t")
		if p[0].Text != "" {
			break
		}
		p = p[1:]
	}
	for len(p) > 0 {
		last := len(p) - 1
		p[last].Text = strings.TrimRight(p[last].Text, " \t")
		if p[last].Text != "" {
			break
		}
		p = p[:last]
	}
	return p
}
