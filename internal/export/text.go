package export

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookforge/internal/book"
)

// renderText writes the book as a flat plain-text document: title line,
// chapter heading lines, subsection heading lines and their bodies.
func renderText(b *book.Model) []byte {
	var sb strings.Builder

	header := fmt.Sprintf("Book Title: %s", b.Title)
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len(header)))
	sb.WriteString("\n\n")

	for i, ch := range b.Chapters {
		sb.WriteString(fmt.Sprintf("--- Chapter %d: %s ---\n\n", i+1, ch.Title))
		for _, sub := range ch.Subsections {
			sb.WriteString(fmt.Sprintf("--- Subsection: %s ---\n", sub.Title))
			for _, par := range RenderBody(bodyOrPlaceholder(sub)) {
				sb.WriteString(par.Text())
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}
