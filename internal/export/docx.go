package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/bookforge/internal/book"
)

// renderDOCX writes the book as a single flow document with a heading
// hierarchy (Title / Heading1 / Heading2) so the opening application can
// regenerate its own outline and TOC. A page break separates chapters;
// everything else flows without manual pagination.
func renderDOCX(b *book.Model) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph().Justification("center")
	title.Style("Title")
	title.AddText(b.Title).Size("40").Bold()
	w.AddParagraph()

	for i, ch := range b.Chapters {
		if i > 0 {
			w.AddParagraph().AddPageBreaks()
		}

		chHeading := w.AddParagraph()
		chHeading.Style("Heading1")
		chHeading.AddText(fmt.Sprintf("Chapter %d: %s", i+1, ch.Title)).Size("32").Bold()

		for _, sub := range ch.Subsections {
			subHeading := w.AddParagraph()
			subHeading.Style("Heading2")
			subHeading.AddText(sub.Title).Size("28").Bold()

			for _, par := range RenderBody(bodyOrPlaceholder(sub)) {
				p := w.AddParagraph()
				for _, run := range par {
					r := p.AddText(run.Text)
					if run.Bold {
						r.Bold()
					}
					if run.Italic {
						r.Italic()
					}
				}
			}
			w.AddParagraph()
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
