package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/dgallion1/bookforge/internal/book"
)

// Page geometry in inches (Letter, 1in margins).
const (
	pdfMargin     = 1.0
	pdfLineHt     = 0.22
	pdfHeadingHt  = 0.32
	pdfParSpacing = 0.12
	// Minimum room below a subsection heading before it moves to the
	// next page (heading plus two body lines).
	pdfOrphanRoom = 0.80
)

// tocEntry records where a heading landed during the layout pass.
// Page is a body page number, starting at 1 on the first content page.
type tocEntry struct {
	Level int
	Title string
	Page  int
}

type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string

	// Footer numbering is enabled only for body pages; pageOffset is the
	// number of front-matter pages excluded from the count.
	numbering  bool
	pageOffset int
}

func newPDFDoc() *pdfDoc {
	pdf := gofpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	d := &pdfDoc{pdf: pdf}
	d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		if !d.numbering || pdf.PageNo() <= d.pageOffset {
			return
		}
		pdf.SetY(-0.65)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 0.3, fmt.Sprintf("%d", pdf.PageNo()-d.pageOffset), "", 0, "C", false, 0, "")
	})
	return d
}

// renderPDF produces a paginated document with a table of contents.
// Pagination is resolved in two passes: the first lays out body content
// only and records the page each heading starts on; the second emits the
// title page, the TOC built from those records, and the identical body.
// TOC pages are excluded from the body page-number sequence, so inserting
// the TOC never shifts the recorded numbers.
func renderPDF(b *book.Model) ([]byte, error) {
	layout := newPDFDoc()
	var entries []tocEntry
	layout.writeBody(b, func(level int, title string, page int) {
		entries = append(entries, tocEntry{Level: level, Title: title, Page: page})
	})
	if err := layout.pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pass: %w", err)
	}

	d := newPDFDoc()
	d.writeTitlePage(b)
	d.writeTOC(entries)
	d.pageOffset = d.pdf.PageNo()
	d.numbering = true
	d.writeBody(b, nil)
	if err := d.pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *pdfDoc) writeTitlePage(b *book.Model) {
	pdf := d.pdf
	pdf.AddPage()
	pdf.SetY(3.5)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.MultiCell(0, 0.5, d.tr(b.Title), "", "C", false)
	if b.Style != "" {
		pdf.Ln(0.3)
		pdf.SetFont("Helvetica", "I", 12)
		pdf.MultiCell(0, 0.25, d.tr(b.Style), "", "C", false)
	}
}

func (d *pdfDoc) writeTOC(entries []tocEntry) {
	pdf := d.pdf
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 0.4, d.tr("Table of Contents"), "", 1, "L", false, 0, "")
	pdf.Ln(0.1)

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin
	numW := 0.6

	for _, e := range entries {
		indent := 0.0
		if e.Level == 0 {
			pdf.SetFont("Helvetica", "B", 12)
		} else {
			pdf.SetFont("Helvetica", "", 11)
			indent = 0.3
		}
		pdf.SetX(pdfMargin + indent)
		pdf.CellFormat(usable-indent-numW, 0.28, d.tr(e.Title), "", 0, "L", false, 0, "")
		pdf.CellFormat(numW, 0.28, fmt.Sprintf("%d", e.Page), "", 1, "R", false, 0, "")
	}
}

// writeBody lays out the book content. Both passes call it, so the layout
// is identical by construction; record, when non-nil, captures the body
// page number each heading starts on.
func (d *pdfDoc) writeBody(b *book.Model, record func(level int, title string, page int)) {
	pdf := d.pdf
	_, pageH := pdf.GetPageSize()

	for i, ch := range b.Chapters {
		pdf.AddPage()
		heading := fmt.Sprintf("Chapter %d: %s", i+1, ch.Title)
		if record != nil {
			record(0, heading, pdf.PageNo())
		}
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 0.4, d.tr(heading), "", "C", false)
		pdf.Ln(0.2)

		for _, sub := range ch.Subsections {
			if pdf.GetY() > pageH-pdfMargin-pdfOrphanRoom {
				pdf.AddPage()
			}
			if record != nil {
				record(1, sub.Title, pdf.PageNo())
			}
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, pdfHeadingHt, d.tr(sub.Title), "", "L", false)
			pdf.Ln(0.05)

			for _, par := range RenderBody(bodyOrPlaceholder(sub)) {
				for _, run := range par {
					style := ""
					if run.Bold {
						style += "B"
					}
					if run.Italic {
						style += "I"
					}
					pdf.SetFont("Helvetica", style, 12)
					pdf.Write(pdfLineHt, d.tr(run.Text))
				}
				pdf.Ln(pdfLineHt + pdfParSpacing)
			}
			pdf.Ln(0.1)
		}
	}
}
