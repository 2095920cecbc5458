package generate

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookforge/internal/book"
)

const languageSystem = `You are a language identification assistant. Respond with only the two-letter ISO 639-1 code of the primary language of the text (e.g. 'en', 'es', 'fr', 'de'). No other text.`

// BuildLanguagePrompt asks for the ISO 639-1 code of text.
func BuildLanguagePrompt(text string) (system, user string) {
	return languageSystem, fmt.Sprintf("Identify the primary language of the following text and return only its two-letter ISO 639-1 code. Text: %q", text)
}

const structureSystem = `You are a book outlining assistant. Given a book title, description and writing style, design the full chapter and subsection structure. Respond with ONLY a JSON object of this shape, no other text:

{"chapters":[{"title":"...","description":"one sentence","subsections":[{"title":"...","description":"one sentence"}]}]}

Rules:
- At least one chapter; every chapter has at least one subsection
- Chapter titles must be unique; subsection titles must be unique within their chapter
- Titles are plain text without numbering prefixes like "Chapter 1:"
- Titles and descriptions are written in the requested language
- No body text, only the structure`

// BuildStructurePrompt creates the structure call for a book brief.
func BuildStructurePrompt(req book.Request, language string) (system, user string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Book Title: %q\n", req.Title))
	sb.WriteString(fmt.Sprintf("Description: %q\n", req.Description))
	sb.WriteString(fmt.Sprintf("Writing Style: %q\n", req.Style))
	sb.WriteString(fmt.Sprintf("Language: %s\n", language))
	sb.WriteString("Generate the chapter and subsection structure.")
	return structureSystem, sb.String()
}

// BuildCorrectiveNote appends the validation failure to a retried structure
// call so the model can fix the specific violation.
func BuildCorrectiveNote(violation string) string {
	return fmt.Sprintf("\n\nYour previous structure was rejected: %s. Produce a corrected structure that satisfies every rule.", violation)
}

// BuildContentPrompt creates the content call for one subsection, with
// enough surrounding context to keep tone and content consistent.
func BuildContentPrompt(req book.Request, language string, ch book.ChapterSpec, sub book.SubsectionSpec, chapterCount int) (system, user string) {
	system = fmt.Sprintf("You are writing the subsection %q of chapter %q in the book %q. Language: %s. Writing style: %q. Use Markdown **bold** and *italic* for emphasis only. Write detailed prose for this subsection only, without headings or titles. Respond with the prose only.",
		sub.Title, ch.Title, req.Title, language, req.Style)

	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(fmt.Sprintf("Book: %q\n", req.Title))
	sb.WriteString(fmt.Sprintf("Chapter %d of %d: %q", ch.Index+1, chapterCount, ch.Title))
	if ch.Description != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", ch.Description))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Subsection %d of %d: %q", sub.Index+1, len(ch.Subsections), sub.Title))
	if sub.Description != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", sub.Description))
	}
	sb.WriteString("\nWrite the subsection content:")
	return system, sb.String()
}
