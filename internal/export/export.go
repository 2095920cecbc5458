// Package export renders a finalized book model to an output format.
// Export is a pure function of the model and the format: it never mutates
// the model and may be called repeatedly in any order.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/dgallion1/bookforge/internal/book"
)

// Format is a supported output format.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat maps a caller-supplied format string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want text, pdf or docx)", s)
	}
}

// Extension returns the filename extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatPDF:
		return ".pdf"
	case FormatDOCX:
		return ".docx"
	}
	return ""
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// ErrNotFinalized is returned when export is requested on a book that has
// not left the in-progress state.
var ErrNotFinalized = errors.New("book generation has not finished")

// Engine renders book models. Safe for concurrent use.
type Engine struct {
	log *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	return &Engine{log: log}
}

// Export renders the book in the requested format and returns the bytes
// plus a suggested filename. The timestamp in the filename is taken at
// save time, so repeated exports yield distinct names.
func (e *Engine) Export(b *book.Model, format Format) ([]byte, string, error) {
	if b == nil {
		return nil, "", fmt.Errorf("no book to export")
	}
	if !b.Finalized() {
		return nil, "", ErrNotFinalized
	}

	var data []byte
	var err error
	switch format {
	case FormatText:
		data = renderText(b)
	case FormatPDF:
		data, err = renderPDF(b)
	case FormatDOCX:
		data, err = renderDOCX(b)
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("render %s: %w", format, err)
	}

	name := SuggestedFilename(b.Title, b.Language, format, time.Now())
	e.log.Info("book exported", "format", string(format), "filename", name, "bytes", len(data))
	return data, name, nil
}

// SuggestedFilename builds "{sanitized-title}_{language}_{timestamp}{ext}".
func SuggestedFilename(title, language string, format Format, now time.Time) string {
	safe := sanitizeTitle(title)
	if language == "" {
		language = "und"
	}
	return fmt.Sprintf("%s_%s_%s%s", safe, language, now.Format("20060102_150405"), format.Extension())
}

// sanitizeTitle keeps alphanumerics, spaces and underscores, then turns
// spaces into underscores.
func sanitizeTitle(title string) string {
	var sb strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			sb.WriteRune(r)
		}
	}
	safe := strings.Join(strings.Fields(sb.String()), "_")
	if safe == "" {
		safe = "book"
	}
	return safe
}

// bodyOrPlaceholder returns the subsection body, or a visible placeholder
// for subsections whose generation failed. Failed content is never
// silently omitted from rendered output.
func bodyOrPlaceholder(sub book.Subsection) string {
	if sub.Status == book.SubsectionSucceeded {
		return sub.Body
	}
	reason := sub.FailReason
	if reason == "" {
		reason = "not generated"
	}
	return fmt.Sprintf("[content unavailable: %s]", reason)
}
