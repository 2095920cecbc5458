package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

// documentXML unzips the rendered docx and returns word/document.xml.
func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open rendered docx: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(body)
	}
	t.Fatal("word/document.xml missing from archive")
	return ""
}

func TestRenderDOCX(t *testing.T) {
	data, err := renderDOCX(fixtureBook())
	if err != nil {
		t.Fatalf("renderDOCX: %v", err)
	}
	doc := documentXML(t, data)

	wantOrder := []string{
		"Keeping Bees",
		"Chapter 1: Getting Started",
		"Why Keep Bees",
		"Choosing Equipment",
		"Chapter 2: The Hive",
		"Colony Life",
		"[content unavailable: model overloaded]",
		"Harvesting Honey",
	}
	pos := 0
	for _, want := range wantOrder {
		idx := strings.Index(doc[pos:], want)
		if idx < 0 {
			t.Fatalf("missing or out of order in document.xml: %q", want)
		}
		pos += idx + len(want)
	}

	for _, style := range []string{"Title", "Heading1", "Heading2"} {
		if !strings.Contains(doc, `w:val="`+style+`"`) {
			t.Errorf("style %q not referenced", style)
		}
	}

	// One page break separates the two chapters.
	if got := strings.Count(doc, `w:type="page"`); got != 1 {
		t.Errorf("page breaks = %d, want 1", got)
	}
}

func TestRenderDOCX_InlineStyles(t *testing.T) {
	data, err := renderDOCX(fixtureBook())
	if err != nil {
		t.Fatalf("renderDOCX: %v", err)
	}
	doc := documentXML(t, data)

	if !strings.Contains(doc, "<w:b") {
		t.Error("bold run markup missing")
	}
	if !strings.Contains(doc, "<w:i") {
		t.Error("italic run markup missing")
	}
}
