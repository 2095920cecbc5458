// Package book holds the in-memory book model: the request that starts a
// generation session, the structure plan the model proposes, and the
// generated book handed to the export engine.
package book

import (
	"fmt"
	"strings"
)

// Request is the user-supplied brief for one book.
type Request struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Style       string `json:"style"`
}

// Validate rejects briefs that would be sent to the backend with empty
// required fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(r.Style) == "" {
		return fmt.Errorf("style is required")
	}
	return nil
}

// SubsectionSpec is one planned subsection, title only.
type SubsectionSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Index       int    `json:"index"`
}

// ChapterSpec is one planned chapter and its subsections.
type ChapterSpec struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Index       int              `json:"index"`
	Subsections []SubsectionSpec `json:"subsections"`
}

// StructurePlan is the chapter/subsection skeleton for a book, without
// body text. Immutable once validated.
type StructurePlan struct {
	Chapters []ChapterSpec `json:"chapters"`
}

// TotalSubsections counts subsections across all chapters.
func (p *StructurePlan) TotalSubsections() int {
	n := 0
	for _, ch := range p.Chapters {
		n += len(ch.Subsections)
	}
	return n
}

// Validate enforces the structural rules a plan must satisfy before content
// generation starts: at least one chapter, at least one subsection per
// chapter, non-empty trimmed titles, no duplicate chapter titles, no
// duplicate subsection titles within a chapter, contiguous indexes.
func (p *StructurePlan) Validate() error {
	if len(p.Chapters) == 0 {
		return fmt.Errorf("plan has no chapters")
	}
	seenChapters := make(map[string]bool, len(p.Chapters))
	for i, ch := range p.Chapters {
		if ch.Title != strings.TrimSpace(ch.Title) || ch.Title == "" {
			return fmt.Errorf("chapter %d has an empty or untrimmed title", i+1)
		}
		key := strings.ToLower(ch.Title)
		if seenChapters[key] {
			return fmt.Errorf("duplicate chapter title %q", ch.Title)
		}
		seenChapters[key] = true
		if ch.Index != i {
			return fmt.Errorf("chapter %q has index %d, want %d", ch.Title, ch.Index, i)
		}
		if len(ch.Subsections) == 0 {
			return fmt.Errorf("chapter %q has no subsections", ch.Title)
		}
		seenSubs := make(map[string]bool, len(ch.Subsections))
		for j, sub := range ch.Subsections {
			if sub.Title != strings.TrimSpace(sub.Title) || sub.Title == "" {
				return fmt.Errorf("chapter %q subsection %d has an empty or untrimmed title", ch.Title, j+1)
			}
			subKey := strings.ToLower(sub.Title)
			if seenSubs[subKey] {
				return fmt.Errorf("chapter %q has duplicate subsection title %q", ch.Title, sub.Title)
			}
			seenSubs[subKey] = true
			if sub.Index != j {
				return fmt.Errorf("subsection %q has index %d, want %d", sub.Title, sub.Index, j)
			}
		}
	}
	return nil
}

// SubsectionStatus tracks the generation outcome of one subsection.
type SubsectionStatus string

const (
	SubsectionPending   SubsectionStatus = "pending"
	SubsectionSucceeded SubsectionStatus = "succeeded"
	SubsectionFailed    SubsectionStatus = "failed"
)

// Subsection is a planned subsection plus its generated body.
type Subsection struct {
	SubsectionSpec
	Body       string           `json:"body"`
	Status     SubsectionStatus `json:"status"`
	FailReason string           `json:"fail_reason,omitempty"`
}

// Chapter is a planned chapter plus its generated subsections.
type Chapter struct {
	ChapterSpec
	Subsections []Subsection `json:"subsections"`
}

// Status is the overall state of a book model.
type Status string

const (
	StatusInProgress     Status = "in_progress"
	StatusComplete       Status = "complete"
	StatusPartialFailure Status = "partial_failure"
)

// Model is the assembled book: structure plus generated bodies. It is
// mutated by the generation pipeline only and treated as read-only by
// every export call once finalized.
type Model struct {
	Title    string    `json:"title"`
	Language string    `json:"language"`
	Style    string    `json:"style"`
	Chapters []Chapter `json:"chapters"`
	Status   Status    `json:"status"`
}

// NewModel builds an in-progress model from a validated plan, with every
// subsection pending.
func NewModel(req Request, language string, plan *StructurePlan) *Model {
	m := &Model{
		Title:    strings.TrimSpace(req.Title),
		Language: language,
		Style:    strings.TrimSpace(req.Style),
		Chapters: make([]Chapter, 0, len(plan.Chapters)),
		Status:   StatusInProgress,
	}
	for _, spec := range plan.Chapters {
		ch := Chapter{
			ChapterSpec: spec,
			Subsections: make([]Subsection, 0, len(spec.Subsections)),
		}
		for _, sub := range spec.Subsections {
			ch.Subsections = append(ch.Subsections, Subsection{
				SubsectionSpec: sub,
				Status:         SubsectionPending,
			})
		}
		m.Chapters = append(m.Chapters, ch)
	}
	return m
}

// Finalize freezes the model: complete if every subsection succeeded,
// partial-failure otherwise.
func (m *Model) Finalize() {
	for _, ch := range m.Chapters {
		for _, sub := range ch.Subsections {
			if sub.Status != SubsectionSucceeded {
				m.Status = StatusPartialFailure
				return
			}
		}
	}
	m.Status = StatusComplete
}

// Finalized reports whether the model left the in-progress state.
func (m *Model) Finalized() bool {
	return m.Status == StatusComplete || m.Status == StatusPartialFailure
}

// TotalSubsections counts subsections across all chapters.
func (m *Model) TotalSubsections() int {
	n := 0
	for _, ch := range m.Chapters {
		n += len(ch.Subsections)
	}
	return n
}
