package generate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/llm"
)

// Generator fills every subsection of a plan with generated prose.
// Generation order is the plan order; a single subsection failure marks
// that subsection failed and continues, while a fatal backend error aborts
// the whole run.
type Generator struct {
	client      llm.Client
	policy      Policy
	callTimeout time.Duration
	log         *slog.Logger
}

func NewGenerator(client llm.Client, policy Policy, callTimeout time.Duration, log *slog.Logger) *Generator {
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	return &Generator{
		client:      client,
		policy:      policy,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Generate builds a book model from the plan. The returned model is
// finalized unless the error is non-nil, in which case the run aborted and
// the model stays in-progress.
func (g *Generator) Generate(ctx context.Context, plan *book.StructurePlan, req book.Request, language string, report Reporter) (*book.Model, error) {
	model := book.NewModel(req, language, plan)
	total := plan.TotalSubsections()
	done := 0

	fraction := func() float64 {
		if total == 0 {
			return 1
		}
		return float64(done) / float64(total)
	}

	for i := range model.Chapters {
		ch := &model.Chapters[i]
		report.Report(Event{
			Phase:     PhaseGeneratingChapter,
			Message:   fmt.Sprintf("Generating chapter %d of %d: %s", i+1, len(model.Chapters), ch.Title),
			Fraction:  fraction(),
			Chapter:   i + 1,
			Timestamp: time.Now(),
		})

		for j := range ch.Subsections {
			sub := &ch.Subsections[j]
			report.Report(Event{
				Phase:      PhaseGeneratingSubsection,
				Message:    fmt.Sprintf("Generating subsection %d of %d: %s", j+1, len(ch.Subsections), sub.Title),
				Fraction:   fraction(),
				Chapter:    i + 1,
				Subsection: j + 1,
				Timestamp:  time.Now(),
			})

			err := g.generateSubsection(ctx, model, req, language, ch, sub)
			if err != nil {
				if llm.IsFatal(err) || ctx.Err() != nil {
					return model, fmt.Errorf("chapter %d subsection %d (%s): %w", i+1, j+1, sub.Title, err)
				}
				sub.Status = book.SubsectionFailed
				sub.FailReason = err.Error()
				g.log.Error("subsection generation failed",
					"chapter", i+1, "subsection", j+1, "title", sub.Title, "error", err)
			}

			done++
			report.Report(Event{
				Phase:      PhaseGeneratingSubsection,
				Message:    fmt.Sprintf("Finished subsection %d of %d: %s", j+1, len(ch.Subsections), sub.Title),
				Fraction:   fraction(),
				Chapter:    i + 1,
				Subsection: j + 1,
				Timestamp:  time.Now(),
			})
		}

		report.Report(Event{
			Phase:     PhaseGeneratingChapter,
			Message:   fmt.Sprintf("Finished chapter %d of %d: %s", i+1, len(model.Chapters), ch.Title),
			Fraction:  fraction(),
			Chapter:   i + 1,
			Timestamp: time.Now(),
		})
	}

	report.Report(Event{
		Phase:     PhaseFinalizing,
		Message:   "Finalizing book",
		Fraction:  fraction(),
		Timestamp: time.Now(),
	})
	model.Finalize()
	return model, nil
}

func (g *Generator) generateSubsection(ctx context.Context, model *book.Model, req book.Request, language string, ch *book.Chapter, sub *book.Subsection) error {
	system, user := BuildContentPrompt(req, language, ch.ChapterSpec, sub.SubsectionSpec, len(model.Chapters))

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var raw string
	err := g.policy.Do(callCtx, func() error {
		var callErr error
		raw, callErr = g.client.Chat(callCtx, llm.ChatRequest{
			System:      system,
			User:        user,
			Temperature: 0.6,
			MaxTokens:   4000,
		})
		return callErr
	})
	if err != nil {
		return err
	}

	body := CleanBody(raw)
	if body == "" {
		return fmt.Errorf("backend returned empty content")
	}
	sub.Body = body
	sub.Status = book.SubsectionSucceeded
	return nil
}

var (
	headingLineRe = regexp.MustCompile(`(?m)^#{1,6}\s.*$`)
	blankRunRe    = regexp.MustCompile(`\n\s*\n`)
)

// CleanBody strips heading lines the model sneaks into body prose and
// collapses runs of blank lines.
func CleanBody(s string) string {
	s = headingLineRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
