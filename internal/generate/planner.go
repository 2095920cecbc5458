package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/llm"
)

// Planner decides the chapter/subsection structure of a book by delegating
// to a structure call and validating the result. A malformed structure is
// recoverable: the call is retried with a corrective note up to the
// configured bound, then escalated as session-fatal.
type Planner struct {
	client      llm.Client
	policy      Policy
	maxAttempts int
	log         *slog.Logger
}

func NewPlanner(client llm.Client, policy Policy, planRetries int, log *slog.Logger) *Planner {
	return &Planner{
		client:      client,
		policy:      policy,
		maxAttempts: 1 + planRetries,
		log:         log,
	}
}

type planSubsection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type planChapter struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Subsections []planSubsection `json:"subsections"`
}

type planResponse struct {
	Chapters []planChapter `json:"chapters"`
}

// Plan produces a validated structure plan for the request.
func (p *Planner) Plan(ctx context.Context, req book.Request, language string) (*book.StructurePlan, error) {
	system, user := BuildStructurePrompt(req, language)
	corrective := ""

	var lastErr error
	for attempt := range p.maxAttempts {
		var raw string
		err := p.policy.Do(ctx, func() error {
			var callErr error
			raw, callErr = p.client.Chat(ctx, llm.ChatRequest{
				System:    system,
				User:      user + corrective,
				MaxTokens: 2000,
			})
			return callErr
		})
		if err != nil {
			// Transient exhaustion or a fatal backend error; a corrective
			// re-prompt cannot help here.
			return nil, fmt.Errorf("structure call: %w", err)
		}

		plan, err := parsePlan(raw)
		if err == nil {
			p.log.Info("structure plan accepted",
				"chapters", len(plan.Chapters),
				"subsections", plan.TotalSubsections(),
				"attempt", attempt+1,
			)
			return plan, nil
		}

		lastErr = err
		corrective = BuildCorrectiveNote(err.Error())
		p.log.Warn("structure plan rejected", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("structure plan invalid after %d attempts: %w", p.maxAttempts, lastErr)
}

var chapterPrefixRe = regexp.MustCompile(`(?i)^Chapter\s*\d+\s*:\s*`)

// stripChapterPrefix removes a leading "Chapter N:" the model tends to add
// despite instructions.
func stripChapterPrefix(title string) string {
	return strings.TrimSpace(chapterPrefixRe.ReplaceAllString(title, ""))
}

// parsePlan converts raw model output into a validated StructurePlan.
func parsePlan(raw string) (*book.StructurePlan, error) {
	text := llm.StripCodeBlock(raw)

	var resp planResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("structure is not valid JSON: %w", err)
	}

	plan := &book.StructurePlan{Chapters: make([]book.ChapterSpec, 0, len(resp.Chapters))}
	for i, ch := range resp.Chapters {
		spec := book.ChapterSpec{
			Title:       stripChapterPrefix(ch.Title),
			Description: strings.TrimSpace(ch.Description),
			Index:       i,
			Subsections: make([]book.SubsectionSpec, 0, len(ch.Subsections)),
		}
		for j, sub := range ch.Subsections {
			spec.Subsections = append(spec.Subsections, book.SubsectionSpec{
				Title:       strings.TrimSpace(sub.Title),
				Description: strings.TrimSpace(sub.Description),
				Index:       j,
			})
		}
		plan.Chapters = append(plan.Chapters, spec)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
