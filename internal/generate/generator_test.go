package generate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/llm"
)

type eventSink struct {
	events []Event
}

func (s *eventSink) Report(ev Event) { s.events = append(s.events, ev) }

func fixedPlan(t *testing.T) *book.StructurePlan {
	t.Helper()
	plan, err := parsePlan(fixedPlanJSON)
	if err != nil {
		t.Fatalf("fixture plan invalid: %v", err)
	}
	return plan
}

func TestGenerate_AllSucceed(t *testing.T) {
	client := &mockClient{
		onContent: func(req llm.ChatRequest) (string, error) {
			// Echo the system prompt so each body names its subsection.
			return req.System, nil
		},
	}
	g := NewGenerator(client, fastPolicy(0), time.Minute, testLogger())
	sink := &eventSink{}

	model, err := g.Generate(context.Background(), fixedPlan(t), testRequest, "en", sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Status != book.StatusComplete {
		t.Errorf("status = %q, want complete", model.Status)
	}
	if model.Language != "en" {
		t.Errorf("language = %q, want en", model.Language)
	}

	// Subsection order and content follow the plan order.
	plan := fixedPlan(t)
	for i, ch := range model.Chapters {
		if ch.Title != plan.Chapters[i].Title {
			t.Errorf("chapter %d = %q, want %q", i, ch.Title, plan.Chapters[i].Title)
		}
		for j, sub := range ch.Subsections {
			want := plan.Chapters[i].Subsections[j].Title
			if sub.Title != want {
				t.Errorf("chapter %d subsection %d = %q, want %q", i, j, sub.Title, want)
			}
			if sub.Status != book.SubsectionSucceeded {
				t.Errorf("subsection %q status = %q", sub.Title, sub.Status)
			}
			if !strings.Contains(sub.Body, sub.Title) {
				t.Errorf("subsection %q body does not reference its title", sub.Title)
			}
		}
	}
}

func TestGenerate_ProgressMonotone(t *testing.T) {
	client := &mockClient{}
	g := NewGenerator(client, fastPolicy(0), time.Minute, testLogger())
	sink := &eventSink{}

	if _, err := g.Generate(context.Background(), fixedPlan(t), testRequest, "en", sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.events) == 0 {
		t.Fatal("no progress events emitted")
	}
	last := -1.0
	for i, ev := range sink.events {
		if ev.Fraction < last {
			t.Errorf("event %d fraction %v decreased from %v", i, ev.Fraction, last)
		}
		last = ev.Fraction
	}
	if last != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", last)
	}
	if sink.events[len(sink.events)-1].Phase != PhaseFinalizing {
		t.Errorf("final phase = %q, want finalizing", sink.events[len(sink.events)-1].Phase)
	}
}

func TestGenerate_SingleFailureContinues(t *testing.T) {
	client := &mockClient{
		onContent: func(req llm.ChatRequest) (string, error) {
			if strings.Contains(req.System, "Colony Life") {
				return "", &llm.RetryableError{Message: "model overloaded"}
			}
			return "Fine prose.", nil
		},
	}
	g := NewGenerator(client, fastPolicy(1), time.Minute, testLogger())

	model, err := g.Generate(context.Background(), fixedPlan(t), testRequest, "en", &eventSink{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Status != book.StatusPartialFailure {
		t.Errorf("status = %q, want partial_failure", model.Status)
	}

	failed := 0
	for _, ch := range model.Chapters {
		for _, sub := range ch.Subsections {
			if sub.Status == book.SubsectionFailed {
				failed++
				if sub.Title != "Colony Life" {
					t.Errorf("unexpected failed subsection %q", sub.Title)
				}
				if !strings.Contains(sub.FailReason, "model overloaded") {
					t.Errorf("fail reason = %q", sub.FailReason)
				}
			} else if sub.Body == "" {
				t.Errorf("subsection %q succeeded with empty body", sub.Title)
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed subsections = %d, want 1", failed)
	}
}

func TestGenerate_TransientRetriedThenSucceeds(t *testing.T) {
	calls := 0
	client := &mockClient{
		onContent: func(req llm.ChatRequest) (string, error) {
			calls++
			if calls == 1 {
				return "", &llm.RetryableError{Message: "blip"}
			}
			return "Recovered prose.", nil
		},
	}
	g := NewGenerator(client, fastPolicy(2), time.Minute, testLogger())

	model, err := g.Generate(context.Background(), fixedPlan(t), testRequest, "en", &eventSink{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Status != book.StatusComplete {
		t.Errorf("status = %q, want complete", model.Status)
	}
}

func TestGenerate_FatalAbortsSession(t *testing.T) {
	calls := 0
	client := &mockClient{
		onContent: func(req llm.ChatRequest) (string, error) {
			calls++
			if calls == 2 {
				return "", &llm.FatalError{StatusCode: 402, Message: "quota exhausted"}
			}
			return "Prose.", nil
		},
	}
	g := NewGenerator(client, fastPolicy(2), time.Minute, testLogger())

	model, err := g.Generate(context.Background(), fixedPlan(t), testRequest, "en", &eventSink{})
	if err == nil {
		t.Fatal("expected fatal error to abort generation")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (no per-subsection retries after fatal)", calls)
	}
	if model.Finalized() {
		t.Error("aborted model should stay in-progress")
	}
}

func TestCleanBody(t *testing.T) {
	in := "### Sneaky Heading\nFirst paragraph.\n\n\nSecond paragraph.\n"
	got := CleanBody(in)
	want := "First paragraph.\nSecond paragraph."
	if got != want {
		t.Errorf("CleanBody = %q, want %q", got, want)
	}
}
