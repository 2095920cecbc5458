package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/bookforge/internal/book"
	"github.com/dgallion1/bookforge/internal/llm"
)

var testRequest = book.Request{
	Title:       "Intro to Bees",
	Description: "A short English-language guide to beekeeping for beginners",
	Style:       "Informative",
}

func TestPlan_Valid(t *testing.T) {
	client := &mockClient{}
	p := NewPlanner(client, fastPolicy(0), 2, testLogger())

	plan, err := p.Plan(context.Background(), testRequest, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(plan.Chapters))
	}
	if plan.TotalSubsections() != 4 {
		t.Errorf("subsections = %d, want 4", plan.TotalSubsections())
	}
	if plan.Chapters[0].Title != "Getting Started" {
		t.Errorf("first chapter = %q", plan.Chapters[0].Title)
	}
	if plan.Chapters[1].Subsections[1].Title != "Harvesting Honey" {
		t.Errorf("last subsection = %q", plan.Chapters[1].Subsections[1].Title)
	}
}

func TestPlan_StripsCodeFenceAndChapterPrefix(t *testing.T) {
	client := &mockClient{
		onStructure: func(req llm.ChatRequest) (string, error) {
			return "```json\n" + `{"chapters":[{"title":"Chapter 1: Basics","description":"d","subsections":[{"title":"  First Steps ","description":"d"}]}]}` + "\n```", nil
		},
	}
	p := NewPlanner(client, fastPolicy(0), 0, testLogger())

	plan, err := p.Plan(context.Background(), testRequest, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Chapters[0].Title != "Basics" {
		t.Errorf("chapter title = %q, want Basics", plan.Chapters[0].Title)
	}
	if plan.Chapters[0].Subsections[0].Title != "First Steps" {
		t.Errorf("subsection title = %q, want First Steps", plan.Chapters[0].Subsections[0].Title)
	}
}

func TestPlan_CorrectiveRetryOnMalformed(t *testing.T) {
	attempt := 0
	client := &mockClient{
		onStructure: func(req llm.ChatRequest) (string, error) {
			attempt++
			if attempt == 1 {
				return `{"chapters":[{"title":"Solo","description":"d","subsections":[]}]}`, nil
			}
			if !strings.Contains(req.User, "rejected") {
				t.Error("retry prompt missing corrective note")
			}
			return fixedPlanJSON, nil
		},
	}
	p := NewPlanner(client, fastPolicy(0), 2, testLogger())

	plan, err := p.Plan(context.Background(), testRequest, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt != 2 {
		t.Errorf("attempts = %d, want 2", attempt)
	}
	if len(plan.Chapters) != 2 {
		t.Errorf("chapters = %d, want 2", len(plan.Chapters))
	}
}

func TestPlan_ExhaustsCorrectiveRetries(t *testing.T) {
	client := &mockClient{
		onStructure: func(req llm.ChatRequest) (string, error) {
			return "not json at all", nil
		},
	}
	p := NewPlanner(client, fastPolicy(0), 1, testLogger())

	_, err := p.Plan(context.Background(), testRequest, "en")
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPlan_FatalBackendErrorNotRetried(t *testing.T) {
	calls := 0
	client := &mockClient{
		onStructure: func(req llm.ChatRequest) (string, error) {
			calls++
			return "", &llm.FatalError{StatusCode: 401, Message: "bad key"}
		},
	}
	p := NewPlanner(client, fastPolicy(2), 2, testLogger())

	_, err := p.Plan(context.Background(), testRequest, "en")
	if !llm.IsFatal(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStripChapterPrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Chapter 1: Basics", "Basics"},
		{"chapter 12:  Advanced", "Advanced"},
		{"Basics", "Basics"},
	}
	for _, c := range cases {
		if got := stripChapterPrefix(c.in); got != c.want {
			t.Errorf("stripChapterPrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
