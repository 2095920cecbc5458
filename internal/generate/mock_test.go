package generate

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgallion1/bookforge/internal/llm"
)

// mockClient routes calls to per-shape responders based on the system
// prompt, mirroring the three logical call shapes the pipeline issues.
type mockClient struct {
	mu    sync.Mutex
	calls []llm.ChatRequest

	onLanguage  func(req llm.ChatRequest) (string, error)
	onStructure func(req llm.ChatRequest) (string, error)
	onContent   func(req llm.ChatRequest) (string, error)
}

func (m *mockClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	switch {
	case strings.Contains(req.System, "language identification"):
		if m.onLanguage != nil {
			return m.onLanguage(req)
		}
		return "en", nil
	case strings.Contains(req.System, "outlining assistant"):
		if m.onStructure != nil {
			return m.onStructure(req)
		}
		return fixedPlanJSON, nil
	default:
		if m.onContent != nil {
			return m.onContent(req)
		}
		return "Body for " + req.System, nil
	}
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

const fixedPlanJSON = `{"chapters":[
  {"title":"Getting Started","description":"The basics","subsections":[
    {"title":"Why Keep Bees","description":"Motivation"},
    {"title":"Choosing Equipment","description":"Gear"}]},
  {"title":"The Hive","description":"Inside the colony","subsections":[
    {"title":"Colony Life","description":"Roles"},
    {"title":"Harvesting Honey","description":"The payoff"}]}]}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy(retries int) Policy {
	return Policy{MaxAttempts: 1 + retries, BaseDelay: 1, MaxDelay: 2}
}
