package generate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/bookforge/internal/llm"
)

var languageCodeRe = regexp.MustCompile(`^[a-z]{2}$`)

// Detector infers the book's language from the free-text description.
// Detection is advisory: any failure degrades to the configured fallback
// and never aborts the pipeline.
type Detector struct {
	client   llm.Client
	policy   Policy
	fallback string
	log      *slog.Logger
}

func NewDetector(client llm.Client, policy Policy, fallback string, log *slog.Logger) *Detector {
	if fallback == "" {
		fallback = "en"
	}
	return &Detector{
		client:   client,
		policy:   policy,
		fallback: fallback,
		log:      log,
	}
}

// Detect returns the two-letter ISO 639-1 code for text, or the fallback.
func (d *Detector) Detect(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return d.fallback
	}

	system, user := BuildLanguagePrompt(text)
	var raw string
	err := d.policy.Do(ctx, func() error {
		var callErr error
		raw, callErr = d.client.Chat(ctx, llm.ChatRequest{
			System:      system,
			User:        user,
			Temperature: 0.1,
			MaxTokens:   10,
		})
		return callErr
	})
	if err != nil {
		d.log.Warn("language detection failed, using fallback", "fallback", d.fallback, "error", err)
		return d.fallback
	}

	code := strings.ToLower(strings.TrimSpace(raw))
	if !languageCodeRe.MatchString(code) {
		d.log.Warn("unexpected language code format, using fallback", "raw", truncateForLog(raw), "fallback", d.fallback)
		return d.fallback
	}
	return code
}

func truncateForLog(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
