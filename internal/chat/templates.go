// internal/chat/templates.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Template keys understood by the session.
const (
	TemplateSession   = "session_init"
	TemplateDayReport = "day_report"
)

const sessionInitPrompt = `You are nutritionist and a health expert graduated from Standford university. You give people easy to understand information around food along with healthy eating habits. You have helped many people lead a balanced diet. A friend has contacted you to help him with questions related to food. Please help him with any query he has, he doesn't know anything about being healthy. Please give answers as direct tips and suggestions with good explanation. Answer all the questions with an accurate resolution, take safe assumptions as required. Give actual numbers in easy to understand measurement like 2 tablespoon, At the last provide a summary with a direct answer to the question without any nuance.

Help him understand below image with info, alternatives, limits.`

const dayReportPrompt = `Below is a log of every meal eaten today, with the time it was eaten and a short analysis of each. Review the whole day together: estimate total intake, point out what was missing or excessive, and suggest one concrete improvement for tomorrow. Keep the measurements easy to understand. Finish with a one-line verdict on the day.`

// Templates holds the current prompt templates. Defaults are built in; a
// remote sync may replace them at startup but a sync failure keeps the
// defaults, so the session always has something to use.
type Templates struct {
	mu     sync.RWMutex
	byKey  map[string]string
	client *http.Client
}

func NewTemplates() *Templates {
	return &Templates{
		byKey: map[string]string{
			TemplateSession:   sessionInitPrompt,
			TemplateDayReport: dayReportPrompt,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get returns the current template for key, falling back to the session
// template for unknown keys.
func (t *Templates) Get(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if tmpl, ok := t.byKey[key]; ok {
		return tmpl
	}
	return t.byKey[TemplateSession]
}

// Sync fetches a JSON object of template overrides from url and swaps them in
// atomically. Keys not present in the response keep their current value.
func (t *Templates) Sync(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create template request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("template fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("template fetch failed with status %d", resp.StatusCode)
	}

	var fetched map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return fmt.Errorf("failed to decode templates: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, tmpl := range fetched {
		if tmpl != "" {
			t.byKey[key] = tmpl
		}
	}
	return nil
}
