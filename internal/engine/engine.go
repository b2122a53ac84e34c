// internal/engine/engine.go
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ingrid-daylog/internal/chat"
	"ingrid-daylog/internal/image"
	"ingrid-daylog/internal/models"
	"ingrid-daylog/internal/storage"
)

// ChatSession is the slice of the AI adapter the engine drives. Both calls
// return generated text or a sentinel string; they never fail with an error.
type ChatSession interface {
	SendText(ctx context.Context, text, templateKey string) string
	SendImage(ctx context.Context, imageBase64, localTime, templateKey string) string
}

// SessionFactory builds a session for a language tag. Used by SetLanguage to
// swap the owned session without touching existing analyses.
type SessionFactory func(lang string) (ChatSession, error)

// Engine owns the current day's meal entries and drives persistence, lazy
// per-entry analysis and whole-day aggregation. Every mutation persists the
// full log before the operation returns; there is no reactive write path.
//
// Adapter and storage failures never escape as errors: they degrade to
// sentinel values or no-ops with a log line, so a remote hiccup can never
// take the caller down.
type Engine struct {
	store      storage.Store
	compressor image.Compressor
	newSession SessionFactory
	now        func() time.Time

	mu            sync.Mutex
	session       ChatSession
	entries       []models.MealEntry // nil = unset (day not loaded or empty)
	report        string
	busyAnalyzing bool
	busyTracking  bool
}

func New(store storage.Store, compressor image.Compressor, factory SessionFactory, lang string) (*Engine, error) {
	session, err := factory(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Engine{
		store:      store,
		compressor: compressor,
		newSession: factory,
		now:        time.Now,
		session:    session,
	}, nil
}

func (e *Engine) dateKey() string {
	return models.DateKey(e.now())
}

// Load reads the persisted log for the current date. A missing key leaves the
// state unset; malformed data or a store failure is logged and the state is
// left unchanged. Load never fails to the caller.
func (e *Engine) Load(ctx context.Context) {
	key := e.dateKey()

	value, err := e.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("engine: failed to load %q, treating as empty: %v", key, err)
		return
	}

	var entries []models.MealEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		log.Printf("engine: malformed log at %q, load abandoned: %v", key, err)
		return
	}

	e.mu.Lock()
	e.entries = entries
	e.mu.Unlock()
}

// Capture compresses the frame at srcURI and appends a new entry for it.
// A compression failure creates no entry and is the only error returned; a
// persistence failure keeps the in-memory entry as the source of truth for
// the session and is only logged.
func (e *Engine) Capture(ctx context.Context, srcURI string) (*models.MealEntry, error) {
	compressed, err := e.compressor.Compress(ctx, srcURI)
	if err != nil {
		return nil, fmt.Errorf("compression failed, entry not created: %w", err)
	}
	if compressed == nil {
		return nil, errors.New("compression failed, entry not created")
	}

	entry := models.MealEntry{
		Time: models.LocalTime(e.now()),
		URI:  compressed.URI,
	}

	e.mu.Lock()
	// Copy-on-write: an in-flight analysis pass may still hold the old slice.
	next := make([]models.MealEntry, len(e.entries), len(e.entries)+1)
	copy(next, e.entries)
	next = append(next, entry)
	e.entries = next
	e.mu.Unlock()

	e.persist(ctx, next)
	return &entry, nil
}

// AnalyzeAll walks the day's entries oldest first and fills in the analysis
// for every entry that does not have one yet. Calls to the AI adapter are
// strictly sequential, one outstanding request at a time. An entry that fails
// gets the sentinel and the batch continues. Re-running is idempotent:
// analyzed entries are never re-queried.
func (e *Engine) AnalyzeAll(ctx context.Context) {
	e.mu.Lock()
	if e.entries == nil || e.busyAnalyzing {
		e.mu.Unlock()
		return
	}
	e.busyAnalyzing = true
	work := cloneEntries(e.entries)
	session := e.session
	e.mu.Unlock()

	for i := range work {
		if work[i].Analyzed() {
			continue
		}

		var result string
		imageBase64, err := e.compressor.Reencode(ctx, work[i].URI)
		if err != nil {
			log.Printf("engine: failed to re-encode %q: %v", work[i].URI, err)
			result = chat.Sentinel
		} else {
			result = session.SendImage(ctx, imageBase64, work[i].Time, chat.TemplateSession)
			if result == "" {
				result = chat.Sentinel
			}
		}
		work[i].Info = &result
	}

	e.mu.Lock()
	// Captures may have landed while the batch ran; merge analysis results
	// into the current sequence instead of clobbering it.
	next := cloneEntries(e.entries)
	for i := range work {
		if i < len(next) && !next[i].Analyzed() {
			next[i].Info = work[i].Info
		}
	}
	e.entries = next
	e.busyAnalyzing = false
	e.mu.Unlock()

	e.persist(ctx, next)
}

// TrackDay aggregates every analyzed entry into one composite block, sends it
// as a single text request and stores the result as the day's report.
func (e *Engine) TrackDay(ctx context.Context) {
	e.mu.Lock()
	if len(e.entries) == 0 || e.busyAnalyzing || e.busyTracking {
		e.mu.Unlock()
		return
	}

	var lines []string
	for i, entry := range e.entries {
		if !entry.Analyzed() {
			continue
		}
		lines = append(lines, fmt.Sprintf("Meal %d :: Time: %s, Info: %s", i+1, entry.Time, *entry.Info))
	}
	if len(lines) == 0 {
		e.mu.Unlock()
		return
	}

	e.busyTracking = true
	session := e.session
	e.mu.Unlock()

	result := session.SendText(ctx, strings.Join(lines, "\n\n"), chat.TemplateDayReport)
	if result == "" {
		result = chat.Sentinel
	}

	e.mu.Lock()
	e.report = result
	e.busyTracking = false
	e.mu.Unlock()
}

// Clear deletes the persisted day and resets the in-memory log. A delete
// failure leaves both untouched; there is no partial clear.
func (e *Engine) Clear(ctx context.Context) {
	key := e.dateKey()

	if _, err := e.store.Delete(ctx, key); err != nil {
		log.Printf("engine: failed to clear %q, state unchanged: %v", key, err)
		return
	}

	e.mu.Lock()
	e.entries = nil
	e.mu.Unlock()
}

// SetLanguage swaps the owned session for one bound to lang. Entries analyzed
// under the previous language keep their text.
func (e *Engine) SetLanguage(lang string) error {
	session, err := e.newSession(lang)
	if err != nil {
		return fmt.Errorf("failed to switch language: %w", err)
	}

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	return nil
}

// Snapshot returns a read-only copy of the day for rendering.
func (e *Engine) Snapshot() models.DaySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return models.DaySnapshot{
		DateKey:       e.dateKey(),
		Entries:       cloneEntries(e.entries),
		Report:        e.report,
		BusyAnalyzing: e.busyAnalyzing,
		BusyTracking:  e.busyTracking,
	}
}

// persist overwrites the whole day under the current date key. Failures are
// logged; in-memory state stays authoritative for the rest of the session.
func (e *Engine) persist(ctx context.Context, entries []models.MealEntry) {
	key := e.dateKey()

	data, err := json.Marshal(entries)
	if err != nil {
		log.Printf("engine: failed to serialize %q: %v", key, err)
		return
	}
	if err := e.store.Set(ctx, key, string(data)); err != nil {
		log.Printf("engine: failed to persist %q, in-memory log retained: %v", key, err)
	}
}

func cloneEntries(entries []models.MealEntry) []models.MealEntry {
	if entries == nil {
		return nil
	}
	out := make([]models.MealEntry, len(entries))
	copy(out, entries)
	return out
}
