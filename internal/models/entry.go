// internal/models/entry.go
package models

import (
    "strings"
    "time"
)

// MealEntry is one captured meal. The JSON shape is the persisted wire format:
// one store value is a JSON array of these.
type MealEntry struct {
    Time string  `json:"time"`
    URI  string  `json:"uri"`
    Info *string `json:"info"`
}

// Analyzed reports whether this entry already carries an analysis.
// Info is set at most once; it never goes back to nil.
func (e *MealEntry) Analyzed() bool {
    return e.Info != nil
}

// DaySnapshot is what the tool surface returns for get_day.
type DaySnapshot struct {
    DateKey       string      `json:"date_key"`
    Entries       []MealEntry `json:"entries"`
    Report        string      `json:"report,omitempty"`
    BusyAnalyzing bool        `json:"busy_analyzing"`
    BusyTracking  bool        `json:"busy_tracking"`
}

const (
    // Locale formats pinned to en-US so date keys stay stable across restarts.
    localeDateFormat = "1/2/2006"
    localeTimeFormat = "1/2/2006, 3:04:05 PM"

    keyNamespace = "ingrid"
)

// DateKey derives the store key for the calendar day of t:
// "ingrid-<date>-images" with path-unsafe separators replaced.
func DateKey(t time.Time) string {
    d := strings.ReplaceAll(t.Format(localeDateFormat), "/", "-")
    return keyNamespace + "-" + d + "-images"
}

// LocalTime formats a capture timestamp the way entries store it.
func LocalTime(t time.Time) string {
    return t.Format(localeTimeFormat)
}
