// Package analysis turns parsed plays and their metadata into per-period
// listening statistics.
package analysis

import (
	"errors"
	"math"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/history"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
)

const (
	// MinDurationSeconds drops skips and previews.
	MinDurationSeconds = 60
	// MaxCapMinutes bounds a single play so long mixes don't dominate totals.
	MaxCapMinutes = 7
	TopN          = 10
)

// ErrEmptyResult means nothing survived filtering, or a selected period has
// no plays.
var ErrEmptyResult = errors.New("no qualifying plays")

// Enrich joins events with their metadata, keeping only plays with usable
// durations of at least MinDurationSeconds. Input order is kept.
func Enrich(events []history.PlayEvent, metadataByID map[string]metadata.Metadata) []EnrichedEvent {
	enriched := make([]EnrichedEvent, 0, len(events))
	for _, e := range events {
		m, ok := metadataByID[e.ItemID]
		if !ok {
			continue
		}
		if math.IsNaN(m.DurationSeconds) || math.IsInf(m.DurationSeconds, 0) {
			continue
		}
		if m.DurationSeconds < MinDurationSeconds {
			continue
		}

		minutes := m.DurationSeconds / 60
		enriched = append(enriched, EnrichedEvent{
			ItemID:          e.ItemID,
			Timestamp:       e.Timestamp,
			DurationSeconds: m.DurationSeconds,
			Title:           m.Title,
			Creator:         m.Creator,
			CategoryID:      m.CategoryID,
			DurationMinutes: minutes,
			CappedMinutes:   math.Min(minutes, MaxCapMinutes),
			Month:           PeriodOf(Month, e.Timestamp),
			Week:            PeriodOf(Week, e.Timestamp),
		})
	}
	return enriched
}

// Matched counts events that have metadata with a usable duration, before
// the minimum-duration filter.
func Matched(events []history.PlayEvent, metadataByID map[string]metadata.Metadata) int {
	n := 0
	for _, e := range events {
		m, ok := metadataByID[e.ItemID]
		if ok && !math.IsNaN(m.DurationSeconds) && !math.IsInf(m.DurationSeconds, 0) {
			n++
		}
	}
	return n
}

// Select returns the events that fall inside p.
func Select(events []EnrichedEvent, p Period) []EnrichedEvent {
	var subset []EnrichedEvent
	for _, e := range events {
		if p.Contains(e.Timestamp) {
			subset = append(subset, e)
		}
	}
	return subset
}

// AvailablePeriods lists every period from the latest play back to the
// earliest, including periods without plays.
func AvailablePeriods(events []EnrichedEvent, g Granularity) []Period {
	if len(events) == 0 {
		return nil
	}
	if g == Overall {
		return []Period{AllTime}
	}

	first, last := events[0].period(g), events[0].period(g)
	for _, e := range events[1:] {
		p := e.period(g)
		if p.Ordinal < first.Ordinal {
			first = p
		}
		if p.Ordinal > last.Ordinal {
			last = p
		}
	}

	periods := make([]Period, 0, last.Ordinal-first.Ordinal+1)
	for p := last; p.Ordinal >= first.Ordinal; p = p.Predecessor() {
		periods = append(periods, p)
	}
	return periods
}

func (e EnrichedEvent) period(g Granularity) Period {
	switch g {
	case Month:
		return e.Month
	case Week:
		return e.Week
	}
	return AllTime
}
