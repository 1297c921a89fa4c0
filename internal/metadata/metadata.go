// Package metadata resolves per-item duration, title and creator through a
// batched external lookup, skipping whatever the lookup can't answer.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/sosodev/duration"
	"golang.org/x/time/rate"
)

// BatchSize is the most ids the lookup service accepts per request.
const BatchSize = 50

// Metadata describes one item.
type Metadata struct {
	ItemID          string  `json:"item_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	Title           string  `json:"title"`
	Creator         string  `json:"creator"`
	CategoryID      string  `json:"category_id,omitempty"`
}

// Item is one raw record returned by a Lookup. Required fields are pointers
// so a missing field can be told apart from an empty one.
type Item struct {
	ID         string
	Duration   *string
	Title      *string
	Creator    *string
	CategoryID string
}

// Lookup resolves a single batch of ids. An error fails the whole batch.
type Lookup interface {
	Lookup(ctx context.Context, ids []string) ([]Item, error)
}

// ErrInvalidCredential is wrapped by a Lookup whose credential was rejected.
var ErrInvalidCredential = errors.New("invalid YouTube API key")

var errMissingField = errors.New("missing field")

// Progress is emitted once per batch.
type Progress struct {
	Batch     int
	Processed int
	Total     int
	// Resolved counts items resolved so far across all batches.
	Resolved int
	// Err is set when the batch was skipped.
	Err error
}

// Fraction is Processed/Total, or 0 when there is nothing to fetch.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Processed) / float64(p.Total)
}

// Percent maps the fraction onto [start, end], e.g. Percent(10, 90).
func (p Progress) Percent(start, end int) int {
	return int(float64(start) + p.Fraction()*float64(end-start))
}

type Fetcher struct {
	Lookup    Lookup
	BatchSize int
	// Limiter paces batch dispatch. Nil means no pacing.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func (f *Fetcher) batchSize() int {
	if f.BatchSize <= 0 {
		return BatchSize
	}
	return f.BatchSize
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// Batches fetches ids one batch at a time, yielding progress and the
// metadata resolved by that batch. Nothing is fetched until the sequence is
// ranged over; breaking out of the loop stops before the next batch.
func (f *Fetcher) Batches(ctx context.Context, ids []string) iter.Seq2[Progress, map[string]Metadata] {
	return func(yield func(Progress, map[string]Metadata) bool) {
		unique := dedupe(ids)
		total := len(unique)
		size := f.batchSize()
		resolved := 0

		for start, batch := 0, 1; start < total; start, batch = start+size, batch+1 {
			if ctx.Err() != nil {
				return
			}
			if f.Limiter != nil {
				if err := f.Limiter.Wait(ctx); err != nil {
					return
				}
			}

			end := min(start+size, total)
			progress := Progress{Batch: batch, Processed: end, Total: total}

			found, err := f.fetchBatch(ctx, unique[start:end])
			if err != nil {
				f.logger().Warn("skipping metadata batch",
					"batch", batch, "ids", end-start, "error", err)
				progress.Err = err
			}
			resolved += len(found)
			progress.Resolved = resolved

			if !yield(progress, found) {
				return
			}
		}
	}
}

// Fetch drains Batches and merges the results.
func (f *Fetcher) Fetch(ctx context.Context, ids []string) (map[string]Metadata, error) {
	result := make(map[string]Metadata)
	for _, found := range f.Batches(ctx, ids) {
		for id, m := range found {
			result[id] = m
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (f *Fetcher) fetchBatch(ctx context.Context, ids []string) (map[string]Metadata, error) {
	items, err := f.Lookup.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[string]Metadata, len(items))
	for _, item := range items {
		m, err := FromItem(item)
		if err != nil {
			f.logger().Debug("skipping item", "id", item.ID, "error", err)
			continue
		}
		found[m.ItemID] = m
	}
	return found, nil
}

// FromItem validates a raw lookup item and parses its ISO-8601 duration.
func FromItem(item Item) (Metadata, error) {
	if item.ID == "" {
		return Metadata{}, fmt.Errorf("id: %w", errMissingField)
	}
	if item.Duration == nil {
		return Metadata{}, fmt.Errorf("duration: %w", errMissingField)
	}
	if item.Title == nil {
		return Metadata{}, fmt.Errorf("title: %w", errMissingField)
	}
	if item.Creator == nil {
		return Metadata{}, fmt.Errorf("creator: %w", errMissingField)
	}

	d, err := duration.Parse(*item.Duration)
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing duration %q: %w", *item.Duration, err)
	}
	seconds := d.ToTimeDuration().Seconds()
	if seconds < 0 {
		return Metadata{}, fmt.Errorf("negative duration %q", *item.Duration)
	}

	return Metadata{
		ItemID:          item.ID,
		DurationSeconds: seconds,
		Title:           *item.Title,
		Creator:         *item.Creator,
		CategoryID:      item.CategoryID,
	}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
