// Package pipeline runs parse, fetch and enrich once per history file and
// reports terminal failures by the stage that produced them.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/history"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/store"
)

type Stage string

const (
	StageParse      Stage = "parse"
	StageCredential Stage = "credential"
	StageMetadata   Stage = "metadata"
	StageFilter     Stage = "filter"
)

// ErrNoMetadata means no played item could be resolved.
var ErrNoMetadata = errors.New("no metadata could be resolved for any played item")

// StageError is a terminal failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Counts are the number of plays surviving each stage.
type Counts struct {
	Parsed       int `json:"parsed"`
	WithMetadata int `json:"with_metadata"`
	Qualified    int `json:"qualified"`
}

// Dataset is the result of one run. It is read-only once returned.
type Dataset struct {
	Events   []history.PlayEvent      `json:"events"`
	Enriched []analysis.EnrichedEvent `json:"enriched"`
	Counts   Counts                   `json:"counts"`
}

type Runner struct {
	// NewLookup builds the metadata client for a credential.
	NewLookup func(credential string) (metadata.Lookup, error)
	// Store is optional. When set, lookups and finished datasets are cached.
	Store     *store.Store
	BatchSize int
	Limiter   *rate.Limiter
	Logger    *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Run builds the dataset for markup.
func (r *Runner) Run(ctx context.Context, markup []byte, credential string) (*Dataset, error) {
	var key string
	if r.Store != nil {
		key = store.DatasetKey(markup, credential)
		if ds, err := r.cachedDataset(key); err != nil {
			r.logger().Warn("ignoring unreadable dataset cache", "error", err)
		} else if ds != nil {
			r.logger().Info("using cached dataset", "plays", ds.Counts.Qualified)
			return ds, nil
		}
	}

	events, err := history.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}
	r.logger().Info("parsed history", "entries", len(events))

	lookup, err := r.NewLookup(credential)
	if err != nil {
		return nil, &StageError{Stage: StageCredential, Err: err}
	}

	found, err := r.resolve(ctx, lookup, history.UniqueIDs(events))
	if errors.Is(err, metadata.ErrInvalidCredential) {
		return nil, &StageError{Stage: StageCredential, Err: err}
	}
	if err != nil {
		return nil, &StageError{Stage: StageMetadata, Err: err}
	}
	if len(found) == 0 {
		return nil, &StageError{Stage: StageMetadata, Err: ErrNoMetadata}
	}

	ds := &Dataset{
		Events:   events,
		Enriched: analysis.Enrich(events, found),
		Counts: Counts{
			Parsed:       len(events),
			WithMetadata: analysis.Matched(events, found),
		},
	}
	ds.Counts.Qualified = len(ds.Enriched)
	if ds.Counts.Qualified == 0 {
		return nil, &StageError{
			Stage: StageFilter,
			Err:   fmt.Errorf("%w: nothing at least %d seconds long", analysis.ErrEmptyResult, analysis.MinDurationSeconds),
		}
	}
	r.logger().Info("enriched history",
		"parsed", ds.Counts.Parsed, "with_metadata", ds.Counts.WithMetadata, "qualified", ds.Counts.Qualified)

	if r.Store != nil {
		if err := r.saveDataset(key, ds); err != nil {
			r.logger().Warn("could not cache dataset", "error", err)
		}
	}
	return ds, nil
}

// resolve returns metadata for ids, taking what it can from the cache and
// fetching the rest.
func (r *Runner) resolve(ctx context.Context, lookup metadata.Lookup, ids []string) (map[string]metadata.Metadata, error) {
	found := make(map[string]metadata.Metadata, len(ids))
	missing := ids
	if r.Store != nil {
		cached, err := r.Store.GetMetadata(ids)
		if err != nil {
			return nil, fmt.Errorf("reading metadata cache: %w", err)
		}
		missing = missing[:0:0]
		for _, id := range ids {
			if m, ok := cached[id]; ok {
				found[id] = m
			} else {
				missing = append(missing, id)
			}
		}
		r.logger().Debug("metadata cache", "hits", len(cached), "misses", len(missing))
	}

	fetcher := &metadata.Fetcher{
		Lookup:    lookup,
		BatchSize: r.BatchSize,
		Limiter:   r.Limiter,
		Logger:    r.logger(),
	}
	fetched := make(map[string]metadata.Metadata)
	var rejected error
	accepted := 0
	for progress, batch := range fetcher.Batches(ctx, missing) {
		if errors.Is(progress.Err, metadata.ErrInvalidCredential) {
			rejected = progress.Err
		} else {
			accepted++
		}
		for id, m := range batch {
			fetched[id] = m
		}
		r.logger().Info("fetching metadata",
			"batch", progress.Batch,
			"processed", progress.Processed,
			"total", progress.Total,
			"resolved", progress.Resolved,
			"progress", progress.Percent(10, 90))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Every batch was turned away for the key itself.
	if rejected != nil && accepted == 0 && len(found) == 0 {
		return nil, rejected
	}

	if r.Store != nil && len(fetched) > 0 {
		if err := r.Store.SaveMetadata(fetched); err != nil {
			r.logger().Warn("could not cache metadata", "error", err)
		}
	}
	for id, m := range fetched {
		found[id] = m
	}
	return found, nil
}

func (r *Runner) cachedDataset(key string) (*Dataset, error) {
	payload, err := r.Store.GetDataset(key)
	if err != nil || payload == nil {
		return nil, err
	}
	var ds Dataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return &ds, nil
}

func (r *Runner) saveDataset(key string, ds *Dataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return r.Store.SaveDataset(key, payload)
}
