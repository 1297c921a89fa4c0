/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/history"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/store"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/youtube"
)

// newLookup is replaced in tests.
var newLookup = func(key string) (metadata.Lookup, error) {
	client, err := youtube.NewClient(key)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// loadDataset runs the pipeline over the configured history file.
func loadDataset(ctx context.Context) (*pipeline.Dataset, error) {
	path := viper.GetString("history")
	markup, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	s, err := store.New(viper.GetString("cache"))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	defer s.Close()

	runner := &pipeline.Runner{
		NewLookup: newLookup,
		Store:     s,
		Limiter:   rate.NewLimiter(rate.Every(viper.GetDuration("batch_interval")), 1),
		Logger:    slog.Default(),
	}
	fmt.Fprintf(os.Stderr, "Processing %s\n", path)
	ds, err := runner.Run(ctx, markup, viper.GetString("api_key"))
	if err != nil {
		return nil, explain(err)
	}
	return ds, nil
}

// explain adds a hint for the failures a user can fix.
func explain(err error) error {
	switch {
	case errors.Is(err, history.ErrNoEntries):
		return fmt.Errorf("%w\nNo YouTube Music plays were found. Is this the watch-history.html from a Takeout export in HTML format?", err)
	case errors.Is(err, history.ErrMalformedMarkup):
		return fmt.Errorf("%w\nThe history file could not be read as HTML.", err)
	case errors.Is(err, youtube.ErrInvalidCredential):
		return fmt.Errorf("%w\nSet --api_key or YOUTUBE_API_KEY to a key with the YouTube Data API v3 enabled.", err)
	case errors.Is(err, pipeline.ErrNoMetadata):
		return fmt.Errorf("%w\nRun check-key to make sure the API key works.", err)
	case errors.Is(err, analysis.ErrEmptyResult):
		return fmt.Errorf("%w\nOnly songs at least %d seconds long are counted.", err, analysis.MinDurationSeconds)
	}
	return err
}

// summarize selects period from ds and summarizes it.
func summarize(ds *pipeline.Dataset, g analysis.Granularity, period analysis.Period) (*analysis.PeriodSummary, error) {
	subset := analysis.Select(ds.Enriched, period)
	summary := analysis.Summarize(subset, ds.Enriched, g)
	if summary == nil {
		return nil, fmt.Errorf("%s: %w", period.Label(), analysis.ErrEmptyResult)
	}
	return summary, nil
}
