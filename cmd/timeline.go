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
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Prints listening time and growth for every month",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := printTimeline(cmd.Context(), os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

func printTimeline(ctx context.Context, out io.Writer) error {
	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	a, err := timelineAnalysis(ctx, ds)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, a)
	return nil
}

func timelineAnalysis(ctx context.Context, ds *pipeline.Dataset) (Analysis, error) {
	periods := analysis.AvailablePeriods(ds.Enriched, analysis.Month)
	summaries := make([]*analysis.PeriodSummary, len(periods))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range periods {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = analysis.Summarize(analysis.Select(ds.Enriched, p), ds.Enriched, analysis.Month)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}

	results := [][]string{{"Month", "Plays", "Minutes", "Growth", "Favorite Artist", "Favorite Song"}}
	for i, s := range summaries {
		if s == nil {
			results = append(results, []string{periods[i].Label(), "0", "0", "-", "-", "-"})
			continue
		}
		results = append(results, []string{
			s.Period,
			humanize.Comma(int64(s.Plays)),
			humanize.Comma(int64(s.TotalMinutes)),
			s.Growth.Text,
			s.FavoriteArtist.Name,
			s.FavoriteSong.Title,
		})
	}
	return Analysis{title: "Monthly Timeline", results: results}, nil
}
