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
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [period]",
	Short: "Lists every song and artist with capped and actual minutes",
	Long: `Lists every song ranked by listen score and every artist ranked by capped
listening time, with the uncapped minutes alongside for verification.
  [period] takes the same forms as for summary.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printExplore(cmd.Context(), os.Stdout, viper.GetInt("limit"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	var limit int
	exploreCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows per table, default is all")
	viper.BindPFlag("limit", exploreCmd.Flags().Lookup("limit"))
}

func printExplore(ctx context.Context, out io.Writer, limit int, args []string) error {
	_, period, err := parsePeriodFromArgs(args)
	if err != nil {
		return err
	}

	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	tables, err := exploreAnalyses(ds, period, limit)
	if err != nil {
		return err
	}
	for _, a := range tables {
		fmt.Fprintln(out, a)
	}
	return nil
}

func exploreAnalyses(ds *pipeline.Dataset, period analysis.Period, limit int) ([]Analysis, error) {
	subset := analysis.Select(ds.Enriched, period)
	if len(subset) == 0 {
		return nil, fmt.Errorf("%s: %w", period.Label(), analysis.ErrEmptyResult)
	}

	songs := analysis.SongTable(subset)
	artists := analysis.ArtistTable(subset)
	if limit > 0 {
		songs = songs[:min(limit, len(songs))]
		artists = artists[:min(limit, len(artists))]
	}

	songResults := [][]string{{"#", "Song", "Plays", "Capped Minutes", "Actual Minutes", "Listen Score"}}
	for i, s := range songs {
		songResults = append(songResults, []string{
			strconv.Itoa(i + 1),
			s.Title,
			strconv.Itoa(s.PlayCount),
			humanize.Comma(int64(s.TotalMinutes)),
			humanize.Comma(int64(s.ActualMinutes)),
			humanize.Comma(int64(s.ListenScore)),
		})
	}

	artistResults := [][]string{{"#", "Artist", "Plays", "Capped Minutes", "Actual Minutes"}}
	for i, a := range artists {
		artistResults = append(artistResults, []string{
			strconv.Itoa(i + 1),
			a.Name,
			strconv.Itoa(a.PlayCount),
			humanize.Comma(int64(a.TotalMinutes)),
			humanize.Comma(int64(a.ActualMinutes)),
		})
	}

	return []Analysis{
		{title: "All Songs, Ranked by Listen Score", results: songResults},
		{title: "All Artists, Ranked by Capped Listen Time", results: artistResults},
	}, nil
}
