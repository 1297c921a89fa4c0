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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

var periodsCmd = &cobra.Command{
	Use:   "periods <month|week>",
	Short: "Lists the months or weeks that can be summarized",
	Long: `Lists every month or week from the latest play back to the earliest, with
the argument to pass to summary for each.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printPeriods(cmd.Context(), os.Stdout, args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func printPeriods(ctx context.Context, out io.Writer, granularity string) error {
	g, err := analysis.ParseGranularity(granularity)
	if err != nil {
		return err
	}

	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, periodsAnalysis(ds, g))
	return nil
}

func periodsAnalysis(ds *pipeline.Dataset, g analysis.Granularity) Analysis {
	results := [][]string{{"Period", "Argument", "Plays", "Minutes"}}
	for _, p := range analysis.AvailablePeriods(ds.Enriched, g) {
		subset := analysis.Select(ds.Enriched, p)
		minutes := 0.0
		for _, e := range subset {
			minutes += e.CappedMinutes
		}
		results = append(results, []string{
			p.Label(),
			periodArgument(p),
			humanize.Comma(int64(len(subset))),
			humanize.Comma(int64(minutes)),
		})
	}
	return Analysis{results: results}
}

// periodArgument is the summary argument that selects p.
func periodArgument(p analysis.Period) string {
	switch p.Granularity {
	case analysis.Month:
		return p.Start().Format("2006-01")
	case analysis.Week:
		return p.Start().Format("2006-01-02")
	}
	return ""
}
