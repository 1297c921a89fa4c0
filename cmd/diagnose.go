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
	"github.com/hrishiwastaken/YTMusicWrapped/internal/history"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Audits each pipeline stage",
	Long: `Shows how many plays survived parsing, metadata lookup and duration
filtering, and the raw number of plays found for each month before any
filtering. A month with no plays here was not present in the Takeout file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := printDiagnostics(cmd.Context(), os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

func printDiagnostics(ctx context.Context, out io.Writer) error {
	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}
	for _, a := range diagnosticAnalyses(ds) {
		fmt.Fprintln(out, a)
	}
	return nil
}

func diagnosticAnalyses(ds *pipeline.Dataset) []Analysis {
	stages := Analysis{
		title: "Data Pipeline Audit",
		results: [][]string{
			{"Step", "Entries"},
			{"1. Music entries found in HTML", humanize.Comma(int64(ds.Counts.Parsed))},
			{"2. Entries with valid metadata from API", humanize.Comma(int64(ds.Counts.WithMetadata))},
			{fmt.Sprintf("3. Entries at least %ds long (final count)", analysis.MinDurationSeconds), humanize.Comma(int64(ds.Counts.Qualified))},
		},
	}

	monthly := [][]string{{"Month", "Raw Listen Count"}}
	for _, c := range history.MonthlyCounts(ds.Events) {
		monthly = append(monthly, []string{c.Label(), humanize.Comma(int64(c.Count))})
	}

	return []Analysis{
		stages,
		{title: "Raw Monthly Breakdown (Before Any Filtering)", results: monthly},
	}
}
