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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [period]",
	Short: "Prints listening statistics for a period",
	Long: `Prints total listening time, favorites, top 10 songs and artists, listening
by time of day and by day.
  [period] is empty for all time, yyyy-mm for a month (e.g. '2024-01') or
  yyyy-mm-dd for the Monday-to-Sunday week containing that day.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printSummary(cmd.Context(), os.Stdout, viper.GetString("format"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	var format string
	summaryCmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")
	viper.BindPFlag("format", summaryCmd.Flags().Lookup("format"))
}

func printSummary(ctx context.Context, out io.Writer, format string, args []string) error {
	g, period, err := parsePeriodFromArgs(args)
	if err != nil {
		return err
	}
	if format != "table" && format != "yaml" {
		return fmt.Errorf("Invalid format %q: want table or yaml", format)
	}

	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}
	return writeSummary(out, format, ds, g, period)
}

func writeSummary(out io.Writer, format string, ds *pipeline.Dataset, g analysis.Granularity, period analysis.Period) error {
	summary, err := summarize(ds, g, period)
	if err != nil {
		return err
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return enc.Close()
	}

	for _, line := range headline(summary) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Note: plays longer than %d min are capped. Favorite song is ranked by listen score (plays x minutes).\n\n", analysis.MaxCapMinutes)
	for _, a := range summaryAnalyses(summary) {
		fmt.Fprintln(out, a)
	}
	return nil
}
