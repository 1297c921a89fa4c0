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
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
)

// Analysis is one titled table. results[0] is the header row.
type Analysis struct {
	title   string
	results [][]string
	summary string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if a.title != "" {
		fmt.Fprintf(out, "## %s\n", a.title)
	}
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

// HTML renders the table for email bodies.
func (a Analysis) HTML() string {
	out := new(bytes.Buffer)
	if a.title != "" {
		fmt.Fprintf(out, "<h3>%s</h3>\n", html.EscapeString(a.title))
	}
	out.WriteString("<table>\n<tr>")
	for _, h := range a.results[0] {
		fmt.Fprintf(out, "<th>%s</th>", html.EscapeString(h))
	}
	out.WriteString("</tr>\n")
	for _, row := range a.results[1:] {
		out.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(out, "<td>%s</td>", html.EscapeString(cell))
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString("</table>\n")
	if a.summary != "" {
		fmt.Fprintf(out, "<p>%s</p>\n", html.EscapeString(a.summary))
	}
	return out.String()
}

func formatMinutes(minutes float64) string {
	return humanize.Comma(int64(minutes)) + " min"
}

// headline is the one-line-per-metric overview of a summary.
func headline(s *analysis.PeriodSummary) []string {
	total := "Total music time (capped): " + formatMinutes(s.TotalMinutes)
	if s.Growth != nil {
		total += " (" + s.Growth.Text + ")"
	}
	return []string{
		"Period: " + s.Period,
		total,
		fmt.Sprintf("Favorite artist: %s (%s)", s.FavoriteArtist.Name, formatMinutes(s.FavoriteArtist.TotalMinutes)),
		fmt.Sprintf("Favorite song (by listen score): %s (%s)", s.FavoriteSong.Title, formatMinutes(s.FavoriteSong.TotalMinutes)),
		fmt.Sprintf("Plays: %s", humanize.Comma(int64(s.Plays))),
	}
}

func topSongsAnalysis(songs []analysis.SongStat, title string) Analysis {
	results := [][]string{{"#", "Song", "Plays", "Minutes", "Listen Score"}}
	for i, song := range songs {
		results = append(results, []string{
			strconv.Itoa(i + 1),
			song.Title,
			strconv.Itoa(song.PlayCount),
			humanize.Comma(int64(song.TotalMinutes)),
			humanize.Comma(int64(song.ListenScore)),
		})
	}
	return Analysis{title: title, results: results}
}

func topArtistsAnalysis(artists []analysis.ArtistStat, title string) Analysis {
	results := [][]string{{"#", "Artist", "Minutes Listened (Capped)"}}
	for i, artist := range artists {
		results = append(results, []string{
			strconv.Itoa(i + 1),
			artist.Name,
			humanize.Comma(int64(artist.TotalMinutes)),
		})
	}
	return Analysis{title: title, results: results}
}

func timeOfDayAnalysis(s *analysis.PeriodSummary) Analysis {
	results := [][]string{{"Time of Day", "Minutes"}}
	for _, b := range s.TimeBuckets {
		results = append(results, []string{b.Label, humanize.Comma(int64(b.Minutes))})
	}
	return Analysis{title: "By Time of Day", results: results}
}

func dailyAnalysis(s *analysis.PeriodSummary) Analysis {
	results := [][]string{{"Date", "Minutes"}}
	for _, d := range s.ByDay {
		results = append(results, []string{d.Date.Format("2006-01-02"), humanize.Comma(int64(d.Minutes))})
	}
	return Analysis{
		title:   "Daily Music Listening",
		results: results,
		summary: fmt.Sprintf("Total of %s in %s. Avg: %.0f min/day", formatMinutes(s.TotalMinutes), s.Period, s.DailyAverage),
	}
}

// summaryAnalyses are the tables shown for one period, in display order.
func summaryAnalyses(s *analysis.PeriodSummary) []Analysis {
	return []Analysis{
		topSongsAnalysis(s.TopSongs, fmt.Sprintf("Top %d Songs (by Listen Score)", analysis.TopN)),
		topArtistsAnalysis(s.TopArtists, fmt.Sprintf("Top %d Artists (by capped minutes)", analysis.TopN)),
		timeOfDayAnalysis(s),
		dailyAnalysis(s),
	}
}
