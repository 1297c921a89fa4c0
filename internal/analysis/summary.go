package analysis

import (
	"fmt"
	"sort"
	"time"
)

// FirstPeriodText replaces the growth figure when the preceding period has
// no listening time.
const FirstPeriodText = "First period of data"

type bucket struct {
	label    string
	fromHour int
	toHour   int
}

var timeBuckets = []bucket{
	{"Night (0-6)", 0, 6},
	{"Morning (6-12)", 6, 12},
	{"Afternoon (12-18)", 12, 18},
	{"Evening (18-24)", 18, 24},
}

// Summarize computes the statistics for subset, comparing against the
// preceding period found in full. Subset is expected to lie in a single
// period of granularity g. It returns nil when subset is empty. Neither
// slice is modified.
func Summarize(subset, full []EnrichedEvent, g Granularity) *PeriodSummary {
	if len(subset) == 0 {
		return nil
	}

	period := subset[0].period(g)
	summary := &PeriodSummary{
		Period:       period.Label(),
		TotalMinutes: totalMinutes(subset),
		Plays:        len(subset),
	}
	if g != Overall {
		summary.Growth = growth(summary.TotalMinutes, period.Predecessor(), full)
	}

	songs := SongTable(subset)
	artists := ArtistTable(subset)
	summary.FavoriteSong = songs[0]
	summary.FavoriteArtist = artists[0]
	summary.TopSongs = songs[:min(TopN, len(songs))]
	summary.TopArtists = artists[:min(TopN, len(artists))]

	summary.ByDay = byDay(subset)
	summary.DailyAverage = summary.TotalMinutes / float64(len(summary.ByDay))
	summary.TimeBuckets = byTimeOfDay(subset)

	return summary
}

func totalMinutes(events []EnrichedEvent) float64 {
	total := 0.0
	for _, e := range events {
		total += e.CappedMinutes
	}
	return total
}

func growth(current float64, previous Period, full []EnrichedEvent) *Growth {
	previousTotal := 0.0
	for _, e := range full {
		if e.period(previous.Granularity) == previous {
			previousTotal += e.CappedMinutes
		}
	}

	g := &Growth{PreviousLabel: previous.comparisonLabel()}
	if previousTotal <= 0 {
		g.FirstPeriod = true
		g.Text = FirstPeriodText
		return g
	}
	g.Percent = (current - previousTotal) / previousTotal * 100
	g.Text = fmt.Sprintf("%+.1f%% vs %s", g.Percent, g.PreviousLabel)
	return g
}

// SongTable ranks every title by listen score (plays x capped minutes).
// Ties are broken by title.
func SongTable(events []EnrichedEvent) []SongStat {
	index := make(map[string]int)
	var songs []SongStat
	for _, e := range events {
		i, ok := index[e.Title]
		if !ok {
			i = len(songs)
			index[e.Title] = i
			songs = append(songs, SongStat{Title: e.Title})
		}
		songs[i].PlayCount++
		songs[i].TotalMinutes += e.CappedMinutes
		songs[i].ActualMinutes += e.DurationMinutes
	}
	for i := range songs {
		songs[i].ListenScore = float64(songs[i].PlayCount) * songs[i].TotalMinutes
	}

	sort.Slice(songs, func(i, j int) bool {
		if songs[i].ListenScore != songs[j].ListenScore {
			return songs[i].ListenScore > songs[j].ListenScore
		}
		return songs[i].Title < songs[j].Title
	})
	return songs
}

// ArtistTable ranks every creator by capped minutes. Ties are broken by name.
func ArtistTable(events []EnrichedEvent) []ArtistStat {
	index := make(map[string]int)
	var artists []ArtistStat
	for _, e := range events {
		i, ok := index[e.Creator]
		if !ok {
			i = len(artists)
			index[e.Creator] = i
			artists = append(artists, ArtistStat{Name: e.Creator})
		}
		artists[i].PlayCount++
		artists[i].TotalMinutes += e.CappedMinutes
		artists[i].ActualMinutes += e.DurationMinutes
	}

	sort.Slice(artists, func(i, j int) bool {
		if artists[i].TotalMinutes != artists[j].TotalMinutes {
			return artists[i].TotalMinutes > artists[j].TotalMinutes
		}
		return artists[i].Name < artists[j].Name
	})
	return artists
}

// byDay only has entries for days with plays.
func byDay(events []EnrichedEvent) []DayTotal {
	totals := make(map[time.Time]float64)
	for _, e := range events {
		t := e.Timestamp
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		totals[day] += e.CappedMinutes
	}

	days := make([]DayTotal, 0, len(totals))
	for day, minutes := range totals {
		days = append(days, DayTotal{Date: day, Minutes: minutes})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

func byTimeOfDay(events []EnrichedEvent) []BucketTotal {
	totals := make([]BucketTotal, len(timeBuckets))
	for i, b := range timeBuckets {
		totals[i].Label = b.label
	}
	for _, e := range events {
		hour := e.Timestamp.Hour()
		for i, b := range timeBuckets {
			if hour >= b.fromHour && hour < b.toHour {
				totals[i].Minutes += e.CappedMinutes
				break
			}
		}
	}
	return totals
}
