package history

import (
	"sort"
	"time"
)

// MonthCount is the number of raw entries found for one calendar month.
type MonthCount struct {
	Month time.Time `json:"month" yaml:"month"`
	Count int       `json:"count" yaml:"count"`
}

func (m MonthCount) Label() string {
	return m.Month.Format("January 2006")
}

// MonthlyCounts tallies events per month before any metadata or duration
// filtering, newest month first. Months with no entries are absent.
func MonthlyCounts(events []PlayEvent) []MonthCount {
	counts := make(map[time.Time]int)
	for _, e := range events {
		month := time.Date(e.Timestamp.Year(), e.Timestamp.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
	}

	result := make([]MonthCount, 0, len(counts))
	for month, count := range counts {
		result = append(result, MonthCount{Month: month, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.After(result[j].Month)
	})
	return result
}

// UniqueIDs returns the distinct item ids in first-seen order.
func UniqueIDs(events []PlayEvent) []string {
	seen := make(map[string]bool, len(events))
	var ids []string
	for _, e := range events {
		if seen[e.ItemID] {
			continue
		}
		seen[e.ItemID] = true
		ids = append(ids, e.ItemID)
	}
	return ids
}
