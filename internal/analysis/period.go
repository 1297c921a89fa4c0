package analysis

import (
	"fmt"
	"strings"
	"time"
)

type Granularity int

const (
	Overall Granularity = iota
	Month
	Week
)

func (g Granularity) String() string {
	switch g {
	case Overall:
		return "overall"
	case Month:
		return "month"
	case Week:
		return "week"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// ParseGranularity accepts "overall", "month" or "week".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overall", "all":
		return Overall, nil
	case "month", "monthly":
		return Month, nil
	case "week", "weekly":
		return Week, nil
	}
	return Overall, fmt.Errorf("unknown granularity %q (want overall, month or week)", s)
}

const secondsPerDay = 24 * 60 * 60

// weekEpoch is the Monday that starts week ordinal 0.
var weekEpoch = time.Date(1970, time.January, 5, 0, 0, 0, 0, time.UTC)

// Period identifies one calendar month or Monday-start week by an ordinal,
// so the preceding period is always Ordinal-1.
type Period struct {
	Granularity Granularity `json:"granularity"`
	Ordinal     int         `json:"ordinal"`
}

// AllTime is the single period of the overall view.
var AllTime = Period{Granularity: Overall}

func MonthOf(t time.Time) Period {
	return Period{Granularity: Month, Ordinal: t.Year()*12 + int(t.Month()) - 1}
}

func WeekOf(t time.Time) Period {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(floorDiv64(day.Unix()-weekEpoch.Unix(), secondsPerDay))
	return Period{Granularity: Week, Ordinal: floorDiv(days, 7)}
}

// PeriodOf returns the period of granularity g containing t.
func PeriodOf(g Granularity, t time.Time) Period {
	switch g {
	case Month:
		return MonthOf(t)
	case Week:
		return WeekOf(t)
	}
	return AllTime
}

func (p Period) Predecessor() Period {
	if p.Granularity == Overall {
		return p
	}
	return Period{Granularity: p.Granularity, Ordinal: p.Ordinal - 1}
}

// Start is the first instant of the period. The zero time for Overall.
func (p Period) Start() time.Time {
	switch p.Granularity {
	case Month:
		year := floorDiv(p.Ordinal, 12)
		month := p.Ordinal - year*12 + 1
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	case Week:
		return weekEpoch.AddDate(0, 0, 7*p.Ordinal)
	}
	return time.Time{}
}

// Contains reports whether t falls in p. Every t is in AllTime.
func (p Period) Contains(t time.Time) bool {
	if p.Granularity == Overall {
		return true
	}
	return PeriodOf(p.Granularity, t) == p
}

// Label is the human name, e.g. "January 2024" or "Week of 2024-01-01".
func (p Period) Label() string {
	switch p.Granularity {
	case Month:
		return p.Start().Format("January 2006")
	case Week:
		return "Week of " + p.Start().Format("2006-01-02")
	}
	return "All time"
}

// comparisonLabel names p when it is the baseline of a growth figure.
func (p Period) comparisonLabel() string {
	switch p.Granularity {
	case Month:
		return p.Start().Month().String()
	case Week:
		return "previous week"
	}
	return p.Label()
}

func (p Period) String() string {
	return p.Label()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
