package cmd

import (
	"fmt"
	"regexp"
	"time"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
)

type ParsedDate struct {
	Date  time.Time
	Month bool
	Day   bool
}

// parsePeriodFromArgs reads an optional period argument: nothing for all
// time, yyyy-mm for a month, or yyyy-mm-dd for the week containing that day.
func parsePeriodFromArgs(args []string) (g analysis.Granularity, period analysis.Period, err error) {
	switch len(args) {
	case 0:
		g, period = analysis.Overall, analysis.AllTime

	case 1:
		var date ParsedDate
		date, err = parseSingleDatestring(args[0])
		if err != nil {
			return
		}
		switch {
		case date.Month:
			g, period = analysis.Month, analysis.MonthOf(date.Date)
		case date.Day:
			g, period = analysis.Week, analysis.WeekOf(date.Date)
		}

	default:
		err = fmt.Errorf("Expected at most one period argument")
	}
	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	matched, err := regexp.Match(`^\d{4}-\d{2}$`, []byte(ds))
	if err != nil {
		err = fmt.Errorf("Parsing datestring as month: %w", err)
		return
	}
	if matched {
		date.Date, err = time.Parse("2006-01", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true
		return
	}

	matched, err = regexp.Match(`^\d{4}-\d{2}-\d{2}$`, []byte(ds))
	if err != nil {
		err = fmt.Errorf("Parsing datestring as day: %w", err)
		return
	}
	if matched {
		date.Date, err = time.Parse("2006-01-02", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true
		return
	}

	err = fmt.Errorf("Invalid format: %q (want yyyy-mm or yyyy-mm-dd)", ds)
	return
}
