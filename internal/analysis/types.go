package analysis

import (
	"time"
)

// EnrichedEvent is a play joined with its metadata. It always has metadata
// and a duration of at least MinDurationSeconds.
type EnrichedEvent struct {
	ItemID          string    `json:"item_id"`
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds float64   `json:"duration_seconds"`
	Title           string    `json:"title"`
	Creator         string    `json:"creator"`
	CategoryID      string    `json:"category_id,omitempty"`

	DurationMinutes float64 `json:"duration_minutes"`
	CappedMinutes   float64 `json:"capped_minutes"`
	Month           Period  `json:"month"`
	Week            Period  `json:"week"`
}

// PeriodSummary is the statistics for one selected period.
type PeriodSummary struct {
	Period       string  `yaml:"period"`
	TotalMinutes float64 `yaml:"total_minutes"`
	Plays        int     `yaml:"plays"`
	// Growth is nil for the overall view.
	Growth *Growth `yaml:"growth,omitempty"`

	FavoriteSong   SongStat     `yaml:"favorite_song"`
	FavoriteArtist ArtistStat   `yaml:"favorite_artist"`
	TopSongs       []SongStat   `yaml:"top_songs"`
	TopArtists     []ArtistStat `yaml:"top_artists"`

	ByDay        []DayTotal    `yaml:"by_day"`
	DailyAverage float64       `yaml:"daily_average"`
	TimeBuckets  []BucketTotal `yaml:"time_buckets"`
}

type SongStat struct {
	Title         string  `yaml:"title"`
	PlayCount     int     `yaml:"play_count"`
	TotalMinutes  float64 `yaml:"total_minutes"`
	ActualMinutes float64 `yaml:"actual_minutes"`
	ListenScore   float64 `yaml:"listen_score"`
}

type ArtistStat struct {
	Name          string  `yaml:"name"`
	PlayCount     int     `yaml:"play_count"`
	TotalMinutes  float64 `yaml:"total_minutes"`
	ActualMinutes float64 `yaml:"actual_minutes"`
}

type DayTotal struct {
	Date    time.Time `yaml:"date"`
	Minutes float64   `yaml:"minutes"`
}

type BucketTotal struct {
	Label   string  `yaml:"label"`
	Minutes float64 `yaml:"minutes"`
}

type Growth struct {
	// Percent is only meaningful when FirstPeriod is false.
	Percent       float64 `yaml:"percent"`
	PreviousLabel string  `yaml:"previous_label"`
	FirstPeriod   bool    `yaml:"first_period"`
	Text          string  `yaml:"text"`
}
