package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(header, href, title, channel, ts string) string {
	return `<div class="outer-cell mdl-cell mdl-cell--12-col mdl-shadow--2dp"><div class="mdl-grid">` +
		`<div class="header-cell mdl-cell mdl-cell--12-col"><p class="mdl-typography--title">` + header + `<br></p></div>` +
		`<div class="content-cell mdl-cell mdl-cell--6-col mdl-typography--body-1">Watched&nbsp;<a href="` + href + `">` + title + `</a><br>` +
		`<a href="https://www.youtube.com/channel/UC1">` + channel + `</a><br>` + ts + `<br></div>` +
		`<div class="content-cell mdl-cell mdl-cell--6-col mdl-typography--body-1 mdl-typography--text-right"></div>` +
		`</div></div>`
}

func page(entries ...string) string {
	return `<html><head><title>History</title></head><body><div class="mdl-grid">` +
		strings.Join(entries, "") + `</div></body></html>`
}

func TestParse_MusicByHost(t *testing.T) {
	markup := page(entry("YouTube", "https://music.youtube.com/watch?v=abc123&feature=share", "Song", "Artist", "3 Jan 2024, 10:15:00 GMT"))

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "abc123", events[0].ItemID)
	assert.Equal(t, time.Date(2024, time.January, 3, 10, 15, 0, 0, time.UTC), events[0].Timestamp)
}

func TestParse_MusicByHeaderLabel(t *testing.T) {
	markup := page(entry("YouTube Music", "https://www.youtube.com/watch?v=xyz", "Song", "Artist", "14 Feb 2024, 23:59:59 CET"))

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "xyz", events[0].ItemID)
}

func TestParse_SkipsNonMusic(t *testing.T) {
	markup := page(
		entry("YouTube", "https://www.youtube.com/watch?v=video1", "Vlog", "Someone", "1 Mar 2024, 08:00:00 GMT"),
		entry("YouTube Music", "https://www.youtube.com/watch?v=song1", "Song", "Artist", "1 Mar 2024, 09:00:00 GMT"),
	)

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "song1", events[0].ItemID)
}

func TestParse_SkipsEntriesWithoutWatchLink(t *testing.T) {
	markup := page(
		entry("YouTube Music", "https://music.youtube.com/playlist?list=PL1", "Playlist", "Artist", "1 Mar 2024, 09:00:00 GMT"),
		entry("YouTube Music", "https://music.youtube.com/watch?v=ok", "Song", "Artist", "1 Mar 2024, 09:00:00 GMT"),
	)

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].ItemID)
}

func TestParse_SkipsEntriesWithoutTimestamp(t *testing.T) {
	markup := page(
		entry("YouTube Music", "https://music.youtube.com/watch?v=a", "Song", "Artist", "yesterday"),
		entry("YouTube Music", "https://music.youtube.com/watch?v=b", "Song", "Artist", "31 Foo 2024, 09:00:00 GMT"),
		entry("YouTube Music", "https://music.youtube.com/watch?v=c", "Song", "Artist", "2 May 2024, 09:00:00 GMT"),
	)

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "c", events[0].ItemID)
}

func TestParse_DocumentOrder(t *testing.T) {
	markup := page(
		entry("YouTube Music", "https://music.youtube.com/watch?v=late", "A", "Artist", "9 Jun 2024, 09:00:00 GMT"),
		entry("YouTube Music", "https://music.youtube.com/watch?v=early", "B", "Artist", "1 Jun 2024, 09:00:00 GMT"),
	)

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "late", events[0].ItemID)
	assert.Equal(t, "early", events[1].ItemID)
}

func TestParse_ChannelNameEndingInDigits(t *testing.T) {
	markup := page(entry("YouTube Music", "https://music.youtube.com/watch?v=a", "Song", "blink-182", "7 Jul 2024, 12:00:00 GMT"))

	events, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 7, events[0].Timestamp.Day())
}

func TestParse_NoEntries(t *testing.T) {
	markup := page(entry("YouTube", "https://www.youtube.com/watch?v=video1", "Vlog", "Someone", "1 Mar 2024, 08:00:00 GMT"))

	_, err := Parse(strings.NewReader(markup))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEntries))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindEmpty, perr.Kind)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_MalformedInput(t *testing.T) {
	_, err := Parse(failingReader{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMarkup))
	assert.False(t, errors.Is(err, ErrNoEntries))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindMalformed, perr.Kind)
}

func TestParseTimestamp_SeptNormalization(t *testing.T) {
	sept, ok := ParseTimestamp("Watched at 3 Sept 2024, 21:04:11 BST")
	require.True(t, ok)
	sep, ok := ParseTimestamp("Watched at 3 Sep 2024, 21:04:11 BST")
	require.True(t, ok)
	assert.Equal(t, sep, sept)
	assert.Equal(t, time.September, sept.Month())
}

func TestParseTimestamp_NonBreakingSpaces(t *testing.T) {
	want := time.Date(2024, time.September, 3, 21, 4, 11, 0, time.UTC)
	for _, s := range []string{
		"3\u00a0Sep 2024, 21:04:11",
		"3 Sept\u00a02024,\u202f21:04:11 BST",
		"3\tSep 2024,\n21:04:11",
	} {
		got, ok := ParseTimestamp(s)
		require.True(t, ok, "%q", s)
		assert.Equal(t, want, got, "%q", s)
	}
}

func TestParse_NbspTimestamp(t *testing.T) {
	events, err := Parse(strings.NewReader(page(
		entry("YouTube Music", "https://music.youtube.com/watch?v=abc", "Song", "Artist", "3&nbsp;Sep&nbsp;2024,&nbsp;21:04:11 BST"))))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2024, time.September, 3, 21, 4, 11, 0, time.UTC), events[0].Timestamp)
}

func TestItemID(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://music.youtube.com/watch?v=abc", "abc"},
		{"https://music.youtube.com/watch?v=abc&list=RD1&index=2", "abc"},
		{"https://www.youtube.com/watch?v=", ""},
		{"https://www.youtube.com/channel/UC1", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ItemID(tc.href), tc.href)
	}
}

func TestMonthlyCounts(t *testing.T) {
	events := []PlayEvent{
		{ItemID: "a", Timestamp: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{ItemID: "b", Timestamp: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ItemID: "a", Timestamp: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
	}

	counts := MonthlyCounts(events)
	require.Len(t, counts, 2)
	assert.Equal(t, "March 2024", counts[0].Label())
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, "January 2024", counts[1].Label())
	assert.Equal(t, 2, counts[1].Count)
}

func TestUniqueIDs(t *testing.T) {
	events := []PlayEvent{{ItemID: "a"}, {ItemID: "b"}, {ItemID: "a"}, {ItemID: "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, UniqueIDs(events))
}
