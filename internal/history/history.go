// Package history extracts music play events from a Google Takeout
// watch-history.html export.
package history

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	watchMarker = "watch?v="
	musicHost   = "music.youtube.com"
	musicLabel  = "YouTube Music"

	timestampLayout = "2 Jan 2006, 15:04:05"
)

// Takeout separates the fields with a no-break or narrow no-break space in
// some locales; &nbsp; decodes to U+00A0.
var timestampPattern = regexp.MustCompile(`\d{1,2}[\s\x{00A0}\x{202F}]\w{3,4}[\s\x{00A0}\x{202F}]\d{4},[\s\x{00A0}\x{202F}]\d{2}:\d{2}:\d{2}`)

var spaces = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\t", " ", "\n", " ", "\r", " ", "\f", " ", "\v", " ")

var (
	ErrMalformedMarkup = errors.New("markup could not be parsed")
	ErrNoEntries       = errors.New("no music entries found")
)

type ParseErrorKind int

const (
	KindMalformed ParseErrorKind = iota
	KindEmpty
)

// ParseError is returned by Parse when the export is unusable as a whole.
// Individual entries that fail to qualify are skipped, never reported.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing history: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PlayEvent is one recorded listen.
type PlayEvent struct {
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Parse returns the music play events found in the markup, in document order.
func Parse(r io.Reader) ([]PlayEvent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &ParseError{Kind: KindMalformed, Err: fmt.Errorf("%w: %v", ErrMalformedMarkup, err)}
	}

	var events []PlayEvent
	for _, entry := range contentCells(doc) {
		event, ok := parseEntry(entry)
		if ok {
			events = append(events, event)
		}
	}

	if len(events) == 0 {
		return nil, &ParseError{Kind: KindEmpty, Err: ErrNoEntries}
	}
	return events, nil
}

func parseEntry(entry *html.Node) (PlayEvent, bool) {
	href, ok := firstLink(entry)
	if !ok || !strings.Contains(href, watchMarker) {
		return PlayEvent{}, false
	}

	if !isMusic(href, entry) {
		return PlayEvent{}, false
	}

	id := ItemID(href)
	if id == "" {
		return PlayEvent{}, false
	}

	ts, ok := ParseTimestamp(text(entry))
	if !ok {
		return PlayEvent{}, false
	}

	return PlayEvent{ItemID: id, Timestamp: ts}, true
}

// ItemID returns the substring between the watch marker and the next '&'.
func ItemID(href string) string {
	_, rest, found := strings.Cut(href, watchMarker)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(rest, "&")
	return id
}

// ParseTimestamp finds the first Takeout-style timestamp in s, e.g.
// "3 Sept 2024, 21:04:11". The result is a wall-clock time in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	match := timestampPattern.FindString(s)
	if match == "" {
		return time.Time{}, false
	}
	match = strings.Replace(spaces.Replace(match), "Sept", "Sep", 1)

	ts, err := time.Parse(timestampLayout, match)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func isMusic(href string, entry *html.Node) bool {
	if u, err := url.Parse(href); err == nil && u.Hostname() == musicHost {
		return true
	}
	header := previousDiv(entry)
	return header != nil && strings.Contains(text(header), musicLabel)
}

func contentCells(doc *html.Node) []*html.Node {
	var cells []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Div && hasClass(n, "content-cell") {
			cells = append(cells, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return cells
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(attr.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

// firstLink returns the href of the first anchor under n that has one.
func firstLink(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val, true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href, ok := firstLink(c); ok {
			return href, true
		}
	}
	return "", false
}

func previousDiv(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.DataAtom == atom.Div {
			return s
		}
	}
	return nil
}

// text joins the text nodes under n with newlines so adjacent nodes such as
// a channel name and the timestamp line don't run together.
func text(n *html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}
