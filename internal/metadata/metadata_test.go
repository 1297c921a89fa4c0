package metadata

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type fakeLookup struct {
	items   map[string]Item
	failOn  map[int]bool
	batches [][]string
}

func (f *fakeLookup) Lookup(_ context.Context, ids []string) ([]Item, error) {
	f.batches = append(f.batches, append([]string(nil), ids...))
	if f.failOn[len(f.batches)] {
		return nil, errors.New("503 backend unavailable")
	}
	var items []Item
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func song(id, dur string) Item {
	return Item{ID: id, Duration: strPtr(dur), Title: strPtr("Title " + id), Creator: strPtr("Artist " + id), CategoryID: "10"}
}

func newLookup(n int) *fakeLookup {
	items := make(map[string]Item)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("id%03d", i)
		items[id] = song(id, "PT3M30S")
	}
	return &fakeLookup{items: items, failOn: map[int]bool{}}
}

func ids(n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("id%03d", i))
	}
	return out
}

func TestFetch_ParsesItems(t *testing.T) {
	lookup := &fakeLookup{items: map[string]Item{"a": song("a", "PT3M")}}
	f := &Fetcher{Lookup: lookup}

	got, err := f.Fetch(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Contains(t, got, "a")
	assert.Equal(t, 180.0, got["a"].DurationSeconds)
	assert.Equal(t, "Title a", got["a"].Title)
	assert.Equal(t, "Artist a", got["a"].Creator)
	assert.Equal(t, "10", got["a"].CategoryID)
}

func TestFetch_Deduplicates(t *testing.T) {
	lookup := &fakeLookup{items: map[string]Item{"a": song("a", "PT3M"), "b": song("b", "PT4M")}}
	f := &Fetcher{Lookup: lookup}

	withDupes, err := f.Fetch(context.Background(), []string{"a", "a", "b"})
	require.NoError(t, err)
	require.Len(t, lookup.batches, 1)
	assert.Equal(t, []string{"a", "b"}, lookup.batches[0])

	plain, err := f.Fetch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, plain, withDupes)
}

func TestFetch_BatchesOfFifty(t *testing.T) {
	lookup := newLookup(120)
	f := &Fetcher{Lookup: lookup}

	got, err := f.Fetch(context.Background(), ids(120))
	require.NoError(t, err)
	assert.Len(t, got, 120)
	require.Len(t, lookup.batches, 3)
	assert.Len(t, lookup.batches[0], 50)
	assert.Len(t, lookup.batches[1], 50)
	assert.Len(t, lookup.batches[2], 20)
}

func TestFetch_SkipsFailedBatch(t *testing.T) {
	lookup := newLookup(120)
	lookup.failOn[2] = true
	f := &Fetcher{Lookup: lookup}

	got, err := f.Fetch(context.Background(), ids(120))
	require.NoError(t, err)
	assert.Len(t, got, 70)
	assert.Len(t, lookup.batches, 3, "later batches still run after a failure")
	assert.NotContains(t, got, "id050")
	assert.Contains(t, got, "id100")
}

func TestFetch_SkipsBadItems(t *testing.T) {
	lookup := &fakeLookup{items: map[string]Item{
		"good":       song("good", "PT2M"),
		"baddur":     song("baddur", "three minutes"),
		"notitle":    {ID: "notitle", Duration: strPtr("PT2M"), Creator: strPtr("x")},
		"nocreator":  {ID: "nocreator", Duration: strPtr("PT2M"), Title: strPtr("x")},
		"noduration": {ID: "noduration", Title: strPtr("x"), Creator: strPtr("x")},
	}}
	f := &Fetcher{Lookup: lookup}

	got, err := f.Fetch(context.Background(), []string{"good", "baddur", "notitle", "nocreator", "noduration"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "good")
}

func TestBatches_ProgressIsMonotonicAndSaturates(t *testing.T) {
	lookup := newLookup(120)
	lookup.failOn[1] = true
	f := &Fetcher{Lookup: lookup}

	var progress []Progress
	for p := range f.Batches(context.Background(), ids(120)) {
		progress = append(progress, p)
	}

	require.Len(t, progress, 3)
	assert.Equal(t, []int{50, 100, 120}, []int{progress[0].Processed, progress[1].Processed, progress[2].Processed})
	assert.Error(t, progress[0].Err)
	assert.Equal(t, 0, progress[0].Resolved)
	assert.Equal(t, 70, progress[2].Resolved)
	assert.Equal(t, 1.0, progress[2].Fraction())
	assert.Equal(t, 90, progress[2].Percent(10, 90))
	assert.Equal(t, 43, progress[0].Percent(10, 90))
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Fraction(), progress[i-1].Fraction())
	}
}

func TestBatches_StopBetweenBatches(t *testing.T) {
	lookup := newLookup(120)
	f := &Fetcher{Lookup: lookup}

	for p := range f.Batches(context.Background(), ids(120)) {
		if p.Batch == 1 {
			break
		}
	}
	assert.Len(t, lookup.batches, 1)
}

func TestBatches_Canceled(t *testing.T) {
	lookup := newLookup(10)
	f := &Fetcher{Lookup: lookup}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, ids(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, lookup.batches)
}

func TestProgress_EmptyTotal(t *testing.T) {
	assert.Equal(t, 0.0, Progress{}.Fraction())
	assert.Equal(t, 10, Progress{}.Percent(10, 90))
}
