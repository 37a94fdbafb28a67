package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/justfishin/internal/storage"
)

// scriptPrompter replays canned answers and records the labels it was shown.
type scriptPrompter struct {
	answers []string
	labels  []string
}

func (p *scriptPrompter) Prompt(label string) (string, error) {
	p.labels = append(p.labels, label)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

type fakeFetcher struct {
	fetched []storage.ObjectInfo
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, item storage.ObjectInfo) error {
	f.fetched = append(f.fetched, item)
	return f.err
}

func listing(keys ...string) []storage.ObjectInfo {
	out := make([]storage.ObjectInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, storage.ObjectInfo{Key: k, Size: 1048576})
	}
	return out
}

func TestSessionNarrowsToSingleMatch(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"2021", ""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("backups", listing("logs-2020.tar.bz2", "logs-2021.tar.bz2"), nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	want := "[Bucket backups, 2 items]\n" +
		"* logs-2020.tar.bz2\n" +
		"* logs-2021.tar.bz2\n" +
		"[Bucket backups, 1 items]\n" +
		"* logs-2021.tar.bz2\n"
	assert.Equal(t, want, out.String())

	assert.Equal(t, []string{"filter: ", "download and untar? [Y/n] "}, prompter.labels)
	require.Len(t, fetcher.fetched, 1)
	assert.Equal(t, "logs-2021.tar.bz2", fetcher.fetched[0].Key)
	assert.Equal(t, StateDone, s.State())
}

func TestSessionKeepsSetWhenNothingMatches(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"zzz", "2021", ""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("backups", listing("logs-2020.tar.bz2", "logs-2021.tar.bz2"), nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "no matches")
	// the two-item listing is shown again after the rejected filter
	assert.Equal(t, 2, strings.Count(out.String(), "2 items]"))
	require.Len(t, fetcher.fetched, 1)
	assert.Equal(t, "logs-2021.tar.bz2", fetcher.fetched[0].Key)
}

func TestSessionWorkingSetNeverGrows(t *testing.T) {
	// an empty filter matches everything and must not shrink or grow the set
	prompter := &scriptPrompter{answers: []string{"", "2021", ""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("backups", listing("logs-2020.tar.bz2", "logs-2021.tar.bz2"), nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "2 items]"))
	assert.Equal(t, 1, strings.Count(out.String(), "1 items]"))
	require.Len(t, fetcher.fetched, 1)
}

func TestSessionConfirmAnswers(t *testing.T) {
	tests := []struct {
		answer    string
		wantFetch bool
	}{
		{"", true},
		{"y", true},
		{"Y", true},
		{"yes", false},
		{"n", false},
		{"N", false},
		{"anything", false},
	}

	for _, tt := range tests {
		t.Run("answer "+tt.answer, func(t *testing.T) {
			prompter := &scriptPrompter{answers: []string{tt.answer}}
			fetcher := &fakeFetcher{}
			var out bytes.Buffer

			s := New("backups", listing("only.tar.bz2"), nil, prompter, fetcher, &out)
			require.NoError(t, s.Run(context.Background()))

			if tt.wantFetch {
				assert.Len(t, fetcher.fetched, 1)
			} else {
				assert.Empty(t, fetcher.fetched)
			}
			assert.Equal(t, StateDone, s.State())
		})
	}
}

func TestSessionEmptyListingExitsCleanly(t *testing.T) {
	prompter := &scriptPrompter{}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("backups", nil, nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "[Bucket backups, 0 items]\n\nno items to choose from\n", out.String())
	assert.Empty(t, prompter.labels, "nothing should be prompted")
	assert.Empty(t, fetcher.fetched)
	assert.Equal(t, StateDone, s.State())
}

func TestSessionAppliesStartupFilters(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	all := listing("logs-2020.tar.bz2", "logs-2021.tar.bz2", "db-2021.tar.bz2")
	s := New("backups", all, []string{"logs", "2021"}, prompter, fetcher, &out)
	require.Len(t, s.Items(), 1)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, fetcher.fetched, 1)
	assert.Equal(t, "logs-2021.tar.bz2", fetcher.fetched[0].Key)
}

func TestSessionHidesListingAboveNineItems(t *testing.T) {
	keys := make([]string, 0, 10)
	for _, d := range "0123456789" {
		keys = append(keys, "archive-"+string(d)+".tar.bz2")
	}

	prompter := &scriptPrompter{answers: []string{"archive-3", ""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("big", listing(keys...), nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "[Bucket big, 10 items]")
	// only the narrowed single-item listing is printed
	assert.Equal(t, 1, strings.Count(out.String(), "* archive-"))
	assert.NotContains(t, out.String(), "* archive-0")
}

func TestSessionListsNineOrFewerItems(t *testing.T) {
	keys := make([]string, 0, 9)
	for _, d := range "012345678" {
		keys = append(keys, "archive-"+string(d)+".tar.bz2")
	}

	prompter := &scriptPrompter{answers: []string{"archive-3", ""}}
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("small", listing(keys...), nil, prompter, fetcher, &out)
	require.NoError(t, s.Run(context.Background()))

	// nine lines up front, one more after narrowing
	assert.Equal(t, 10, strings.Count(out.String(), "* archive-"))
}

func TestSessionInputErrorPropagates(t *testing.T) {
	prompter := &scriptPrompter{} // answers exhausted immediately
	fetcher := &fakeFetcher{}
	var out bytes.Buffer

	s := New("backups", listing("a.tar.bz2", "b.tar.bz2"), nil, prompter, fetcher, &out)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.NotEqual(t, StateDone, s.State())
}

func TestSessionFetchErrorPropagates(t *testing.T) {
	boom := errors.New("bucket went away")
	prompter := &scriptPrompter{answers: []string{""}}
	fetcher := &fakeFetcher{err: boom}
	var out bytes.Buffer

	s := New("backups", listing("only.tar.bz2"), nil, prompter, fetcher, &out)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("first\nwin\r\nlast"), &out)

	got, err := p.Prompt("filter: ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	assert.Equal(t, "filter: ", out.String())

	got, err = p.Prompt("filter: ")
	require.NoError(t, err)
	assert.Equal(t, "win", got)

	// a final line without a newline still counts
	got, err = p.Prompt("filter: ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.Prompt("filter: ")
	require.Error(t, err)
}
