package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/justfishin/internal/filter"
	"github.com/andresuchdata/justfishin/internal/format"
	"github.com/andresuchdata/justfishin/internal/storage"
	"github.com/andresuchdata/justfishin/pkg/logger"
)

// State identifies where the narrowing loop currently is.
type State int

const (
	StateNarrowing State = iota
	StateConfirming
	StateDone
)

// Prompter writes a prompt label and reads one line of input.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Fetcher downloads and extracts a single selected object.
type Fetcher interface {
	Fetch(ctx context.Context, item storage.ObjectInfo) error
}

// Session drives the interactive narrowing loop over a bucket listing.
// The working set only ever shrinks: a filter that matches nothing is
// discarded, so narrowing can never empty it.
type Session struct {
	bucket   string
	items    []storage.ObjectInfo
	state    State
	prompter Prompter
	fetcher  Fetcher
	out      io.Writer
}

// New builds a session whose working set is the listing narrowed by the
// startup filters.
func New(bucket string, listing []storage.ObjectInfo, startup []string, prompter Prompter, fetcher Fetcher, out io.Writer) *Session {
	return &Session{
		bucket:   bucket,
		items:    filter.Apply(listing, startup),
		state:    StateNarrowing,
		prompter: prompter,
		fetcher:  fetcher,
		out:      out,
	}
}

// State returns the loop's current state.
func (s *Session) State() State {
	return s.state
}

// Items returns the current working set.
func (s *Session) Items() []storage.ObjectInfo {
	return s.items
}

// Run drives the loop until a download decision is made or input fails.
func (s *Session) Run(ctx context.Context) error {
	for s.state != StateDone {
		switch s.state {
		case StateNarrowing:
			s.display()
			switch len(s.items) {
			case 0:
				// only reachable before the first narrowing step
				fmt.Fprintln(s.out, "no items to choose from")
				s.state = StateDone
			case 1:
				s.state = StateConfirming
			default:
				if err := s.narrow(); err != nil {
					return err
				}
			}
		case StateConfirming:
			if err := s.confirm(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// display prints the bucket summary, plus the full listing when the
// working set is small enough to read at a glance.
func (s *Session) display() {
	fmt.Fprintln(s.out, format.Bucket(s.bucket, s.items))
	if len(s.items) <= 9 {
		fmt.Fprintln(s.out, format.Contents(s.items))
	}
}

// narrow asks for one more filter and applies it. An answer that matches
// nothing leaves the working set untouched.
func (s *Session) narrow() error {
	answer, err := s.prompter.Prompt("filter: ")
	if err != nil {
		return fmt.Errorf("failed to read filter: %w", err)
	}

	candidate := filter.Apply(s.items, []string{answer})
	if len(candidate) == 0 {
		fmt.Fprintln(s.out, "no matches")
		return nil
	}
	logger.Log.Debug().Str("filter", answer).Int("remaining", len(candidate)).Msg("narrowed working set")
	s.items = candidate
	return nil
}

// confirm asks whether to download the single remaining item. Empty input
// counts as yes; the loop ends whatever the answer.
func (s *Session) confirm(ctx context.Context) error {
	answer, err := s.prompter.Prompt("download and untar? [Y/n] ")
	if err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}

	s.state = StateDone
	if answer == "" || strings.EqualFold(answer, "y") {
		return s.fetcher.Fetch(ctx, s.items[0])
	}
	return nil
}
