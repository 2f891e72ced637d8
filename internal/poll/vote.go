package poll

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Tally is the in-memory runtime state of one published poll.
type Tally struct {
	Row              int
	ChatID           int64
	MessageID        int
	ResultsMessageID int

	mu      sync.Mutex
	options []string
	counts  []int
	voters  map[int64][]int
}

func NewTally(row int, options []string, chatID int64, messageID, resultsMessageID int) *Tally {
	return &Tally{
		Row:              row,
		ChatID:           chatID,
		MessageID:        messageID,
		ResultsMessageID: resultsMessageID,
		options:          slices.Clone(options),
		counts:           make([]int, len(options)),
		voters:           make(map[int64][]int),
	}
}

// Apply replaces the user's selection with the complete current selection and
// adjusts counts by the difference. It reports whether any count changed.
func (t *Tally) Apply(userID int64, selection []int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := lo.Uniq(selection)
	previous := t.voters[userID]
	removed, added := lo.Difference(previous, current)

	for _, i := range added {
		if i >= 0 && i < len(t.counts) {
			t.counts[i]++
		}
	}
	for _, i := range removed {
		if i >= 0 && i < len(t.counts) {
			t.counts[i]--
		}
	}

	if len(current) == 0 {
		delete(t.voters, userID)
	} else {
		t.voters[userID] = current
	}
	return len(added) > 0 || len(removed) > 0
}

// Counts returns a copy of the per-option counts.
func (t *Tally) Counts() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.counts)
}

// Options returns a copy of the option texts.
func (t *Tally) Options() []string {
	return slices.Clone(t.options)
}

// Selection returns the user's last known selection.
func (t *Tally) Selection(userID int64) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.voters[userID])
}

// Results pairs options with their counts for rendering.
func (t *Tally) Results() []OptionResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	results := make([]OptionResult, len(t.options))
	for i, opt := range t.options {
		results[i] = OptionResult{Number: i + 1, Text: opt, Votes: t.counts[i]}
	}
	return results
}

type OptionResult struct {
	Number int
	Text   string
	Votes  int
}
