package poll

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one data row of the question sheet keyed by header.
type Record map[Column]string

// Question is a parsed question row. Row is the 1-based row number in the
// store; the header occupies row 1.
type Question struct {
	Row              int
	ID               string
	Text             string
	Options          []string
	Correct          CorrectOption
	QuizID           string
	PollID           string
	ChatID           string
	MessageID        string
	ResultsMessageID string
	Link             string
	CreatedAt        string
	TimerSec         string
}

// QuestionFromRecord parses a row record. Options keep their column order and
// empty cells are dropped.
func QuestionFromRecord(row int, rec Record) *Question {
	q := &Question{
		Row:              row,
		ID:               strings.TrimSpace(rec[ColID]),
		Text:             strings.TrimSpace(rec[ColQuestion]),
		Correct:          ParseCorrectOption(rec[ColCorrectOption]),
		QuizID:           strings.TrimSpace(rec[ColQuizID]),
		PollID:           strings.TrimSpace(rec[ColPollID]),
		ChatID:           strings.TrimSpace(rec[ColChatID]),
		MessageID:        strings.TrimSpace(rec[ColMessageID]),
		ResultsMessageID: strings.TrimSpace(rec[ColResultsMessageID]),
		Link:             strings.TrimSpace(rec[ColLink]),
		CreatedAt:        strings.TrimSpace(rec[ColCreatedAt]),
		TimerSec:         strings.TrimSpace(rec[ColTimerSec]),
	}
	for _, col := range optionColumns {
		if v := strings.TrimSpace(rec[col]); v != "" {
			q.Options = append(q.Options, v)
		}
	}
	return q
}

// Published reports whether the question already has a platform poll.
func (q *Question) Published() bool {
	return q.PollID != ""
}

// Publishable reports whether the question has text and at least one option.
func (q *Question) Publishable() bool {
	return q.Text != "" && len(q.Options) > 0
}

// Timer returns the pause after publishing this question. Missing,
// non-numeric or negative TimerSec values fall back to def.
func (q *Question) Timer(def time.Duration) time.Duration {
	d, ok := ParseSeconds(q.TimerSec)
	if !ok {
		return def
	}
	return d
}

// ParseSeconds parses a non-negative, possibly fractional number of seconds.
// NaN, infinities and values beyond the range of time.Duration are rejected.
func ParseSeconds(raw string) (time.Duration, bool) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, false
	}
	if secs >= float64(math.MaxInt64)/float64(time.Second) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// NewQuestionID returns a fresh row identifier such as "Q1a2b3c4d".
func NewQuestionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "Q" + hex[:8]
}

// FormatCreatedAt formats a CreatedAt cell value.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
