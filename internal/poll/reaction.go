package poll

import (
	"fmt"
	"strings"
	"sync"
)

type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionHaha  ReactionKind = "haha"
	ReactionAngry ReactionKind = "angry"
)

// ReactionKinds lists reactions in button order.
var ReactionKinds = []ReactionKind{ReactionLike, ReactionLove, ReactionHaha, ReactionAngry}

var reactionEmoji = map[ReactionKind]string{
	ReactionLike:  "👍",
	ReactionLove:  "❤️",
	ReactionHaha:  "😂",
	ReactionAngry: "😡",
}

func (k ReactionKind) Emoji() string {
	return reactionEmoji[k]
}

func (k ReactionKind) Valid() bool {
	_, ok := reactionEmoji[k]
	return ok
}

// Button is one inline button of the reaction row.
type Button struct {
	Text string
	Data string
}

// ReactionKey builds the callback payload for a reaction button.
func ReactionKey(pollID string, kind ReactionKind) string {
	return pollID + "_" + string(kind)
}

// ParseReactionKey splits a callback payload of the form "<pollID>_<kind>".
func ParseReactionKey(data string) (string, ReactionKind, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReactionKey, data)
	}
	return parts[0], ReactionKind(parts[1]), nil
}

// Reactions holds the reaction counters of one published poll.
type Reactions struct {
	PollID    string
	ChatID    int64
	MessageID int

	mu     sync.Mutex
	counts map[ReactionKind]int
}

func NewReactions(pollID string, chatID int64, messageID int) *Reactions {
	return &Reactions{
		PollID:    pollID,
		ChatID:    chatID,
		MessageID: messageID,
		counts:    make(map[ReactionKind]int, len(ReactionKinds)),
	}
}

// Increment bumps the counter of kind. Unknown kinds are rejected.
func (r *Reactions) Increment(kind ReactionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownReaction, kind)
	}
	r.mu.Lock()
	r.counts[kind]++
	r.mu.Unlock()
	return nil
}

func (r *Reactions) Count(kind ReactionKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// Buttons renders the reaction row with current counts.
func (r *Reactions) Buttons() []Button {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ReactionButtons(r.PollID, r.counts)
}

// ReactionButtons renders a reaction row for pollID. Missing counts render as 0.
func ReactionButtons(pollID string, counts map[ReactionKind]int) []Button {
	buttons := make([]Button, len(ReactionKinds))
	for i, kind := range ReactionKinds {
		buttons[i] = Button{
			Text: fmt.Sprintf("%s %d", kind.Emoji(), counts[kind]),
			Data: ReactionKey(pollID, kind),
		}
	}
	return buttons
}
