package poll

import "errors"

var (
	ErrNoPendingQuestions = errors.New("no pending questions")
	ErrRowNotFound        = errors.New("row not found")
	ErrInvalidReactionKey = errors.New("invalid reaction key")
	ErrUnknownReaction    = errors.New("unknown reaction kind")

	// ErrEditIgnorable marks message edit failures that are expected in normal
	// operation: the message was deleted, is unchanged, or the bot lost rights.
	ErrEditIgnorable = errors.New("message edit not applicable")
)
