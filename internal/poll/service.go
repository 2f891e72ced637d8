package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/manthan/quizbot/internal/metrics"
)

// RowStore is the tabular source of question rows.
type RowStore interface {
	Rows(ctx context.Context) ([]*Question, error)
	Row(ctx context.Context, row int) (*Question, error)
	UpdateCells(ctx context.Context, row int, cells Record) error
}

// OutgoingPoll is a poll ready to be sent to the platform.
type OutgoingPoll struct {
	Question     string
	Options      []string
	Quiz         bool
	CorrectIndex int
}

type SentPoll struct {
	PollID    string
	MessageID int
}

// Messenger is the subset of the messaging platform the service needs.
// Edit methods wrap expected failures with ErrEditIgnorable.
type Messenger interface {
	SendPoll(ctx context.Context, chatID int64, p OutgoingPoll) (SentPoll, error)
	SendButtons(ctx context.Context, chatID int64, text string, buttons []Button) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, buttons []Button) error
	EditButtons(ctx context.Context, chatID int64, messageID int, buttons []Button) error
	Username(ctx context.Context) (string, error)
}

const (
	DefaultLinkBase = "https://t.me/"
	ReactPrompt     = "React to this poll:"
)

type Options struct {
	// Header is printed above every question.
	Header       string
	LinkBase     string
	DefaultTimer time.Duration
}

type Service struct {
	rows      RowStore
	messenger Messenger
	runtime   *Runtime
	opts      Options
	logger    *slog.Logger
}

func NewService(rows RowStore, messenger Messenger, runtime *Runtime, opts Options, logger *slog.Logger) *Service {
	if opts.LinkBase == "" {
		opts.LinkBase = DefaultLinkBase
	}
	return &Service{
		rows:      rows,
		messenger: messenger,
		runtime:   runtime,
		opts:      opts,
		logger:    logger,
	}
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// ShareLink builds a deep link that opens the bot with the given start payload.
func (s *Service) ShareLink(ctx context.Context, payload string) (string, error) {
	username, err := s.messenger.Username(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve bot username: %w", err)
	}
	return s.opts.LinkBase + username + "?start=" + payload, nil
}

// Publish sends the question in row as a poll plus its reaction message to
// chatID. It returns false when the row was skipped or any step failed;
// failures are logged, not returned.
func (s *Service) Publish(ctx context.Context, row int, chatID int64) bool {
	if err := s.publish(ctx, row, chatID); err != nil {
		if errors.Is(err, errSkipped) {
			metrics.PollsSkipped.Inc()
			s.logger.Info("question skipped", "row", row, "reason", err)
			return false
		}
		s.logger.Error("failed to publish question", "row", row, "chat_id", chatID, "error", err)
		return false
	}
	return true
}

var errSkipped = errors.New("skipped")

const writeBackTimeout = 30 * time.Second

func (s *Service) publish(ctx context.Context, row int, chatID int64) error {
	q, err := s.rows.Row(ctx, row)
	if err != nil {
		return fmt.Errorf("read row: %w", err)
	}
	if q.Published() {
		return fmt.Errorf("%w: already published as poll %s", errSkipped, q.PollID)
	}
	if !q.Publishable() {
		return fmt.Errorf("%w: empty question or options", errSkipped)
	}

	correct, quiz := q.Correct.Resolve(q.Options)
	sent, err := s.messenger.SendPoll(ctx, chatID, OutgoingPoll{
		Question:     RenderQuestion(s.opts.Header, q.Text),
		Options:      q.Options,
		Quiz:         quiz,
		CorrectIndex: correct,
	})
	if err != nil {
		return fmt.Errorf("send poll: %w", err)
	}

	mode := "regular"
	if quiz {
		mode = "quiz"
	}
	metrics.PollsPublished.WithLabelValues(mode).Inc()

	// The poll is in the chat now. Bookkeeping must finish even if the
	// caller is cancelled, or the row would be sent again.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeBackTimeout)
	defer cancel()

	var errs []error
	if err := s.rows.UpdateCells(wctx, row, Record{
		ColPollID:    sent.PollID,
		ColChatID:    strconv.FormatInt(chatID, 10),
		ColMessageID: strconv.Itoa(sent.MessageID),
	}); err != nil {
		errs = append(errs, fmt.Errorf("save poll ids: %w", err))
	}

	resultsID, err := s.messenger.SendButtons(wctx, chatID, ReactPrompt, ReactionButtons(sent.PollID, nil))
	if err != nil {
		errs = append(errs, fmt.Errorf("send reactions: %w", err))
	}

	// Votes are counted even without a results message to render into.
	s.runtime.PutTally(sent.PollID, NewTally(row, q.Options, chatID, sent.MessageID, resultsID))
	s.runtime.PutReactions(sent.PollID, NewReactions(sent.PollID, chatID, resultsID))

	cells := Record{}
	if resultsID != 0 {
		cells[ColResultsMessageID] = strconv.Itoa(resultsID)
	}
	if q.ID == "" {
		q.ID = NewQuestionID()
		cells[ColID] = q.ID
		cells[ColCreatedAt] = FormatCreatedAt(time.Now())
	}
	if link, err := s.ShareLink(wctx, q.ID); err != nil {
		errs = append(errs, err)
	} else {
		cells[ColLink] = link
	}
	if err := s.rows.UpdateCells(wctx, row, cells); err != nil {
		errs = append(errs, fmt.Errorf("save question details: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("poll %s sent: %w", sent.PollID, err)
	}

	s.logger.Info("poll sent",
		"row", row,
		"question_id", q.ID,
		"poll_id", sent.PollID,
		"chat_id", chatID,
		"mode", mode,
	)
	return nil
}

// RecordAnswer applies a user's complete current selection to the poll's
// tally and refreshes the results message. Unknown polls are ignored. It
// reports whether the counts changed.
func (s *Service) RecordAnswer(ctx context.Context, pollID string, userID int64, selection []int) bool {
	tally, ok := s.runtime.Tally(pollID)
	if !ok {
		s.logger.Debug("answer for unknown poll", "poll_id", pollID, "user_id", userID)
		return false
	}

	metrics.Votes.Inc()
	if !tally.Apply(userID, selection) {
		return false
	}

	text, err := RenderResults(tally.Results())
	if err != nil {
		s.logger.Error("failed to render results", "poll_id", pollID, "error", err)
		return true
	}

	buttons := ReactionButtons(pollID, nil)
	if rc, ok := s.runtime.Reactions(pollID); ok {
		buttons = rc.Buttons()
	}

	if tally.ResultsMessageID == 0 {
		return true
	}
	if err := s.messenger.EditText(ctx, tally.ChatID, tally.ResultsMessageID, text, buttons); err != nil {
		s.logEditError(err, "failed to update results message", "poll_id", pollID)
	}
	return true
}

// React handles a reaction button payload. It reports whether a counter was
// incremented; malformed payloads and unknown polls are ignored.
func (s *Service) React(ctx context.Context, data string) bool {
	pollID, kind, err := ParseReactionKey(data)
	if err != nil {
		s.logger.Debug("ignoring callback", "data", data, "error", err)
		return false
	}

	rc, ok := s.runtime.Reactions(pollID)
	if !ok {
		s.logger.Debug("reaction for unknown poll", "poll_id", pollID)
		return false
	}
	if err := rc.Increment(kind); err != nil {
		s.logger.Debug("ignoring callback", "data", data, "error", err)
		return false
	}
	metrics.Reactions.WithLabelValues(string(kind)).Inc()

	if err := s.messenger.EditButtons(ctx, rc.ChatID, rc.MessageID, rc.Buttons()); err != nil {
		s.logEditError(err, "failed to update reaction buttons", "poll_id", pollID)
	}
	return true
}

func (s *Service) logEditError(err error, msg string, args ...any) {
	args = append(args, "error", err)
	if errors.Is(err, ErrEditIgnorable) {
		metrics.EditFailures.WithLabelValues("ignorable").Inc()
		s.logger.Debug(msg, args...)
		return
	}
	metrics.EditFailures.WithLabelValues("other").Inc()
	s.logger.Warn(msg, args...)
}

type SyncResult struct {
	IDs    int
	Timers int
}

// SyncIDs assigns identifiers and creation times to rows without an ID and
// fills empty timers with the default. Blank rows are left alone.
func (s *Service) SyncIDs(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	questions, err := s.rows.Rows(ctx)
	if err != nil {
		return res, fmt.Errorf("read rows: %w", err)
	}

	now := time.Now()
	defaultTimer := strconv.FormatFloat(s.opts.DefaultTimer.Seconds(), 'f', -1, 64)

	for _, q := range questions {
		if q.Text == "" && len(q.Options) == 0 {
			continue
		}
		cells := Record{}
		if q.ID == "" {
			cells[ColID] = NewQuestionID()
			cells[ColCreatedAt] = FormatCreatedAt(now)
		}
		if q.TimerSec == "" {
			cells[ColTimerSec] = defaultTimer
		}
		if len(cells) == 0 {
			continue
		}
		if err := s.rows.UpdateCells(ctx, q.Row, cells); err != nil {
			return res, fmt.Errorf("update row %d: %w", q.Row, err)
		}
		if _, ok := cells[ColID]; ok {
			res.IDs++
		}
		if _, ok := cells[ColTimerSec]; ok {
			res.Timers++
		}
	}

	s.logger.Info("ids synced", "ids", res.IDs, "timers", res.Timers)
	return res, nil
}
