package bot

import (
	"strings"
	"testing"

	"github.com/manthan/quizbot/internal/poll"
)

func TestHandleStart_GreetsByFirstName(t *testing.T) {
	env := newTestEnv(t)
	c := newCommandContext(42, "/start Q1a2b3c4d")

	if err := env.bot.handleStart(c); err != nil {
		t.Fatalf("handleStart failed: %v", err)
	}
	replies := c.sent()
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "नमस्ते Asha!") {
		t.Errorf("unexpected replies %q", replies)
	}
}

func TestHandleQuiz_RepliesWithLinkThenSummary(t *testing.T) {
	first := questionRecord("QZ1", "Capital of India?", "Mumbai", "Delhi")
	first[poll.ColTimerSec] = "0.01"
	second := questionRecord("QZ1", "Largest planet?", "Mars", "Jupiter")
	other := questionRecord("QZ2", "Not in this batch", "A", "B")
	env := newTestEnv(t, first, second, other)

	c := newCommandContext(42, "/quiz")
	if err := env.bot.handleQuiz(c); err != nil {
		t.Fatalf("handleQuiz failed: %v", err)
	}

	link := c.waitForReply(t, "https://t.me/ManthanQuizBot?start=QZ1")
	if !strings.Contains(link, "2 questions") {
		t.Errorf("link reply missing question count: %q", link)
	}
	c.waitForReply(t, "2 questions from QuizID QZ1 sent ✅")

	if got := env.api.pollCount(); got != 2 {
		t.Errorf("published %d polls, want 2", got)
	}
}

func TestHandleQuiz_RunningBatch(t *testing.T) {
	first := questionRecord("QZ1", "Q1", "A", "B")
	first[poll.ColTimerSec] = "5"
	env := newTestEnv(t, first, questionRecord("QZ1", "Q2", "A", "B"))

	owner := newCommandContext(42, "/quiz")
	if err := env.bot.handleQuiz(owner); err != nil {
		t.Fatalf("handleQuiz failed: %v", err)
	}

	same := newCommandContext(42, "/quiz")
	if err := env.bot.handleQuiz(same); err != nil {
		t.Fatalf("handleQuiz failed: %v", err)
	}
	same.waitForReply(t, "QuizID QZ1 is already being sent.")

	other := newCommandContext(77, "/quiz")
	if err := env.bot.handleQuiz(other); err != nil {
		t.Fatalf("handleQuiz failed: %v", err)
	}
	other.waitForReply(t, "QuizID QZ1 is being sent in another chat.")

	env.bot.dispatcher.CancelChat(42)
	owner.waitForReply(t, "QuizID QZ1 stopped after")
}

func TestHandleQuiz_NothingPending(t *testing.T) {
	env := newTestEnv(t)
	c := newCommandContext(42, "/quiz")

	if err := env.bot.HandleErrors()(env.bot.handleQuiz)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	replies := c.sent()
	if len(replies) != 1 || replies[0] != MsgNoNewQuestion {
		t.Errorf("unexpected replies %q", replies)
	}
}

func TestHandleStop(t *testing.T) {
	first := questionRecord("QZ1", "Q1", "A", "B")
	first[poll.ColTimerSec] = "5"
	env := newTestEnv(t, first, questionRecord("QZ1", "Q2", "A", "B"))

	quiz := newCommandContext(42, "/quiz")
	if err := env.bot.handleQuiz(quiz); err != nil {
		t.Fatalf("handleQuiz failed: %v", err)
	}

	stop := newCommandContext(42, "/stop")
	if err := env.bot.handleStop(stop); err != nil {
		t.Fatalf("handleStop failed: %v", err)
	}
	stop.waitForReply(t, "Stopped 1 running quiz(es).")
	quiz.waitForReply(t, "QuizID QZ1 stopped after")

	again := newCommandContext(42, "/stop")
	if err := env.bot.HandleErrors()(env.bot.handleStop)(again); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	again.waitForReply(t, MsgNothingToStop)
}

func TestHandleSyncIDs(t *testing.T) {
	env := newTestEnv(t,
		questionRecord("QZ1", "Q1", "A", "B"),
		questionRecord("QZ1", "Q2", "A", "B"),
		poll.Record{},
	)
	c := newCommandContext(42, "/syncids")

	if err := env.bot.handleSyncIDs(c); err != nil {
		t.Fatalf("handleSyncIDs failed: %v", err)
	}
	c.waitForReply(t, "(2 IDs, 2 timers)")

	questions, err := env.repo.Rows(t.Context())
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	for _, q := range questions[:2] {
		if !strings.HasPrefix(q.ID, "Q") || q.CreatedAt == "" {
			t.Errorf("row %d not backfilled: %+v", q.Row, q)
		}
	}
}

func TestHandleHelp(t *testing.T) {
	env := newTestEnv(t)
	c := newCommandContext(42, "/help")

	if err := env.bot.handleHelp(c); err != nil {
		t.Fatalf("handleHelp failed: %v", err)
	}
	if replies := c.sent(); len(replies) != 1 || !strings.Contains(replies[0], "/quiz") {
		t.Errorf("unexpected help %q", replies)
	}
}
