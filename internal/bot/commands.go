package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/manthan/quizbot/internal/poll"
)

var commandMenu = []tele.Command{
	{Text: "quiz", Description: "Send the next batch of questions"},
	{Text: "stop", Description: "Stop the running quiz"},
	{Text: "syncids", Description: "Generate missing question IDs"},
	{Text: "help", Description: "Show commands"},
}

// RegisterCommands sets up all bot commands behind the error middleware
func (b *Bot) RegisterCommands() {
	group := b.bot.Group()
	group.Use(b.HandleErrors())

	group.Handle("/start", b.handleStart)
	group.Handle("/quiz", b.handleQuiz)
	group.Handle("/syncids", b.handleSyncIDs)
	group.Handle("/stop", b.handleStop)
	group.Handle("/help", b.handleHelp)

	if err := b.bot.SetCommands(commandMenu); err != nil {
		b.logger.Warn("failed to set command menu", "error", err)
	}
}

// handleStart greets the user. A deep-link payload is only logged.
func (b *Bot) handleStart(c tele.Context) error {
	name := ""
	if sender := c.Sender(); sender != nil {
		name = sender.FirstName
	}

	b.logger.Info("command /start",
		"user_id", senderID(c),
		"chat_id", chatID(c),
		"payload", c.Message().Payload,
	)

	return c.Reply(fmt.Sprintf(MsgFmtGreeting, name))
}

// handleQuiz starts the next pending batch in this chat and replies with
// its share link right away. A summary follows when the batch finishes.
func (b *Bot) handleQuiz(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	b.logger.Info("command /quiz",
		"user_id", senderID(c),
		"chat_id", chatID(c),
	)

	job, started, err := b.dispatcher.Start(ctx, chatID(c))
	if err != nil {
		if errors.Is(err, poll.ErrNoPendingQuestions) {
			return UserErrorf(MsgNoNewQuestion)
		}
		return WrapUserError(MsgFailedReadSheet, err)
	}

	if started {
		b.reports.Add(1)
		go b.reportWhenDone(c, job)
	}

	link, err := b.quizzes.ShareLink(ctx, job.BatchID)
	if err != nil {
		return WrapUserError(MsgFailedBuildLink, err)
	}

	if !started {
		// A batch is sent to one chat only; its rows are published once.
		if job.ChatID != chatID(c) {
			return c.Reply(fmt.Sprintf(MsgFmtQuizElsewhere, job.BatchID, link))
		}
		return c.Reply(fmt.Sprintf(MsgFmtQuizRunning, job.BatchID, link))
	}
	return c.Reply(fmt.Sprintf(MsgFmtQuizLink, job.BatchID, job.Total, link))
}

func (b *Bot) reportWhenDone(c tele.Context, job *poll.Job) {
	defer b.reports.Done()

	res, err := job.Wait(context.Background())
	if err != nil {
		return
	}

	text := fmt.Sprintf(MsgFmtBatchSent, res.Published, job.BatchID)
	if res.Cancelled {
		text = fmt.Sprintf(MsgFmtBatchStopped, job.BatchID, res.Published)
	}
	if err := c.Send(text); err != nil {
		b.logger.Warn("failed to send batch summary",
			"quiz_id", job.BatchID,
			"chat_id", job.ChatID,
			"error", err,
		)
	}
}

func (b *Bot) handleSyncIDs(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	b.logger.Info("command /syncids",
		"user_id", senderID(c),
		"chat_id", chatID(c),
	)

	res, err := b.quizzes.SyncIDs(ctx)
	if err != nil {
		return WrapUserError(MsgFailedSyncIDs, err)
	}
	return c.Reply(fmt.Sprintf(MsgFmtSynced, res.IDs, res.Timers))
}

func (b *Bot) handleStop(c tele.Context) error {
	n := b.dispatcher.CancelChat(chatID(c))

	b.logger.Info("command /stop",
		"user_id", senderID(c),
		"chat_id", chatID(c),
		"cancelled", n,
	)

	if n == 0 {
		return UserErrorf(MsgNothingToStop)
	}
	return c.Reply(fmt.Sprintf(MsgFmtStopped, n))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Reply(MsgHelp)
}
