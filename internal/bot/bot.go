package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/manthan/quizbot/internal/poll"
)

const requestTimeout = 30 * time.Second

// QuizService is the part of poll.Service the handlers call.
type QuizService interface {
	ShareLink(ctx context.Context, payload string) (string, error)
	RecordAnswer(ctx context.Context, pollID string, userID int64, selection []int) bool
	React(ctx context.Context, data string) bool
	SyncIDs(ctx context.Context) (poll.SyncResult, error)
}

// Dispatcher starts and cancels batch jobs.
type Dispatcher interface {
	Start(ctx context.Context, chatID int64) (*poll.Job, bool, error)
	CancelChat(chatID int64) int
}

type Bot struct {
	bot        *tele.Bot
	quizzes    QuizService
	dispatcher Dispatcher
	logger     *slog.Logger

	reports sync.WaitGroup
}

// NewTelebot connects to Telegram with a long poller that receives
// messages, callback queries and poll answers.
func NewTelebot(token string, logger *slog.Logger) (*tele.Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout:        10 * time.Second,
			AllowedUpdates: []string{"message", "callback_query", "poll_answer"},
		},
		OnError: func(err error, c tele.Context) {
			logger.Error("update handling failed", "error", err)
		},
	}
	return tele.NewBot(pref)
}

func New(tb *tele.Bot, quizzes QuizService, dispatcher Dispatcher, logger *slog.Logger) *Bot {
	return &Bot{
		bot:        tb,
		quizzes:    quizzes,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start blocks while polling for updates.
func (b *Bot) Start() {
	b.logger.Info("bot started", "username", b.bot.Me.Username)
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

// Wait blocks until every pending batch summary has been sent.
func (b *Bot) Wait() {
	b.reports.Wait()
}

func (b *Bot) Bot() *tele.Bot {
	return b.bot
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func senderID(c tele.Context) int64 {
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}
