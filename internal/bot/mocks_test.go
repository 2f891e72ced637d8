package bot

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/manthan/quizbot/internal/poll"
	"github.com/manthan/quizbot/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type textEdit struct {
	chatID    int64
	messageID string
	text      string
	markup    *tele.ReplyMarkup
}

// fakeAPI records what would be sent to Telegram.
type fakeAPI struct {
	mu          sync.Mutex
	nextID      int
	polls       []*tele.Poll
	texts       []string
	markups     []*tele.ReplyMarkup
	edits       []textEdit
	markupEdits []textEdit
	sendErr     error
	editErr     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100}
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	msg := &tele.Message{ID: f.nextID}
	switch v := what.(type) {
	case *tele.Poll:
		f.polls = append(f.polls, v)
		msg.Poll = &tele.Poll{ID: fmt.Sprintf("poll-%d", len(f.polls))}
	case string:
		f.texts = append(f.texts, v)
		for _, opt := range opts {
			if m, ok := opt.(*tele.ReplyMarkup); ok {
				f.markups = append(f.markups, m)
			}
		}
	}
	return msg, nil
}

func (f *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	id, chat := msg.MessageSig()
	edit := textEdit{chatID: chat, messageID: id}
	edit.text, _ = what.(string)
	for _, opt := range opts {
		if m, ok := opt.(*tele.ReplyMarkup); ok {
			edit.markup = m
		}
	}
	f.edits = append(f.edits, edit)
	return &tele.Message{}, nil
}

func (f *fakeAPI) EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	id, chat := msg.MessageSig()
	f.markupEdits = append(f.markupEdits, textEdit{chatID: chat, messageID: id, markup: markup})
	return &tele.Message{}, nil
}

func (f *fakeAPI) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.polls)
}

// fakeContext implements the tele.Context methods the handlers use.
type fakeContext struct {
	tele.Context

	mu         sync.Mutex
	sender     *tele.User
	chat       *tele.Chat
	message    *tele.Message
	pollAnswer *tele.PollAnswer
	callback   *tele.Callback
	replies    []string
	responses  []*tele.CallbackResponse
}

func newCommandContext(chatID int64, text string) *fakeContext {
	payload := ""
	if _, after, ok := strings.Cut(text, " "); ok {
		payload = after
	}
	return &fakeContext{
		sender:  &tele.User{ID: 7, FirstName: "Asha"},
		chat:    &tele.Chat{ID: chatID},
		message: &tele.Message{Text: text, Payload: payload},
	}
}

func (c *fakeContext) Sender() *tele.User           { return c.sender }
func (c *fakeContext) Chat() *tele.Chat             { return c.chat }
func (c *fakeContext) Message() *tele.Message       { return c.message }
func (c *fakeContext) PollAnswer() *tele.PollAnswer { return c.pollAnswer }
func (c *fakeContext) Callback() *tele.Callback     { return c.callback }

func (c *fakeContext) Text() string {
	if c.message == nil {
		return ""
	}
	return c.message.Text
}

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, fmt.Sprint(what))
	return nil
}

func (c *fakeContext) Reply(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp...)
	return nil
}

func (c *fakeContext) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.replies...)
}

// waitForReply polls until a reply containing substr arrives.
func (c *fakeContext) waitForReply(t *testing.T, substr string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, r := range c.sent() {
			if strings.Contains(r, substr) {
				return r
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no reply containing %q, got %q", substr, c.sent())
	return ""
}

func questionRecord(quizID, text string, options ...string) poll.Record {
	rec := poll.Record{
		poll.ColQuestion: text,
		poll.ColQuizID:   quizID,
	}
	cols := []poll.Column{poll.ColOption1, poll.ColOption2, poll.ColOption3, poll.ColOption4}
	for i, opt := range options {
		rec[cols[i]] = opt
	}
	return rec
}

type testEnv struct {
	bot  *Bot
	api  *fakeAPI
	repo *storage.QuestionRepository
}

func newTestEnv(t *testing.T, records ...poll.Record) *testEnv {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	repo := storage.NewQuestionRepository(db)
	for _, rec := range records {
		if _, err := repo.Insert(t.Context(), rec); err != nil {
			t.Fatalf("failed to insert row: %v", err)
		}
	}

	logger := discardLogger()
	api := newFakeAPI()
	svc := poll.NewService(repo, NewMessenger(api, "ManthanQuizBot"), poll.NewRuntime(0), poll.Options{
		Header:       "🏫 Test Classes",
		DefaultTimer: 10 * time.Millisecond,
	}, logger)
	dispatcher := poll.NewDispatcher(repo, svc, 10*time.Millisecond, logger)

	b := New(nil, svc, dispatcher, logger)
	t.Cleanup(func() {
		dispatcher.Shutdown()
		b.Wait()
		db.Close()
	})

	return &testEnv{bot: b, api: api, repo: repo}
}
