package bot

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/manthan/quizbot/internal/poll"
)

// API is the subset of *tele.Bot used to talk to Telegram.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error)
}

// Messenger implements poll.Messenger on top of telebot.
type Messenger struct {
	api      API
	username string
}

var _ poll.Messenger = (*Messenger)(nil)

func NewMessenger(api API, username string) *Messenger {
	return &Messenger{api: api, username: username}
}

func (m *Messenger) SendPoll(ctx context.Context, chatID int64, p poll.OutgoingPoll) (poll.SentPoll, error) {
	if err := ctx.Err(); err != nil {
		return poll.SentPoll{}, err
	}

	telePoll := &tele.Poll{
		Type:      tele.PollRegular,
		Question:  p.Question,
		Anonymous: false,
	}
	if p.Quiz {
		telePoll.Type = tele.PollQuiz
		telePoll.CorrectOption = p.CorrectIndex
	}
	telePoll.AddOptions(p.Options...)

	msg, err := m.api.Send(&tele.Chat{ID: chatID}, telePoll)
	if err != nil {
		return poll.SentPoll{}, fmt.Errorf("send poll: %w", err)
	}
	if msg.Poll == nil {
		return poll.SentPoll{}, fmt.Errorf("send poll: response has no poll")
	}
	return poll.SentPoll{PollID: msg.Poll.ID, MessageID: msg.ID}, nil
}

func (m *Messenger) SendButtons(ctx context.Context, chatID int64, text string, buttons []poll.Button) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := m.api.Send(&tele.Chat{ID: chatID}, text, inlineMarkup(buttons))
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

func (m *Messenger) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons []poll.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := []interface{}{}
	if len(buttons) > 0 {
		opts = append(opts, inlineMarkup(buttons))
	}
	_, err := m.api.Edit(storedMessage(chatID, messageID), text, opts...)
	return classifyEditError(err)
}

func (m *Messenger) EditButtons(ctx context.Context, chatID int64, messageID int, buttons []poll.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.api.EditReplyMarkup(storedMessage(chatID, messageID), inlineMarkup(buttons))
	return classifyEditError(err)
}

func (m *Messenger) Username(ctx context.Context) (string, error) {
	if m.username == "" {
		return "", fmt.Errorf("bot username unknown")
	}
	return m.username, nil
}

func storedMessage(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}

// inlineMarkup renders buttons as one keyboard row. Callback data is passed
// through untouched so payloads keep the "<pollID>_<kind>" shape.
func inlineMarkup(buttons []poll.Button) *tele.ReplyMarkup {
	row := make([]tele.InlineButton, len(buttons))
	for i, b := range buttons {
		row[i] = tele.InlineButton{Text: b.Text, Data: b.Data}
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
}
