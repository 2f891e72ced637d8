package poll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRowStore struct {
	mu      sync.Mutex
	records map[int]Record
	updates int
	err     error
	// honorCtx makes writes fail once ctx is done, like a network client.
	honorCtx bool
}

func newMockRowStore(records ...Record) *mockRowStore {
	m := &mockRowStore{records: make(map[int]Record)}
	for i, rec := range records {
		m.records[i+2] = rec
	}
	return m
}

func (m *mockRowStore) Rows(ctx context.Context) ([]*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rows := make([]int, 0, len(m.records))
	for row := range m.records {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	questions := make([]*Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, QuestionFromRecord(row, m.records[row]))
	}
	return questions, nil
}

func (m *mockRowStore) Row(ctx context.Context, row int) (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[row]
	if !ok {
		return nil, ErrRowNotFound
	}
	return QuestionFromRecord(row, rec), nil
}

func (m *mockRowStore) UpdateCells(ctx context.Context, row int, cells Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	rec, ok := m.records[row]
	if !ok {
		return ErrRowNotFound
	}
	for col, v := range cells {
		rec[col] = v
	}
	m.updates++
	return nil
}

func (m *mockRowStore) cell(row int, col Column) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[row][col]
}

type sentPoll struct {
	ChatID int64
	Poll   OutgoingPoll
	At     time.Time
}

type edit struct {
	ChatID    int64
	MessageID int
	Text      string
	Buttons   []Button
}

type mockMessenger struct {
	mu          sync.Mutex
	polls       []sentPoll
	buttonMsgs  []edit
	textEdits   []edit
	buttonEdits []edit
	nextID      int
	sendErr     error
	buttonsErr  error
	editErr     error
	afterSend   func()
}

func (m *mockMessenger) SendPoll(ctx context.Context, chatID int64, p OutgoingPoll) (SentPoll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return SentPoll{}, m.sendErr
	}
	m.nextID++
	m.polls = append(m.polls, sentPoll{ChatID: chatID, Poll: p, At: time.Now()})
	if m.afterSend != nil {
		m.afterSend()
	}
	return SentPoll{PollID: fmt.Sprintf("poll%d", m.nextID), MessageID: m.nextID}, nil
}

func (m *mockMessenger) SendButtons(ctx context.Context, chatID int64, text string, buttons []Button) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buttonsErr != nil {
		return 0, m.buttonsErr
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	m.nextID++
	m.buttonMsgs = append(m.buttonMsgs, edit{ChatID: chatID, MessageID: m.nextID, Text: text, Buttons: buttons})
	return m.nextID, nil
}

func (m *mockMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons []Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textEdits = append(m.textEdits, edit{ChatID: chatID, MessageID: messageID, Text: text, Buttons: buttons})
	return m.editErr
}

func (m *mockMessenger) EditButtons(ctx context.Context, chatID int64, messageID int, buttons []Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttonEdits = append(m.buttonEdits, edit{ChatID: chatID, MessageID: messageID, Buttons: buttons})
	return m.editErr
}

func (m *mockMessenger) Username(ctx context.Context) (string, error) {
	return "ManthanQuizBot", nil
}

func (m *mockMessenger) sentPolls() []sentPoll {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentPoll(nil), m.polls...)
}

func questionRecord(quizID, text string, options ...string) Record {
	rec := Record{
		ColID:       "Q" + strconv.Itoa(len(text)) + "abcdef0",
		ColQuestion: text,
		ColQuizID:   quizID,
	}
	for i, opt := range options {
		rec[optionColumns[i]] = opt
	}
	return rec
}
