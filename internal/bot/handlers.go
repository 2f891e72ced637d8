package bot

import (
	tele "gopkg.in/telebot.v4"
)

func (b *Bot) RegisterHandlers() {
	b.bot.Handle(tele.OnPollAnswer, b.handlePollAnswer)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) handlePollAnswer(c tele.Context) error {
	answer := c.PollAnswer()
	if answer == nil || answer.Sender == nil {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	// Unknown polls are ignored by the service.
	b.quizzes.RecordAnswer(ctx, answer.PollID, answer.Sender.ID, answer.Options)
	return nil
}

// handleCallback counts a reaction button press. The press is always
// acknowledged so the client stops its spinner.
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	b.quizzes.React(ctx, cb.Data)
	return c.Respond(&tele.CallbackResponse{Text: MsgReactionSaved})
}
