package bot

import (
	tele "gopkg.in/telebot.v4"
)

// HandleErrors replies with the user message of a failed command and logs
// the cause when there is one.
func (b *Bot) HandleErrors() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			if ShouldLog(err) {
				b.logger.Error("command failed",
					"command", c.Text(),
					"chat_id", chatID(c),
					"user_id", senderID(c),
					"error", err,
				)
			}

			if sendErr := c.Reply(GetUserMessage(err)); sendErr != nil {
				b.logger.Warn("failed to send error reply", "chat_id", chatID(c), "error", sendErr)
			}
			return nil
		}
	}
}
