package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/manthan/quizbot/internal/poll"
)

// UserError represents an error that should be shown to the user.
// The message is safe to display directly.
type UserError struct {
	Message string // User-friendly message to display
	Cause   error  // Original error for logging (optional)
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// UserErrorf creates a new user-facing error with a formatted message.
func UserErrorf(format string, args ...any) *UserError {
	return &UserError{
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapUserError wraps an internal error with a user-friendly message.
// Use this when you want to log the original error but show a different message to users.
func WrapUserError(message string, cause error) *UserError {
	return &UserError{
		Message: message,
		Cause:   cause,
	}
}

// IsUserError checks if the given error is a UserError.
func IsUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}

// GetUserMessage extracts the user-friendly message from an error.
// If the error is a UserError, returns its Message.
// Otherwise, returns a generic internal error message.
func GetUserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	return MsgInternalError
}

// ShouldLog returns true if the error should be logged.
// UserErrors without a cause are user mistakes and don't need logging.
func ShouldLog(err error) bool {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Cause != nil
	}
	return true
}

var ignorableEditErrors = []error{
	tele.ErrMessageNotModified,
	tele.ErrSameMessageContent,
	tele.ErrCantEditMessage,
	tele.ErrChatNotFound,
	tele.ErrNotFound,
	tele.ErrKickedFromGroup,
	tele.ErrKickedFromSuperGroup,
	tele.ErrNoRightsToSend,
}

var ignorableEditMarkers = []string{
	"not modified",
	"can't be edited",
	"message to edit not found",
	"chat not found",
	"forbidden",
}

// classifyEditError marks edit failures that are expected in normal
// operation (message unchanged, deleted, or bot removed) as
// poll.ErrEditIgnorable. Other errors are returned unchanged.
func classifyEditError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range ignorableEditErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %v", poll.ErrEditIgnorable, err)
		}
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: %v", poll.ErrEditIgnorable, err)
	}

	// Descriptions telebot has no sentinel for arrive as plain errors.
	desc := strings.ToLower(err.Error())
	for _, marker := range ignorableEditMarkers {
		if strings.Contains(desc, marker) {
			return fmt.Errorf("%w: %v", poll.ErrEditIgnorable, err)
		}
	}
	return err
}
