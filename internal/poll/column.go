package poll

// Column names a header cell of the question sheet.
type Column string

const (
	ColID               Column = "ID"
	ColQuestion         Column = "Question"
	ColOption1          Column = "Option1"
	ColOption2          Column = "Option2"
	ColOption3          Column = "Option3"
	ColOption4          Column = "Option4"
	ColCorrectOption    Column = "CorrectOption"
	ColQuizID           Column = "QuizID"
	ColPollID           Column = "PollID"
	ColChatID           Column = "ChatID"
	ColMessageID        Column = "MessageID"
	ColResultsMessageID Column = "ResultsMessageID"
	ColLink             Column = "Link"
	ColCreatedAt        Column = "CreatedAt"
	ColTimerSec         Column = "TimerSec"
)

// DefaultHeaders is the canonical header row. Stores append any of these that
// are missing and never reorder existing columns.
var DefaultHeaders = []Column{
	ColID, ColQuestion, ColOption1, ColOption2, ColOption3, ColOption4,
	ColCorrectOption, ColQuizID, ColPollID, ColChatID, ColMessageID,
	ColResultsMessageID, ColLink, ColCreatedAt, ColTimerSec,
}

var optionColumns = []Column{ColOption1, ColOption2, ColOption3, ColOption4}

// MissingHeaders returns the default headers absent from current, in
// canonical order.
func MissingHeaders(current []string) []Column {
	have := make(map[string]bool, len(current))
	for _, h := range current {
		have[h] = true
	}
	var missing []Column
	for _, h := range DefaultHeaders {
		if !have[string(h)] {
			missing = append(missing, h)
		}
	}
	return missing
}
