package bot

// User-facing replies
const (
	MsgFmtGreeting      = "नमस्ते %s! मैं Manthan Poll/Quiz Bot हूँ.\nUse /quiz to get a new question here."
	MsgNoNewQuestion    = "कोई नया question नहीं मिला (सब already posted)."
	MsgFmtQuizLink      = "QuizID %s: %d questions coming up.\nShare: %s"
	MsgFmtQuizRunning   = "QuizID %s is already being sent.\nShare: %s"
	MsgFmtQuizElsewhere = "QuizID %s is being sent in another chat. Use the link to follow it.\nShare: %s"
	MsgFmtBatchSent     = "%d questions from QuizID %s sent ✅"
	MsgFmtBatchStopped  = "QuizID %s stopped after %d questions."
	MsgFmtSynced        = "Missing IDs generated and CreatedAt updated (%d IDs, %d timers)."
	MsgFmtStopped       = "Stopped %d running quiz(es)."
	MsgNothingToStop    = "No quiz is running in this chat."
	MsgReactionSaved    = "Your reaction recorded ✅"
)

const MsgHelp = `/quiz - send the next batch of questions to this chat
/stop - stop the quiz being sent to this chat
/syncids - generate missing question IDs and timers
/help - show this message`

// System error messages (internal errors, hide details from user)
const (
	MsgInternalError   = "An internal error occurred. Please try again later."
	MsgFailedReadSheet = "Could not read the question sheet. Please try again."
	MsgFailedSyncIDs   = "Could not update question IDs. Please try again."
	MsgFailedBuildLink = "Could not build the quiz link. Please try again."
)
