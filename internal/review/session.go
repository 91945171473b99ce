package review

import "sync"

// Session tracks one admin working through the review queue. Each admin has
// at most one session; selections accumulate here until Accept or Reject
// finalizes the submission and the session moves on to the next one.
type Session struct {
	// mu serializes all work on the session. Updates arrive on separate
	// goroutines, and a duplicate accept (double click, Telegram retry)
	// must not run the finalization twice.
	mu sync.Mutex

	AdminID int64
	// ChatID is where the review controls were opened, usually the admin's
	// private chat with the bot.
	ChatID       int64
	SubmissionID string

	// Selection state. Prefix narrows the catalog, ChallengeKey fixes the
	// challenge, Bonus adds extra points on top of the challenge value.
	Prefix       string
	ChallengeKey string
	BasePoints   int
	Bonus        int

	// AwaitingReason is set after Reject; the admin's next text message is
	// taken as the rejection reason.
	AwaitingReason bool

	// ControlMessageID is the message carrying the inline keyboard, edited
	// in place as the selection changes. Zero means not yet sent.
	ControlMessageID int
}

// resetSelection clears the per-submission state when the session advances.
func (s *Session) resetSelection(submissionID string) {
	s.SubmissionID = submissionID
	s.Prefix = ""
	s.ChallengeKey = ""
	s.BasePoints = 0
	s.Bonus = 0
	s.AwaitingReason = false
	s.ControlMessageID = 0
}

// TotalPoints is the amount awarded on accept.
func (s *Session) TotalPoints() int { return s.BasePoints + s.Bonus }
