package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// Is compares two statuses ignoring case, since stored cells may have been
// edited by hand.
func (s SubmissionStatus) Is(other SubmissionStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

// MessageRef points at a chat message, serialized as "<chatID>|<messageID>"
// in a worksheet cell.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference is unset.
func (r MessageRef) IsZero() bool { return r.ChatID == 0 && r.MessageID == 0 }

func (r MessageRef) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d|%d", r.ChatID, r.MessageID)
}

// ParseMessageRef parses the "<chatID>|<messageID>" cell form. Malformed
// input yields the zero reference.
func ParseMessageRef(s string) MessageRef {
	parts := strings.SplitN(strings.TrimSpace(s), "|", 2)
	if len(parts) != 2 {
		return MessageRef{}
	}
	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return MessageRef{}
	}
	messageID, err := strconv.Atoi(parts[1])
	if err != nil {
		return MessageRef{}
	}
	return MessageRef{ChatID: chatID, MessageID: messageID}
}

// Submission is one proof-of-completion record, one row of the Submissions
// worksheet.
type Submission struct {
	ID           string
	SubmittedAt  time.Time
	UserID       int64
	Team         string
	Description  string
	Origin       MessageRef
	MediaFileIDs []string
	Status       SubmissionStatus
	ChallengeKey string
	Points       int
	ReviewedBy   string
}

// IsPending reports whether the submission still awaits review.
func (s *Submission) IsPending() bool { return s.Status.Is(StatusPending) }
