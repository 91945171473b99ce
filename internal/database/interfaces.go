package database

import (
	"context"

	"codecomp-bot/internal/database/models"
)

// SubmissionRepository defines the interface for submission rows in the
// Submissions worksheet.
type SubmissionRepository interface {
	// CreateSubmission appends a new pending submission row.
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	// GetSubmissionByID returns the submission with the given ID, or
	// ErrSubmissionNotFound.
	GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	// NextPending returns the oldest pending submission in sheet order, or
	// ErrSubmissionNotFound when the queue is empty.
	NextPending(ctx context.Context) (*models.Submission, error)
	// PendingCount returns how many submissions await review. Read failures
	// count as zero.
	PendingCount(ctx context.Context) int
	// ExistsForOrigin reports whether a submission was already recorded for
	// the given source message.
	ExistsForOrigin(ctx context.Context, origin models.MessageRef) bool
	// Submissions returns every submission row. Read failures yield an
	// empty slice.
	Submissions(ctx context.Context) []models.Submission
	// UpdateStatus writes the review outcome onto the submission row.
	// challengeKey and points are only written when non-nil. Returns false
	// when the row is missing or the write fails.
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewedBy string, challengeKey *string, points *int) bool
	// ResetAll deletes every submission row, keeping the header.
	ResetAll(ctx context.Context) error
}

// LedgerRepository defines the interface for the append-only scoring ledger.
type LedgerRepository interface {
	// AppendEntry appends one scoring event.
	AppendEntry(ctx context.Context, entry models.LedgerEntry) error
	// Entries returns every ledger row. Read failures yield an empty slice.
	Entries(ctx context.Context) []models.LedgerEntry
	// Reset deletes every ledger row, keeping the header.
	Reset(ctx context.Context) error
}

// ChallengeRepository defines the interface for the challenge catalog.
type ChallengeRepository interface {
	// Challenges returns the full catalog. Read failures yield an empty
	// slice.
	Challenges(ctx context.Context) []models.Challenge
	// CreateSurpriseChallenge appends a surprise challenge with the next
	// free SUP ordinal and returns its key.
	CreateSurpriseChallenge(ctx context.Context, name string, points int) (string, error)
}

// MemberRepository defines the interface for the team roster.
type MemberRepository interface {
	// Members returns the full roster. Read failures yield an empty slice.
	Members(ctx context.Context) []models.Member
	// TeamOf returns the team of the given user, with ok=false when the
	// user is not on the roster.
	TeamOf(ctx context.Context, userID int64) (string, bool)
	// DisplayName returns the roster name of the user, or "" when unknown.
	DisplayName(ctx context.Context, userID int64) string
	// Teams returns the distinct team names in sorted order.
	Teams(ctx context.Context) []string
}

// QueueRefRepository persists the reference to the current queue summary
// message.
type QueueRefRepository interface {
	// Get returns the stored reference, with ok=false when none is set.
	Get(ctx context.Context) (models.QueueRef, bool)
	// Set overwrites the stored reference.
	Set(ctx context.Context, ref models.QueueRef) error
	// Clear removes the stored reference.
	Clear(ctx context.Context) error
}

// UserActionLogger defines the interface for logging user actions.
type UserActionLogger interface {
	// LogUserAction logs an action performed by a user.
	LogUserAction(userID int64, action string, details interface{}) error
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// UpdateUser updates or creates a user record in the database.
	UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error
}
