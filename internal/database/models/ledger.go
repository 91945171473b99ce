package models

import "time"

// LedgerEntry is one append-only scoring event, one row of the Ledger
// worksheet. Delta is the full awarded amount including any bonus.
type LedgerEntry struct {
	At           time.Time
	Team         string
	Delta        int
	ChallengeKey string
	SubmissionID string
	ReviewedBy   string
}
