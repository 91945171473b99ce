package database

import (
	"strconv"
	"strings"
	"time"

	"codecomp-bot/internal/database/models"
)

// Cell coercion lives here so every repository reads through one boundary.
// The Sheets API hands back untyped cells; numbers may arrive as float64,
// as strings, or not at all when a row is short.

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// cellInt coerces a cell to an integer. Blank, malformed, or missing cells
// coerce to 0 so a hand-edited sheet never takes the bot down.
func cellInt(row []interface{}, idx int) int {
	if idx >= len(row) || row[idx] == nil {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func cellInt64(row []interface{}, idx int) int64 {
	if idx >= len(row) || row[idx] == nil {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func cellTime(row []interface{}, idx int) time.Time {
	s := cellString(row, idx)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Submissions worksheet columns A..K.
const (
	subColID = iota
	subColSubmittedAt
	subColUserID
	subColTeam
	subColDescription
	subColOrigin
	subColMedia
	subColStatus
	subColChallengeKey
	subColPoints
	subColReviewedBy
)

const mediaRefSeparator = "|"

func submissionFromRow(row []interface{}) models.Submission {
	var media []string
	if joined := cellString(row, subColMedia); joined != "" {
		media = strings.Split(joined, mediaRefSeparator)
	}
	return models.Submission{
		ID:           cellString(row, subColID),
		SubmittedAt:  cellTime(row, subColSubmittedAt),
		UserID:       cellInt64(row, subColUserID),
		Team:         cellString(row, subColTeam),
		Description:  cellString(row, subColDescription),
		Origin:       models.ParseMessageRef(cellString(row, subColOrigin)),
		MediaFileIDs: media,
		Status:       models.SubmissionStatus(strings.ToUpper(cellString(row, subColStatus))),
		ChallengeKey: cellString(row, subColChallengeKey),
		Points:       cellInt(row, subColPoints),
		ReviewedBy:   cellString(row, subColReviewedBy),
	}
}

func submissionToRow(sub *models.Submission) []interface{} {
	return []interface{}{
		sub.ID,
		sub.SubmittedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(sub.UserID, 10),
		sub.Team,
		sub.Description,
		sub.Origin.String(),
		strings.Join(sub.MediaFileIDs, mediaRefSeparator),
		string(sub.Status),
		sub.ChallengeKey,
		sub.Points,
		sub.ReviewedBy,
	}
}

// Ledger worksheet columns A..F.
func ledgerEntryFromRow(row []interface{}) models.LedgerEntry {
	return models.LedgerEntry{
		At:           cellTime(row, 0),
		Team:         cellString(row, 1),
		Delta:        cellInt(row, 2),
		ChallengeKey: cellString(row, 3),
		SubmissionID: cellString(row, 4),
		ReviewedBy:   cellString(row, 5),
	}
}

func ledgerEntryToRow(entry models.LedgerEntry) []interface{} {
	return []interface{}{
		entry.At.UTC().Format(time.RFC3339),
		entry.Team,
		entry.Delta,
		entry.ChallengeKey,
		entry.SubmissionID,
		entry.ReviewedBy,
	}
}

// Challenges worksheet columns A..D.
func challengeFromRow(row []interface{}) models.Challenge {
	return models.Challenge{
		Key:             strings.ToUpper(cellString(row, 0)),
		Name:            cellString(row, 1),
		Points:          cellInt(row, 2),
		MinParticipants: cellInt(row, 3),
	}
}

// Members worksheet columns A..C.
func memberFromRow(row []interface{}) models.Member {
	return models.Member{
		UserID: cellInt64(row, 0),
		Name:   cellString(row, 1),
		Team:   cellString(row, 2),
	}
}
