package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codecomp-bot/internal/database/models"
)

func TestCellIntCoercion(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
		want int
	}{
		{"float from API", []interface{}{7.0}, 7},
		{"numeric string", []interface{}{"12"}, 12},
		{"padded string", []interface{}{" 3 "}, 3},
		{"blank", []interface{}{""}, 0},
		{"garbage", []interface{}{"n/a"}, 0},
		{"nil cell", []interface{}{nil}, 0},
		{"short row", []interface{}{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellInt(tt.row, 0))
		})
	}
}

func TestCellString(t *testing.T) {
	row := []interface{}{"  hello  ", 42.0, nil}
	assert.Equal(t, "hello", cellString(row, 0))
	assert.Equal(t, "42", cellString(row, 1))
	assert.Equal(t, "", cellString(row, 2))
	assert.Equal(t, "", cellString(row, 9))
}

func TestSubmissionRowRoundTrip(t *testing.T) {
	sub := &models.Submission{
		ID:           "SUB-100-42",
		SubmittedAt:  time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
		UserID:       123456,
		Team:         "Rubber Ducks",
		Description:  "challenge built a birdhouse",
		Origin:       models.MessageRef{ChatID: -100987, MessageID: 42},
		MediaFileIDs: []string{"file-a", "file-b"},
		Status:       models.StatusPending,
		ChallengeKey: "",
		Points:       0,
	}

	row := submissionToRow(sub)
	got := submissionFromRow(row)

	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, sub.SubmittedAt, got.SubmittedAt)
	assert.Equal(t, sub.UserID, got.UserID)
	assert.Equal(t, sub.Team, got.Team)
	assert.Equal(t, sub.Origin, got.Origin)
	assert.Equal(t, sub.MediaFileIDs, got.MediaFileIDs)
	assert.True(t, got.IsPending())
}

func TestSubmissionFromRowToleratesHandEdits(t *testing.T) {
	// A row where someone typed over the points and status cells.
	row := []interface{}{
		"SUB-1-2", "not a date", "9", "Team A", "desc", "1|2", "",
		"approved", "WEB-001", "five", "Alice",
	}
	got := submissionFromRow(row)
	assert.True(t, got.Status.Is(models.StatusApproved))
	assert.Equal(t, 0, got.Points)
	assert.True(t, got.SubmittedAt.IsZero())
	assert.Empty(t, got.MediaFileIDs)
}

func TestParseMessageRef(t *testing.T) {
	assert.Equal(t, models.MessageRef{ChatID: -100123, MessageID: 7}, models.ParseMessageRef("-100123|7"))
	assert.True(t, models.ParseMessageRef("").IsZero())
	assert.True(t, models.ParseMessageRef("oops").IsZero())
	assert.True(t, models.ParseMessageRef("a|b").IsZero())
}

func TestNextSurpriseKey(t *testing.T) {
	challenges := []models.Challenge{
		{Key: "WEB-001"},
		{Key: "SUP-001"},
		{Key: "SUP-007"},
		{Key: "SUP-bad"},
	}
	assert.Equal(t, "SUP-008", nextSurpriseKey(challenges))
	assert.Equal(t, "SUP-001", nextSurpriseKey(nil))
}
