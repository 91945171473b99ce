package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"

	"codecomp-bot/internal/database/models"
)

const challengesSheet = "Challenges"

// SheetChallengeRepository implements ChallengeRepository on the Challenges
// worksheet.
type SheetChallengeRepository struct {
	client *SheetsClient
}

// NewSheetChallengeRepository creates a new repository instance.
func NewSheetChallengeRepository(client *SheetsClient) *SheetChallengeRepository {
	return &SheetChallengeRepository{client: client}
}

// Challenges returns the full catalog. Rows without a key are skipped; read
// failures degrade to an empty slice.
func (r *SheetChallengeRepository) Challenges(ctx context.Context) []models.Challenge {
	rows, err := r.client.readRows(ctx, challengesSheet+"!A2:D")
	if err != nil {
		log.Printf("[ChallengeRepo] Failed to read challenges: %v", err)
		sentry.CaptureException(err)
		return nil
	}
	challenges := make([]models.Challenge, 0, len(rows))
	for _, row := range rows {
		ch := challengeFromRow(row)
		if ch.Key == "" {
			continue
		}
		challenges = append(challenges, ch)
	}
	return challenges
}

// CreateSurpriseChallenge appends a surprise challenge with the next free
// SUP ordinal and returns its key.
func (r *SheetChallengeRepository) CreateSurpriseChallenge(ctx context.Context, name string, points int) (string, error) {
	key := nextSurpriseKey(r.Challenges(ctx))
	row := []interface{}{key, name, points, 1}
	if err := r.client.appendRow(ctx, challengesSheet+"!A:D", row); err != nil {
		return "", fmt.Errorf("failed to create surprise challenge %s: %w", key, err)
	}
	return key, nil
}

// nextSurpriseKey returns "SUP-NNN" with the smallest ordinal above every
// existing surprise key. Malformed ordinals are ignored.
func nextSurpriseKey(challenges []models.Challenge) string {
	max := 0
	for _, ch := range challenges {
		if !ch.IsSurprise() {
			continue
		}
		i := strings.Index(ch.Key, "-")
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(ch.Key[i+1:])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", models.SurprisePrefix, max+1)
}
