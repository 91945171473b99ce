package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codecomp-bot/internal/database/models"
)

var testCatalog = []models.Challenge{
	{Key: "WEB-001", Name: "Build a site", Points: 5},
	{Key: "WEB-002", Name: "Ship a feature", Points: 10},
	{Key: "ART-001", Name: "Paint something", Points: 5},
	{Key: "SUP-001", Name: "Secret mission", Points: 20},
}

func approved(team, key string) models.Submission {
	return models.Submission{Team: team, ChallengeKey: key, Status: models.StatusApproved}
}

func TestUnclaimedPerTeam(t *testing.T) {
	subs := []models.Submission{
		approved("Ducks", "WEB-001"),
		approved("Geese", "ART-001"),
		{Team: "Ducks", ChallengeKey: "WEB-002", Status: models.StatusPending},
		{Team: "Ducks", ChallengeKey: "SUP-001", Status: models.StatusRejected},
	}

	keys := UnclaimedKeys(testCatalog, subs, "Ducks")
	// Pending and rejected submissions do not claim a challenge.
	assert.Contains(t, keys, "WEB-002")
	assert.Contains(t, keys, "SUP-001")
	assert.Contains(t, keys, "ART-001")
	assert.NotContains(t, keys, "WEB-001")
}

func TestApprovedByTeam(t *testing.T) {
	tests := []struct {
		name string
		subs []models.Submission
		want map[string]int
	}{
		{
			name: "empty",
			subs: nil,
			want: map[string]int{},
		},
		{
			name: "only approved count",
			subs: []models.Submission{
				approved("Ducks", "WEB-001"),
				approved("Geese", "ART-001"),
				{Team: "Ducks", ChallengeKey: "WEB-002", Status: models.StatusPending},
				{Team: "Geese", ChallengeKey: "SUP-001", Status: models.StatusRejected},
			},
			want: map[string]int{"Ducks": 1, "Geese": 1},
		},
		{
			name: "case-insensitive merge keeps first spelling",
			subs: []models.Submission{
				approved("Ducks", "WEB-001"),
				approved("ducks", "WEB-002"),
				approved("DUCKS", "ART-001"),
			},
			want: map[string]int{"Ducks": 3},
		},
		{
			name: "blank team dropped",
			subs: []models.Submission{
				approved("", "WEB-001"),
				approved("Geese", "ART-001"),
			},
			want: map[string]int{"Geese": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grouped := ApprovedByTeam(tt.subs)
			assert.Len(t, grouped, len(tt.want))
			for team, count := range tt.want {
				assert.Len(t, grouped[team], count, team)
			}
		})
	}
}

func TestUnclaimedGlobal(t *testing.T) {
	subs := []models.Submission{
		approved("Ducks", "WEB-001"),
		approved("Geese", "ART-001"),
	}
	keys := UnclaimedKeys(testCatalog, subs, "")
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "WEB-002")
	assert.Contains(t, keys, "SUP-001")
}

func TestUnclaimedCaseInsensitive(t *testing.T) {
	subs := []models.Submission{
		approved("ducks", "web-001"),
	}
	keys := UnclaimedKeys(testCatalog, subs, "DUCKS")
	assert.NotContains(t, keys, "WEB-001")
}

func TestRemainingByPoints(t *testing.T) {
	subs := []models.Submission{approved("Ducks", "WEB-001")}
	counts := RemainingByPoints(testCatalog, subs, "Ducks")
	assert.Equal(t, map[int]int{5: 1, 10: 1, 20: 1}, counts)
}

func TestChallengesAt(t *testing.T) {
	subs := []models.Submission{approved("Ducks", "ART-001")}
	at5 := ChallengesAt(testCatalog, subs, "Ducks", 5)
	assert.Len(t, at5, 1)
	assert.Equal(t, "WEB-001", at5[0].Key)
	assert.Empty(t, ChallengesAt(testCatalog, subs, "Ducks", 99))
}

func TestRandomUnclaimedExhausted(t *testing.T) {
	subs := []models.Submission{
		approved("Ducks", "WEB-001"),
		approved("Ducks", "WEB-002"),
		approved("Ducks", "ART-001"),
		approved("Ducks", "SUP-001"),
	}
	assert.Nil(t, RandomUnclaimed(testCatalog, subs, "Ducks"))
	assert.NotNil(t, RandomUnclaimed(testCatalog, subs, "Geese"))
}

func TestTeamPoints(t *testing.T) {
	entries := []models.LedgerEntry{
		{Team: "Ducks", Delta: 5},
		{Team: "ducks", Delta: 7},
		{Team: "Geese", Delta: 3},
		{Team: "", Delta: 100},
	}
	totals := TeamPoints(entries)
	assert.Equal(t, 12, totals["Ducks"])
	assert.Equal(t, 3, totals["Geese"])
	assert.Len(t, totals, 2)
}

func TestStandingsIncludeZeroTeams(t *testing.T) {
	entries := []models.LedgerEntry{
		{Team: "Ducks", Delta: 5},
	}
	standings := Standings(entries, []string{"Ducks", "Geese", "Herons"})
	assert.Len(t, standings, 3)
	assert.Equal(t, Standing{Team: "Ducks", Points: 5}, standings[0])
	// Zero-point teams sort alphabetically after the scorers.
	assert.Equal(t, "Geese", standings[1].Team)
	assert.Equal(t, "Herons", standings[2].Team)
}

func TestKeyPrefixes(t *testing.T) {
	assert.Equal(t, []string{"ART", "SUP", "WEB"}, KeyPrefixes(testCatalog))
}

func TestChallengesByPrefix(t *testing.T) {
	web := ChallengesByPrefix(testCatalog, "web")
	assert.Len(t, web, 2)
	assert.Equal(t, "WEB-001", web[0].Key)
}

func TestFindChallenge(t *testing.T) {
	ch := FindChallenge(testCatalog, "sup-001")
	if assert.NotNil(t, ch) {
		assert.Equal(t, "SUP-001", ch.Key)
		assert.True(t, ch.IsSurprise())
	}
	assert.Nil(t, FindChallenge(testCatalog, "NOPE-1"))
}
