// Package scoring derives team standings and remaining-challenge sets from
// worksheet snapshots. Everything here is pure: callers fetch the rows, the
// calculator never talks to the network.
package scoring

import (
	"math/rand"
	"sort"
	"strings"

	"codecomp-bot/internal/database/models"
)

// ApprovedKeys returns the set of challenge keys with at least one approved
// submission. team narrows the set to one team; pass "" for all teams.
func ApprovedKeys(subs []models.Submission, team string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, sub := range subs {
		if !sub.Status.Is(models.StatusApproved) || sub.ChallengeKey == "" {
			continue
		}
		if team != "" && !strings.EqualFold(sub.Team, team) {
			continue
		}
		keys[strings.ToUpper(sub.ChallengeKey)] = struct{}{}
	}
	return keys
}

// ApprovedByTeam groups the approved submissions by team. Team names
// compare case-insensitively; the first spelling seen wins for display.
func ApprovedByTeam(subs []models.Submission) map[string][]models.Submission {
	display := make(map[string]string)
	grouped := make(map[string][]models.Submission)
	for _, sub := range subs {
		if !sub.Status.Is(models.StatusApproved) || sub.Team == "" {
			continue
		}
		lower := strings.ToLower(sub.Team)
		if _, ok := display[lower]; !ok {
			display[lower] = sub.Team
		}
		grouped[display[lower]] = append(grouped[display[lower]], sub)
	}
	return grouped
}

// UnclaimedKeys returns the catalog keys without an approved submission for
// the given team ("" for any team).
func UnclaimedKeys(challenges []models.Challenge, subs []models.Submission, team string) map[string]struct{} {
	approved := ApprovedKeys(subs, team)
	unclaimed := make(map[string]struct{})
	for _, ch := range challenges {
		if _, ok := approved[ch.Key]; !ok {
			unclaimed[ch.Key] = struct{}{}
		}
	}
	return unclaimed
}

// Unclaimed returns the catalog entries without an approved submission for
// the given team, preserving catalog order.
func Unclaimed(challenges []models.Challenge, subs []models.Submission, team string) []models.Challenge {
	keys := UnclaimedKeys(challenges, subs, team)
	var out []models.Challenge
	for _, ch := range challenges {
		if _, ok := keys[ch.Key]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// RemainingByPoints counts the unclaimed challenges of a team grouped by
// point value.
func RemainingByPoints(challenges []models.Challenge, subs []models.Submission, team string) map[int]int {
	counts := make(map[int]int)
	for _, ch := range Unclaimed(challenges, subs, team) {
		counts[ch.Points]++
	}
	return counts
}

// ChallengesAt returns the unclaimed challenges of a team worth exactly the
// given point value, in catalog order.
func ChallengesAt(challenges []models.Challenge, subs []models.Submission, team string, points int) []models.Challenge {
	var out []models.Challenge
	for _, ch := range Unclaimed(challenges, subs, team) {
		if ch.Points == points {
			out = append(out, ch)
		}
	}
	return out
}

// RandomUnclaimed picks one unclaimed challenge uniformly, or nil when the
// team has claimed everything.
func RandomUnclaimed(challenges []models.Challenge, subs []models.Submission, team string) *models.Challenge {
	pool := Unclaimed(challenges, subs, team)
	if len(pool) == 0 {
		return nil
	}
	ch := pool[rand.Intn(len(pool))]
	return &ch
}

// TeamPoints sums ledger deltas per team. Team names compare
// case-insensitively; the first spelling seen wins for display.
func TeamPoints(entries []models.LedgerEntry) map[string]int {
	display := make(map[string]string)
	totals := make(map[string]int)
	for _, e := range entries {
		if e.Team == "" {
			continue
		}
		lower := strings.ToLower(e.Team)
		if _, ok := display[lower]; !ok {
			display[lower] = e.Team
		}
		totals[display[lower]] += e.Delta
	}
	return totals
}

// Standing is one leaderboard line.
type Standing struct {
	Team   string
	Points int
}

// Standings merges ledger totals with the roster teams so teams at zero
// still appear, sorted by points descending then name.
func Standings(entries []models.LedgerEntry, teams []string) []Standing {
	totals := TeamPoints(entries)
	byLower := make(map[string]Standing)
	for team, pts := range totals {
		byLower[strings.ToLower(team)] = Standing{Team: team, Points: pts}
	}
	for _, team := range teams {
		lower := strings.ToLower(team)
		if _, ok := byLower[lower]; !ok {
			byLower[lower] = Standing{Team: team}
		}
	}
	standings := make([]Standing, 0, len(byLower))
	for _, s := range byLower {
		standings = append(standings, s)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Team < standings[j].Team
	})
	return standings
}

// KeyPrefixes returns the distinct catalog key prefixes in sorted order.
func KeyPrefixes(challenges []models.Challenge) []string {
	seen := make(map[string]struct{})
	var prefixes []string
	for _, ch := range challenges {
		p := ch.KeyPrefix()
		if p == "" {
			continue
		}
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			prefixes = append(prefixes, p)
		}
	}
	sort.Strings(prefixes)
	return prefixes
}

// ChallengesByPrefix returns the catalog entries under one key prefix, in
// catalog order.
func ChallengesByPrefix(challenges []models.Challenge, prefix string) []models.Challenge {
	var out []models.Challenge
	for _, ch := range challenges {
		if strings.EqualFold(ch.KeyPrefix(), prefix) {
			out = append(out, ch)
		}
	}
	return out
}

// FindChallenge looks up a catalog entry by key, case-insensitively.
func FindChallenge(challenges []models.Challenge, key string) *models.Challenge {
	for _, ch := range challenges {
		if strings.EqualFold(ch.Key, key) {
			found := ch
			return &found
		}
	}
	return nil
}
