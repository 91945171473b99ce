package database

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/getsentry/sentry-go"

	"codecomp-bot/internal/database/models"
)

const membersSheet = "Members"

// SheetMemberRepository implements MemberRepository on the Members
// worksheet.
type SheetMemberRepository struct {
	client *SheetsClient
}

// NewSheetMemberRepository creates a new repository instance.
func NewSheetMemberRepository(client *SheetsClient) *SheetMemberRepository {
	return &SheetMemberRepository{client: client}
}

// Members returns the full roster. Read failures degrade to an empty slice.
func (r *SheetMemberRepository) Members(ctx context.Context) []models.Member {
	rows, err := r.client.readRows(ctx, membersSheet+"!A2:C")
	if err != nil {
		log.Printf("[MemberRepo] Failed to read members: %v", err)
		sentry.CaptureException(err)
		return nil
	}
	members := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		m := memberFromRow(row)
		if m.UserID == 0 && m.Name == "" {
			continue
		}
		members = append(members, m)
	}
	return members
}

// TeamOf returns the team of the given user.
func (r *SheetMemberRepository) TeamOf(ctx context.Context, userID int64) (string, bool) {
	for _, m := range r.Members(ctx) {
		if m.UserID == userID && m.Team != "" {
			return m.Team, true
		}
	}
	return "", false
}

// DisplayName returns the roster name of the user, or "" when unknown.
func (r *SheetMemberRepository) DisplayName(ctx context.Context, userID int64) string {
	for _, m := range r.Members(ctx) {
		if m.UserID == userID {
			return m.Name
		}
	}
	return ""
}

// Teams returns the distinct team names in sorted order.
func (r *SheetMemberRepository) Teams(ctx context.Context) []string {
	seen := make(map[string]string)
	for _, m := range r.Members(ctx) {
		if m.Team == "" {
			continue
		}
		seen[strings.ToLower(m.Team)] = m.Team
	}
	teams := make([]string, 0, len(seen))
	for _, name := range seen {
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return teams
}
