package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/api/sheets/v4"

	"codecomp-bot/internal/database/models"
)

const submissionsSheet = "Submissions"

// SheetSubmissionRepository implements SubmissionRepository on the
// Submissions worksheet.
type SheetSubmissionRepository struct {
	client *SheetsClient
}

// NewSheetSubmissionRepository creates a new repository instance.
func NewSheetSubmissionRepository(client *SheetsClient) *SheetSubmissionRepository {
	return &SheetSubmissionRepository{client: client}
}

// rows reads every data row. Read failures are logged and degrade to an
// empty result so callers see an empty queue, never a crash.
func (r *SheetSubmissionRepository) rows(ctx context.Context) [][]interface{} {
	rows, err := r.client.readRows(ctx, submissionsSheet+"!A2:K")
	if err != nil {
		log.Printf("[SubmissionRepo] Failed to read submissions: %v", err)
		sentry.CaptureException(err)
		return nil
	}
	return rows
}

// CreateSubmission appends a new pending submission row.
func (r *SheetSubmissionRepository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}
	if err := r.client.appendRow(ctx, submissionsSheet+"!A:K", submissionToRow(sub)); err != nil {
		return fmt.Errorf("failed to create submission %s: %w", sub.ID, err)
	}
	return nil
}

// GetSubmissionByID returns the submission with the given ID.
func (r *SheetSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	for _, row := range r.rows(ctx) {
		if cellString(row, subColID) == id {
			sub := submissionFromRow(row)
			return &sub, nil
		}
	}
	return nil, ErrSubmissionNotFound
}

// NextPending returns the oldest pending submission in sheet order.
func (r *SheetSubmissionRepository) NextPending(ctx context.Context) (*models.Submission, error) {
	for _, row := range r.rows(ctx) {
		sub := submissionFromRow(row)
		if sub.IsPending() {
			return &sub, nil
		}
	}
	return nil, ErrSubmissionNotFound
}

// PendingCount returns how many submissions await review.
func (r *SheetSubmissionRepository) PendingCount(ctx context.Context) int {
	count := 0
	for _, row := range r.rows(ctx) {
		sub := submissionFromRow(row)
		if sub.IsPending() {
			count++
		}
	}
	return count
}

// ExistsForOrigin reports whether a submission was already recorded for the
// given source message.
func (r *SheetSubmissionRepository) ExistsForOrigin(ctx context.Context, origin models.MessageRef) bool {
	if origin.IsZero() {
		return false
	}
	for _, row := range r.rows(ctx) {
		if cellString(row, subColOrigin) == origin.String() {
			return true
		}
	}
	return false
}

// Submissions returns every submission row.
func (r *SheetSubmissionRepository) Submissions(ctx context.Context) []models.Submission {
	rows := r.rows(ctx)
	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, submissionFromRow(row))
	}
	return subs
}

// UpdateStatus writes the review outcome onto the submission row. Only the
// outcome cells are touched so concurrent edits to other columns survive.
// Returns false when the row is missing or the write fails.
func (r *SheetSubmissionRepository) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewedBy string, challengeKey *string, points *int) bool {
	rowNum := 0
	for i, row := range r.rows(ctx) {
		if cellString(row, subColID) == id {
			rowNum = i + 2
			break
		}
	}
	if rowNum == 0 {
		log.Printf("[SubmissionRepo] UpdateStatus: submission %s not found", id)
		return false
	}

	data := []*sheets.ValueRange{
		{Range: fmt.Sprintf("%s!H%d", submissionsSheet, rowNum), Values: [][]interface{}{{string(status)}}},
		{Range: fmt.Sprintf("%s!K%d", submissionsSheet, rowNum), Values: [][]interface{}{{reviewedBy}}},
	}
	if challengeKey != nil {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!I%d", submissionsSheet, rowNum),
			Values: [][]interface{}{{*challengeKey}},
		})
	}
	if points != nil {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!J%d", submissionsSheet, rowNum),
			Values: [][]interface{}{{*points}},
		})
	}
	if err := r.client.batchUpdate(ctx, data); err != nil {
		log.Printf("[SubmissionRepo] UpdateStatus: failed to update submission %s: %v", id, err)
		sentry.CaptureException(err)
		return false
	}
	return true
}

// ResetAll deletes every submission row, keeping the header.
func (r *SheetSubmissionRepository) ResetAll(ctx context.Context) error {
	if err := r.client.clearRange(ctx, submissionsSheet+"!A2:K"); err != nil {
		return fmt.Errorf("failed to reset submissions: %w", err)
	}
	return nil
}
