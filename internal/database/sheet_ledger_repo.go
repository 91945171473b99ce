package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"codecomp-bot/internal/database/models"
)

const ledgerSheet = "Ledger"

// SheetLedgerRepository implements LedgerRepository on the Ledger worksheet.
type SheetLedgerRepository struct {
	client *SheetsClient
}

// NewSheetLedgerRepository creates a new repository instance.
func NewSheetLedgerRepository(client *SheetsClient) *SheetLedgerRepository {
	return &SheetLedgerRepository{client: client}
}

// AppendEntry appends one scoring event. The ledger is append-only; entries
// are never edited after the fact.
func (r *SheetLedgerRepository) AppendEntry(ctx context.Context, entry models.LedgerEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	if err := r.client.appendRow(ctx, ledgerSheet+"!A:F", ledgerEntryToRow(entry)); err != nil {
		return fmt.Errorf("failed to append ledger entry for %s: %w", entry.Team, err)
	}
	return nil
}

// Entries returns every ledger row. Read failures degrade to an empty slice.
func (r *SheetLedgerRepository) Entries(ctx context.Context) []models.LedgerEntry {
	rows, err := r.client.readRows(ctx, ledgerSheet+"!A2:F")
	if err != nil {
		log.Printf("[LedgerRepo] Failed to read ledger: %v", err)
		sentry.CaptureException(err)
		return nil
	}
	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ledgerEntryFromRow(row))
	}
	return entries
}

// Reset deletes every ledger row, keeping the header.
func (r *SheetLedgerRepository) Reset(ctx context.Context) error {
	if err := r.client.clearRange(ctx, ledgerSheet+"!A2:F"); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	return nil
}
