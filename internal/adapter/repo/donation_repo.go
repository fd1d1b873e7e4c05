package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// Record runs the ledger transaction: lock the campaign row, read its
// current total (NULL counts as zero), write total+amount back, and insert
// the donation record. Everything commits together or not at all; the row
// lock serializes concurrent donors to the same campaign, so no increment
// is ever lost.
//
// Returns domain.ErrCampaignNotFound when the campaign id does not resolve.
// Other failures come back raw; the ledger service owns retry and mapping.
func (r *DonationRepositoryPG) Record(ctx context.Context, campaignID string, amount float64, donorID string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var collected float64
	err = tx.QueryRow(ctx, `
SELECT COALESCE(collected_amount, 0)
FROM campaigns
WHERE id = $1
FOR UPDATE;
`, campaignID).Scan(&collected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrCampaignNotFound
		}
		return "", fmt.Errorf("read campaign total: %w", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE campaigns SET collected_amount = $2 WHERE id = $1;
`, campaignID, collected+amount); err != nil {
		return "", fmt.Errorf("update campaign total: %w", err)
	}

	donationID := uuid.NewString()
	if _, err := tx.Exec(ctx, `
INSERT INTO donations (id, campaign_id, user_id, amount)
VALUES ($1, $2, $3, $4);
`, donationID, campaignID, donorID, amount); err != nil {
		return "", fmt.Errorf("insert donation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit ledger tx: %w", err)
	}
	return donationID, nil
}

// ListByUser returns the user's donations, most recent first.
func (r *DonationRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, campaign_id, user_id, amount, date
FROM donations
WHERE user_id = $1
ORDER BY date DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.UserID, &d.Amount, &d.Date); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
