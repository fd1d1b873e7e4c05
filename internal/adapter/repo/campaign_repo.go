package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// CampaignRepositoryPG implements domain.CampaignRepository backed by
// PostgreSQL.
type CampaignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new CampaignRepositoryPG.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{pool: pool}
}

const campaignColumns = `id, title, description, goal_amount, collected_amount, image_url, created_at, created_by`

// Create inserts a new campaign with a zero collected total and returns the
// generated id.
func (r *CampaignRepositoryPG) Create(ctx context.Context, campaign *domain.Campaign) (string, error) {
	id := uuid.NewString()
	err := r.pool.QueryRow(ctx, `
INSERT INTO campaigns (id, title, description, goal_amount, collected_amount, image_url, created_by)
VALUES ($1, $2, $3, $4, 0, $5, $6)
RETURNING id;
`, id, campaign.Title, campaign.Description, campaign.GoalAmount, campaign.ImageURL, campaign.CreatedBy).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return id, nil
}

// GetByID fetches a single campaign.
func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

// List returns all campaigns ordered by creation time, newest first.
func (r *CampaignRepositoryPG) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.GoalAmount, &c.CollectedAmount, &c.ImageURL, &c.CreatedAt, &c.CreatedBy); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Patch applies a field-scoped update. Only columns named by the patch are
// written; collected_amount is not reachable from here, so an admin edit can
// never clobber an in-flight donation total.
func (r *CampaignRepositoryPG) Patch(ctx context.Context, id string, patch domain.CampaignPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	sets := make([]string, 0, 4)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.GoalAmount != nil {
		add("goal_amount", *patch.GoalAmount)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("patch campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

// Delete removes the campaign. Donation records referencing it are left in
// place so donor history survives.
func (r *CampaignRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.GoalAmount, &c.CollectedAmount, &c.ImageURL, &c.CreatedAt, &c.CreatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return &c, nil
}
