package domain

import (
	"context"
	"time"
)

// CampaignRepository defines access methods for campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) (string, error)
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	Patch(ctx context.Context, id string, patch CampaignPatch) error
	Delete(ctx context.Context, id string) error
}

// DonationRepository handles donation persistence. Record is the only write
// path: it atomically creates the donation and increments the campaign's
// collected total in one transaction.
type DonationRepository interface {
	Record(ctx context.Context, campaignID string, amount float64, donorID string) (string, error)
	ListByUser(ctx context.Context, userID string) ([]Donation, error)
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Patch(ctx context.Context, id string, patch UserPatch) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	CreatePasswordReset(ctx context.Context, userID string, token string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, token string) (string, error)
}
