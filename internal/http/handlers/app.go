package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// DonationRecorder is the ledger surface the donation handlers need.
type DonationRecorder interface {
	RecordDonation(ctx context.Context, campaignID string, amount float64, donorID string) (string, error)
}

// SessionService is the auth surface the auth handlers need.
type SessionService interface {
	SignUp(ctx context.Context, name, email, password string) (string, *domain.User, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// CampaignFeed is the live projection surface for the SSE endpoint plus the
// invalidation hook write handlers call after mutating campaigns.
type CampaignFeed interface {
	Subscribe(ctx context.Context) (<-chan []domain.Campaign, func())
	Invalidate()
}

// ImageStore is the optional blob store. A nil store degrades uploads to an
// empty URL instead of failing.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Campaigns domain.CampaignRepository
	Donations domain.DonationRepository
	Users     domain.UserRepository
	Ledger    DonationRecorder
	Auth      SessionService
	Feed      CampaignFeed
	Images    ImageStore
	Logger    zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) invalidateFeed() {
	if a.Feed != nil {
		a.Feed.Invalidate()
	}
}
