package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/validate"
)

// Amount arrives as a string, the same as campaign goal amounts, so the
// validator owns every malformed-input message instead of the JSON decoder.
type donationRequest struct {
	CampaignID string `json:"campaign_id"`
	Amount     string `json:"amount"`
}

type donationDTO struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
}

// DonationsCreate validates the amount and runs the ledger transaction.
// Campaign-not-found aborts with no partial effect; transient store
// failures come back 503 with a retryable hint.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.CampaignID == "" {
		a.error(w, http.StatusBadRequest, "validation", "Campaign is required")
		return
	}
	if msg := validate.DonationAmountError(req.Amount); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	amount, _ := strconv.ParseFloat(strings.TrimSpace(req.Amount), 64)

	donorID := middleware.UserIDFromContext(r.Context())
	if donorID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue")
		return
	}

	id, err := a.Ledger.RecordDonation(r.Context(), req.CampaignID, amount, donorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCampaignNotFound):
			a.error(w, http.StatusNotFound, "not_found", "Campaign not found")
		case errors.Is(err, domain.ErrTransientStore):
			a.error(w, http.StatusServiceUnavailable, "retryable", "Network error. Please check your internet connection")
		default:
			a.Logger.Error().Err(err).Msg("record donation failed")
			a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		}
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"id": id})
}

// DonationsHistory returns the caller's donations, most recent first.
// Donations referencing deleted campaigns are included; history outlives
// the campaign.
func (a *App) DonationsHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue")
		return
	}

	donations, err := a.Donations.ListByUser(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list donations failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}

	items := make([]donationDTO, 0, len(donations))
	for _, d := range donations {
		items = append(items, donationDTO{
			ID:         d.ID,
			CampaignID: d.CampaignID,
			UserID:     d.UserID,
			Amount:     d.Amount,
			Date:       d.Date,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
