package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/live"
	"server/internal/middleware"
	"server/internal/validate"
)

type campaignDTO struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	GoalAmount         float64   `json:"goal_amount"`
	CollectedAmount    float64   `json:"collected_amount"`
	ImageURL           string    `json:"image_url"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedBy          string    `json:"created_by"`
	ProgressPercentage int       `json:"progress_percentage"`
	IsGoalReached      bool      `json:"is_goal_reached"`
}

func toCampaignDTO(c domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:                 c.ID,
		Title:              c.Title,
		Description:        c.Description,
		GoalAmount:         c.GoalAmount,
		CollectedAmount:    c.CollectedAmount,
		ImageURL:           c.ImageURL,
		CreatedAt:          c.CreatedAt,
		CreatedBy:          c.CreatedBy,
		ProgressPercentage: c.ProgressPercentage(),
		IsGoalReached:      c.IsGoalReached(),
	}
}

func toCampaignDTOs(items []domain.Campaign) []campaignDTO {
	out := make([]campaignDTO, 0, len(items))
	for _, c := range items {
		out = append(out, toCampaignDTO(c))
	}
	return out
}

// CampaignsList returns the current campaign snapshot, newest first. The
// optional q parameter applies the caseless title/description filter on the
// snapshot, without another store round-trip.
func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Campaigns.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list campaigns failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		items = live.Search(q, items)
	}
	a.json(w, http.StatusOK, map[string]any{"items": toCampaignDTOs(items)})
}

// CampaignsLive streams campaign snapshots as server-sent events: the
// current list on connect, then a fresh full list after every change.
// Closing the connection cancels the subscription.
func (a *App) CampaignsLive(w http.ResponseWriter, r *http.Request) {
	if a.Feed == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "live updates are not enabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The server-wide write timeout would sever long-lived streams.
	rc := http.NewResponseController(w)

	ch, stop := a.Feed.Subscribe(r.Context())
	defer stop()

	for snapshot := range ch {
		payload, err := json.Marshal(toCampaignDTOs(snapshot))
		if err != nil {
			a.Logger.Error().Err(err).Msg("encode live snapshot failed")
			return
		}
		_ = rc.SetWriteDeadline(time.Now().Add(30 * time.Second))
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

// CampaignsGet returns one campaign with its derived progress fields.
func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	campaign, err := a.Campaigns.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		a.Logger.Error().Err(err).Msg("get campaign failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	a.json(w, http.StatusOK, toCampaignDTO(*campaign))
}

type campaignCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GoalAmount  string `json:"goal_amount"`
	ImageURL    string `json:"image_url"`
}

// CampaignsCreate creates a campaign with a zero collected total. Admin
// only (enforced by the router).
func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req campaignCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if msg := validate.CampaignTitleError(req.Title); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if msg := validate.CampaignDescriptionError(req.Description); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if msg := validate.CampaignGoalError(req.GoalAmount); msg != "" {
		a.error(w, http.StatusBadRequest, "validation", msg)
		return
	}
	goal, _ := strconv.ParseFloat(req.GoalAmount, 64)

	campaign := &domain.Campaign{
		Title:       validate.SanitizeInput(req.Title),
		Description: validate.SanitizeDescription(req.Description),
		GoalAmount:  goal,
		ImageURL:    req.ImageURL,
		CreatedBy:   middleware.UserIDFromContext(r.Context()),
	}
	id, err := a.Campaigns.Create(r.Context(), campaign)
	if err != nil {
		a.Logger.Error().Err(err).Msg("create campaign failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	a.invalidateFeed()
	a.json(w, http.StatusCreated, map[string]any{"id": id})
}

type campaignPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GoalAmount  *string `json:"goal_amount"`
	ImageURL    *string `json:"image_url"`
}

// CampaignsPatch applies an admin edit. Only the fields present in the
// request body are written, via a field-scoped update, so a concurrent
// donation can never be clobbered: the collected total is not expressible
// in a patch.
func (a *App) CampaignsPatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req campaignPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var patch domain.CampaignPatch
	if req.Title != nil {
		if msg := validate.CampaignTitleError(*req.Title); msg != "" {
			a.error(w, http.StatusBadRequest, "validation", msg)
			return
		}
		title := validate.SanitizeInput(*req.Title)
		patch.Title = &title
	}
	if req.Description != nil {
		if msg := validate.CampaignDescriptionError(*req.Description); msg != "" {
			a.error(w, http.StatusBadRequest, "validation", msg)
			return
		}
		description := validate.SanitizeDescription(*req.Description)
		patch.Description = &description
	}
	if req.GoalAmount != nil {
		if msg := validate.CampaignGoalError(*req.GoalAmount); msg != "" {
			a.error(w, http.StatusBadRequest, "validation", msg)
			return
		}
		// Lowering the goal below the collected total is allowed; progress
		// display clamps at 100.
		goal, _ := strconv.ParseFloat(*req.GoalAmount, 64)
		patch.GoalAmount = &goal
	}
	if req.ImageURL != nil {
		patch.ImageURL = req.ImageURL
	}
	if patch.IsEmpty() {
		a.error(w, http.StatusBadRequest, "bad_request", "no fields to update")
		return
	}

	if err := a.Campaigns.Patch(r.Context(), id, patch); err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		a.Logger.Error().Err(err).Msg("patch campaign failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	a.invalidateFeed()
	w.WriteHeader(http.StatusNoContent)
}

// CampaignsDelete removes a campaign. Its image blob is deleted best-effort
// and its donation records are left untouched so donor history survives.
func (a *App) CampaignsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := a.Campaigns.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load campaign for delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}

	if err := a.Campaigns.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete campaign failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}

	if a.Images != nil && campaign.ImageURL != "" {
		if err := a.Images.Delete(r.Context(), campaign.ImageURL); err != nil {
			a.Logger.Warn().Err(err).Str("campaign_id", id).Msg("campaign image cleanup failed")
		}
	}

	a.invalidateFeed()
	w.WriteHeader(http.StatusNoContent)
}
