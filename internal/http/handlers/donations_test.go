package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code, body.Error.Message
}

func TestDonationsCreate(t *testing.T) {
	ta := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"campaign_id":"c1","amount":"25.50"}`))
	rec := ta.serve(asUser(req, "donor-1", "user"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.ID == "" {
		t.Fatalf("response = %s", rec.Body.String())
	}
	if len(ta.donations.donations) != 1 {
		t.Fatalf("donations = %d, want 1", len(ta.donations.donations))
	}
	d := ta.donations.donations[0]
	if d.CampaignID != "c1" || d.UserID != "donor-1" || d.Amount != 25.50 {
		t.Fatalf("donation = %+v", d)
	}
}

func TestDonationsCreateTrimsAmount(t *testing.T) {
	ta := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"campaign_id":"c1","amount":" 10 "}`))
	rec := ta.serve(asUser(req, "donor-1", "user"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ta.donations.donations[0].Amount != 10 {
		t.Fatalf("amount = %v, want 10", ta.donations.donations[0].Amount)
	}
}

func TestDonationsCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		message string
	}{
		{"missing campaign", `{"amount":"10"}`, "Campaign is required"},
		{"zero amount", `{"campaign_id":"c1","amount":"0"}`, "Minimum donation amount is $0.01"},
		{"over maximum", `{"campaign_id":"c1","amount":"1000001"}`, "Maximum donation amount is $1000000.00"},
		{"empty amount", `{"campaign_id":"c1","amount":""}`, "Amount is required"},
		{"garbage amount", `{"campaign_id":"c1","amount":"abc"}`, "Invalid amount format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp()
			req := httptest.NewRequest(http.MethodPost, "/v1/donations", strings.NewReader(tc.payload))
			rec := ta.serve(asUser(req, "donor-1", "user"))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("code = %d, want 400", rec.Code)
			}
			if _, msg := decodeError(t, rec); msg != tc.message {
				t.Fatalf("message = %q, want %q", msg, tc.message)
			}
			if len(ta.donations.donations) != 0 {
				t.Fatal("rejected donation was recorded")
			}
		})
	}
}

func TestDonationsCreateCampaignNotFound(t *testing.T) {
	ta := newTestApp()
	ta.recorder.err = domain.ErrCampaignNotFound

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"campaign_id":"missing","amount":"10"}`))
	rec := ta.serve(asUser(req, "donor-1", "user"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != "Campaign not found" {
		t.Fatalf("message = %q", msg)
	}
}

func TestDonationsCreateTransientFailure(t *testing.T) {
	ta := newTestApp()
	ta.recorder.err = domain.ErrTransientStore

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"campaign_id":"c1","amount":"10"}`))
	rec := ta.serve(asUser(req, "donor-1", "user"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != "retryable" {
		t.Fatalf("code = %q, want retryable", code)
	}
}

func TestDonationsHistoryOwnRecordsOnly(t *testing.T) {
	ta := newTestApp()
	ctx := context.Background()
	_, _ = ta.donations.Record(ctx, "c1", 10, "donor-1")
	_, _ = ta.donations.Record(ctx, "c1", 20, "donor-2")
	_, _ = ta.donations.Record(ctx, "c2", 30, "donor-1")

	req := httptest.NewRequest(http.MethodGet, "/v1/donations", nil)
	rec := ta.serve(asUser(req, "donor-1", "user"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp struct {
		Items []donationDTO `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
	// Most recent first.
	if resp.Items[0].CampaignID != "c2" || resp.Items[1].CampaignID != "c1" {
		t.Fatalf("order = %+v", resp.Items)
	}
}
