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

func seedCampaign(ta *testApp, title, description string, goal, collected float64) string {
	id, _ := ta.campaigns.Create(context.Background(), &domain.Campaign{
		Title:       title,
		Description: description,
		GoalAmount:  goal,
		CreatedBy:   "admin-1",
	})
	for i := range ta.campaigns.items {
		if ta.campaigns.items[i].ID == id {
			ta.campaigns.items[i].CollectedAmount = collected
		}
	}
	return id
}

func TestCampaignsListWithProgress(t *testing.T) {
	ta := newTestApp()
	seedCampaign(ta, "Flood Recovery", "Rebuilding homes", 1000, 250)

	rec := ta.serve(httptest.NewRequest(http.MethodGet, "/v1/campaigns", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp struct {
		Items []campaignDTO `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %d", len(resp.Items))
	}
	c := resp.Items[0]
	if c.ProgressPercentage != 25 {
		t.Fatalf("progress = %d, want 25", c.ProgressPercentage)
	}
	if c.IsGoalReached {
		t.Fatal("goal should not be reached")
	}
}

func TestCampaignsListSearchFilter(t *testing.T) {
	ta := newTestApp()
	seedCampaign(ta, "Warzone Relief", "Emergency aid", 1000, 0)
	seedCampaign(ta, "School Lunches", "Meals for kids", 500, 0)

	rec := ta.serve(httptest.NewRequest(http.MethodGet, "/v1/campaigns?q=war", nil))
	var resp struct {
		Items []campaignDTO `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Warzone Relief" {
		t.Fatalf("items = %+v", resp.Items)
	}
}

func TestCampaignsGetNotFound(t *testing.T) {
	ta := newTestApp()
	rec := ta.serve(httptest.NewRequest(http.MethodGet, "/v1/campaigns/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if _, msg := decodeError(t, rec); msg != "Campaign not found" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCampaignsCreate(t *testing.T) {
	ta := newTestApp()

	body := `{"title":"Flood Recovery","description":"Rebuilding homes after the flood","goal_amount":"1000"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", strings.NewReader(body))
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(ta.campaigns.items) != 1 {
		t.Fatalf("campaigns = %d", len(ta.campaigns.items))
	}
	c := ta.campaigns.items[0]
	if c.CollectedAmount != 0 {
		t.Fatalf("collected = %v, want 0", c.CollectedAmount)
	}
	if c.CreatedBy != "admin-1" {
		t.Fatalf("created_by = %q", c.CreatedBy)
	}
	if ta.feed.count() != 1 {
		t.Fatalf("feed invalidations = %d, want 1", ta.feed.count())
	}
}

func TestCampaignsCreateSanitizesMarkup(t *testing.T) {
	ta := newTestApp()

	body := `{"title":"<b>Help</b> now","description":"Urgent <script>alert(1)</script> appeal","goal_amount":"500"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", strings.NewReader(body))
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	c := ta.campaigns.items[0]
	if strings.ContainsAny(c.Title, "<>") || strings.ContainsAny(c.Description, "<>") {
		t.Fatalf("markup survived: %q / %q", c.Title, c.Description)
	}
}

func TestCampaignsCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		message string
	}{
		{"short title", `{"title":"ab","description":"A long enough description","goal_amount":"100"}`, "Title must be at least 3 characters"},
		{"short description", `{"title":"Valid","description":"short","goal_amount":"100"}`, "Description must be at least 10 characters"},
		{"zero goal", `{"title":"Valid","description":"A long enough description","goal_amount":"0"}`, "Minimum goal amount is $1.00"},
		{"missing goal", `{"title":"Valid","description":"A long enough description"}`, "Goal amount is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp()
			req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", strings.NewReader(tc.payload))
			rec := ta.serve(asUser(req, "admin-1", "admin"))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("code = %d, want 400", rec.Code)
			}
			if _, msg := decodeError(t, rec); msg != tc.message {
				t.Fatalf("message = %q, want %q", msg, tc.message)
			}
		})
	}
}

func TestCampaignsPatchFieldScoped(t *testing.T) {
	ta := newTestApp()
	id := seedCampaign(ta, "Original Title", "Original description text", 1000, 400)

	req := httptest.NewRequest(http.MethodPatch, "/v1/campaigns/"+id,
		strings.NewReader(`{"title":"New Title"}`))
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	c, _ := ta.campaigns.GetByID(context.Background(), id)
	if c.Title != "New Title" {
		t.Fatalf("title = %q", c.Title)
	}
	if c.Description != "Original description text" {
		t.Fatalf("description changed: %q", c.Description)
	}
	if c.CollectedAmount != 400 {
		t.Fatalf("collected = %v, want untouched 400", c.CollectedAmount)
	}
	if ta.feed.count() != 1 {
		t.Fatalf("feed invalidations = %d, want 1", ta.feed.count())
	}
}

func TestCampaignsPatchIgnoresCollectedAmount(t *testing.T) {
	ta := newTestApp()
	id := seedCampaign(ta, "Original Title", "Original description text", 1000, 400)

	// collected_amount is not a patchable field; a body carrying only it is
	// an empty patch.
	req := httptest.NewRequest(http.MethodPatch, "/v1/campaigns/"+id,
		strings.NewReader(`{"collected_amount":9999}`))
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}

	c, _ := ta.campaigns.GetByID(context.Background(), id)
	if c.CollectedAmount != 400 {
		t.Fatalf("collected = %v, want untouched 400", c.CollectedAmount)
	}
}

func TestCampaignsPatchGoalBelowCollected(t *testing.T) {
	ta := newTestApp()
	id := seedCampaign(ta, "Original Title", "Original description text", 1000, 400)

	req := httptest.NewRequest(http.MethodPatch, "/v1/campaigns/"+id,
		strings.NewReader(`{"goal_amount":"200"}`))
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	c, _ := ta.campaigns.GetByID(context.Background(), id)
	if c.GoalAmount != 200 {
		t.Fatalf("goal = %v, want 200", c.GoalAmount)
	}
	// Display clamps rather than erroring.
	if c.ProgressPercentage() != 100 {
		t.Fatalf("progress = %d, want clamped 100", c.ProgressPercentage())
	}
	if !c.IsGoalReached() {
		t.Fatal("goal should read as reached")
	}
}

func TestCampaignsDelete(t *testing.T) {
	ta := newTestApp()
	id := seedCampaign(ta, "Short Lived", "A campaign to be removed", 100, 0)

	req := httptest.NewRequest(http.MethodDelete, "/v1/campaigns/"+id, nil)
	rec := ta.serve(asUser(req, "admin-1", "admin"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d", rec.Code)
	}
	if _, err := ta.campaigns.GetByID(context.Background(), id); err == nil {
		t.Fatal("campaign still present")
	}
	if ta.feed.count() != 1 {
		t.Fatalf("feed invalidations = %d, want 1", ta.feed.count())
	}

	// Deleting again reports not found.
	rec = ta.serve(asUser(httptest.NewRequest(http.MethodDelete, "/v1/campaigns/"+id, nil), "admin-1", "admin"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: code = %d, want 404", rec.Code)
	}
}
