package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
)

type fakeCampaignRepo struct {
	mu    sync.Mutex
	items []domain.Campaign
}

func (r *fakeCampaignRepo) Create(_ context.Context, campaign *domain.Campaign) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("campaign-%d", len(r.items)+1)
	c := *campaign
	c.ID = id
	c.CreatedAt = time.Now()
	r.items = append([]domain.Campaign{c}, r.items...)
	return id, nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			c := r.items[i]
			return &c, nil
		}
	}
	return nil, domain.ErrCampaignNotFound
}

func (r *fakeCampaignRepo) List(_ context.Context) ([]domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Campaign, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *fakeCampaignRepo) Patch(_ context.Context, id string, patch domain.CampaignPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID != id {
			continue
		}
		if patch.Title != nil {
			r.items[i].Title = *patch.Title
		}
		if patch.Description != nil {
			r.items[i].Description = *patch.Description
		}
		if patch.GoalAmount != nil {
			r.items[i].GoalAmount = *patch.GoalAmount
		}
		if patch.ImageURL != nil {
			r.items[i].ImageURL = *patch.ImageURL
		}
		return nil
	}
	return domain.ErrCampaignNotFound
}

func (r *fakeCampaignRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrCampaignNotFound
}

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations []domain.Donation
	recordErr error
}

func (r *fakeDonationRepo) Record(_ context.Context, campaignID string, amount float64, donorID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return "", r.recordErr
	}
	id := fmt.Sprintf("donation-%d", len(r.donations)+1)
	r.donations = append(r.donations, domain.Donation{
		ID:         id,
		CampaignID: campaignID,
		UserID:     donorID,
		Amount:     amount,
		Date:       time.Now(),
	})
	return id, nil
}

func (r *fakeDonationRepo) ListByUser(_ context.Context, userID string) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Donation, 0, len(r.donations))
	for i := len(r.donations) - 1; i >= 0; i-- {
		if r.donations[i].UserID == userID {
			out = append(out, r.donations[i])
		}
	}
	return out, nil
}

// fakeRecorder fronts the ledger surface with a scripted error.
type fakeRecorder struct {
	repo *fakeDonationRepo
	err  error
}

func (f *fakeRecorder) RecordDonation(ctx context.Context, campaignID string, amount float64, donorID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.repo.Record(ctx, campaignID, amount, donorID)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Patch(_ context.Context, id string, patch domain.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.ProfileImage != nil {
		u.ProfileImage = *patch.ProfileImage
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) CreatePasswordReset(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (r *fakeUserRepo) ConsumePasswordReset(_ context.Context, _ string) (string, error) {
	return "", domain.ErrResetTokenInvalid
}

type fakeFeed struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeFeed) Subscribe(_ context.Context) (<-chan []domain.Campaign, func()) {
	ch := make(chan []domain.Campaign)
	close(ch)
	return ch, func() {}
}

func (f *fakeFeed) Invalidate() {
	f.mu.Lock()
	f.invalidations++
	f.mu.Unlock()
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}

type fakeSession struct {
	signUpErr error
	signInErr error
	resetErr  error
	user      *domain.User
}

func (s *fakeSession) SignUp(_ context.Context, name, email, _ string) (string, *domain.User, error) {
	if s.signUpErr != nil {
		return "", nil, s.signUpErr
	}
	u := &domain.User{ID: "user-1", Name: name, Email: email, Role: domain.UserRoleUser}
	return "token", u, nil
}

func (s *fakeSession) SignIn(_ context.Context, email, _ string) (string, *domain.User, error) {
	if s.signInErr != nil {
		return "", nil, s.signInErr
	}
	u := s.user
	if u == nil {
		u = &domain.User{ID: "user-1", Email: email, Role: domain.UserRoleUser}
	}
	return "token", u, nil
}

func (s *fakeSession) RequestPasswordReset(_ context.Context, _ string) error {
	return s.resetErr
}

func (s *fakeSession) ConfirmPasswordReset(_ context.Context, _, _ string) error {
	return s.resetErr
}

type testApp struct {
	app       *App
	campaigns *fakeCampaignRepo
	donations *fakeDonationRepo
	recorder  *fakeRecorder
	users     *fakeUserRepo
	feed      *fakeFeed
	session   *fakeSession
}

func newTestApp() *testApp {
	campaigns := &fakeCampaignRepo{}
	donations := &fakeDonationRepo{}
	recorder := &fakeRecorder{repo: donations}
	users := newFakeUserRepo()
	feed := &fakeFeed{}
	session := &fakeSession{}
	return &testApp{
		app: &App{
			Campaigns: campaigns,
			Donations: donations,
			Users:     users,
			Ledger:    recorder,
			Auth:      session,
			Feed:      feed,
			Logger:    zerolog.Nop(),
		},
		campaigns: campaigns,
		donations: donations,
		recorder:  recorder,
		users:     users,
		feed:      feed,
		session:   session,
	}
}

// serve runs the request through a chi router so URL params resolve.
func (ta *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/v1/campaigns", ta.app.CampaignsList)
	r.Get("/v1/campaigns/{id}", ta.app.CampaignsGet)
	r.Post("/v1/campaigns", ta.app.CampaignsCreate)
	r.Patch("/v1/campaigns/{id}", ta.app.CampaignsPatch)
	r.Delete("/v1/campaigns/{id}", ta.app.CampaignsDelete)
	r.Post("/v1/donations", ta.app.DonationsCreate)
	r.Get("/v1/donations", ta.app.DonationsHistory)
	r.Get("/v1/users/me", ta.app.Me)
	r.Patch("/v1/users/me", ta.app.UpdateMe)
	r.Post("/v1/uploads/images", ta.app.UploadImage)
	r.Post("/v1/auth/signup", ta.app.AuthSignup)
	r.Post("/v1/auth/signin", ta.app.AuthSignin)
	r.Post("/v1/auth/reset", ta.app.AuthPasswordReset)
	r.Post("/v1/auth/reset/confirm", ta.app.AuthPasswordResetConfirm)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func asUser(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), userID, role))
}
