package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options carries the cross-cutting router settings.
type Options struct {
	JWTSecret       string
	CORSOrigins     []string
	RateLimitPerMin int
	Logger          zerolog.Logger
	// StaticDir, when set, is served under /static for locally stored
	// image blobs.
	StaticDir string
}

// NewRouter wires all routes. Campaign reads and the live stream are
// public; donations and profile routes need a session; campaign writes
// need the admin role on top.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Get("/live", app.CampaignsLive)
		r.Get("/{id}", app.CampaignsGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret), middleware.RequireAdmin)
			r.Post("/", app.CampaignsCreate)
			r.Patch("/{id}", app.CampaignsPatch)
			r.Delete("/{id}", app.CampaignsDelete)
		})
	})

	r.Route("/v1/auth", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Post("/signup", app.AuthSignup)
		r.Post("/signin", app.AuthSignin)
		r.Post("/signout", app.AuthSignout)
		r.Post("/reset", app.AuthPasswordReset)
		r.Post("/reset/confirm", app.AuthPasswordResetConfirm)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		r.Post("/v1/donations", app.DonationsCreate)
		r.Get("/v1/donations", app.DonationsHistory)
		r.Get("/v1/users/me", app.Me)
		r.Patch("/v1/users/me", app.UpdateMe)
		r.Post("/v1/uploads/images", app.UploadImage)
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
