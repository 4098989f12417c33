package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"invitationadmin/internal/delivery/http/controllers"
	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Logger         *slog.Logger
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
	// AuthRateLimit caps submissions per client IP per minute on each credential and RSVP endpoint
	// separately. Zero disables it.
	AuthRateLimit int
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP. Enable only behind
	// a proxy that overwrites those headers; otherwise clients can spoof their address.
	TrustProxyHeaders bool
	// Ping reports database health for /health. Nil means always healthy.
	Ping func(ctx context.Context) error

	UserTokens  domain.TokenVerifier
	AdminTokens domain.TokenVerifier

	Users            *controllers.UserController
	AdminAuth        *controllers.AdminAuthController
	Invitations      *controllers.InvitationController
	AdminInvitations *controllers.AdminInvitationController
	Guests           *controllers.GuestController
	Public           *controllers.PublicController
	Templates        *controllers.TemplateController
	Resellers        *controllers.ResellerController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logging(d.Logger))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler)
	}
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusMethodNotAllowed, helpers.ErrCodeBadRequest, "method not allowed")
	})

	r.Get("/health", health(d.Ping))
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	requireUser := middleware.RequireUser(d.UserTokens, d.Logger)
	requireAdmin := middleware.RequireAdmin(d.AdminTokens, d.Logger)
	// Each call builds its own counter so endpoints do not share a budget.
	limited := func() func(http.Handler) http.Handler {
		return middleware.RateLimit(d.AuthRateLimit, time.Minute)
	}

	// Public
	r.Route("/public/invitations/{slug}", func(r chi.Router) {
		r.Get("/", d.Public.GetBySlug)
		r.With(limited()).Post("/rsvp", d.Public.RSVP)
	})
	r.Route("/templates", func(r chi.Router) {
		t := d.Templates
		r.Get("/", t.List)
		r.Get("/popular", t.Popular)
		r.Get("/categories", t.Categories)
		r.Get("/styles", t.Styles)
		r.Get("/premium", t.Premium)
		r.Get("/search", t.Search)
		r.Get("/category/{category}", t.ByCategory)
		r.Get("/{id}", t.Get)
		r.Get("/{id}/related", t.Related)
	})

	// End-user auth
	r.Route("/auth", func(r chi.Router) {
		r.With(limited()).Post("/signup", d.Users.SignUp)
		r.With(limited()).Post("/login", d.Users.Login)
		r.Post("/logout", d.Users.Logout)
		r.With(requireUser).Get("/me", d.Users.GetMe)
	})

	// Owner-scoped invitations and guests
	r.Route("/invitations", func(r chi.Router) {
		r.Use(requireUser)
		inv, g := d.Invitations, d.Guests
		r.Get("/", inv.List)
		r.Post("/", inv.Create)
		r.Get("/stats", inv.Stats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", inv.Get)
			r.Patch("/", inv.Update)
			r.Delete("/", inv.Delete)
			r.Post("/publish", inv.Publish)
			r.Post("/unpublish", inv.Unpublish)
			r.Post("/duplicate", inv.Duplicate)

			r.Get("/guests", g.List)
			r.Post("/guests", g.Add)
			r.Post("/guests/send", g.Send)
			r.Patch("/guests/{guestID}", g.Update)
			r.Delete("/guests/{guestID}", g.Remove)
		})
	})

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.With(limited()).Post("/auth/login", d.AdminAuth.Login)
		r.Post("/auth/logout", d.AdminAuth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/auth/me", d.AdminAuth.Me)
			r.Post("/auth/refresh", d.AdminAuth.Refresh)
			r.Post("/auth/admins", d.AdminAuth.CreateAdmin)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", d.Users.AdminList)
				r.Get("/stats", d.Users.AdminStats)
				r.Get("/{id}", d.Users.AdminGet)
			})

			r.Route("/resellers", func(r chi.Router) {
				rs := d.Resellers
				r.Get("/", rs.List)
				r.Post("/", rs.Create)
				r.Get("/stats", rs.Stats)
				r.Get("/referral/{code}", rs.GetByReferralCode)
				r.Get("/{id}", rs.Get)
				r.Patch("/{id}", rs.Update)
				r.Delete("/{id}", rs.Delete)
			})

			r.Route("/invitations", func(r chi.Router) {
				ai := d.AdminInvitations
				r.Get("/", ai.List)
				r.Get("/stats", ai.Stats)
				r.Get("/slug/{slug}", ai.GetBySlug)
				r.Get("/{id}", ai.Get)
				r.Patch("/{id}/status", ai.SetStatus)
				r.Delete("/{id}", ai.Delete)
			})

			r.Route("/templates", func(r chi.Router) {
				t := d.Templates
				r.Get("/", t.AdminList)
				r.Post("/", t.AdminCreate)
				r.Get("/stats", t.AdminStats)
				r.Get("/{id}", t.AdminGet)
				r.Patch("/{id}", t.AdminUpdate)
				r.Delete("/{id}", t.AdminDelete)
			})
		})
	})

	return r
}

// health godoc
// @Summary Liveness and database check
// @Tags system
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /health [get]
func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "database unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
