package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/middleware"
)

// RateLimits caps the credential and verification-code routes per client.
// Login routes are also capped per submitted account, since client addresses
// come from forwarded headers.
type RateLimits struct {
	Limiter    middleware.Limiter
	LoginLimit int
	OTPLimit   int
	Window     time.Duration
}

type Handlers struct {
	Public *PublicHandler
	Apply  *ApplyHandler
	Auth   *AuthHandler
	Admin  *AdminHandler
	Portal *PortalHandler
}

// APIRoutes builds the /api route tree.
func APIRoutes(h Handlers, tokens *auth.TokenManager, limits RateLimits) http.Handler {
	r := chi.NewRouter()

	loginLimit := middleware.RateLimit(limits.Limiter, "login", middleware.ClientIP, limits.LoginLimit, limits.Window)
	idLimit := middleware.RateLimit(limits.Limiter, "login_id", loginSubject("id", strings.ToUpper), limits.LoginLimit, limits.Window)
	emailLimit := middleware.RateLimit(limits.Limiter, "login_email", loginSubject("email", strings.ToLower), limits.LoginLimit, limits.Window)
	otpLimit := middleware.RateLimit(limits.Limiter, "otp", draftKey, limits.OTPLimit, limits.Window)

	r.Get("/organizations", h.Public.Organizations)
	r.Route("/lookup", func(r chi.Router) {
		r.Get("/countries", h.Public.Countries)
		r.Get("/provinces", h.Public.Provinces)
		r.Get("/universities", h.Public.Universities)
	})

	r.Route("/apply", func(r chi.Router) {
		r.Post("/", h.Apply.Start)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.Apply.Get)
			r.Delete("/", h.Apply.Restart)
			r.Post("/next", h.Apply.Next)
			r.Post("/previous", h.Apply.Previous)
			r.Put("/steps/{step}", h.Apply.Edit)
			r.With(otpLimit).Post("/submit", h.Apply.Submit)
			r.With(otpLimit).Post("/verify", h.Apply.Verify)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		r.With(loginLimit, emailLimit).Post("/admin/login", h.Auth.AdminLogin)
		r.With(loginLimit, idLimit).Post("/login", h.Auth.Login)
		r.With(loginLimit).Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Get("/dashboard", h.Admin.Dashboard)
		r.Route("/applications", func(r chi.Router) {
			r.Get("/", h.Admin.ListApplications)
			r.Get("/export", h.Admin.ExportApplications)
			r.Get("/{id}", h.Admin.GetApplication)
			r.Post("/{id}/approve", h.Admin.ApproveApplication)
			r.Post("/{id}/reject", h.Admin.RejectApplication)
		})
		r.Route("/scholars", func(r chi.Router) {
			r.Get("/", h.Admin.ListScholars)
			r.Post("/{id}/activate", h.Admin.ActivateScholar)
			r.Post("/{id}/deactivate", h.Admin.DeactivateScholar)
		})
		r.Route("/moa", func(r chi.Router) {
			r.Get("/", h.Admin.ListMoA)
			r.Post("/{id}/approve", h.Admin.ApproveMoA)
			r.Post("/{id}/revision", h.Admin.RequestMoARevision)
		})
	})

	r.Route("/portal", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		r.Use(middleware.RequireRole(auth.RoleScholar, auth.RoleApprovedApplicant))

		r.Get("/dashboard", h.Portal.Dashboard)
		r.With(middleware.RequireRole(auth.RoleApprovedApplicant)).Post("/moa", h.Portal.SubmitMoA)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleScholar))

			r.Put("/profile", h.Portal.UpdateProfile)
			r.Get("/certifications", h.Portal.ListCertifications)
			r.Post("/certifications", h.Portal.AddCertification)
			r.Delete("/certifications/{id}", h.Portal.DeleteCertification)
			r.Get("/jobs", h.Portal.ListJobs)
			r.Post("/jobs", h.Portal.ReportJob)
		})
	})

	return r
}

// draftKey limits code requests per draft and client.
func draftKey(r *http.Request) string {
	return chi.URLParam(r, "draftID") + "|" + middleware.ClientIP(r)
}

// loginSubject keys a limit by one string field of the JSON body. The body is
// restored for the handler; an unreadable body yields no key.
func loginSubject(field string, normalize func(string) string) func(*http.Request) string {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var body map[string]json.RawMessage
		if json.Unmarshal(raw, &body) != nil {
			return ""
		}
		var value string
		if json.Unmarshal(body[field], &value) != nil {
			return ""
		}
		return normalize(strings.TrimSpace(value))
	}
}
