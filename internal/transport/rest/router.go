package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/department"
	"github.com/frahmantamala/worklog/internal/report"
	"github.com/frahmantamala/worklog/internal/settings"
	"github.com/frahmantamala/worklog/internal/status"
	"github.com/frahmantamala/worklog/internal/transport/middleware"
	"github.com/frahmantamala/worklog/internal/transport/swagger"
	"github.com/frahmantamala/worklog/internal/user"
	"github.com/frahmantamala/worklog/internal/workentry"
	"github.com/frahmantamala/worklog/internal/worktype"
	"github.com/go-chi/chi"
)

// Handlers groups every HTTP handler mounted under /api/v1. A nil handler leaves its routes unmounted.
type Handlers struct {
	Health      *HealthHandler
	Auth        *auth.Handler
	Settings    *settings.Handler
	Departments *department.Handler
	WorkTypes   *worktype.Handler
	Statuses    *status.Handler
	Users       *user.Handler
	WorkEntries *workentry.Handler
	Reports     *report.Handler
}

type RouterOptions struct {
	AllowedOrigins []string
	LoginLimiter   *middleware.IPRateLimiter
	OpenAPISpec    []byte
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if len(opts.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Settings != nil {
			r.Get("/settings/public", h.Settings.Public)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			login := http.Handler(http.HandlerFunc(h.Auth.Login))
			if opts.LoginLimiter != nil {
				login = opts.LoginLimiter.Middleware(login)
			}
			ar.Method(http.MethodPost, "/login", login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Users != nil {
				pr.Get("/auth/me", h.Users.Me)
				pr.Put("/profile", h.Users.UpdateProfile)
				pr.Post("/profile/avatar", h.Users.UploadAvatar)

				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.Users.List)
					ur.Get("/{id}", h.Users.Get)
					ur.Put("/{id}", h.Users.Update)
					ur.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRole(auth.RoleAdmin))
						ar.Post("/", h.Users.Create)
						ar.Delete("/{id}", h.Users.Delete)
					})
				})
			}

			if h.Settings != nil {
				pr.Route("/settings", func(sr chi.Router) {
					sr.Use(middleware.RequireRole(auth.RoleAdmin))
					sr.Get("/", h.Settings.List)
					sr.Put("/", h.Settings.Update)
					sr.Post("/logo", h.Settings.UploadLogo)
					sr.Delete("/logo", h.Settings.RemoveLogo)
				})
			}

			if h.Departments != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Departments.List)
					dr.Get("/{id}", h.Departments.Get)
					dr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRole(auth.RoleAdmin))
						ar.Post("/", h.Departments.Create)
						ar.Put("/{id}", h.Departments.Update)
						ar.Delete("/{id}", h.Departments.Delete)
					})
				})
			}

			if h.WorkTypes != nil {
				pr.Route("/work-types", func(wr chi.Router) {
					wr.Get("/", h.WorkTypes.List)
					wr.Get("/{id}", h.WorkTypes.Get)
					wr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRole(auth.RoleAdmin))
						ar.Post("/", h.WorkTypes.Create)
						ar.Put("/{id}", h.WorkTypes.Update)
						ar.Delete("/{id}", h.WorkTypes.Delete)
					})
				})
			}

			if h.Statuses != nil {
				pr.Route("/statuses", func(sr chi.Router) {
					sr.Get("/", h.Statuses.List)
					sr.Get("/{id}", h.Statuses.Get)
					sr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRole(auth.RoleAdmin))
						ar.Post("/", h.Statuses.Create)
						ar.Put("/{id}", h.Statuses.Update)
						ar.Delete("/{id}", h.Statuses.Delete)
					})
				})
			}

			if h.WorkEntries != nil {
				pr.Route("/work-entries", func(er chi.Router) {
					// static segment first so it is not read as an id
					if h.Reports != nil {
						er.Get("/summary", h.Reports.Summary)
					}
					er.Get("/", h.WorkEntries.List)
					er.Post("/", h.WorkEntries.Create)
					er.Get("/{id}", h.WorkEntries.Get)
					er.Put("/{id}", h.WorkEntries.Update)
					er.Delete("/{id}", h.WorkEntries.Delete)
					er.Post("/{id}/attachments", h.WorkEntries.UploadAttachments)
					er.Delete("/{id}/attachments/{attachmentId}", h.WorkEntries.DeleteAttachment)
				})
			}

			if h.Reports != nil {
				pr.Route("/dashboard", func(dr chi.Router) {
					dr.Get("/stats", h.Reports.Stats)
					dr.Get("/activities", h.Reports.Activities)
					dr.Get("/charts", h.Reports.Charts)
				})
				pr.Route("/reports", func(rr chi.Router) {
					rr.Get("/monthly", h.Reports.Monthly)
					rr.Get("/kpi", h.Reports.KPI)
					rr.Get("/export", h.Reports.Export)
				})
			}
		})
	})
}
