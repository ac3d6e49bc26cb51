// Package httpapi mounts the portal's REST surface: auth, profile,
// verification and exam endpoints plus operational probes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chalak/internal/authlocal"
	"chalak/internal/exam"
	"chalak/internal/platform/middleware"
	"chalak/internal/profile"
	"chalak/internal/registration"
	"chalak/internal/session"
	"chalak/internal/verification"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/platform/httputil"
	"chalak/pkg/requestcontext"
)

// Deps collects everything the router mounts.
type Deps struct {
	Registration *registration.Service
	Profile      *profile.Service
	Verification *verification.Service
	Exam         *exam.Service
	Auth         *authlocal.Provider
	Sessions     *session.Coordinator
	Roles        session.RoleStore
	Logger       *slog.Logger
}

// New assembles the portal router.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	auth := &authHandler{
		registration: d.Registration,
		provider:     d.Auth,
		sessions:     d.Sessions,
		logger:       d.Logger,
	}
	prof := &profileHandler{service: d.Profile, logger: d.Logger}
	verif := &verificationHandler{service: d.Verification, logger: d.Logger}
	ex := &examHandler{exam: d.Exam, profile: d.Profile, verification: d.Verification, logger: d.Logger}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Auth))
			r.Route("/profile", prof.Register)
			r.Route("/verification", func(r chi.Router) {
				verif.Register(r)
				r.With(requireAdmin(d.Roles)).Post("/{userID}/decision", verif.decide)
			})
			r.Route("/exam", ex.Register)
			r.Get("/overview", ex.overview)
		})
	})

	return r
}

// requireAdmin guards reviewer endpoints. The same missing-grant fallbacks
// apply as at sign-in: no row means no admin.
func requireAdmin(roles session.RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := roles.RoleOf(r.Context(), requestcontext.UserID(r.Context()))
			if err != nil || role != session.RoleAdmin {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "reviewer access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userID(ctx context.Context) string {
	return requestcontext.UserID(ctx)
}
