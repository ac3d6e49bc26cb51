package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"chalak/internal/exam"
	"chalak/internal/profile"
	"chalak/internal/verification"
	"chalak/pkg/platform/httputil"
)

type examHandler struct {
	exam         *exam.Service
	profile      *profile.Service
	verification *verification.Service
	logger       *slog.Logger
}

func (h *examHandler) Register(r chi.Router) {
	r.Get("/eligibility", h.eligibility)
	r.Post("/attempts", h.submitAttempt)
}

func (h *examHandler) eligibility(w http.ResponseWriter, r *http.Request) {
	el, err := h.exam.CheckEligibility(r.Context(), userID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, el)
}

type attemptRequest struct {
	Score int `json:"score"`
}

func (h *examHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[attemptRequest](w, r, h.logger)
	if !ok {
		return
	}

	state, err := h.exam.SubmitAttempt(r.Context(), userID(r.Context()), req.Score)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, state)
}

// dashboard is everything the portal home screen needs in one response.
type dashboard struct {
	Profile      profile.Overview         `json:"profile"`
	Verification verification.Application `json:"verification"`
	Exam         exam.Eligibility         `json:"exam"`
}

// overview aggregates the three domain reads concurrently.
func (h *examHandler) overview(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var d dashboard
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		d.Profile, err = h.profile.GetOverview(ctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		d.Verification, err = h.verification.Get(ctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		d.Exam, err = h.exam.CheckEligibility(ctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
