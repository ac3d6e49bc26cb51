package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chalak/internal/verification"
	"chalak/pkg/platform/httputil"
)

type verificationHandler struct {
	service *verification.Service
	logger  *slog.Logger
}

func (h *verificationHandler) Register(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/submit", h.submit)
}

func (h *verificationHandler) get(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(r.Context(), userID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *verificationHandler) submit(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Submit(r.Context(), userID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, app)
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// decide applies a reviewer verdict to the citizen named in the path.
// Mounted behind the admin guard.
func (h *verificationHandler) decide(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[decisionRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.ApplyDecision(r.Context(), chi.URLParam(r, "userID"), verification.Decision{
		Approve: req.Approve,
		Reason:  req.Reason,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}
