package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chalak/internal/authlocal"
	"chalak/internal/calendar"
	"chalak/internal/registration"
	"chalak/internal/session"
	"chalak/pkg/platform/httputil"
)

type authHandler struct {
	registration *registration.Service
	provider     *authlocal.Provider
	sessions     *session.Coordinator
	logger       *slog.Logger
}

func (h *authHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/confirm", h.confirm)
	r.Post("/confirm/resend", h.resendConfirmation)
	r.Post("/recover", h.startRecovery)
	r.Post("/recover/reset", h.resetPassword)
}

type registerRequest struct {
	FirstName          string `json:"first_name"`
	MiddleName         string `json:"middle_name"`
	LastName           string `json:"last_name"`
	FullNameDevanagari string `json:"full_name_nepali"`
	DOBAD              string `json:"dob_ad"`
	DOBBS              string `json:"dob_bs"`
	DOBCalendar        string `json:"dob_calendar"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Password           string `json:"password"`
	ConfirmPassword    string `json:"confirm_password"`
	AcceptedTerms      bool   `json:"accepted_terms"`
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[registerRequest](w, r, h.logger)
	if !ok {
		return
	}

	source := calendar.SystemAD
	if calendar.System(req.DOBCalendar) == calendar.SystemBS {
		source = calendar.SystemBS
	}

	result, err := h.registration.Register(r.Context(), registration.Submission{
		FirstName:          req.FirstName,
		MiddleName:         req.MiddleName,
		LastName:           req.LastName,
		FullNameDevanagari: req.FullNameDevanagari,
		DOBAD:              req.DOBAD,
		DOBBS:              req.DOBBS,
		DOBSource:          source,
		Email:              req.Email,
		Phone:              req.Phone,
		Password:           req.Password,
		ConfirmPassword:    req.ConfirmPassword,
		AcceptedTerms:      req.AcceptedTerms,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Session authlocal.Session `json:"session"`
	State   *session.State    `json:"state"`
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[loginRequest](w, r, h.logger)
	if !ok {
		return
	}

	sess, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state, err := h.sessions.HandleEvent(r.Context(), session.Notification{
		Event:  session.EventSignedIn,
		UserID: sess.UserID,
		Email:  sess.Email,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Session: sess, State: state})
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	_, err := h.sessions.HandleEvent(r.Context(), session.Notification{
		Event:  session.EventSignedOut,
		UserID: userID(r.Context()),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type confirmRequest struct {
	Token string `json:"token"`
}

func (h *authHandler) confirm(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[confirmRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.provider.ConfirmEmail(r.Context(), req.Token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *authHandler) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[emailRequest](w, r, h.logger)
	if !ok {
		return
	}
	if _, err := h.provider.ResendConfirmation(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *authHandler) startRecovery(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[emailRequest](w, r, h.logger)
	if !ok {
		return
	}
	if _, err := h.provider.StartPasswordRecovery(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Always accepted, regardless of whether the address is registered.
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *authHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[resetPasswordRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.provider.ResetPassword(r.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password_updated"})
}
