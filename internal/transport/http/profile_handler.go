package httpapi

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chalak/internal/profile"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/platform/httputil"
)

// uploadBodyLimit caps document request bodies slightly above the stored
// document limit so oversize files get the validation message, not a
// truncated read.
const uploadBodyLimit = 4 << 20

type profileHandler struct {
	service *profile.Service
	logger  *slog.Logger
}

func (h *profileHandler) Register(r chi.Router) {
	r.Get("/", h.get)
	r.Get("/overview", h.overview)
	r.Put("/personal", h.updatePersonal)
	r.Put("/address", h.updateAddress)
	r.Post("/documents/{kind}", h.uploadDocument)
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), userID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *profileHandler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.GetOverview(r.Context(), userID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *profileHandler) updatePersonal(w http.ResponseWriter, r *http.Request) {
	details, ok := httputil.Decode[profile.PersonalDetails](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.UpdatePersonal(r.Context(), userID(r.Context()), details); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.overview(w, r)
}

func (h *profileHandler) updateAddress(w http.ResponseWriter, r *http.Request) {
	details, ok := httputil.Decode[profile.AddressDetails](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.UpdateAddress(r.Context(), userID(r.Context()), details); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.overview(w, r)
}

func (h *profileHandler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	kind := profile.DocumentKind(chi.URLParam(r, "kind"))

	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart upload with a \"file\" part"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file"))
		return
	}

	doc, err := h.service.UploadDocument(r.Context(), userID(r.Context()), profile.Upload{
		Kind:        kind,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}
