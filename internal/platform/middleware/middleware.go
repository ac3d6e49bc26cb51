// Package middleware holds the small HTTP middlewares the portal router
// mounts. Each one only moves request facts into the context; services read
// them back through pkg/requestcontext.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/platform/httputil"
	"chalak/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request so all
// operations within one request share the same "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID assigns a request ID, honoring an inbound X-Request-ID header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientMetadata copies the User-Agent into the context for device labelling.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithUserAgent(r.Context(), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenVerifier checks a bearer session token and yields the user it belongs
// to. Implemented by the auth collaborator adapter.
type TokenVerifier interface {
	VerifySessionToken(token string) (userID string, err error)
}

// Auth requires a valid bearer token and injects the user ID.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(raw, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			userID, err := verifier.VerifySessionToken(token)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session"))
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
