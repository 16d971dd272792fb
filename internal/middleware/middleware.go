package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/jsonutil"
)

const (
	MsgInternalServer   = "The server encountered a problem and could not process your request"
	MsgNotFound         = "The requested resource not found"
	MsgMethodNotAllowed = "The %s method is not supported for this resource"
	MsgUnauthenticated  = "You must be authenticated to access this resource"
	MsgInvalidToken     = "Invalid or missing authentication token"
	MsgForbidden        = "Your account doesn't have the necessary permissions to access this resource"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, headers http.Header) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	jsonutil.WriteJSON(w, status, resp, headers)
}

func RecoverPanic(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("recovered from panic",
						"error", fmt.Sprintf("%v", err),
						"method", r.Method,
						"uri", r.URL.RequestURI(),
						"request_id", middleware.GetReqID(r.Context()))

					writeError(w, r, http.StatusInternalServerError, MsgInternalServer, http.Header{
						"Connection": []string{"close"},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, MsgNotFound, nil)
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(MsgMethodNotAllowed, r.Method), nil)
}

// Authenticate requires a valid bearer token and stores the caller's identity
// in the request context.
func Authenticate(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Authorization")

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, r, http.StatusUnauthorized, MsgUnauthenticated, http.Header{
					"WWW-Authenticate": []string{"Bearer"},
				})
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, r, http.StatusUnauthorized, MsgInvalidToken, http.Header{
					"WWW-Authenticate": []string{"Bearer"},
				})
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, MsgInvalidToken, http.Header{
					"WWW-Authenticate": []string{"Bearer"},
				})
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through when the authenticated caller holds any of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, MsgUnauthenticated, nil)
				return
			}

			if !identity.HasAnyRole(roles...) {
				writeError(w, r, http.StatusForbidden, MsgForbidden, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
