package app

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/jsonutil"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

// movieNameParam returns the decoded movie name. chi matches on RawPath when the
// request carries one, so only then is the parameter still escaped.
func (app *Application) movieNameParam(r *http.Request) string {
	param := chi.URLParam(r, "movieName")
	if r.URL.RawPath == "" {
		return param
	}

	name, err := url.PathUnescape(param)
	if err != nil {
		return param
	}

	return name
}

// contextGetIdentity must only be called behind the Authenticate middleware.
func (app *Application) contextGetIdentity(r *http.Request) auth.Identity {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		panic("missing identity in request context")
	}

	return identity
}
