package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	appmiddleware "github.com/metinatakli/movie-booking-system/internal/middleware"
	appvalidator "github.com/metinatakli/movie-booking-system/internal/validator"
)

const (
	ErrInternalServer   = appmiddleware.MsgInternalServer
	ErrNotFound         = appmiddleware.MsgNotFound
	ErrFailedValidation = "One or more fields have invalid values"
	ErrEditConflict     = "Unable to update the record due to an edit conflict, please try again"
	ErrNoMoviesFound    = "No movies are available"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri, "request_id", middleware.GetReqID(r.Context()))
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	details := make([]api.ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		details[i] = api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: details,
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// bookingErrorResponse maps the booking error kinds onto HTTP statuses. Anything it
// does not recognise is treated as a server error.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var seatErr *domain.SeatConflictError

	switch {
	case errors.Is(err, domain.ErrShowingNotFound):
		app.errorResponse(w, r, http.StatusNotFound, domain.ErrShowingNotFound.Error())
	case errors.As(err, &seatErr):
		app.errorResponse(w, r, http.StatusBadRequest, seatErr.Error())
	case errors.Is(err, domain.ErrSoldOut):
		app.errorResponse(w, r, http.StatusForbidden, domain.ErrSoldOut.Error())
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, domain.ErrNoSeatsRequested):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, domain.ErrNoSeatsRequested.Error())
	default:
		app.serverErrorResponse(w, r, fmt.Errorf("booking failed: %w", err))
	}
}
