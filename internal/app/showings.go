package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const (
	MsgStatusUpdated = "Ticket status updated successfully"
	MsgMovieDeleted  = "Movie %s deleted successfully"
)

func (app *Application) AddShowingHandler(w http.ResponseWriter, r *http.Request) {
	var input api.AddShowingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	showing, err := app.catalog.AddShowing(r.Context(), input.MovieName, input.TheatreName, *input.NoOfTicketsAvailable)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toShowingResponse(*showing), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListShowingsHandler(w http.ResponseWriter, r *http.Request) {
	showings, err := app.catalog.ListShowings(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(showings) == 0 {
		app.errorResponse(w, r, http.StatusNotFound, ErrNoMoviesFound)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toShowingResponses(showings), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SearchShowingsHandler(w http.ResponseWriter, r *http.Request) {
	showings, err := app.catalog.SearchShowings(r.Context(), app.movieNameParam(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toShowingResponses(showings), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RefreshTicketStatusHandler(w http.ResponseWriter, r *http.Request) {
	showings, err := app.catalog.RefreshStatus(r.Context(), app.movieNameParam(r))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.StatusUpdateResponse{
		Message:  MsgStatusUpdated,
		Showings: toShowingResponses(showings),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	movieName := app.movieNameParam(r)

	err := app.catalog.DeleteShowings(r.Context(), movieName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowingNotFound):
			app.errorResponse(w, r, http.StatusNotFound, domain.ErrShowingNotFound.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.MessageResponse{
		Message: fmt.Sprintf(MsgMovieDeleted, movieName),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toShowingResponses(showings []domain.Showing) []api.ShowingResponse {
	resp := make([]api.ShowingResponse, len(showings))

	for i, s := range showings {
		resp[i] = toShowingResponse(s)
	}

	return resp
}

func toShowingResponse(showing domain.Showing) api.ShowingResponse {
	return api.ShowingResponse{
		Id:                   showing.ID,
		MovieName:            showing.MovieName,
		TheatreName:          showing.TheatreName,
		NoOfTicketsAvailable: showing.TicketsAvailable,
		TicketsStatus:        string(showing.Status),
	}
}
