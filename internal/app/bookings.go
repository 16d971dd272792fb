package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const MsgTicketsBooked = "Tickets booked successfully with seat numbers [%s]"

func (app *Application) BookTicketsHandler(w http.ResponseWriter, r *http.Request) {
	var input api.BookingRequest

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

	identity := app.contextGetIdentity(r)

	req := domain.BookingRequest{
		LoginID:     identity.LoginID,
		MovieName:   strings.TrimSpace(app.movieNameParam(r)),
		TheatreName: strings.TrimSpace(input.TheatreName),
		SeatNumbers: input.SeatNumbers,
	}

	booking, err := app.coordinator.Book(r.Context(), req)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.BookingResponse{
		Message: fmt.Sprintf(MsgTicketsBooked, strings.Join(booking.SeatNumbers, ", ")),
		Booking: toBookingDetails(*booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookedTicketsHandler(w http.ResponseWriter, r *http.Request) {
	bookings, err := app.catalog.BookedTickets(r.Context(), app.movieNameParam(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.BookingDetails, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingDetails(b)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingDetails(booking domain.Booking) api.BookingDetails {
	return api.BookingDetails{
		Id:          booking.ID,
		LoginId:     booking.LoginID,
		MovieName:   booking.MovieName,
		TheatreName: booking.TheatreName,
		NoOfTickets: booking.NoOfTickets,
		SeatNumbers: booking.SeatNumbers,
		CreatedAt:   booking.CreatedAt,
	}
}
