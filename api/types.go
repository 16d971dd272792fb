// Package api holds the HTTP contract: the embedded OpenAPI document and the
// request and response bodies it describes.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type AddShowingRequest struct {
	MovieName            string `json:"movieName" validate:"required,notblank,max=200"`
	TheatreName          string `json:"theatreName" validate:"required,notblank,max=200"`
	NoOfTicketsAvailable *int   `json:"noOfTicketsAvailable" validate:"required,min=0,max=100000"`
}

type BookingRequest struct {
	TheatreName string   `json:"theatreName" validate:"required,notblank,max=200"`
	SeatNumbers []string `json:"seatNumbers" validate:"required,min=1,max=100,unique,dive,required,notblank,max=20"`
	NoOfTickets int      `json:"noOfTickets" validate:"required,min=1"`
}

type ShowingResponse struct {
	Id                   string `json:"id"`
	MovieName            string `json:"movieName"`
	TheatreName          string `json:"theatreName"`
	NoOfTicketsAvailable int    `json:"noOfTicketsAvailable"`
	TicketsStatus        string `json:"ticketsStatus"`
}

type BookingDetails struct {
	Id          string    `json:"id"`
	LoginId     string    `json:"loginId"`
	MovieName   string    `json:"movieName"`
	TheatreName string    `json:"theatreName"`
	NoOfTickets int       `json:"noOfTickets"`
	SeatNumbers []string  `json:"seatNumbers"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BookingResponse struct {
	Message string         `json:"message"`
	Booking BookingDetails `json:"booking"`
}

type StatusUpdateResponse struct {
	Message  string            `json:"message"`
	Showings []ShowingResponse `json:"showings"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
