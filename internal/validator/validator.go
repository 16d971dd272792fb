package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking-system/api"
)

const (
	ErrRequired       = "is required"
	ErrNotBlank       = "must not be blank"
	ErrUnique         = "must not contain duplicates"
	ErrSeatCount      = "must equal the number of seat numbers"
	ErrDefaultInvalid = "is invalid"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)
	validator.RegisterValidation("notblank", validateNotBlank)
	validator.RegisterStructValidation(validateBookingRequest, api.BookingRequest{})

	return validator
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateBookingRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(api.BookingRequest)

	if req.NoOfTickets != len(req.SeatNumbers) {
		sl.ReportError(req.NoOfTickets, "noOfTickets", "NoOfTickets", "seat_count", "")
	}
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "notblank":
		return ErrNotBlank
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", err.Param())
		}
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", err.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", err.Param())
		}
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", err.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", err.Param())
	case "unique":
		return ErrUnique
	case "seat_count":
		return ErrSeatCount
	default:
		return ErrDefaultInvalid
	}
}
