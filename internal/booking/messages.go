package booking

import (
	"fmt"
	"strings"

	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const DefaultTopic = "moviebooking"

func BookedMessage(b *domain.Booking) string {
	return fmt.Sprintf(
		"Movie ticket booked. Booking Details are: loginId=%s, movieName=%s, theatreName=%s, noOfTickets=%d, seatNumbers=[%s]",
		b.LoginID,
		b.MovieName,
		b.TheatreName,
		b.NoOfTickets,
		strings.Join(b.SeatNumbers, ", "),
	)
}

func DeletedMessage(movieName string) string {
	return fmt.Sprintf("Movie Deleted by the Admin. %s is now not available", movieName)
}
