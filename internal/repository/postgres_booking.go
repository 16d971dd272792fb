package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking, showing *domain.Showing) error {
	remaining := showing.TicketsAvailable - len(booking.SeatNumbers)
	if remaining < 0 {
		return domain.ErrEditConflict
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (id, login_id, movie_name, theatre_name, no_of_tickets, seat_numbers)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`

		err := tx.QueryRow(
			ctx,
			query,
			booking.ID,
			booking.LoginID,
			booking.MovieName,
			booking.TheatreName,
			booking.NoOfTickets,
			booking.SeatNumbers).Scan(&booking.CreatedAt)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.SeatNumbers))
		for _, seat := range booking.SeatNumbers {
			rows = append(rows, []any{
				booking.ID,
				booking.MovieName,
				booking.TheatreName,
				seat,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "movie_name", "theatre_name", "seat_number"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		query = `
			UPDATE showings
			SET tickets_available = $1,
				tickets_status = CASE WHEN $1 = 0 THEN 'SOLD OUT' ELSE tickets_status END,
				version = version + 1
			WHERE id = $2 AND version = $3
			RETURNING tickets_status, version`

		err = tx.QueryRow(ctx, query, remaining, showing.ID, showing.Version).Scan(&showing.Status, &showing.Version)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrEditConflict
			}

			return err
		}

		return nil
	})
	if err != nil {
		if isWriteConflict(err) {
			return domain.ErrEditConflict
		}

		return err
	}

	showing.TicketsAvailable = remaining

	return nil
}

func (p *PostgresBookingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Booking, error) {

	query := `
		SELECT id, login_id, movie_name, theatre_name, no_of_tickets, seat_numbers, created_at
		FROM bookings
		WHERE movie_name = $1 AND theatre_name = $2
		ORDER BY created_at, id`

	return p.queryBookings(ctx, query, movieName, theatreName)
}

func (p *PostgresBookingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Booking, error) {
	query := `
		SELECT id, login_id, movie_name, theatre_name, no_of_tickets, seat_numbers, created_at
		FROM bookings
		WHERE movie_name = $1
		ORDER BY created_at, id`

	return p.queryBookings(ctx, query, movieName)
}

func (p *PostgresBookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking

		err = rows.Scan(
			&booking.ID,
			&booking.LoginID,
			&booking.MovieName,
			&booking.TheatreName,
			&booking.NoOfTickets,
			&booking.SeatNumbers,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
