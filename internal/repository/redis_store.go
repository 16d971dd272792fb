package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

const showingIndexKey = "showings"

func showingKey(id string) string {
	return fmt.Sprintf("showing:%s", id)
}

func bookingListKey(movieName string) string {
	return fmt.Sprintf("bookings:%s", movieName)
}

func bookedSeatsKey(movieName, theatreName string) string {
	return fmt.Sprintf("booked_seats:%s:%s", movieName, theatreName)
}

type showingDocument struct {
	ID               string `json:"id"`
	MovieName        string `json:"movieName"`
	TheatreName      string `json:"theatreName"`
	TicketsAvailable int    `json:"noOfTicketsAvailable"`
	Status           string `json:"ticketsStatus"`
	Version          int    `json:"version"`
}

type bookingDocument struct {
	ID          string    `json:"id"`
	LoginID     string    `json:"loginId"`
	MovieName   string    `json:"movieName"`
	TheatreName string    `json:"theatreName"`
	NoOfTickets int       `json:"noOfTickets"`
	SeatNumbers []string  `json:"seatNumbers"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toShowingDocument(s domain.Showing) showingDocument {
	return showingDocument{
		ID:               s.ID,
		MovieName:        s.MovieName,
		TheatreName:      s.TheatreName,
		TicketsAvailable: s.TicketsAvailable,
		Status:           string(s.Status),
		Version:          s.Version,
	}
}

func (d showingDocument) toDomain() domain.Showing {
	return domain.Showing{
		ID:               d.ID,
		MovieName:        d.MovieName,
		TheatreName:      d.TheatreName,
		TicketsAvailable: d.TicketsAvailable,
		Status:           domain.ShowingStatus(d.Status),
		Version:          d.Version,
	}
}

// RedisShowingRepository stores each showing as a JSON document under showing:<id>.
// A sorted set scored by creation time keeps the catalog in insertion order.
type RedisShowingRepository struct {
	client redis.UniversalClient
}

func NewRedisShowingRepository(client redis.UniversalClient) *RedisShowingRepository {
	return &RedisShowingRepository{
		client: client,
	}
}

func (r *RedisShowingRepository) Create(ctx context.Context, showing *domain.Showing) error {
	if showing.ID == "" {
		showing.ID = uuid.NewString()
	}
	showing.Version = 1

	doc, err := json.Marshal(toShowingDocument(*showing))
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, showingKey(showing.ID), doc, 0)
		pipe.ZAdd(ctx, showingIndexKey, redis.Z{
			Score:  float64(time.Now().UnixNano()),
			Member: showing.ID,
		})
		return nil
	})

	return err
}

func (r *RedisShowingRepository) GetAll(ctx context.Context) ([]domain.Showing, error) {
	return r.scan(ctx, func(domain.Showing) bool { return true })
}

func (r *RedisShowingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Showing, error) {
	return r.scan(ctx, func(s domain.Showing) bool {
		return s.MovieName == movieName
	})
}

func (r *RedisShowingRepository) SearchByMovieName(ctx context.Context, prefix string) ([]domain.Showing, error) {
	prefix = strings.ToLower(prefix)

	return r.scan(ctx, func(s domain.Showing) bool {
		return strings.HasPrefix(strings.ToLower(s.MovieName), prefix)
	})
}

func (r *RedisShowingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Showing, error) {

	return r.scan(ctx, func(s domain.Showing) bool {
		return s.MovieName == movieName && s.TheatreName == theatreName
	})
}

func (r *RedisShowingRepository) UpdateStatus(ctx context.Context, showing *domain.Showing) error {
	key := showingKey(showing.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := getShowing(ctx, tx, showing.ID)
		if err != nil {
			return err
		}

		if stored.Version != showing.Version {
			return domain.ErrEditConflict
		}

		stored.Status = showing.Status
		stored.Version++

		doc, err := json.Marshal(toShowingDocument(stored))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		if err != nil {
			return err
		}

		showing.Version = stored.Version

		return nil
	}, key)

	return mapTxError(err)
}

func (r *RedisShowingRepository) DeleteByMovieName(ctx context.Context, movieName string) (int64, error) {
	showings, err := r.FindByMovieName(ctx, movieName)
	if err != nil {
		return 0, err
	}

	if len(showings) == 0 {
		return 0, nil
	}

	keys := make([]string, len(showings))
	ids := make([]any, len(showings))
	for i, s := range showings {
		keys[i] = showingKey(s.ID)
		ids[i] = s.ID
	}

	var deleted *redis.IntCmd

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, showingIndexKey, ids...)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted.Val(), nil
}

func (r *RedisShowingRepository) scan(ctx context.Context, keep func(domain.Showing) bool) ([]domain.Showing, error) {
	ids, err := r.client.ZRange(ctx, showingIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	showings := make([]domain.Showing, 0)

	if len(ids) == 0 {
		return showings, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = showingKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}

		var doc showingDocument
		err = json.Unmarshal([]byte(raw), &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode showing document: %w", err)
		}

		showing := doc.toDomain()
		if keep(showing) {
			showings = append(showings, showing)
		}
	}

	return showings, nil
}

// RedisBookingRepository appends bookings to a per-movie list. Booked seats of a
// showing are mirrored in a set so a commit can reject a seat taken concurrently.
type RedisBookingRepository struct {
	client redis.UniversalClient
}

func NewRedisBookingRepository(client redis.UniversalClient) *RedisBookingRepository {
	return &RedisBookingRepository{
		client: client,
	}
}

func (r *RedisBookingRepository) Create(ctx context.Context, booking *domain.Booking, showing *domain.Showing) error {
	key := showingKey(showing.ID)
	seatsKey := bookedSeatsKey(booking.MovieName, booking.TheatreName)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := getShowing(ctx, tx, showing.ID)
		if err != nil {
			return err
		}

		if stored.Version != showing.Version {
			return domain.ErrEditConflict
		}

		remaining := stored.TicketsAvailable - len(booking.SeatNumbers)
		if remaining < 0 {
			return domain.ErrEditConflict
		}

		seats := make([]any, len(booking.SeatNumbers))
		for i, seat := range booking.SeatNumbers {
			seats[i] = seat
		}

		taken, err := tx.SMIsMember(ctx, seatsKey, seats...).Result()
		if err != nil {
			return err
		}

		for _, t := range taken {
			if t {
				return domain.ErrEditConflict
			}
		}

		stored.TicketsAvailable = remaining
		if remaining == 0 {
			stored.Status = domain.StatusSoldOut
		}
		stored.Version++

		booking.CreatedAt = time.Now().UTC()

		showingDoc, err := json.Marshal(toShowingDocument(stored))
		if err != nil {
			return err
		}

		bookingDoc, err := json.Marshal(bookingDocument{
			ID:          booking.ID,
			LoginID:     booking.LoginID,
			MovieName:   booking.MovieName,
			TheatreName: booking.TheatreName,
			NoOfTickets: booking.NoOfTickets,
			SeatNumbers: booking.SeatNumbers,
			CreatedAt:   booking.CreatedAt,
		})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, showingDoc, 0)
			pipe.RPush(ctx, bookingListKey(booking.MovieName), bookingDoc)
			pipe.SAdd(ctx, seatsKey, seats...)
			return nil
		})
		if err != nil {
			return err
		}

		*showing = stored

		return nil
	}, key, seatsKey)

	return mapTxError(err)
}

func (r *RedisBookingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Booking, error) {

	bookings, err := r.FindByMovieName(ctx, movieName)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.TheatreName == theatreName {
			filtered = append(filtered, b)
		}
	}

	return filtered, nil
}

func (r *RedisBookingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Booking, error) {
	values, err := r.client.LRange(ctx, bookingListKey(movieName), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	bookings := make([]domain.Booking, 0, len(values))

	for _, raw := range values {
		var doc bookingDocument
		err = json.Unmarshal([]byte(raw), &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode booking document: %w", err)
		}

		bookings = append(bookings, domain.Booking{
			ID:          doc.ID,
			LoginID:     doc.LoginID,
			MovieName:   doc.MovieName,
			TheatreName: doc.TheatreName,
			NoOfTickets: doc.NoOfTickets,
			SeatNumbers: doc.SeatNumbers,
			CreatedAt:   doc.CreatedAt,
		})
	}

	return bookings, nil
}

func getShowing(ctx context.Context, tx *redis.Tx, id string) (domain.Showing, error) {
	raw, err := tx.Get(ctx, showingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// removed since it was read; the caller re-validates
			return domain.Showing{}, domain.ErrEditConflict
		}

		return domain.Showing{}, err
	}

	var doc showingDocument
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		return domain.Showing{}, fmt.Errorf("failed to decode showing document: %w", err)
	}

	return doc.toDomain(), nil
}

func mapTxError(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrEditConflict
	}

	return err
}
