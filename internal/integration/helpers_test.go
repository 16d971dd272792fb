package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const basePath = "/api/v1.0/moviebooking"

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"id":        {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanValue(actual)

	var expected any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// cleanValue drops non-deterministic keys from decoded JSON at any depth.
func cleanValue(v any) {
	switch v := v.(type) {
	case map[string]any:
		for k := range v {
			if _, ok := keysToIgnore[k]; ok {
				delete(v, k)
				continue
			}
			cleanValue(v[k])
		}
	case []any:
		for _, item := range v {
			cleanValue(item)
		}
	}
}

func bearer(t testing.TB, loginID string, roles ...string) map[string]string {
	token, err := auth.IssueToken(jwtSecret, loginID, roles, time.Hour)
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

func adminHeaders(t testing.TB) map[string]string {
	return bearer(t, "admin", auth.RoleAdmin)
}

func userHeaders(t testing.TB) map[string]string {
	return bearer(t, "alice", auth.RoleUser)
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), `TRUNCATE booking_seats, bookings, showings`)
	require.NoError(t, err)
}

func flushRedis(t testing.TB, client *redis.Client) {
	require.NoError(t, client.FlushDB(context.Background()).Err())
}

func insertShowing(t testing.TB, db *pgxpool.Pool, movie, theatre string, available int) domain.Showing {
	showing := domain.NewShowing(movie, theatre, available)

	err := repository.NewPostgresShowingRepository(db).Create(context.Background(), showing)
	require.NoError(t, err)

	return *showing
}

func findShowing(t testing.TB, db *pgxpool.Pool, movie, theatre string) domain.Showing {
	showings, err := repository.NewPostgresShowingRepository(db).FindByMovieAndTheatre(context.Background(), movie, theatre)
	require.NoError(t, err)
	require.NotEmpty(t, showings)

	return showings[0]
}

func countBookedSeats(t testing.TB, db *pgxpool.Pool, movie, theatre string) int {
	var n int
	err := db.QueryRow(context.Background(),
		`SELECT count(*) FROM booking_seats WHERE movie_name = $1 AND theatre_name = $2`,
		movie, theatre).Scan(&n)
	require.NoError(t, err)

	return n
}
