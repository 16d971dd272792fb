package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

const showingColumns = `id, movie_name, theatre_name, tickets_available, tickets_status, version`

type PostgresShowingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowingRepository(db *pgxpool.Pool) *PostgresShowingRepository {
	return &PostgresShowingRepository{
		db: db,
	}
}

func (p *PostgresShowingRepository) Create(ctx context.Context, showing *domain.Showing) error {
	query := `
		INSERT INTO showings (movie_name, theatre_name, tickets_available, tickets_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version`

	return p.db.QueryRow(
		ctx,
		query,
		showing.MovieName,
		showing.TheatreName,
		showing.TicketsAvailable,
		showing.Status).Scan(&showing.ID, &showing.Version)
}

func (p *PostgresShowingRepository) GetAll(ctx context.Context) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings ORDER BY created_at, id`

	return p.queryShowings(ctx, query)
}

func (p *PostgresShowingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + `
		FROM showings
		WHERE movie_name = $1
		ORDER BY created_at, id`

	return p.queryShowings(ctx, query, movieName)
}

func (p *PostgresShowingRepository) SearchByMovieName(ctx context.Context, prefix string) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + `
		FROM showings
		WHERE movie_name ILIKE $1 || '%'
		ORDER BY created_at, id`

	return p.queryShowings(ctx, query, escapeLike(prefix))
}

func (p *PostgresShowingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Showing, error) {

	query := `SELECT ` + showingColumns + `
		FROM showings
		WHERE movie_name = $1 AND theatre_name = $2
		ORDER BY created_at, id`

	return p.queryShowings(ctx, query, movieName, theatreName)
}

func (p *PostgresShowingRepository) UpdateStatus(ctx context.Context, showing *domain.Showing) error {
	query := `
		UPDATE showings
		SET tickets_status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version`

	err := p.db.QueryRow(ctx, query, showing.Status, showing.ID, showing.Version).Scan(&showing.Version)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (p *PostgresShowingRepository) DeleteByMovieName(ctx context.Context, movieName string) (int64, error) {
	query := `DELETE FROM showings WHERE movie_name = $1`

	tag, err := p.db.Exec(ctx, query, movieName)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresShowingRepository) queryShowings(ctx context.Context, query string, args ...any) ([]domain.Showing, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showings := make([]domain.Showing, 0)

	for rows.Next() {
		var showing domain.Showing

		err = rows.Scan(
			&showing.ID,
			&showing.MovieName,
			&showing.TheatreName,
			&showing.TicketsAvailable,
			&showing.Status,
			&showing.Version,
		)
		if err != nil {
			return nil, err
		}

		showings = append(showings, showing)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showings, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
