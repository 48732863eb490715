package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casting-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMovieNotFound = errors.New("movie not found")

// MovieRepository handles database operations for movies
type MovieRepository struct {
	pool *pgxpool.Pool
}

func NewMovieRepository(pool *pgxpool.Pool) *MovieRepository {
	return &MovieRepository{pool: pool}
}

// List returns all movies ordered by id
func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, release_date FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}

	movies, err := pgx.CollectRows(rows, scanMovie)
	if err != nil {
		return nil, fmt.Errorf("scan movies: %w", err)
	}
	return movies, nil
}

// Get returns ErrMovieNotFound when no row has id
func (r *MovieRepository) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, release_date FROM movies WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query movie: %w", err)
	}

	movie, err := pgx.CollectOneRow(rows, scanMovie)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("scan movie: %w", err)
	}
	return &movie, nil
}

// Create inserts movie and sets its ID
func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO movies (title, release_date) VALUES ($1, $2) RETURNING id`,
		movie.Title, movie.ReleaseDate.Time,
	).Scan(&movie.ID)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

// Update applies patch and returns the stored row
func (r *MovieRepository) Update(ctx context.Context, id int64, patch domain.MoviePatch) (*domain.Movie, error) {
	var releaseDate *time.Time
	if patch.ReleaseDate != nil {
		releaseDate = &patch.ReleaseDate.Time
	}

	query := `
		UPDATE movies SET
			title        = COALESCE($2, title),
			release_date = COALESCE($3, release_date),
			updated_at   = now()
		WHERE id = $1
		RETURNING id, title, release_date
	`

	rows, err := r.pool.Query(ctx, query, id, patch.Title, releaseDate)
	if err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}

	movie, err := pgx.CollectOneRow(rows, scanMovie)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return &movie, nil
}

// Delete removes the movie with id
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func scanMovie(row pgx.CollectableRow) (domain.Movie, error) {
	var m domain.Movie
	err := row.Scan(&m.ID, &m.Title, &m.ReleaseDate.Time)
	return m, err
}
