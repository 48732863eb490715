package service

import (
	"context"
	"fmt"

	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"
	"casting-api/internal/repo"

	"go.uber.org/zap"
)

var ErrMovieNotFound = repo.ErrMovieNotFound

// MovieStore persists movies
type MovieStore interface {
	List(ctx context.Context) ([]domain.Movie, error)
	Get(ctx context.Context, id int64) (*domain.Movie, error)
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, id int64, patch domain.MoviePatch) (*domain.Movie, error)
	Delete(ctx context.Context, id int64) error
}

type MovieService struct {
	movies MovieStore
	audit  AuditLogger
	log    *logger.Logger
}

func NewMovieService(movies MovieStore, audit AuditLogger, log *logger.Logger) *MovieService {
	return &MovieService{
		movies: movies,
		audit:  audit,
		log:    log,
	}
}

// ListMovies returns every movie ordered by id, never nil
func (s *MovieService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// GetMovie returns ErrMovieNotFound for an unknown id
func (s *MovieService) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// CreateMovie validates req, stores the movie and returns its id
func (s *MovieService) CreateMovie(ctx context.Context, subject string, req *domain.CreateMovieRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	movie, err := req.Movie()
	if err != nil {
		return 0, err
	}

	if err := s.movies.Create(ctx, &movie); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.log.Info(ctx, "movie created",
		logger.Module("movie"),
		logger.Action("create"),
		zap.Int64("movie_id", movie.ID),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionCreate,
		ResourceType: domain.ResourceMovie,
		ResourceID:   movie.ID,
	})

	return movie.ID, nil
}

// UpdateMovie applies the members present in req
func (s *MovieService) UpdateMovie(ctx context.Context, subject string, id int64, req *domain.UpdateMovieRequest) (*domain.Movie, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.Update(ctx, id, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("update movie: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.log.Info(ctx, "movie updated",
		logger.Module("movie"),
		logger.Action("update"),
		zap.Int64("movie_id", id),
		zap.Strings("fields", patch.Fields()),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionUpdate,
		ResourceType: domain.ResourceMovie,
		ResourceID:   id,
		Metadata:     map[string]interface{}{"fields": patch.Fields()},
	})

	return movie, nil
}

// DeleteMovie removes the movie with id
func (s *MovieService) DeleteMovie(ctx context.Context, subject string, id int64) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	s.log.Info(ctx, "movie deleted",
		logger.Module("movie"),
		logger.Action("delete"),
		zap.Int64("movie_id", id),
	)

	recordAudit(ctx, s.audit, s.log, domain.AuditEntry{
		Subject:      subject,
		Action:       domain.AuditActionDelete,
		ResourceType: domain.ResourceMovie,
		ResourceID:   id,
	})

	return nil
}
