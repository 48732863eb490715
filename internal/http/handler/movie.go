package handler

import (
	"net/http"

	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"
	"casting-api/internal/service"

	"go.uber.org/zap"
)

type MovieHandler struct {
	service *service.MovieService
}

func NewMovieHandler(service *service.MovieService) *MovieHandler {
	return &MovieHandler{service: service}
}

// ListMovies handles GET /movies
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	movies, err := h.service.ListMovies(ctx)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// CreateMovie handles POST /movies
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.CreateMovieRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	id, err := h.service.CreateMovie(ctx, subject(ctx), &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// UpdateMovie handles PATCH /movies/{movieId}. An unknown id wins over a bad body.
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	id, err := pathID(r, "movieId")
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	if _, err := h.service.GetMovie(ctx, id); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	var req domain.UpdateMovieRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	movie, err := h.service.UpdateMovie(ctx, subject(ctx), id, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Debug(ctx, "movie patched", zap.Int64("movie_id", id))
	writeJSON(w, http.StatusOK, movie)
}

// DeleteMovie handles DELETE /movies/{movieId}
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	id, err := pathID(r, "movieId")
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	if err := h.service.DeleteMovie(ctx, subject(ctx), id); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}
