package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"casting-api/internal/auth"
	"casting-api/internal/domain"
	"casting-api/internal/http/httperr"
	"casting-api/internal/observability/logger"
	"casting-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	// ErrEmptyBody covers a missing body, null and {} (400)
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidBody covers malformed JSON and wrongly typed members (400)
	ErrInvalidBody = errors.New("request body is not a valid JSON object")

	errBadID = errors.New("id is not a non-negative integer")
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeJSONBody decodes a non-empty JSON object into dst
func decodeJSONBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return ErrEmptyBody
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if len(members) == 0 {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

// pathID reads a numeric URL parameter. Values that do not fit int64 are
// reported the same way as unknown ids.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 0 {
		return 0, errBadID
	}
	return id, nil
}

// subject returns the verified token subject, used as the audit actor
func subject(ctx context.Context) string {
	if claims, ok := auth.GetClaims(ctx); ok {
		return claims.Subject()
	}
	return ""
}

func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, errBadID),
		errors.Is(err, service.ErrActorNotFound),
		errors.Is(err, service.ErrMovieNotFound):
		log.Debug(ctx, "resource not found", zap.Error(err))
		httperr.NotFound404(w, ctx)
	case errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrNoFields),
		errors.Is(err, domain.ErrNotInteger):
		log.Debug(ctx, "bad request", zap.Error(err))
		httperr.BadRequest400(w, ctx)
	case errors.Is(err, domain.ErrInvalidFields),
		errors.Is(err, service.ErrWriteFailed):
		log.Warn(ctx, "unprocessable request", zap.Error(err))
		httperr.Unprocessable422(w, ctx)
	default:
		logger.SetRootError(ctx, err)
		log.Error(ctx, "unhandled internal server error", zap.Error(err))
		httperr.InternalError500(w, ctx, err.Error())
	}
}
