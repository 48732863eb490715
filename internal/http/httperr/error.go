package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"casting-api/internal/config"
	"casting-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response:
// {"error": <status code>, "message": <description>}
type ErrorResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	ErrorID string `json:"error_id,omitempty"`
}

// Generic messages for non-auth failures
const (
	MsgBadRequest       = "bad request"
	MsgNotFound         = "not found"
	MsgMethodNotAllowed = "method not allowed"
	MsgUnprocessable    = "unprocessable"
	MsgRateLimited      = "rate limit exceeded"
	MsgInternalError    = "internal server error"
)

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, ctx context.Context, status int, message string) {
	log := logger.GetLogger(ctx)

	fields := []zap.Field{
		zap.Int("status_code", status),
		zap.String("message", message),
	}
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", fields...)
	} else {
		log.Warn(ctx, "request failed", fields...)
	}

	writeBody(w, status, ErrorResponse{Error: status, Message: message})
}

// StatusError is implemented by errors that carry their own HTTP status
// and client facing message, such as auth.AuthError.
type StatusError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// WriteStatusError writes err using the status and message it carries.
// Logging is left to the caller, which knows the failure reason.
func WriteStatusError(w http.ResponseWriter, err StatusError) {
	writeBody(w, err.HTTPStatus(), ErrorResponse{Error: err.HTTPStatus(), Message: err.PublicMessage()})
}

// BadRequest400 writes a 400 Bad Request response
func BadRequest400(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusBadRequest, MsgBadRequest)
}

// Unauthorized401 writes a 401 Unauthorized response
func Unauthorized401(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, message)
}

// NotFound404 writes a 404 Not Found response
func NotFound404(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusNotFound, MsgNotFound)
}

// MethodNotAllowed405 writes a 405 Method Not Allowed response
func MethodNotAllowed405(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// Unprocessable422 writes a 422 Unprocessable Entity response
func Unprocessable422(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusUnprocessableEntity, MsgUnprocessable)
}

// TooManyRequests429 writes a 429 Too Many Requests response
func TooManyRequests429(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusTooManyRequests, MsgRateLimited)
}

// InternalError500 writes a 500 Internal Server Error response.
// The detail is logged but never returned to the client.
func InternalError500(w http.ResponseWriter, ctx context.Context, detail string) {
	reqID := logger.GetRequestIDFromContext(ctx)

	log := logger.GetLogger(ctx)
	log.Error(ctx, "internal server error",
		zap.String("detail", detail),
		zap.String("request_id", reqID),
	)

	response := ErrorResponse{
		Error:   http.StatusInternalServerError,
		Message: MsgInternalError,
	}

	if config.IsDevEnv(os.Getenv("APP_ENV")) {
		response.ErrorID = reqID
	}

	writeBody(w, http.StatusInternalServerError, response)
}

func writeBody(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
