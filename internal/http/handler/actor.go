package handler

import (
	"net/http"

	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"
	"casting-api/internal/service"

	"go.uber.org/zap"
)

type ActorHandler struct {
	service *service.ActorService
}

func NewActorHandler(service *service.ActorService) *ActorHandler {
	return &ActorHandler{service: service}
}

// ListActors handles GET /actors
func (h *ActorHandler) ListActors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actors, err := h.service.ListActors(ctx)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, actors)
}

// CreateActor handles POST /actors
func (h *ActorHandler) CreateActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.CreateActorRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	id, err := h.service.CreateActor(ctx, subject(ctx), &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// UpdateActor handles PATCH /actors/{actorId}. An unknown id wins over a bad body.
func (h *ActorHandler) UpdateActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	id, err := pathID(r, "actorId")
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	if _, err := h.service.GetActor(ctx, id); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	var req domain.UpdateActorRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	actor, err := h.service.UpdateActor(ctx, subject(ctx), id, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Debug(ctx, "actor patched", zap.Int64("actor_id", id))
	writeJSON(w, http.StatusOK, actor)
}

// DeleteActor handles DELETE /actors/{actorId}
func (h *ActorHandler) DeleteActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	id, err := pathID(r, "actorId")
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	if err := h.service.DeleteActor(ctx, subject(ctx), id); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}
